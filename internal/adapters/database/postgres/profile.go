package postgres

import (
	"context"

	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type ProfileStorage struct {
	db *gorm.DB
}

func NewProfileStorage(db *gorm.DB) *ProfileStorage {
	return &ProfileStorage{
		db: db,
	}
}

// Create is a function that creates a new profile in the database.
func (s *ProfileStorage) Create(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	err := s.db.WithContext(ctx).Create(profile).Error
	return profile, translate(err, nil, errorz.ProfileExists)
}

// CreateInvited creates a profile together with the friendship to its inviter.
func (s *ProfileStorage) CreateInvited(ctx context.Context, profile *entity.Profile, edge entity.FriendEdge) (*entity.Profile, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return translate(err, nil, errorz.ProfileExists)
		}
		return translate(tx.Create(&edge).Error, nil, errorz.AlreadyFriends)
	})
	return profile, err
}

// Get is a function that gets a profile from the database by id.
func (s *ProfileStorage) Get(ctx context.Context, id string) (*entity.Profile, error) {
	var profile entity.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	return &profile, translate(err, errorz.ProfileNotFound, nil)
}

func (s *ProfileStorage) GetByExternalID(ctx context.Context, externalID int64) (*entity.Profile, error) {
	var profile entity.Profile
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&profile).Error
	return &profile, translate(err, errorz.ProfileNotFound, nil)
}

// GetMany returns the profiles with the given ids, oldest first. Unknown ids are skipped.
func (s *ProfileStorage) GetMany(ctx context.Context, ids []string) ([]entity.Profile, error) {
	profiles := make([]entity.Profile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at").Find(&profiles).Error
	return profiles, err
}

func (s *ProfileStorage) GetInvitedBy(ctx context.Context, id string) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := s.db.WithContext(ctx).Where("invited_by = ?", id).Order("created_at").Find(&profiles).Error
	return profiles, err
}

// Count is a function that gets the count of profiles from the database.
func (s *ProfileStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Profile{}).Count(&count).Error
	return count, err
}

// Update is a function that updates a profile in the database.
func (s *ProfileStorage) Update(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	err := s.db.WithContext(ctx).Omit("Inviter").Save(profile).Error
	return profile, err
}

// Delete removes a profile; edges, invitations, events and participations cascade.
func (s *ProfileStorage) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.ProfileNotFound
	}
	return nil
}
