package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type InvitationStorage struct {
	db *gorm.DB
}

func NewInvitationStorage(db *gorm.DB) *InvitationStorage {
	return &InvitationStorage{
		db: db,
	}
}

// GetOrCreate returns the owner's invitation, creating it on first use.
func (s *InvitationStorage) GetOrCreate(ctx context.Context, ownerID string) (*entity.Invitation, error) {
	invitation := entity.Invitation{OwnerID: ownerID}
	err := s.db.WithContext(ctx).
		Where(entity.Invitation{OwnerID: ownerID}).
		Attrs(entity.Invitation{ID: uuid.NewString()}).
		FirstOrCreate(&invitation).Error
	return &invitation, err
}

func (s *InvitationStorage) Get(ctx context.Context, id string) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&invitation).Error
	return &invitation, translate(err, errorz.InvalidInvitation, nil)
}
