package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/internal/domain/utils/validator"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type ProfileStorage interface {
	Create(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
	CreateInvited(ctx context.Context, profile *entity.Profile, edge entity.FriendEdge) (*entity.Profile, error)
	Get(ctx context.Context, id string) (*entity.Profile, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entity.Profile, error)
	GetMany(ctx context.Context, ids []string) ([]entity.Profile, error)
	GetInvitedBy(ctx context.Context, id string) ([]entity.Profile, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
	Delete(ctx context.Context, id string) error
}

type profileInvitationStorage interface {
	Get(ctx context.Context, id string) (*entity.Invitation, error)
}

type profileFriendService interface {
	DirectFriends(ctx context.Context, id string) ([]string, error)
	Forget(ctx context.Context, ids ...string)
}

type ProfileService struct {
	storage     ProfileStorage
	invitations profileInvitationStorage
	friends     profileFriendService
	logger      *types.Logger
}

func NewProfileService(
	storage ProfileStorage,
	invitations profileInvitationStorage,
	friends profileFriendService,
	logger *types.Logger,
) *ProfileService {
	return &ProfileService{
		storage:     storage,
		invitations: invitations,
		friends:     friends,
		logger:      logger,
	}
}

// Create registers the profile bound to externalID. The very first profile
// needs no invitation; everyone after that joins through one and becomes a
// friend of its owner in the same transaction.
func (s *ProfileService) Create(ctx context.Context, externalID int64, in dto.ProfileInput) (*entity.Profile, error) {
	_, err := s.storage.GetByExternalID(ctx, externalID)
	if err == nil {
		return nil, errorz.ProfileExists
	}
	if !errors.Is(err, errorz.ProfileNotFound) {
		return nil, err
	}

	profile := &entity.Profile{
		ID:         uuid.NewString(),
		ExternalID: externalID,
	}
	in.Apply(profile)
	if err = validateProfile(profile); err != nil {
		return nil, err
	}

	count, err := s.storage.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		profile, err = s.storage.Create(ctx, profile)
		if err != nil {
			return nil, err
		}
		s.logger.Infow("first profile created", "id", profile.ID, "external_id", externalID)
		return profile, nil
	}

	if in.Invitation == nil || *in.Invitation == "" {
		return nil, errorz.InvitationRequired
	}
	if _, err = uuid.Parse(*in.Invitation); err != nil {
		return nil, errorz.InvalidInvitationID
	}
	invitation, err := s.invitations.Get(ctx, *in.Invitation)
	if errors.Is(err, errorz.InvalidInvitation) {
		return nil, errorz.InvalidInvitationID
	}
	if err != nil {
		return nil, err
	}

	profile.InvitedBy = &invitation.OwnerID
	profile, err = s.storage.CreateInvited(ctx, profile, entity.NewFriendEdge(invitation.OwnerID, profile.ID))
	if err != nil {
		return nil, err
	}
	s.friends.Forget(ctx, invitation.OwnerID, profile.ID)

	s.logger.Infow("profile created", "id", profile.ID, "external_id", externalID, "invited_by", invitation.OwnerID)
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*entity.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errorz.ProfileNotFound
	}
	return s.storage.Get(ctx, id)
}

func (s *ProfileService) GetByExternalID(ctx context.Context, externalID int64) (*entity.Profile, error) {
	return s.storage.GetByExternalID(ctx, externalID)
}

func (s *ProfileService) GetMany(ctx context.Context, ids []string) ([]entity.Profile, error) {
	return s.storage.GetMany(ctx, ids)
}

func (s *ProfileService) ListInvited(ctx context.Context, id string) ([]entity.Profile, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.GetInvitedBy(ctx, id)
}

// Update applies a partial patch to the profile bound to externalID.
func (s *ProfileService) Update(ctx context.Context, externalID int64, in dto.ProfileInput) (*entity.Profile, error) {
	profile, err := s.storage.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	in.Apply(profile)
	if err = validateProfile(profile); err != nil {
		return nil, err
	}
	return s.storage.Update(ctx, profile)
}

// Delete removes the profile with id, which must be bound to externalID.
// Everything the profile owns goes with it.
func (s *ProfileService) Delete(ctx context.Context, id string, externalID int64) error {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if profile.ExternalID != externalID {
		return errorz.CannotDeleteOtherProfile
	}

	friends, err := s.friends.DirectFriends(ctx, id)
	if err != nil {
		return err
	}
	if err = s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.friends.Forget(ctx, append(friends, id)...)

	s.logger.Infow("profile deleted", "id", id)
	return nil
}

func validateProfile(profile *entity.Profile) error {
	switch {
	case !validator.Name(profile.FirstName):
		return errorz.InvalidField("first_name must be 1 to 100 characters")
	case !validator.Name(profile.LastName):
		return errorz.InvalidField("last_name must be 1 to 100 characters")
	case profile.Gender != "" && !validator.Gender(profile.Gender):
		return errorz.InvalidField("gender must be a single character")
	}
	return nil
}
