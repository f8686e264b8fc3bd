package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type InvitationStorage interface {
	GetOrCreate(ctx context.Context, ownerID string) (*entity.Invitation, error)
	Get(ctx context.Context, id string) (*entity.Invitation, error)
}

type invitationProfileStorage interface {
	Get(ctx context.Context, id string) (*entity.Profile, error)
}

type invitationFriendService interface {
	CreateEdge(ctx context.Context, a, b string) error
}

type InvitationService struct {
	storage  InvitationStorage
	profiles invitationProfileStorage
	friends  invitationFriendService
	logger   *types.Logger
}

func NewInvitationService(
	storage InvitationStorage,
	profiles invitationProfileStorage,
	friends invitationFriendService,
	logger *types.Logger,
) *InvitationService {
	return &InvitationService{
		storage:  storage,
		profiles: profiles,
		friends:  friends,
		logger:   logger,
	}
}

// GetOrCreate returns the single invitation owned by ownerID.
func (s *InvitationService) GetOrCreate(ctx context.Context, ownerID string) (*entity.Invitation, error) {
	return s.storage.GetOrCreate(ctx, ownerID)
}

// Check returns the profile that handed out the invitation.
func (s *InvitationService) Check(ctx context.Context, id string) (*entity.Profile, error) {
	invitation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.profiles.Get(ctx, invitation.OwnerID)
	if errors.Is(err, errorz.ProfileNotFound) {
		return nil, errorz.OrphanInvitation
	}
	return owner, err
}

// Redeem makes redeemerID a friend of the invitation owner.
func (s *InvitationService) Redeem(ctx context.Context, id, redeemerID string) (*entity.Invitation, error) {
	invitation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invitation.OwnerID == redeemerID {
		return nil, errorz.SelfFriendship
	}
	if err = s.friends.CreateEdge(ctx, invitation.OwnerID, redeemerID); err != nil {
		return nil, err
	}
	s.logger.Infow("invitation redeemed", "invitation", id, "owner", invitation.OwnerID, "redeemer", redeemerID)
	return invitation, nil
}

func (s *InvitationService) get(ctx context.Context, id string) (*entity.Invitation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errorz.InvalidInvitation
	}
	return s.storage.Get(ctx, id)
}
