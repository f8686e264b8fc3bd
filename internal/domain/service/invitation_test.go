package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
)

func TestInvitationService_GetOrCreateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.profile(t, "a")

	first, err := env.invitations.GetOrCreate(ctx, a.ID)
	require.NoError(t, err)
	second, err := env.invitations.GetOrCreate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestInvitationService_Check(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.profile(t, "a")
	invitation, err := env.invitations.GetOrCreate(ctx, a.ID)
	require.NoError(t, err)

	owner, err := env.invitations.Check(ctx, invitation.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, owner.ID)

	_, err = env.invitations.Check(ctx, "garbage")
	assert.ErrorIs(t, err, errorz.InvalidInvitation)

	delete(env.db.profiles, a.ID)
	_, err = env.invitations.Check(ctx, invitation.ID)
	assert.ErrorIs(t, err, errorz.OrphanInvitation)
	assert.ErrorIs(t, err, errorz.InvalidInput)
}

func TestInvitationService_Redeem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")
	invitation, err := env.invitations.GetOrCreate(ctx, a.ID)
	require.NoError(t, err)

	_, err = env.invitations.Redeem(ctx, invitation.ID, a.ID)
	assert.ErrorIs(t, err, errorz.SelfFriendship)

	_, err = env.invitations.Redeem(ctx, invitation.ID, b.ID)
	require.NoError(t, err)
	ok, err := env.friends.AreFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.invitations.Redeem(ctx, invitation.ID, b.ID)
	assert.ErrorIs(t, err, errorz.AlreadyFriends)
}
