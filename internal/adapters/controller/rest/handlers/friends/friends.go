package friends

import (
	"context"
	"net/http"

	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/middlewares"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/response"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/metrics"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type friendService interface {
	DeleteEdge(ctx context.Context, a, b string) error
	DirectFriends(ctx context.Context, id string) ([]string, error)
	FriendsOfFriends(ctx context.Context, id string) ([]string, error)
}

type invitationService interface {
	GetOrCreate(ctx context.Context, ownerID string) (*entity.Invitation, error)
	Check(ctx context.Context, id string) (*entity.Profile, error)
	Redeem(ctx context.Context, id, redeemerID string) (*entity.Invitation, error)
}

type profileService interface {
	Get(ctx context.Context, id string) (*entity.Profile, error)
	GetMany(ctx context.Context, ids []string) ([]entity.Profile, error)
}

type Handler struct {
	friendService     friendService
	invitationService invitationService
	profileService    profileService
	logger            *types.Logger
}

func New(
	friendService friendService,
	invitationService invitationService,
	profileService profileService,
	logger *types.Logger,
) *Handler {
	return &Handler{
		friendService:     friendService,
		invitationService: invitationService,
		profileService:    profileService,
		logger:            logger,
	}
}

func (h Handler) Setup(mux *http.ServeMux, middle *middlewares.Handler) {
	middle.Public(mux, "GET /v1/friends/check/{id}", h.check)
	middle.Registered(mux, "GET /v1/friends/my", h.my)
	middle.Registered(mux, "GET /v1/friends/list/{id}", h.list)
	middle.Registered(mux, "GET /v1/friends/secondary", h.secondary)
	middle.Registered(mux, "DELETE /v1/friends/{id}", h.delete)
	middle.Registered(mux, "GET /v1/friends/new", h.invitation)
	middle.Registered(mux, "POST /v1/friends/new", h.redeem)
}

func (h Handler) my(w http.ResponseWriter, r *http.Request) {
	ids, err := h.friendService.DirectFriends(r.Context(), middlewares.Profile(r.Context()).ID)
	h.profiles(w, r, ids, err)
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	ids, err := h.friendService.DirectFriends(r.Context(), profile.ID)
	h.profiles(w, r, ids, err)
}

func (h Handler) secondary(w http.ResponseWriter, r *http.Request) {
	ids, err := h.friendService.FriendsOfFriends(r.Context(), middlewares.Profile(r.Context()).ID)
	h.profiles(w, r, ids, err)
}

// profiles answers with the profiles behind ids, in the order of ids.
func (h Handler) profiles(w http.ResponseWriter, r *http.Request, ids []string, err error) {
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	profiles, err := h.profileService.GetMany(r.Context(), ids)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	byID := make(map[string]entity.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	result := make([]dto.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, dto.NewProfileFromEntity(p))
		}
	}
	response.JSON(w, http.StatusOK, result)
}

func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.friendService.DeleteEdge(r.Context(), middlewares.Profile(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	metrics.Friendships.WithLabelValues("delete").Inc()
	response.NoContent(w)
}

func (h Handler) invitation(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.invitationService.GetOrCreate(r.Context(), middlewares.Profile(r.Context()).ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.Invitation{ID: invitation.ID})
}

func (h Handler) check(w http.ResponseWriter, r *http.Request) {
	referrer, err := h.invitationService.Check(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewProfileFromEntity(*referrer))
}

func (h Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if req.InvitationID == "" {
		response.Error(w, r, h.logger, errorz.InvalidField("invitation_id is required"))
		return
	}

	invitation, err := h.invitationService.Redeem(r.Context(), req.InvitationID, middlewares.Profile(r.Context()).ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	metrics.Friendships.WithLabelValues("create").Inc()
	response.JSON(w, http.StatusOK, dto.Invitation{ID: invitation.ID})
}
