package profiles

import (
	"context"
	"errors"
	"net/http"

	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/middlewares"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/response"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type profileService interface {
	Create(ctx context.Context, externalID int64, in dto.ProfileInput) (*entity.Profile, error)
	Get(ctx context.Context, id string) (*entity.Profile, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entity.Profile, error)
	ListInvited(ctx context.Context, id string) ([]entity.Profile, error)
	Update(ctx context.Context, externalID int64, in dto.ProfileInput) (*entity.Profile, error)
	Delete(ctx context.Context, id string, externalID int64) error
}

type Handler struct {
	profileService profileService
	logger         *types.Logger
}

func New(profileService profileService, logger *types.Logger) *Handler {
	return &Handler{
		profileService: profileService,
		logger:         logger,
	}
}

func (h Handler) Setup(mux *http.ServeMux, middle *middlewares.Handler) {
	middle.Authenticated(mux, "GET /v1/profiles/my", h.my)
	middle.Authenticated(mux, "POST /v1/profiles/{$}", h.create)
	middle.Authenticated(mux, "PATCH /v1/profiles/{$}", h.update)
	middle.Authenticated(mux, "DELETE /v1/profiles/{id}", h.delete)
	middle.Registered(mux, "GET /v1/profiles/{id}", h.get)
	middle.Registered(mux, "GET /v1/profiles/{id}/invited", h.invited)
}

// my answers 204 while the caller has not registered yet.
func (h Handler) my(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetByExternalID(r.Context(), middlewares.User(r.Context()).ID)
	if errors.Is(err, errorz.ProfileNotFound) {
		response.NoContent(w)
		return
	}
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewProfileFromEntity(*profile))
}

func (h Handler) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewProfileFromEntity(*profile))
}

func (h Handler) invited(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.ListInvited(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewProfilesFromEntities(profiles))
}

func (h Handler) create(w http.ResponseWriter, r *http.Request) {
	var in dto.ProfileInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	user := middlewares.User(r.Context())
	if in.FirstName == nil && user.FirstName != "" {
		in.FirstName = &user.FirstName
	}
	if in.LastName == nil && user.LastName != "" {
		in.LastName = &user.LastName
	}

	profile, err := h.profileService.Create(r.Context(), user.ID, in)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, dto.NewProfileFromEntity(*profile))
}

func (h Handler) update(w http.ResponseWriter, r *http.Request) {
	var in dto.ProfileInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	profile, err := h.profileService.Update(r.Context(), middlewares.User(r.Context()).ID, in)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewProfileFromEntity(*profile))
}

func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.profileService.Delete(r.Context(), r.PathValue("id"), middlewares.User(r.Context()).ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}
