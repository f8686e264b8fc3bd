package events

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/middlewares"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/response"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/metrics"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/internal/domain/utils/calendar"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type eventService interface {
	Tags() []string
	Create(ctx context.Context, creatorID string, in dto.EventInput) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	Update(ctx context.Context, id, userID string, in dto.EventInput) (*entity.Event, error)
	Delete(ctx context.Context, id, userID string) error
}

type visibilityService interface {
	View(ctx context.Context, eventID string, viewer *entity.Profile) (dto.EventWithParticipation, error)
	CanView(ctx context.Context, event *entity.Event, viewerID string) (bool, error)
	ListEvents(ctx context.Context, viewer *entity.Profile, q dto.EventQuery) (dto.EventList, error)
	ListUserEvents(ctx context.Context, viewer *entity.Profile, q dto.UserEventQuery) (dto.EventList, error)
}

type participationService interface {
	Join(ctx context.Context, eventID string, user *entity.Profile) (*entity.Participation, error)
	Leave(ctx context.Context, eventID, userID string) error
	CountGoing(ctx context.Context, eventID string) (int64, error)
	RecordScan(ctx context.Context, participationID string, operatorID int64) (*entity.Participation, error)
}

type ticketService interface {
	Ticket(ctx context.Context, eventID, userID string) ([]byte, error)
}

type Handler struct {
	eventService         eventService
	visibilityService    visibilityService
	participationService participationService
	ticketService        ticketService
	calendarLimit        int
	now                  func() time.Time
	logger               *types.Logger
}

func New(
	eventService eventService,
	visibilityService visibilityService,
	participationService participationService,
	ticketService ticketService,
	calendarLimit int,
	logger *types.Logger,
) *Handler {
	return &Handler{
		eventService:         eventService,
		visibilityService:    visibilityService,
		participationService: participationService,
		ticketService:        ticketService,
		calendarLimit:        calendarLimit,
		now:                  time.Now,
		logger:               logger,
	}
}

func (h Handler) Setup(mux *http.ServeMux, middle *middlewares.Handler) {
	middle.Public(mux, "GET /v1/events/tags", h.tags)

	middle.Registered(mux, "GET /v1/events/global_events", h.list)
	middle.Registered(mux, "POST /v1/events/global_events", h.create)
	middle.Registered(mux, "GET /v1/events/global_events/{id}", h.get)
	middle.Registered(mux, "PATCH /v1/events/global_events/{id}", h.update)
	middle.Registered(mux, "DELETE /v1/events/global_events/{id}", h.delete)

	middle.Registered(mux, "GET /v1/events/user_events", h.userEvents)
	middle.Registered(mux, "GET /v1/events/user_events/calendar", h.calendar)
	middle.Registered(mux, "POST /v1/events/user_events/{event_id}", h.join)
	middle.Registered(mux, "DELETE /v1/events/user_events/{event_id}", h.leave)
	middle.Registered(mux, "GET /v1/events/user_events/{event_id}/qr", h.ticket)

	middle.Authenticated(mux, "POST /v1/events/scan_qr", h.scan)
}

func (h Handler) tags(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string][]string{"tags": h.eventService.Tags()})
}

func (h Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	list, err := h.visibilityService.ListEvents(r.Context(), middlewares.Profile(r.Context()), dto.EventQuery{
		Tags:          parseTags(query["tags"]),
		Visibility:    entity.Visibility(query.Get("visibility")),
		Repeatability: entity.Repeatability(query.Get("repeatability")),
		LastSeenID:    lastSeenID(query.Get("last_seen_id"), query.Get("last_event_id")),
		Limit:         limit,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h Handler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.visibilityService.View(r.Context(), r.PathValue("id"), middlewares.Profile(r.Context()))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

func (h Handler) create(w http.ResponseWriter, r *http.Request) {
	var in dto.EventInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	event, err := h.eventService.Create(r.Context(), middlewares.Profile(r.Context()).ID, in)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	h.event(w, r, http.StatusCreated, event)
}

func (h Handler) update(w http.ResponseWriter, r *http.Request) {
	var in dto.EventInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	event, err := h.eventService.Update(r.Context(), r.PathValue("id"), middlewares.Profile(r.Context()).ID, in)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	h.event(w, r, http.StatusOK, event)
}

// delete answers with the event as it was before removal.
func (h Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	event, err := h.eventService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	going, err := h.participationService.CountGoing(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err = h.eventService.Delete(r.Context(), id, middlewares.Profile(r.Context()).ID); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewEventFromEntity(*event, going, h.now()))
}

func (h Handler) userEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := entity.ParseEventsFilter(query.Get("filter_type"))
	if err != nil {
		response.Error(w, r, h.logger, errorz.InvalidField("filter_type must be all, past or actual"))
		return
	}
	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	list, err := h.visibilityService.ListUserEvents(r.Context(), middlewares.Profile(r.Context()), dto.UserEventQuery{
		Filter:     filter,
		LastSeenID: lastSeenID(query.Get("last_seen_id"), query.Get("last_event_id")),
		Limit:      limit,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

// calendar exports the viewer's upcoming events as an iCalendar feed.
func (h Handler) calendar(w http.ResponseWriter, r *http.Request) {
	list, err := h.visibilityService.ListUserEvents(r.Context(), middlewares.Profile(r.Context()), dto.UserEventQuery{
		Filter: entity.EventsActual,
		Limit:  h.calendarLimit,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	events := make([]dto.Event, 0, len(list.Events))
	for _, e := range list.Events {
		events = append(events, e.Event)
	}
	data, err := calendar.ExportEventsToICS(events, h.now())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h Handler) join(w http.ResponseWriter, r *http.Request) {
	viewer := middlewares.Profile(r.Context())
	event, err := h.eventService.Get(r.Context(), r.PathValue("event_id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	visible, err := h.visibilityService.CanView(r.Context(), event, viewer.ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if !visible {
		response.Error(w, r, h.logger, errorz.EventHidden)
		return
	}

	_, err = h.participationService.Join(r.Context(), event.ID, viewer)
	metrics.Participations.WithLabelValues("join", outcome(err)).Inc()
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	h.event(w, r, http.StatusOK, event)
}

func (h Handler) leave(w http.ResponseWriter, r *http.Request) {
	err := h.participationService.Leave(r.Context(), r.PathValue("event_id"), middlewares.Profile(r.Context()).ID)
	metrics.Participations.WithLabelValues("leave", outcome(err)).Inc()
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Successfully left the event"})
}

func (h Handler) ticket(w http.ResponseWriter, r *http.Request) {
	png, err := h.ticketService.Ticket(r.Context(), r.PathValue("event_id"), middlewares.Profile(r.Context()).ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h Handler) scan(w http.ResponseWriter, r *http.Request) {
	var req dto.ScanRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	participation, err := h.participationService.RecordScan(r.Context(), req.ParticipationID, middlewares.User(r.Context()).ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	metrics.AttendanceScans.Inc()
	response.JSON(w, http.StatusOK, dto.ScanResult{
		UserID:  participation.UserID,
		EventID: participation.EventID,
	})
}

// event answers with the public view of event and its live attendance.
func (h Handler) event(w http.ResponseWriter, r *http.Request, code int, event *entity.Event) {
	going, err := h.participationService.CountGoing(r.Context(), event.ID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, code, dto.NewEventFromEntity(*event, going, h.now()))
}

// parseTags accepts both repeated and comma separated tags.
func parseTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 1 {
		return 0, errorz.InvalidField("limit must be a positive integer")
	}
	return limit, nil
}

func lastSeenID(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := errorz.Kind(err); kind != nil {
		return kind.Error()
	}
	return "error"
}
