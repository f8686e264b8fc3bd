package setup

import (
	"context"

	"github.com/vstrecha/vstrecha/backend/cmd/server"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/events"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/friends"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/middlewares"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/ops"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/profiles"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/scheduler"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/database/postgres"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/metrics"
	"github.com/vstrecha/vstrecha/backend/internal/domain/service"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
	qr "github.com/vstrecha/vstrecha/backend/pkg/qrcode"
)

func Setup(ctx context.Context, s *server.Server) {
	metrics.Init()
	logger.SetLogHook(metrics.LogHook)

	// Storages
	profileStorage := postgres.NewProfileStorage(s.DB)
	friendStorage := postgres.NewFriendStorage(s.DB)
	invitationStorage := postgres.NewInvitationStorage(s.DB)
	eventStorage := postgres.NewEventStorage(s.DB)
	participationStorage := postgres.NewParticipationStorage(s.DB)
	scanStorage := postgres.NewScanStorage(s.DB)

	// Services
	friendService := service.NewFriendService(friendStorage, s.Redis.Friends, named("friends"))
	invitationService := service.NewInvitationService(invitationStorage, profileStorage, friendService, named("invitations"))
	profileService := service.NewProfileService(profileStorage, invitationStorage, friendService, named("profiles"))
	eventService := service.NewEventService(eventStorage, service.EventOptions{
		Tags:         s.Settings.Events.Tags,
		DefaultLimit: s.Settings.Events.DefaultLimit,
		MaxLimit:     s.Settings.Events.MaxLimit,
		Location:     s.Settings.Location,
	}, named("events"))
	participationService := service.NewParticipationService(participationStorage, scanStorage, eventStorage, named("participation"))
	visibilityService := service.NewVisibilityService(friendService, eventService, participationService)

	ticket := qr.Ticket
	if s.Settings.QR.Size > 0 {
		ticket.Size = s.Settings.QR.Size
	}
	qrService := service.NewQrService(ticket, participationService, s.Settings.QR.LogoPath)

	if s.Settings.Events.SweepInterval > 0 {
		scheduler.NewEventScheduler(eventService, s.Settings.Events.SweepInterval, named("scheduler")).Start(ctx)
	}

	// Handlers
	middle := middlewares.New(profileService, middlewares.Options{
		BotToken:   s.Settings.Auth.BotToken,
		AuthMaxAge: s.Settings.Auth.MaxAge,
	}, s.Logger)

	ops.New(map[string]ops.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := s.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return s.Redis.Raw.Ping(ctx).Err()
		},
	}, s.Logger).Setup(s.Mux, middle)
	profiles.New(profileService, s.Logger).Setup(s.Mux, middle)
	friends.New(friendService, invitationService, profileService, s.Logger).Setup(s.Mux, middle)
	events.New(eventService, visibilityService, participationService, qrService, s.Settings.Events.MaxLimit, s.Logger).
		Setup(s.Mux, middle)

	// Global middlewares, innermost first
	handler := middlewares.MaxBodyBytes(s.Mux, s.Settings.HTTP.MaxBodyBytes)
	handler = middlewares.RateLimit(ctx, handler, s.Settings.HTTP.RateBurst, s.Settings.HTTP.RatePerSecond)
	handler = middle.Recover(handler)
	handler = middle.Logging(handler)
	handler = middle.RequestIDs(handler)
	s.Handler = handler
}

func named(name string) *types.Logger {
	l, err := logger.Named(name)
	if err != nil {
		return logger.Nop()
	}
	return l
}
