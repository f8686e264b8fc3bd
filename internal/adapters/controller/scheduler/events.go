package scheduler

import (
	"context"
	"time"

	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

type eventService interface {
	EndPast(ctx context.Context) (int64, error)
}

// EventScheduler periodically moves finished events to the ended status.
type EventScheduler struct {
	eventService eventService
	interval     time.Duration
	logger       *types.Logger
}

func NewEventScheduler(eventService eventService, interval time.Duration, logger *types.Logger) *EventScheduler {
	return &EventScheduler{
		eventService: eventService,
		interval:     interval,
		logger:       logger,
	}
}

func (s *EventScheduler) Start(ctx context.Context) {
	s.logger.Infof("Starting ended events scheduler, interval %s", s.interval)
	go s.periodicallyEndPastEvents(ctx)
}

func (s *EventScheduler) periodicallyEndPastEvents(ctx context.Context) {
	s.endPastEvents(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.endPastEvents(ctx)
		}
	}
}

func (s *EventScheduler) endPastEvents(ctx context.Context) {
	if _, err := s.eventService.EndPast(ctx); err != nil && ctx.Err() == nil {
		s.logger.Errorf("Error ending past events: %v", err)
	}
}
