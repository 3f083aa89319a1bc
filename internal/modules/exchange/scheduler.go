package exchange

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs Service.Update once a day at a fixed UTC time, Monday to
// Friday.
type Scheduler struct {
	service Service
	hour    int
	minute  int
	log     *slog.Logger
	now     func() time.Time
}

func NewScheduler(service Service, hour, minute int, log *slog.Logger) *Scheduler {
	return &Scheduler{service: service, hour: hour, minute: minute, log: log, now: time.Now}
}

// NextRun returns the first weekday slot strictly after t.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hour, s.minute, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is done. A failed update is logged and retried at
// the next slot.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.NextRun(s.now())
		s.log.InfoContext(ctx, "next exchange rate update scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := s.service.Update(ctx); err != nil {
			s.log.ErrorContext(ctx, "scheduled exchange rate update failed", "error", err)
		}
	}
}
