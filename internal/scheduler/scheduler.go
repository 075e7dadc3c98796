package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// PickPoller checks the live draft for new picks.
type PickPoller interface {
	PollPicks(ctx context.Context) (string, bool, error)
}

type Scheduler struct {
	s            gocron.Scheduler
	poller       PickPoller
	sendMessage  func(string) error
	pollInterval time.Duration
}

func NewScheduler(poller PickPoller, sendMessage func(string) error, pollInterval time.Duration, timezone string) (*Scheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Error("Failed to load location", "timezone", timezone, "error", err)
		location = time.Local
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:            s,
		poller:       poller,
		sendMessage:  sendMessage,
		pollInterval: pollInterval,
	}, nil
}

func (s *Scheduler) Start() error {
	// Draft picks - every poll interval, skipping a run while the last one is still solving
	_, err := s.s.NewJob(
		gocron.DurationJob(s.pollInterval),
		gocron.NewTask(s.pollPicks),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create draft picks job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) pollPicks() {
	ctx, cancel := context.WithTimeout(context.Background(), max(s.pollInterval, time.Minute))
	defer cancel()

	report, changed, err := s.poller.PollPicks(ctx)
	if err != nil {
		slog.Error("Failed to poll draft picks", "error", err)
		return
	}
	if !changed {
		return
	}
	if err := s.sendMessage(report); err != nil {
		slog.Error("Failed to send draft update", "error", err)
	}
}
