// Package scheduler drives recurring batch runs: one cron entry per
// source carrying a schedule in its manifest.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// RunFunc triggers a run for one named source.
type RunFunc func(ctx context.Context, source string)

// Scheduler manages cron-based source runs.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc

	mu      sync.Mutex
	entries map[string]cron.EntryID // source name → cron entry
}

// New returns a scheduler that invokes run on each source's schedule.
func New(run RunFunc) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		run:     run,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers the given sources and starts the cron loop. Sources
// without a schedule are skipped; an invalid schedule logs a warning
// and skips the entry rather than failing the whole scheduler.
func (s *Scheduler) Start(sources []config.Source) {
	s.Reload(sources)
	s.cron.Start()
	logging.Info().Int("scheduled", s.Len()).Msg("scheduler started")
}

// Stop gracefully stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logging.Info().Msg("scheduler stopped")
}

// Reload replaces all entries with the given source list.
func (s *Scheduler) Reload(sources []config.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)

	for _, src := range sources {
		if src.Schedule == "" {
			continue
		}
		name := src.Name
		entryID, err := s.cron.AddFunc(src.Schedule, func() {
			s.run(context.Background(), name)
		})
		if err != nil {
			logging.Warn().
				Str("source", name).
				Str("schedule", src.Schedule).
				Err(err).
				Msg("invalid cron schedule, source will only run manually")
			continue
		}
		s.entries[name] = entryID
		logging.Info().Str("source", name).Str("schedule", src.Schedule).Msg("source scheduled")
	}
}

// Len returns the number of scheduled sources.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
