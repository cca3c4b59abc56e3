package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Pruner periodically removes entries past the retention period.
type Pruner struct {
	store     *Store
	retention time.Duration
	logger    *slog.Logger
	scheduler gocron.Scheduler
}

// NewPruner schedules a prune of store every interval.
func NewPruner(store *Store, retention, interval time.Duration, logger *slog.Logger) (*Pruner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	p := &Pruner{
		store:     store,
		retention: retention,
		logger:    logger,
		scheduler: s,
	}
	if _, err := s.NewJob(gocron.DurationJob(interval), gocron.NewTask(p.run)); err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return p, nil
}

// Start starts the schedule. The first prune runs after one interval.
func (p *Pruner) Start() {
	p.scheduler.Start()
}

// Stop stops the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() error {
	return p.scheduler.Shutdown()
}

func (p *Pruner) run() {
	n, err := p.store.Prune(context.Background(), p.retention)
	switch {
	case errors.Is(err, ErrPruneRunning):
		p.logger.Debug("history prune skipped, previous run still active")
	case err != nil:
		p.logger.Error("history prune failed", "error", err)
	default:
		p.logger.Info("history pruned", "entries", n, "retention", p.retention)
	}
}
