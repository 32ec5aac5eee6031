package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
)

const defaultInterval = time.Minute

type IdleEvictor interface {
	EvictIdle(now time.Time) []sessionsvc.Evicted
}

type Job struct {
	sessions IdleEvictor
	now      func() time.Time
	logger   *zap.Logger
}

func New(sessions IdleEvictor, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sessions: sessions,
		now:      time.Now,
		logger:   logger,
	}
}

// Run evicts idle sessions once and returns how many were dropped.
func (j *Job) Run(ctx context.Context) int {
	if j.sessions == nil || ctx.Err() != nil {
		return 0
	}

	evicted := j.sessions.EvictIdle(j.now().UTC())
	if len(evicted) == 0 {
		return 0
	}

	activeMatches := 0
	for _, e := range evicted {
		activeMatches += e.ActiveMatches
		if e.ActiveMatches > 0 {
			j.logger.Info("idle session evicted with active matches",
				zap.String("session_id", e.SessionID),
				zap.Int64("actor_id", e.ActorID),
				zap.Int("active_matches", e.ActiveMatches),
			)
		}
	}

	j.logger.Info("session sweep completed",
		zap.Int("evicted", len(evicted)),
		zap.Int("active_matches", activeMatches),
	)
	return len(evicted)
}

// Loop runs the sweep every interval until ctx is done.
func (j *Job) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}
