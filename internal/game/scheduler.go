package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scheduler drives the snapshot broadcast and bot AI at fixed rates
type Scheduler struct {
	engine         *Engine
	broadcastEvery time.Duration
	thinkEvery     time.Duration
	logger         zerolog.Logger
}

func NewScheduler(engine *Engine, broadcastEvery, thinkEvery time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		engine:         engine,
		broadcastEvery: broadcastEvery,
		thinkEvery:     thinkEvery,
		logger:         logger,
	}
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop(ctx, "broadcast", s.broadcastEvery, func(time.Duration) {
			s.engine.BroadcastState()
		})
	})
	g.Go(func() error {
		return s.loop(ctx, "bots", s.thinkEvery, s.engine.ThinkBots)
	})

	s.logger.Info().
		Dur("broadcast", s.broadcastEvery).
		Dur("bots", s.thinkEvery).
		Msg("Game loops started")

	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, tick func(time.Duration)) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("loop", name).Msg("Game loop stopped")
			return nil
		case <-ticker.C:
			s.safeTick(name, every, tick)
		}
	}
}

// safeTick keeps a panicking tick from taking the loop down with it
func (s *Scheduler) safeTick(name string, dt time.Duration, tick func(time.Duration)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("loop", name).Interface("panic", r).Msg("Game tick failed")
		}
	}()
	tick(dt)
}
