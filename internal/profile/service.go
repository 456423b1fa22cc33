package profile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Service implements profile semantics on top of a Store. When the store is
// unreachable it keeps working from an in-memory copy so gameplay never
// waits on persistence.
type Service struct {
	store     Store
	ephemeral *MemoryStore
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		ephemeral: NewMemoryStore(),
		logger:    logger,
		now:       time.Now,
	}
}

// GetOrCreate loads the profile for id, refreshing its nickname and class
// and counting a match. Unknown or empty ids get a new profile.
func (s *Service) GetOrCreate(ctx context.Context, id, nickname, class string) *Profile {
	durable := true
	if id != "" {
		var (
			p   *Profile
			err error
		)
		p, durable, err = s.lookup(ctx, id)
		if err == nil {
			if nickname != "" {
				p.Nickname = nickname
			}
			if class != "" {
				p.Class = class
			}
			p.Matches++
			s.write(ctx, p, durable)
			return p
		}
	}

	p := New(id, nickname, class)
	// Never overwrite a stored profile we could not read
	s.write(ctx, p, durable)
	return p
}

// Get returns the profile or ErrNotFound
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	p, _, err := s.lookup(ctx, id)
	return p, err
}

// Reset zeroes the lifetime totals
func (s *Service) Reset(ctx context.Context, id string) (*Profile, error) {
	p, durable, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	p.TotalKills = 0
	p.TotalDeaths = 0
	p.Matches = 0
	s.write(ctx, p, durable)
	return p, nil
}

// Credit adds kills and deaths to the lifetime totals
func (s *Service) Credit(ctx context.Context, id string, kills, deaths int) (*Profile, error) {
	p, durable, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	p.TotalKills += kills
	p.TotalDeaths += deaths
	s.write(ctx, p, durable)
	return p, nil
}

func (s *Service) Close() error {
	return s.store.Close()
}

// lookup reads through the store, then the ephemeral copy. durable reports
// whether the store answered, so writes go back to it.
func (s *Service) lookup(ctx context.Context, id string) (*Profile, bool, error) {
	if id == "" {
		return nil, true, ErrNotFound
	}

	p, err := s.store.Get(ctx, id)
	if err == nil {
		return p, true, nil
	}

	durable := errors.Is(err, ErrNotFound)
	if !durable {
		s.logger.Warn().Err(err).Str("profile", id).Msg("Profile store unavailable, using ephemeral profile")
	}

	p, ephErr := s.ephemeral.Get(ctx, id)
	if ephErr != nil {
		return nil, durable, ErrNotFound
	}
	return p, durable, nil
}

func (s *Service) write(ctx context.Context, p *Profile, durable bool) {
	p.UpdatedAt = s.now().UTC()

	if durable {
		err := s.store.Save(ctx, p)
		if err == nil {
			return
		}
		s.logger.Error().Err(err).Str("profile", p.ID).Msg("Failed to save profile, keeping ephemeral copy")
	}
	_ = s.ephemeral.Save(ctx, p)
}
