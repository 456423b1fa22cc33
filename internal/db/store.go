package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/profile"
)

// OpenProfileStore opens the backend selected by PROFILE_BACKEND
func OpenProfileStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (profile.Store, error) {
	switch cfg.ProfileBackend {
	case config.BackendMongo:
		if err := Connect(ctx, cfg.MongoDBURL, cfg.MongoDBDatabase, log); err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return NewMongoProfileRepository(), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, log)
	case config.BackendPostgres:
		return OpenPostgres(cfg.PostgresDSN, log)
	case config.BackendRedis:
		return OpenRedis(ctx, cfg.RedisURL, log)
	case config.BackendMemory, "":
		log.Info().Msg("Using in-memory profile store")
		return profile.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown profile backend %q", cfg.ProfileBackend)
}
