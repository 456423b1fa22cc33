package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/lukinoo0/Blazefield/internal/profile"
)

// SQLProfileRepository keeps profiles in a relational table through gorm
type SQLProfileRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database file and migrates the schema
func OpenSQLite(path string, log zerolog.Logger) (*SQLProfileRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	log.Info().Str("path", path).Msg("Using SQLite profile store")
	return newSQLProfileRepository(db)
}

// OpenPostgres connects to Postgres and migrates the schema
func OpenPostgres(dsn string, log zerolog.Logger) (*SQLProfileRepository, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	log.Info().Msg("Using Postgres profile store")
	return newSQLProfileRepository(db)
}

func newSQLProfileRepository(db *gorm.DB) (*SQLProfileRepository, error) {
	if err := db.AutoMigrate(&profile.Profile{}); err != nil {
		return nil, fmt.Errorf("migrating profiles table: %w", err)
	}
	return &SQLProfileRepository{db: db}, nil
}

func (r *SQLProfileRepository) Get(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save upserts the row keyed by profile id
func (r *SQLProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error
}

func (r *SQLProfileRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
