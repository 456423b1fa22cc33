// Package profile keeps persistent per-player totals behind a pluggable store.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lukinoo0/Blazefield/internal/config"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the persisted identity and lifetime totals of a player
type Profile struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;size:64"`
	Nickname    string    `json:"nickname" bson:"nickname" gorm:"size:64"`
	Class       string    `json:"class" bson:"class" gorm:"size:32"`
	TotalKills  int       `json:"totalKills" bson:"total_kills"`
	TotalDeaths int       `json:"totalDeaths" bson:"total_deaths"`
	Matches     int       `json:"matches" bson:"matches"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// Store is a key-value profile backend
type Store interface {
	// Get returns ErrNotFound when no profile has the id
	Get(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Close() error
}

// New builds a fresh profile counting its first match. An empty id gets a
// UUID; an empty nickname or class gets the default.
func New(id, nickname, class string) *Profile {
	if id == "" {
		id = uuid.New().String()
	}
	p := &Profile{
		ID:       id,
		Nickname: nickname,
		Class:    class,
		Matches:  1,
	}
	if p.Nickname == "" {
		p.Nickname = "Player_" + id[:min(5, len(id))]
	}
	if p.Class == "" {
		p.Class = config.DefaultClass
	}
	return p
}

func (p *Profile) clone() *Profile {
	c := *p
	return &c
}
