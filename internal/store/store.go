// Package store defines the persisted entities of the match history and
// the key-addressable store they live in.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups addressing an entity that does not exist.
var ErrNotFound = errors.New("not found")

// Match is one game session, identified by its externally supplied label.
type Match struct {
	ID        uuid.UUID
	Label     string
	StartedAt time.Time  // zero while unknown
	EndedAt   *time.Time // nil while the match is open
}

// Player is a shared reference entity created lazily; name is the
// uniqueness key.
type Player struct {
	ID   uuid.UUID
	Name string
}

// Weapon is a shared reference entity created lazily; name is the
// uniqueness key.
type Weapon struct {
	ID   uuid.UUID
	Name string
}

// Kill is append-only. Both flags are fixed at ingestion time and never
// recomputed.
type Kill struct {
	ID             uuid.UUID
	MatchID        uuid.UUID
	KillerID       *uuid.UUID // nil encodes a world/environment kill
	VictimID       uuid.UUID
	WeaponID       uuid.UUID
	OccurredAt     time.Time
	IsWorld        bool
	IsFriendlyFire bool
}

// TeamAssignment maps a player to a team label within one match; the
// (match, player) pair is unique.
type TeamAssignment struct {
	ID       uuid.UUID
	MatchID  uuid.UUID
	PlayerID uuid.UUID
	Team     string
}

// KillView is a kill joined with the names ranking computation needs.
type KillView struct {
	Killer         string // empty for world kills
	Victim         string
	Weapon         string
	OccurredAt     time.Time
	IsWorld        bool
	IsFriendlyFire bool
}

// Store is the persistence collaborator of the ingestion and ranking
// engines.
//
// Create-if-absent by name is a read-then-write pair. Concurrent ingestion
// of the same name is only duplicate-free when the backing store enforces
// name uniqueness (the postgres implementation does) or writers are
// serialized externally.
type Store interface {
	MatchByLabel(ctx context.Context, label string) (*Match, error)
	CreateMatch(ctx context.Context, m *Match) error
	UpdateMatch(ctx context.Context, m *Match) error
	// ListMatches returns all matches ordered by start instant.
	ListMatches(ctx context.Context) ([]Match, error)

	PlayerByName(ctx context.Context, name string) (*Player, error)
	CreatePlayer(ctx context.Context, p *Player) error
	ListPlayers(ctx context.Context) ([]Player, error)

	WeaponByName(ctx context.Context, name string) (*Weapon, error)
	CreateWeapon(ctx context.Context, w *Weapon) error

	CreateKill(ctx context.Context, k *Kill) error
	// MatchKills returns the kills of one match ordered by occurrence
	// instant, insertion order breaking ties.
	MatchKills(ctx context.Context, matchID uuid.UUID) ([]KillView, error)
	// AllKills returns every kill system-wide in occurrence order.
	AllKills(ctx context.Context) ([]KillView, error)

	TeamFor(ctx context.Context, matchID, playerID uuid.UUID) (*TeamAssignment, error)
	UpsertTeam(ctx context.Context, ta *TeamAssignment) error
}
