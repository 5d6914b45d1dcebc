package db

import (
	"context"
	"fmt"
)

// schema creates the match history tables. Name uniqueness on players and
// weapons backs the create-if-absent contract under concurrent ingestion;
// kills.seq gives a stable tie order for kills sharing an instant.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id         UUID PRIMARY KEY,
		label      TEXT NOT NULL UNIQUE,
		started_at TIMESTAMP,
		ended_at   TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id   UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS weapons (
		id   UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS kills (
		id               UUID PRIMARY KEY,
		seq              BIGSERIAL,
		match_id         UUID NOT NULL REFERENCES matches (id),
		killer_id        UUID REFERENCES players (id),
		victim_id        UUID NOT NULL REFERENCES players (id),
		weapon_id        UUID NOT NULL REFERENCES weapons (id),
		occurred_at      TIMESTAMP,
		is_world         BOOLEAN NOT NULL DEFAULT FALSE,
		is_friendly_fire BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS kills_match_idx ON kills (match_id, occurred_at, seq)`,
	`CREATE TABLE IF NOT EXISTS team_assignments (
		id        UUID PRIMARY KEY,
		match_id  UUID NOT NULL REFERENCES matches (id),
		player_id UUID NOT NULL REFERENCES players (id),
		team      TEXT NOT NULL,
		UNIQUE (match_id, player_id)
	)`,
}

// EnsureSchema creates any missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
