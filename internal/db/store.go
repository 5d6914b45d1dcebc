package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fraglog/internal/store"
)

// Store implements store.Store on a pgx connection pool. Zero instants are
// persisted as NULL and read back as zero.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a postgres-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (s *Store) MatchByLabel(ctx context.Context, label string) (*store.Match, error) {
	var (
		m       store.Match
		started *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, label, started_at, ended_at
		FROM matches
		WHERE label = $1
	`, label).Scan(&m.ID, &m.Label, &started, &m.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("match by label: %w", err)
	}
	m.StartedAt = timeOrZero(started)
	return &m, nil
}

func (s *Store) CreateMatch(ctx context.Context, m *store.Match) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO matches (id, label, started_at, ended_at)
		VALUES ($1, $2, $3, $4)
	`, m.ID, m.Label, nullableTime(m.StartedAt), m.EndedAt)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (s *Store) UpdateMatch(ctx context.Context, m *store.Match) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE matches SET started_at = $2, ended_at = $3
		WHERE id = $1
	`, m.ID, nullableTime(m.StartedAt), m.EndedAt)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListMatches(ctx context.Context) ([]store.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, label, started_at, ended_at
		FROM matches
		ORDER BY started_at NULLS FIRST, label
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []store.Match
	for rows.Next() {
		var (
			m       store.Match
			started *time.Time
		)
		if err := rows.Scan(&m.ID, &m.Label, &started, &m.EndedAt); err != nil {
			return nil, err
		}
		m.StartedAt = timeOrZero(started)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) PlayerByName(ctx context.Context, name string) (*store.Player, error) {
	var p store.Player
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM players WHERE name = $1`, name).
		Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("player by name: %w", err)
	}
	return &p, nil
}

// CreatePlayer inserts the player, deferring to an existing row when the
// name is already taken; p.ID is rewritten to the winning row's ID so a
// lost upsert race still resolves to one entity.
func (s *Store) CreatePlayer(ctx context.Context, p *store.Player) error {
	err := s.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO players (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM players WHERE name = $2
		LIMIT 1
	`, p.ID, p.Name).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]store.Player, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []store.Player
	for rows.Next() {
		var p store.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) WeaponByName(ctx context.Context, name string) (*store.Weapon, error) {
	var w store.Weapon
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM weapons WHERE name = $1`, name).
		Scan(&w.ID, &w.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("weapon by name: %w", err)
	}
	return &w, nil
}

// CreateWeapon mirrors CreatePlayer's race handling.
func (s *Store) CreateWeapon(ctx context.Context, w *store.Weapon) error {
	err := s.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO weapons (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM weapons WHERE name = $2
		LIMIT 1
	`, w.ID, w.Name).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("create weapon: %w", err)
	}
	return nil
}

func (s *Store) CreateKill(ctx context.Context, k *store.Kill) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kills (id, match_id, killer_id, victim_id, weapon_id, occurred_at, is_world, is_friendly_fire)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, k.ID, k.MatchID, k.KillerID, k.VictimID, k.WeaponID, nullableTime(k.OccurredAt), k.IsWorld, k.IsFriendlyFire)
	if err != nil {
		return fmt.Errorf("create kill: %w", err)
	}
	return nil
}

const killViewSelect = `
	SELECT COALESCE(kp.name, ''), vp.name, w.name, k.occurred_at, k.is_world, k.is_friendly_fire
	FROM kills k
	LEFT JOIN players kp ON kp.id = k.killer_id
	JOIN players vp ON vp.id = k.victim_id
	JOIN weapons w ON w.id = k.weapon_id
`

func (s *Store) MatchKills(ctx context.Context, matchID uuid.UUID) ([]store.KillView, error) {
	rows, err := s.pool.Query(ctx, killViewSelect+`
		WHERE k.match_id = $1
		ORDER BY k.occurred_at NULLS FIRST, k.seq
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("match kills: %w", err)
	}
	defer rows.Close()
	return scanKillViews(rows)
}

func (s *Store) AllKills(ctx context.Context) ([]store.KillView, error) {
	rows, err := s.pool.Query(ctx, killViewSelect+`
		ORDER BY k.occurred_at NULLS FIRST, k.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("all kills: %w", err)
	}
	defer rows.Close()
	return scanKillViews(rows)
}

func scanKillViews(rows pgx.Rows) ([]store.KillView, error) {
	var views []store.KillView
	for rows.Next() {
		var (
			v        store.KillView
			occurred *time.Time
		)
		if err := rows.Scan(&v.Killer, &v.Victim, &v.Weapon, &occurred, &v.IsWorld, &v.IsFriendlyFire); err != nil {
			return nil, err
		}
		v.OccurredAt = timeOrZero(occurred)
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *Store) TeamFor(ctx context.Context, matchID, playerID uuid.UUID) (*store.TeamAssignment, error) {
	var ta store.TeamAssignment
	err := s.pool.QueryRow(ctx, `
		SELECT id, match_id, player_id, team
		FROM team_assignments
		WHERE match_id = $1 AND player_id = $2
	`, matchID, playerID).Scan(&ta.ID, &ta.MatchID, &ta.PlayerID, &ta.Team)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team for: %w", err)
	}
	return &ta, nil
}

func (s *Store) UpsertTeam(ctx context.Context, ta *store.TeamAssignment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO team_assignments (id, match_id, player_id, team)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, player_id) DO UPDATE SET team = EXCLUDED.team
	`, ta.ID, ta.MatchID, ta.PlayerID, ta.Team)
	if err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}
	return nil
}
