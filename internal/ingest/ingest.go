// Package ingest folds classified log events into persisted match history.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fraglog/internal/logging"
	"fraglog/internal/logparse"
	"fraglog/internal/store"
)

// Ingestor consumes raw log documents and applies them to the store.
type Ingestor struct {
	store store.Store
}

// New creates an ingestor backed by the given store.
func New(st store.Store) *Ingestor {
	return &Ingestor{store: st}
}

// Ingest processes one document as an ordered sequence of lines. A single
// piece of transient context is threaded through the fold: the currently
// open match, established by a start event and cleared by an end event.
// Unrecognized lines and kills arriving without an open match are skipped,
// never reported as errors; only store failures abort the run.
func (in *Ingestor) Ingest(ctx context.Context, document string) error {
	logger := logging.Logger()

	var (
		current *store.Match
		kills   int
		dropped int
	)

	for _, raw := range strings.Split(document, "\n") {
		ev, ok := logparse.ParseLine(raw)
		if !ok {
			continue
		}

		switch ev.Type {
		case logparse.MatchStarted:
			match, err := in.openMatch(ctx, ev)
			if err != nil {
				return err
			}
			current = match

		case logparse.MatchEnded:
			if err := in.closeMatch(ctx, ev); err != nil {
				return err
			}
			current = nil

		case logparse.KillOccurred:
			if current == nil {
				dropped++
				continue
			}
			if err := in.recordKill(ctx, current, ev); err != nil {
				return err
			}
			kills++
		}
	}

	logger.Infof("ingested document: %d kills recorded, %d kills without open match dropped", kills, dropped)
	return nil
}

// openMatch resolves the match for a start event, creating it on first
// sight. An already-set start instant is never overwritten; the first one
// wins. The match becomes the open context regardless.
func (in *Ingestor) openMatch(ctx context.Context, ev logparse.Event) (*store.Match, error) {
	match, err := in.store.MatchByLabel(ctx, ev.MatchLabel)
	if errors.Is(err, store.ErrNotFound) {
		match = &store.Match{ID: uuid.New(), Label: ev.MatchLabel, StartedAt: ev.At}
		if err := in.store.CreateMatch(ctx, match); err != nil {
			return nil, fmt.Errorf("create match %q: %w", ev.MatchLabel, err)
		}
		return match, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match %q: %w", ev.MatchLabel, err)
	}

	if match.StartedAt.IsZero() && !ev.At.IsZero() {
		match.StartedAt = ev.At
		if err := in.store.UpdateMatch(ctx, match); err != nil {
			return nil, fmt.Errorf("backfill match start %q: %w", ev.MatchLabel, err)
		}
	}
	return match, nil
}

// closeMatch sets the end instant of the labeled match; the last end event
// wins. An end event for an unknown label is dropped silently.
func (in *Ingestor) closeMatch(ctx context.Context, ev logparse.Event) error {
	match, err := in.store.MatchByLabel(ctx, ev.MatchLabel)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find match %q: %w", ev.MatchLabel, err)
	}

	endedAt := ev.At
	match.EndedAt = &endedAt
	if err := in.store.UpdateMatch(ctx, match); err != nil {
		return fmt.Errorf("end match %q: %w", ev.MatchLabel, err)
	}
	return nil
}

func (in *Ingestor) recordKill(ctx context.Context, match *store.Match, ev logparse.Event) error {
	weapon, err := in.ensureWeapon(ctx, ev.Weapon)
	if err != nil {
		return err
	}
	victim, err := in.ensurePlayer(ctx, ev.Victim)
	if err != nil {
		return err
	}

	kill := &store.Kill{
		ID:         uuid.New(),
		MatchID:    match.ID,
		VictimID:   victim.ID,
		WeaponID:   weapon.ID,
		OccurredAt: ev.At,
		IsWorld:    ev.WorldKill,
	}

	if !ev.WorldKill {
		killer, err := in.ensurePlayer(ctx, ev.Killer)
		if err != nil {
			return err
		}
		kill.KillerID = &killer.ID

		ff, err := in.isFriendlyFire(ctx, match.ID, killer.ID, victim.ID)
		if err != nil {
			return err
		}
		kill.IsFriendlyFire = ff
	}

	if err := in.store.CreateKill(ctx, kill); err != nil {
		return fmt.Errorf("create kill: %w", err)
	}
	return nil
}

// isFriendlyFire reports whether killer and victim share a team assignment
// in this match, judged against whatever team data exists right now.
func (in *Ingestor) isFriendlyFire(ctx context.Context, matchID, killerID, victimID uuid.UUID) (bool, error) {
	killerTeam, err := in.store.TeamFor(ctx, matchID, killerID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("killer team: %w", err)
	}

	victimTeam, err := in.store.TeamFor(ctx, matchID, victimID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("victim team: %w", err)
	}

	return killerTeam.Team == victimTeam.Team, nil
}

func (in *Ingestor) ensurePlayer(ctx context.Context, name string) (*store.Player, error) {
	player, err := in.store.PlayerByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		player = &store.Player{ID: uuid.New(), Name: name}
		if err := in.store.CreatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("create player %q: %w", name, err)
		}
		return player, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player %q: %w", name, err)
	}
	return player, nil
}

func (in *Ingestor) ensureWeapon(ctx context.Context, name string) (*store.Weapon, error) {
	weapon, err := in.store.WeaponByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		weapon = &store.Weapon{ID: uuid.New(), Name: name}
		if err := in.store.CreateWeapon(ctx, weapon); err != nil {
			return nil, fmt.Errorf("create weapon %q: %w", name, err)
		}
		return weapon, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find weapon %q: %w", name, err)
	}
	return weapon, nil
}

// SetTeams upserts the player→team mapping for one match, creating players
// lazily. Returns store.ErrNotFound (wrapped) for an unknown label.
func (in *Ingestor) SetTeams(ctx context.Context, label string, teams map[string]string) error {
	match, err := in.store.MatchByLabel(ctx, label)
	if err != nil {
		return fmt.Errorf("find match %q: %w", label, err)
	}

	for name, team := range teams {
		player, err := in.ensurePlayer(ctx, name)
		if err != nil {
			return err
		}
		ta := &store.TeamAssignment{
			ID:       uuid.New(),
			MatchID:  match.ID,
			PlayerID: player.ID,
			Team:     team,
		}
		if err := in.store.UpsertTeam(ctx, ta); err != nil {
			return fmt.Errorf("assign %q to team %q: %w", name, team, err)
		}
	}
	return nil
}
