package rank

import (
	"context"
	"fmt"
	"sort"
)

// GlobalEntry is one row of the overall leaderboard. No streaks, awards or
// favorite weapon at this level.
type GlobalEntry struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
	Frags    int    `json:"frags"`
	Deaths   int    `json:"deaths"`
	Score    int    `json:"score"`
}

// GlobalRanking ranks every known player over the kill history of all
// matches. Players with no recorded activity still appear with zeroes.
func (s *Service) GlobalRanking(ctx context.Context) ([]GlobalEntry, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	kills, err := s.store.AllKills(ctx)
	if err != nil {
		return nil, fmt.Errorf("all kills: %w", err)
	}

	byName := make(map[string]*GlobalEntry, len(players))
	entries := make([]GlobalEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, GlobalEntry{Player: p.Name})
	}
	for i := range entries {
		byName[entries[i].Player] = &entries[i]
	}

	for _, k := range kills {
		if v, ok := byName[k.Victim]; ok {
			v.Deaths++
		}
		if k.IsWorld || k.Killer == "" {
			continue
		}
		killer, ok := byName[k.Killer]
		if !ok {
			continue
		}
		killer.Frags++
		killer.Score++
		if k.IsFriendlyFire {
			killer.Score--
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Frags != b.Frags {
			return a.Frags > b.Frags
		}
		return a.Player < b.Player
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}
