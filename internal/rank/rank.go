// Package rank computes per-match and global player rankings on demand
// from stored kill history. Nothing here is persisted; every query folds
// the kill records again.
package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fraglog/internal/store"
)

// Awards.
const (
	NoDeathAward     = "NoDeathAward"
	SpeedKillerAward = "SpeedKillerAward"
)

// Speed-killer window: at least speedKillCount kills inside any
// speedKillWindow span, inclusive.
const (
	speedKillWindow = 60 * time.Second
	speedKillCount  = 5
)

// Entry is one row of a per-match ranking. FavoriteWeapon is only ever set
// on the top-ranked player.
type Entry struct {
	Position       int      `json:"position"`
	Player         string   `json:"player"`
	Frags          int      `json:"frags"`
	Deaths         int      `json:"deaths"`
	Score          int      `json:"score"`
	Streak         int      `json:"streak"`
	FavoriteWeapon *string  `json:"favoriteWeapon"`
	Awards         []string `json:"awards"`
}

// MatchInfo is the match header returned alongside its ranking.
type MatchInfo struct {
	Label     string     `json:"label"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
}

// MatchRanking is the full ranking of one match.
type MatchRanking struct {
	Match   MatchInfo `json:"match"`
	Ranking []Entry   `json:"ranking"`
}

// Service answers ranking queries against a store.
type Service struct {
	store store.Store
}

// NewService creates a ranking service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// MatchRanking ranks the players of one match. Returns store.ErrNotFound
// (wrapped) for an unknown label.
func (s *Service) MatchRanking(ctx context.Context, label string) (*MatchRanking, error) {
	match, err := s.store.MatchByLabel(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("find match %q: %w", label, err)
	}

	kills, err := s.store.MatchKills(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("match kills %q: %w", label, err)
	}

	return &MatchRanking{
		Match: MatchInfo{
			Label:     match.Label,
			StartedAt: match.StartedAt,
			EndedAt:   match.EndedAt,
		},
		Ranking: rankKills(kills),
	}, nil
}

type tally struct {
	frags     int
	deaths    int
	ffPenalty int
	killTimes []time.Time
	byWeapon  map[string]int
}

// rankKills computes the ordered standings for one chronological kill
// sequence.
func rankKills(kills []store.KillView) []Entry {
	tallies := make(map[string]*tally)
	ensure := func(name string) *tally {
		t, ok := tallies[name]
		if !ok {
			t = &tally{byWeapon: make(map[string]int)}
			tallies[name] = t
		}
		return t
	}

	for _, k := range kills {
		ensure(k.Victim).deaths++

		if k.IsWorld || k.Killer == "" {
			continue
		}
		killer := ensure(k.Killer)
		killer.frags++
		killer.killTimes = append(killer.killTimes, k.OccurredAt)
		killer.byWeapon[k.Weapon]++
		if k.IsFriendlyFire {
			killer.ffPenalty++
		}
	}

	entries := make([]Entry, 0, len(tallies))
	for name, t := range tallies {
		entry := Entry{
			Player: name,
			Frags:  t.frags,
			Deaths: t.deaths,
			Score:  t.frags - t.ffPenalty,
			Streak: computeStreak(kills, name),
			Awards: []string{},
		}
		if hasSpeedKillWindow(t.killTimes) {
			entry.Awards = append(entry.Awards, SpeedKillerAward)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Frags != b.Frags {
			return a.Frags > b.Frags
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Player < b.Player
	})

	for i := range entries {
		entries[i].Position = i + 1
	}

	// Winner-only attributes: favorite weapon and the no-death award.
	if len(entries) > 0 {
		winner := &entries[0]
		winner.FavoriteWeapon = favoriteWeapon(tallies[winner.Player].byWeapon)
		if winner.Deaths == 0 {
			winner.Awards = append([]string{NoDeathAward}, winner.Awards...)
		}
	}

	return entries
}

// computeStreak returns the longest run of kills by the named player before
// their next death, walking the chronological kill sequence. Any death
// resets the counter, world kills included.
func computeStreak(kills []store.KillView, name string) int {
	best, run := 0, 0
	for _, k := range kills {
		if !k.IsWorld && k.Killer == name {
			run++
			if run > best {
				best = run
			}
		}
		if k.Victim == name {
			run = 0
		}
	}
	return best
}

// hasSpeedKillWindow reports whether any speedKillWindow span holds at
// least speedKillCount of the given kill instants. Two-pointer scan over
// the sorted instants.
func hasSpeedKillWindow(times []time.Time) bool {
	if len(times) < speedKillCount {
		return false
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	lo := 0
	for hi := range sorted {
		for sorted[hi].Sub(sorted[lo]) > speedKillWindow {
			lo++
		}
		if hi-lo+1 >= speedKillCount {
			return true
		}
	}
	return false
}

// favoriteWeapon picks the weapon with the most kills; ties break by
// weapon name ascending. Nil when the player landed no kills.
func favoriteWeapon(byWeapon map[string]int) *string {
	var (
		best  string
		count int
	)
	for name, kills := range byWeapon {
		if kills > count || (kills == count && count > 0 && name < best) {
			best, count = name, kills
		}
	}
	if count == 0 {
		return nil
	}
	return &best
}
