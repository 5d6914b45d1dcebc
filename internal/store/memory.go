package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type teamKey struct {
	matchID  uuid.UUID
	playerID uuid.UUID
}

// Memory is an in-process Store used by tests and local development. A
// single mutex serializes every operation, which also makes the
// create-if-absent pairs race-free.
type Memory struct {
	mu           sync.Mutex
	matchesByID  map[uuid.UUID]*Match
	matchByLabel map[string]uuid.UUID
	playersByID  map[uuid.UUID]*Player
	playerByName map[string]uuid.UUID
	weaponsByID  map[uuid.UUID]*Weapon
	weaponByName map[string]uuid.UUID
	kills        []Kill
	teams        map[teamKey]*TeamAssignment
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		matchesByID:  make(map[uuid.UUID]*Match),
		matchByLabel: make(map[string]uuid.UUID),
		playersByID:  make(map[uuid.UUID]*Player),
		playerByName: make(map[string]uuid.UUID),
		weaponsByID:  make(map[uuid.UUID]*Weapon),
		weaponByName: make(map[string]uuid.UUID),
		teams:        make(map[teamKey]*TeamAssignment),
	}
}

func (m *Memory) MatchByLabel(_ context.Context, label string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.matchByLabel[label]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.matchesByID[id]
	return &cp, nil
}

func (m *Memory) CreateMatch(_ context.Context, match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *match
	m.matchesByID[cp.ID] = &cp
	m.matchByLabel[cp.Label] = cp.ID
	return nil
}

func (m *Memory) UpdateMatch(_ context.Context, match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matchesByID[match.ID]; !ok {
		return ErrNotFound
	}
	cp := *match
	m.matchesByID[cp.ID] = &cp
	m.matchByLabel[cp.Label] = cp.ID
	return nil
}

func (m *Memory) ListMatches(_ context.Context) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches := make([]Match, 0, len(m.matchesByID))
	for _, match := range m.matchesByID {
		matches = append(matches, *match)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartedAt.Before(matches[j].StartedAt)
	})
	return matches, nil
}

func (m *Memory) PlayerByName(_ context.Context, name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.playerByName[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.playersByID[id]
	return &cp, nil
}

func (m *Memory) CreatePlayer(_ context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.playerByName[p.Name]; ok {
		p.ID = id
		return nil
	}
	cp := *p
	m.playersByID[cp.ID] = &cp
	m.playerByName[cp.Name] = cp.ID
	return nil
}

func (m *Memory) ListPlayers(_ context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players := make([]Player, 0, len(m.playersByID))
	for _, p := range m.playersByID {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}

func (m *Memory) WeaponByName(_ context.Context, name string) (*Weapon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.weaponByName[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.weaponsByID[id]
	return &cp, nil
}

func (m *Memory) CreateWeapon(_ context.Context, w *Weapon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.weaponByName[w.Name]; ok {
		w.ID = id
		return nil
	}
	cp := *w
	m.weaponsByID[cp.ID] = &cp
	m.weaponByName[cp.Name] = cp.ID
	return nil
}

func (m *Memory) CreateKill(_ context.Context, k *Kill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kills = append(m.kills, *k)
	return nil
}

func (m *Memory) MatchKills(_ context.Context, matchID uuid.UUID) ([]KillView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []KillView
	for _, k := range m.kills {
		if k.MatchID == matchID {
			views = append(views, m.view(k))
		}
	}
	sortKillViews(views)
	return views, nil
}

func (m *Memory) AllKills(_ context.Context) ([]KillView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]KillView, 0, len(m.kills))
	for _, k := range m.kills {
		views = append(views, m.view(k))
	}
	sortKillViews(views)
	return views, nil
}

func (m *Memory) TeamFor(_ context.Context, matchID, playerID uuid.UUID) (*TeamAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ta, ok := m.teams[teamKey{matchID, playerID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ta
	return &cp, nil
}

func (m *Memory) UpsertTeam(_ context.Context, ta *TeamAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := teamKey{ta.MatchID, ta.PlayerID}
	if existing, ok := m.teams[key]; ok {
		existing.Team = ta.Team
		ta.ID = existing.ID
		return nil
	}
	cp := *ta
	m.teams[key] = &cp
	return nil
}

func (m *Memory) view(k Kill) KillView {
	v := KillView{
		Victim:         m.playersByID[k.VictimID].Name,
		Weapon:         m.weaponsByID[k.WeaponID].Name,
		OccurredAt:     k.OccurredAt,
		IsWorld:        k.IsWorld,
		IsFriendlyFire: k.IsFriendlyFire,
	}
	if k.KillerID != nil {
		v.Killer = m.playersByID[*k.KillerID].Name
	}
	return v
}

// sortKillViews orders by occurrence instant; the stable sort preserves
// insertion order between equal instants.
func sortKillViews(views []KillView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].OccurredAt.Before(views[j].OccurredAt)
	})
}
