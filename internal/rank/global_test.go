package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"fraglog/internal/ingest"
	"fraglog/internal/store"
)

func TestGlobalRankingEmptyStore(t *testing.T) {
	svc := NewService(store.NewMemory())

	entries, err := svc.GlobalRanking(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGlobalRankingAcrossMatches(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	in := ingest.New(mem)

	doc := `23/04/2019 15:34:22 - New match 1 has started
23/04/2019 15:36:04 - Roman killed Nick using M16
23/04/2019 15:36:33 - <WORLD> killed Nick by DROWN
23/04/2019 15:39:22 - Match 1 has ended
23/04/2019 16:00:00 - New match 2 has started
23/04/2019 16:01:00 - Nick killed Roman using AK47
23/04/2019 16:02:00 - Roman killed Nick using M16
23/04/2019 16:05:00 - Match 2 has ended`
	require.NoError(t, in.Ingest(ctx, doc))

	entries, err := NewService(mem).GlobalRanking(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, 1, entries[0].Position)
	require.Equal(t, "Roman", entries[0].Player)
	require.Equal(t, 2, entries[0].Frags)
	require.Equal(t, 1, entries[0].Deaths)
	require.Equal(t, 2, entries[0].Score)

	require.Equal(t, 2, entries[1].Position)
	require.Equal(t, "Nick", entries[1].Player)
	require.Equal(t, 1, entries[1].Frags)
	require.Equal(t, 3, entries[1].Deaths)
}

func TestGlobalRankingIncludesInactivePlayers(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	in := ingest.New(mem)

	require.NoError(t, in.Ingest(ctx, "23/04/2019 15:34:22 - New match 1 has started"))
	// Players created only through team assignment still rank, with zeroes.
	require.NoError(t, in.SetTeams(ctx, "1", map[string]string{"Ghost": "T1"}))

	entries, err := NewService(mem).GlobalRanking(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Ghost", entries[0].Player)
	require.Equal(t, 0, entries[0].Frags)
}

func TestMatchRankingUnknownLabel(t *testing.T) {
	svc := NewService(store.NewMemory())

	_, err := svc.MatchRanking(context.Background(), "unknown-label")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMatchRankingCarriesMatchHeader(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	in := ingest.New(mem)

	doc := `23/04/2019 15:34:22 - New match 42 has started
23/04/2019 15:36:04 - Roman killed Nick using M16
23/04/2019 15:39:22 - Match 42 has ended`
	require.NoError(t, in.Ingest(ctx, doc))

	ranking, err := NewService(mem).MatchRanking(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "42", ranking.Match.Label)
	require.False(t, ranking.Match.StartedAt.IsZero())
	require.NotNil(t, ranking.Match.EndedAt)
	require.Len(t, ranking.Ranking, 2)
}
