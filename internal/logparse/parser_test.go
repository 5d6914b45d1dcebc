package logparse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fraglog/internal/logparse"
)

func TestParseLineMatchStart(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:34:22 - New match 11348965 has started")
	require.True(t, ok)
	require.Equal(t, logparse.MatchStarted, ev.Type)
	require.Equal(t, "11348965", ev.MatchLabel)
	require.True(t, ev.At.Equal(time.Date(2019, 4, 23, 15, 34, 22, 0, time.Local)))
}

func TestParseLineMatchEnd(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:39:22 - Match 11348965 has ended")
	require.True(t, ok)
	require.Equal(t, logparse.MatchEnded, ev.Type)
	require.Equal(t, "11348965", ev.MatchLabel)
}

func TestParseLineKillUsing(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:36:04 - Roman killed Nick using M16")
	require.True(t, ok)
	require.Equal(t, logparse.KillOccurred, ev.Type)
	require.Equal(t, "Roman", ev.Killer)
	require.Equal(t, "Nick", ev.Victim)
	require.Equal(t, "M16", ev.Weapon)
	require.False(t, ev.WorldKill)
}

func TestParseLineWorldKill(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:36:33 - <WORLD> killed Nick by DROWN")
	require.True(t, ok)
	require.Equal(t, logparse.KillOccurred, ev.Type)
	require.True(t, ev.WorldKill)
	require.Empty(t, ev.Killer)
	require.Equal(t, "Nick", ev.Victim)
	require.Equal(t, "DROWN", ev.Weapon)
}

func TestParseLineInvalidTimestampStillMatches(t *testing.T) {
	// A broken timestamp half does not abort payload matching.
	ev, ok := logparse.ParseLine("garbage - Roman killed Nick using M16")
	require.True(t, ok)
	require.Equal(t, logparse.KillOccurred, ev.Type)
	require.True(t, ev.At.IsZero())
}

func TestParseLineNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"--------------------------",
		"23/04/2019 15:34:22",
		"23/04/2019 15:34:22 - ",
		"23/04/2019 15:34:22 - player Roman joined the server",
		"23/04/2019 15:34:22 - new match 1 has started", // keywords are case-sensitive
	} {
		_, ok := logparse.ParseLine(line)
		require.False(t, ok, "line %q", line)
	}
}

func TestParseLineTrimsNames(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:36:04 - Roman killed  Nick  using M16")
	require.True(t, ok)
	require.Equal(t, "Roman", ev.Killer)
	require.Equal(t, "Nick", ev.Victim)
}

func TestParseLineCRLF(t *testing.T) {
	ev, ok := logparse.ParseLine("23/04/2019 15:34:22 - New match 42 has started\r\n")
	require.True(t, ok)
	require.Equal(t, "42", ev.MatchLabel)
}
