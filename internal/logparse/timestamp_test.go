package logparse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fraglog/internal/logparse"
)

func TestParseTimestampRoundTrip(t *testing.T) {
	testCases := []struct {
		token string
		want  time.Time
	}{
		{"23/04/2019 15:34:22", time.Date(2019, 4, 23, 15, 34, 22, 0, time.Local)},
		{"1/1/2020 0:00:00", time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local)},
		{"5/12/2021 9:07:59", time.Date(2021, 12, 5, 9, 7, 59, 0, time.Local)},
	}

	for _, tc := range testCases {
		got := logparse.ParseTimestamp(tc.token)
		require.True(t, got.Equal(tc.want), "token %q parsed to %v", tc.token, got)
	}
}

func TestParseTimestampRollover(t *testing.T) {
	// Out-of-range components normalize instead of failing.
	got := logparse.ParseTimestamp("32/01/2020 10:00:00")
	require.True(t, got.Equal(time.Date(2020, 2, 1, 10, 0, 0, 0, time.Local)))
}

func TestParseTimestampMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"23/04/2019",
		"15:34:22",
		"23/04/2019 15:34",
		"23/04 15:34:22",
		"23/04/2019 15:34:22:01",
		"aa/04/2019 15:34:22",
		"23/04/2019 15:xx:22",
		"23/04/2019  15:34:22",
	} {
		require.True(t, logparse.ParseTimestamp(token).IsZero(), "token %q", token)
	}
}
