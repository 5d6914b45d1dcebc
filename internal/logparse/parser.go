// Package logparse turns free-text game-session log lines into typed events.
//
// Lines look like "23/04/2019 15:34:22 - New match 11348965 has started".
// Anything that matches no known payload template is noise, not an error;
// most content of a field log is noise.
package logparse

import (
	"regexp"
	"strings"
)

// separator divides the timestamp half of a line from its payload.
const separator = " - "

type parserType struct {
	rx   *regexp.Regexp
	kind EventType
}

var (
	rxMatchStart = regexp.MustCompile(`^New match (?P<label>\d+) has started$`)
	rxMatchEnd   = regexp.MustCompile(`^Match (?P<label>\d+) has ended$`)
	rxKillUsing  = regexp.MustCompile(`^(?P<killer>.+?) killed (?P<victim>.+?) using (?P<weapon>.+)$`)
	rxKillBy     = regexp.MustCompile(`^(?P<killer>.+?) killed (?P<victim>.+?) by (?P<weapon>.+)$`)

	// Ordered payload parsers, first match wins.
	rxParsers = []parserType{
		{rxMatchStart, MatchStarted},
		{rxMatchEnd, MatchEnded},
		{rxKillUsing, KillOccurred},
		{rxKillBy, KillOccurred},
	}
)

func reSubMatchMap(rx *regexp.Regexp, s string) (map[string]string, bool) {
	match := rx.FindStringSubmatch(s)
	if match == nil {
		return nil, false
	}
	values := make(map[string]string)
	for i, name := range rx.SubexpNames() {
		if i != 0 && name != "" {
			values[name] = match[i]
		}
	}
	return values, true
}

// ParseLine classifies one raw log line. ok is false for blank lines, lines
// without the timestamp separator and payloads matching no template. A
// failed timestamp parse alone does not reject the line; the event simply
// carries a zero instant.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if strings.TrimSpace(line) == "" {
		return Event{}, false
	}

	left, payload, found := strings.Cut(line, separator)
	if !found || left == "" || payload == "" {
		return Event{}, false
	}

	at := ParseTimestamp(left)

	for _, p := range rxParsers {
		values, ok := reSubMatchMap(p.rx, payload)
		if !ok {
			continue
		}

		switch p.kind {
		case MatchStarted, MatchEnded:
			return Event{Type: p.kind, At: at, MatchLabel: values["label"]}, true
		case KillOccurred:
			ev := Event{
				Type:   KillOccurred,
				At:     at,
				Victim: strings.TrimSpace(values["victim"]),
				Weapon: strings.TrimSpace(values["weapon"]),
			}
			if killer := strings.TrimSpace(values["killer"]); killer == WorldKiller {
				ev.WorldKill = true
			} else {
				ev.Killer = killer
			}
			return ev, true
		}
	}

	return Event{}, false
}
