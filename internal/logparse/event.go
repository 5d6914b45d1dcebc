package logparse

import "time"

// EventType identifies the kind of domain event recognized on a log line.
type EventType int

const (
	MatchStarted EventType = iota
	MatchEnded
	KillOccurred
)

// WorldKiller is the killer literal for environmental deaths.
const WorldKiller = "<WORLD>"

// Event is one classified log line.
type Event struct {
	Type       EventType
	At         time.Time // zero when the timestamp half failed to parse
	MatchLabel string    // set for match start/end events
	Killer     string    // empty for world kills
	Victim     string
	Weapon     string
	WorldKill  bool
}
