// Package session holds per-connection session state and a value type for
// describing session changes. No package produces Effect values: the router
// applies SESSION statements to the Session fields directly.
package session

import "time"

// Session is mutated only by the surrounding driver layer, never by the
// executor.
type Session struct {
	ID            string
	CurrentGraph  string
	CurrentSchema string
	TimeZone      string
	CurrentTxn    string
}

// EffectKind discriminates the session-effect variants.
type EffectKind int

const (
	SetGraph EffectKind = iota
	SetSchema
	SetTimeZone
	Reset
	Close
)

// Effect is a value-level description of a session change. Nothing in this
// module creates or applies one.
type Effect struct {
	Kind      EffectKind
	Value     string
	AppliedAt time.Time
}
