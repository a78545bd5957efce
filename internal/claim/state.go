package claim

// State tracks a claim attempt through its lifecycle. A claim starts as
// Requested and either advances Requested -> Authorized -> Resolved ->
// Committed or terminates as Rejected. Rejected and Committed are terminal;
// a rejected claim is never retried and requires a fresh attempt.
type State int

const (
	// StateRequested is the initial state of every claim attempt.
	StateRequested State = iota
	// StateAuthorized indicates the actor passed the hosting authority check.
	StateAuthorized
	// StateResolved indicates the canonical instant was computed and the
	// session row located or created.
	StateResolved
	// StateCommitted indicates ownership was persisted on the session row.
	StateCommitted
	// StateRejected indicates the claim failed authorization or reconciliation.
	StateRejected
)

// String returns the lowercase state label used in logs.
func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateAuthorized:
		return "authorized"
	case StateResolved:
		return "resolved"
	case StateCommitted:
		return "committed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the claim attempt.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRejected
}
