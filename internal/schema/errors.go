package schema

// Kind is the machine-readable classification of a patch engine outcome.
type Kind string

const (
	// KindNeedsClarification covers ambiguous, disallowed, or structurally
	// invalid instructions and patches, including read-only violations.
	KindNeedsClarification Kind = "needs_clarification"

	// KindNoChanges marks a well-formed, allowed patch that effects
	// nothing after clamping. It is a benign outcome, not a failure.
	KindNoChanges Kind = "no_changes"
)

// Error is a patch engine verdict carried as data. Nothing in this
// package panics; callers branch on Kind.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

func needsClarification(msg string) *Error {
	return &Error{Kind: KindNeedsClarification, Message: msg}
}

func noChanges() *Error {
	return &Error{Kind: KindNoChanges, Message: "No valid edits detected."}
}
