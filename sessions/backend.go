package sessions

// Backend abstracts raw session storage so sessions can be kept in-memory
// (default) or in persistent backing storage. Implementations must be safe
// for concurrent use on their own; the Store additionally serializes its
// compound check-then-act operations, so backends only need per-call
// atomicity.
type Backend interface {
	// Put creates or replaces the session stored under token.
	Put(token string, sess Session)
	// Get retrieves the session stored under token.
	Get(token string) (Session, bool)
	// Delete removes the session and reports whether one was present.
	Delete(token string) bool
	// Snapshot returns a copy of every stored session.
	Snapshot() []Session
	// Len returns the number of stored sessions.
	Len() int
}
