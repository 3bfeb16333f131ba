package sessions

import (
	"time"

	"github.com/dright-spec/RightNFT123-sub006/users"
)

// Session is the server-side state for one logged-in client. It references
// its user by ID only; the user record itself stays in the users.Store and
// is re-fetched fresh on every authenticated lookup.
type Session struct {
	Token  string // Opaque random token, also the storage key
	UserID int64  // Owning user

	// Identity context the session was created under
	WalletAddress   string
	HederaAccountID string
	WalletType      users.WalletType

	CreatedAt    time.Time // When the session was minted
	LastActivity time.Time // Updated on every validated lookup

	// Provenance, write-once at creation
	IPAddress string
	UserAgent string
}

// RequestContext carries the provenance metadata recorded on a new session.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// Stats is a read-only snapshot of the store. Taking it never refreshes
// activity timers.
type Stats struct {
	TotalSessions int `json:"total_sessions"`
	ActiveUsers   int `json:"active_users"`
}
