package users

// Store is the persistence boundary for user accounts. The session and
// credential core only ever reads and updates users through this interface;
// the backing implementation (SQL, in-memory) lives elsewhere. Lookups
// report a missing record with internal/errors.ErrUserNotFound so callers
// can tell a gone user apart from a failing store.
type Store interface {
	Create(user *User) error
	Update(user *User) error
	Delete(id int64) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByWalletAddress(address string) (*User, error)
	GetByVerificationToken(token string) (*User, error)
}
