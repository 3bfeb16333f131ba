package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/dright-spec/RightNFT123-sub006/internal/errors"
	"github.com/dright-spec/RightNFT123-sub006/users"
)

const (
	// sessionTokenBytes gives 64 hex characters per token.
	sessionTokenBytes = 32

	// DefaultIdleLimit is the maximum gap between validated uses of a
	// session before it expires.
	DefaultIdleLimit = 24 * time.Hour
	// DefaultMaxDuration is the maximum age of a session regardless of
	// activity.
	DefaultMaxDuration = 7 * 24 * time.Hour
	// DefaultSweepInterval is how often the background sweep evicts
	// expired sessions that are never looked up again.
	DefaultSweepInterval = time.Hour
)

// Store is the authoritative map from opaque token to session context.
// Every compound operation (check expiry, then delete or refresh) is applied
// atomically under a single lock, so concurrent lookups, creates, destroys
// and the background sweep never interleave destructively.
type Store struct {
	users   users.Store
	backend Backend

	idleLimit     time.Duration
	maxDuration   time.Duration
	sweepInterval time.Duration

	nowTime func() time.Time // nowTime function (injectable for testing)
	log     zerolog.Logger

	mu       sync.Mutex // serializes compound check-then-act operations
	stop     chan struct{}
	stopOnce sync.Once
	sweepWG  sync.WaitGroup
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithBackend substitutes the default in-memory backend.
func WithBackend(b Backend) StoreOption {
	return func(s *Store) {
		s.backend = b
	}
}

// WithIdleLimit overrides the idle expiry limit.
func WithIdleLimit(d time.Duration) StoreOption {
	return func(s *Store) {
		s.idleLimit = d
	}
}

// WithMaxDuration overrides the absolute session age limit.
func WithMaxDuration(d time.Duration) StoreOption {
	return func(s *Store) {
		s.maxDuration = d
	}
}

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		s.sweepInterval = d
	}
}

// WithLogger sets the component logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore initializes a Store bound to the given user store.
func NewStore(userStore users.Store, options ...StoreOption) (*Store, error) {
	if userStore == nil {
		return nil, errors.New("[NewStore] users store is required")
	}

	s := &Store{
		users:         userStore,
		backend:       NewInMemoryBackend(),
		idleLimit:     DefaultIdleLimit,
		maxDuration:   DefaultMaxDuration,
		sweepInterval: DefaultSweepInterval,
		nowTime:       time.Now,
		log:           zerolog.Nop(),
		stop:          make(chan struct{}),
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// CreateSession mints a fresh unguessable token and stores a session for the
// user under it. This is the only place tokens are minted. A failure to read
// random bytes aborts the operation; there is no weaker fallback source.
func (s *Store) CreateSession(userID int64, walletAddress, hederaAccountID string, walletType users.WalletType, reqCtx RequestContext) (string, error) {
	now := s.nowTime()

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.newUniqueToken()
	if err != nil {
		return "", err
	}

	s.backend.Put(token, Session{
		Token:           token,
		UserID:          userID,
		WalletAddress:   walletAddress,
		HederaAccountID: hederaAccountID,
		WalletType:      walletType,
		CreatedAt:       now,
		LastActivity:    now,
		IPAddress:       reqCtx.IPAddress,
		UserAgent:       reqCtx.UserAgent,
	})

	return token, nil
}

// newUniqueToken generates a token absent from the backend. Collisions on
// 256-bit tokens should never happen; regenerating rather than overwriting
// guarantees an existing session is never silently replaced. Callers hold mu.
func (s *Store) newUniqueToken() (string, error) {
	for {
		buf := make([]byte, sessionTokenBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "[CreateSession] rand.Read")
		}
		token := hex.EncodeToString(buf)
		if _, exists := s.backend.Get(token); !exists {
			return token, nil
		}
	}
}

// GetSession validates expiry, refreshes the session's last activity, and
// returns a copy. Expired, unknown, and malformed tokens all yield nil.
func (s *Store) GetSession(token string) *Session {
	return s.lookup(token)
}

// ValidateSession is the hot-path variant of GetSession. Both share the
// exact same expiry evaluation and refresh; there is no bypass.
func (s *Store) ValidateSession(token string) *Session {
	return s.lookup(token)
}

// lookup is the single expiry-evaluation path used by every read. It deletes
// the session when expired, otherwise refreshes LastActivity and returns a
// copy. The whole step is atomic with respect to other store operations.
func (s *Store) lookup(token string) *Session {
	if token == "" {
		return nil
	}
	now := s.nowTime()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.backend.Get(token)
	if !ok {
		return nil
	}
	if s.isExpired(sess, now) {
		s.backend.Delete(token)
		return nil
	}

	sess.LastActivity = now
	s.backend.Put(token, sess)

	result := sess
	return &result
}

// isExpired applies both limits. A session exactly at a boundary is still
// valid; strictly past it is not.
func (s *Store) isExpired(sess Session, now time.Time) bool {
	if now.Sub(sess.LastActivity) > s.idleLimit {
		return true
	}
	return now.Sub(sess.CreatedAt) > s.maxDuration
}

// GetUserFromSession resolves a token to a fresh user record. If the
// referenced user no longer exists the orphaned session is deleted and nil
// is returned; a session must never outlive its user. The returned user has
// its password hash stripped.
func (s *Store) GetUserFromSession(token string) *users.User {
	sess := s.lookup(token)
	if sess == nil {
		return nil
	}

	user, err := s.users.GetByID(sess.UserID)
	if err != nil {
		// Only a confirmed missing user orphans the session. A transient
		// store failure denies this lookup but keeps the session alive.
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.log.Debug().Int64("user_id", sess.UserID).Msg("deleting orphaned session")
			s.DestroySession(token)
		} else {
			s.log.Warn().Err(err).Int64("user_id", sess.UserID).Msg("user lookup failed")
		}
		return nil
	}

	return user.Sanitized()
}

// DestroySession removes a session. Idempotent: the return value reports
// whether a session was actually present.
func (s *Store) DestroySession(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.Delete(token)
}

// DestroyUserSessions removes every session belonging to a user and returns
// the count removed. Supports "log out everywhere" and account deletion.
func (s *Store) DestroyUserSessions(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, sess := range s.backend.Snapshot() {
		if sess.UserID == userID && s.backend.Delete(sess.Token) {
			removed++
		}
	}
	return removed
}

// Stats reports the live session count and the number of distinct users with
// at least one session. Read-only: activity timers are untouched.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{})
	for _, sess := range s.backend.Snapshot() {
		seen[sess.UserID] = struct{}{}
	}
	return Stats{
		TotalSessions: s.backend.Len(),
		ActiveUsers:   len(seen),
	}
}

// StartSweeping launches the background sweep, which evicts expired sessions
// on a fixed interval independent of request traffic. Call Close to stop it.
func (s *Store) StartSweeping() {
	s.sweepWG.Add(1)
	go func() {
		defer s.sweepWG.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Sweep removes every expired session and returns the count evicted.
func (s *Store) Sweep() int {
	now := s.nowTime()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, sess := range s.backend.Snapshot() {
		if s.isExpired(sess, now) && s.backend.Delete(sess.Token) {
			removed++
		}
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("remaining", s.backend.Len()).Msg("session sweep")
	}
	return removed
}

// Close stops the background sweep. Safe to call more than once.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.sweepWG.Wait()
}
