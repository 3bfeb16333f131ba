package sessions_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dright-spec/RightNFT123-sub006/sessions"
	"github.com/dright-spec/RightNFT123-sub006/users"
	fakeuserrepo "github.com/dright-spec/RightNFT123-sub006/users/repofake"
)

const (
	testWalletAddress = "0x00000000000000000000000000000000000a1b2c"
	testHederaAccount = "0.0.12345"
)

// fakeClock is a settable clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type storeFixture struct {
	userStore *fakeuserrepo.FakeUserRepo
	backend   *sessions.InMemoryBackend
	store     *sessions.Store
	clock     *fakeClock
	user      *users.User
}

func setupStoreFixture(t *testing.T, options ...sessions.StoreOption) *storeFixture {
	t.Helper()

	clock := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	userStore := fakeuserrepo.NewFakeUserRepo()
	backend := sessions.NewInMemoryBackend()

	opts := append([]sessions.StoreOption{
		sessions.WithNowTime(clock.Now),
		sessions.WithBackend(backend),
	}, options...)

	store, err := sessions.NewStore(userStore, opts...)
	require.NoError(t, err)

	user := &users.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, userStore.Create(user))

	return &storeFixture{
		userStore: userStore,
		backend:   backend,
		store:     store,
		clock:     clock,
		user:      user,
	}
}

func (f *storeFixture) createSession(t *testing.T) string {
	t.Helper()

	token, err := f.store.CreateSession(f.user.ID, testWalletAddress, testHederaAccount, users.WalletHashPack, sessions.RequestContext{
		IPAddress: "203.0.113.7",
		UserAgent: "marketplace-test",
	})
	require.NoError(t, err)
	return token
}

func TestNewStoreRequiresUserStore(t *testing.T) {
	_, err := sessions.NewStore(nil)
	require.Error(t, err)
}

func TestCreateSessionRoundTrip(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	require.Len(t, token, 64)

	user := f.store.GetUserFromSession(token)
	require.NotNil(t, user)
	require.Equal(t, f.user.ID, user.ID)
	require.Empty(t, user.PasswordHash)
}

func TestGetSessionRecordsMetadata(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	sess := f.store.GetSession(token)
	require.NotNil(t, sess)
	require.Equal(t, token, sess.Token)
	require.Equal(t, f.user.ID, sess.UserID)
	require.Equal(t, testWalletAddress, sess.WalletAddress)
	require.Equal(t, testHederaAccount, sess.HederaAccountID)
	require.Equal(t, users.WalletHashPack, sess.WalletType)
	require.Equal(t, "203.0.113.7", sess.IPAddress)
	require.Equal(t, "marketplace-test", sess.UserAgent)
	require.False(t, sess.LastActivity.Before(sess.CreatedAt))
}

func TestUnknownAndMalformedTokensRejected(t *testing.T) {
	f := setupStoreFixture(t)

	require.Nil(t, f.store.GetSession(""))
	require.Nil(t, f.store.GetSession("not-a-token"))
	require.Nil(t, f.store.ValidateSession("deadbeef"))
	require.Nil(t, f.store.GetUserFromSession("deadbeef"))
}

func TestDestroySessionIdempotent(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	require.True(t, f.store.DestroySession(token))
	require.False(t, f.store.DestroySession(token))
	require.Nil(t, f.store.GetSession(token))
}

func TestIdleExpiryBoundary(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	// Exactly at the idle limit the session is still valid.
	f.clock.Advance(sessions.DefaultIdleLimit)
	require.NotNil(t, f.store.ValidateSession(token))

	// The lookup above refreshed activity, so another full idle window
	// plus a microsecond pushes strictly past the boundary.
	f.clock.Advance(sessions.DefaultIdleLimit + time.Microsecond)
	require.Nil(t, f.store.ValidateSession(token))

	// Expired lookup deletes, not just rejects.
	_, present := f.backend.Get(token)
	require.False(t, present)
}

func TestAbsoluteExpiry(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	// Keep the session active so the idle limit never trips, then cross
	// the absolute age limit.
	step := 12 * time.Hour
	for elapsed := time.Duration(0); elapsed+step <= sessions.DefaultMaxDuration; elapsed += step {
		f.clock.Advance(step)
		require.NotNil(t, f.store.GetSession(token), "session should survive while under the absolute limit")
	}

	f.clock.Advance(step)
	require.Nil(t, f.store.GetSession(token))
}

func TestGetAndValidateShareExpiryPolicy(t *testing.T) {
	f := setupStoreFixture(t)

	tokenA := f.createSession(t)
	tokenB := f.createSession(t)

	f.clock.Advance(sessions.DefaultIdleLimit + time.Second)

	require.Nil(t, f.store.GetSession(tokenA))
	require.Nil(t, f.store.ValidateSession(tokenB))
}

func TestOrphanedSessionCleanup(t *testing.T) {
	f := setupStoreFixture(t)
	token := f.createSession(t)

	require.NoError(t, f.userStore.Delete(f.user.ID))

	require.Nil(t, f.store.GetUserFromSession(token))

	// The orphaned session was removed, not merely rejected.
	_, present := f.backend.Get(token)
	require.False(t, present)
}

// faultyUserStore fails GetByID on demand to simulate a backing store
// outage while the wrapped repo keeps its data.
type faultyUserStore struct {
	users.Store
	mu   sync.Mutex
	fail bool
}

func (s *faultyUserStore) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *faultyUserStore) GetByID(id int64) (*users.User, error) {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return nil, errors.New("user store unavailable")
	}
	return s.Store.GetByID(id)
}

func TestTransientUserLookupFailureKeepsSession(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	inner := fakeuserrepo.NewFakeUserRepo()
	faulty := &faultyUserStore{Store: inner}
	backend := sessions.NewInMemoryBackend()

	store, err := sessions.NewStore(faulty,
		sessions.WithNowTime(clock.Now),
		sessions.WithBackend(backend),
	)
	require.NoError(t, err)

	user := &users.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, inner.Create(user))

	token, err := store.CreateSession(user.ID, "", "", users.WalletNone, sessions.RequestContext{})
	require.NoError(t, err)

	// During the outage the lookup is denied but the session survives.
	faulty.setFail(true)
	require.Nil(t, store.GetUserFromSession(token))
	_, present := backend.Get(token)
	require.True(t, present)

	// Once the store recovers the same token works again.
	faulty.setFail(false)
	got := store.GetUserFromSession(token)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
}

func TestDestroyUserSessions(t *testing.T) {
	f := setupStoreFixture(t)

	other := &users.User{Username: "bob"}
	require.NoError(t, f.userStore.Create(other))

	t1 := f.createSession(t)
	t2 := f.createSession(t)
	otherToken, err := f.store.CreateSession(other.ID, "", "", users.WalletNone, sessions.RequestContext{})
	require.NoError(t, err)

	require.Equal(t, 2, f.store.DestroyUserSessions(f.user.ID))
	require.Nil(t, f.store.GetSession(t1))
	require.Nil(t, f.store.GetSession(t2))
	require.NotNil(t, f.store.GetSession(otherToken))

	require.Equal(t, 0, f.store.DestroyUserSessions(f.user.ID))
}

func TestStatsDoesNotTouchActivity(t *testing.T) {
	f := setupStoreFixture(t)

	token := f.createSession(t)
	before := f.store.GetSession(token).LastActivity

	f.clock.Advance(time.Hour)
	stats := f.store.Stats()
	require.Equal(t, 1, stats.TotalSessions)
	require.Equal(t, 1, stats.ActiveUsers)

	// Inspect the backend directly: a GetSession would refresh the timer
	// itself and mask a mutation by Stats.
	stored, present := f.backend.Get(token)
	require.True(t, present)
	require.Equal(t, before, stored.LastActivity)
}

func TestStatsCountsDistinctUsers(t *testing.T) {
	f := setupStoreFixture(t)

	other := &users.User{Username: "bob"}
	require.NoError(t, f.userStore.Create(other))

	f.createSession(t)
	f.createSession(t)
	_, err := f.store.CreateSession(other.ID, "", "", users.WalletNone, sessions.RequestContext{})
	require.NoError(t, err)

	stats := f.store.Stats()
	require.Equal(t, 3, stats.TotalSessions)
	require.Equal(t, 2, stats.ActiveUsers)
}

func TestSweepEvictsExpiredSessions(t *testing.T) {
	f := setupStoreFixture(t)

	stale := f.createSession(t)
	f.clock.Advance(sessions.DefaultIdleLimit)
	fresh := f.createSession(t)

	f.clock.Advance(time.Minute)
	require.Equal(t, 1, f.store.Sweep())

	_, present := f.backend.Get(stale)
	require.False(t, present)
	require.NotNil(t, f.store.GetSession(fresh))
}

func TestBackgroundSweeper(t *testing.T) {
	f := setupStoreFixture(t, sessions.WithSweepInterval(10*time.Millisecond))

	token := f.createSession(t)
	f.clock.Advance(sessions.DefaultIdleLimit + time.Second)

	f.store.StartSweeping()
	defer f.store.Close()

	require.Eventually(t, func() bool {
		_, present := f.backend.Get(token)
		return !present
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentCreateSessionsAreDistinct(t *testing.T) {
	userStore := fakeuserrepo.NewFakeUserRepo()
	user := &users.User{Username: "alice"}
	require.NoError(t, userStore.Create(user))

	store, err := sessions.NewStore(userStore)
	require.NoError(t, err)

	const n = 64
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := store.CreateSession(user.ID, "", "", users.WalletNone, sessions.RequestContext{})
			require.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, token := range tokens {
		require.NotEmpty(t, token)
		seen[token] = struct{}{}
	}
	require.Len(t, seen, n)
	require.Equal(t, n, store.Stats().TotalSessions)
}

func TestConcurrentGetSessionRefreshesActivity(t *testing.T) {
	userStore := fakeuserrepo.NewFakeUserRepo()
	user := &users.User{Username: "alice"}
	require.NoError(t, userStore.Create(user))

	store, err := sessions.NewStore(userStore)
	require.NoError(t, err)

	token, err := store.CreateSession(user.ID, "", "", users.WalletNone, sessions.RequestContext{})
	require.NoError(t, err)

	start := time.Now()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NotNil(t, store.GetSession(token))
		}()
	}
	wg.Wait()

	sess := store.GetSession(token)
	require.NotNil(t, sess)
	require.False(t, sess.LastActivity.Before(start))
}
