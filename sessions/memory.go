package sessions

import "sync"

var _ Backend = (*InMemoryBackend)(nil)

// InMemoryBackend is the default Backend: a mutex-guarded map. All sessions
// are lost on process restart, which is the documented contract of this
// core - callers needing "remember me" across restarts must plug in a
// durable Backend.
type InMemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryBackend creates an empty in-memory session backend.
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		sessions: make(map[string]Session),
	}
}

func (b *InMemoryBackend) Put(token string, sess Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[token] = sess
}

func (b *InMemoryBackend) Get(token string) (Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sess, ok := b.sessions[token]
	return sess, ok
}

func (b *InMemoryBackend) Delete(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.sessions[token]
	delete(b.sessions, token)
	return ok
}

func (b *InMemoryBackend) Snapshot() []Session {
	b.mu.RLock()
	defer b.mu.RUnlock()

	all := make([]Session, 0, len(b.sessions))
	for _, sess := range b.sessions {
		all = append(all, sess)
	}
	return all
}

func (b *InMemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.sessions)
}
