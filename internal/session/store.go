package session

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the number of concurrent user sessions kept in
// memory. Beyond it the least recently used session is evicted.
const DefaultCapacity = 100

// Store is a bounded, mutex-guarded session registry.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

// NewStore creates a session store with the given capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, _ := lru.New[string, *Session](capacity)
	return &Store{cache: cache}
}

// Get returns the session for userID, creating it on first use.
func (st *Store) Get(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.cache.Get(userID); ok {
		return s
	}
	s := &Session{
		UserID:    userID,
		Seen:      make(map[string]struct{}),
		UpdatedAt: time.Now(),
	}
	st.cache.Add(userID, s)
	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Len()
}
