package store

import "sync"

// MemoryStore is an in-memory Store used in tests and when no database is
// available. State does not survive the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *MemoryStore) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

func (s *MemoryStore) Token() (string, error) {
	return s.get(keyToken), nil
}

func (s *MemoryStore) SetToken(token string) error {
	s.set(keyToken, token)
	return nil
}

func (s *MemoryStore) AuthHint() (bool, error) {
	return s.get(keyAuthHint) == "true", nil
}

func (s *MemoryStore) SetAuthHint(v bool) error {
	if v {
		s.set(keyAuthHint, "true")
	} else {
		s.set(keyAuthHint, "")
	}
	return nil
}

func (s *MemoryStore) ClearCredentials() error {
	s.set(keyToken, "")
	s.set(keyAuthHint, "")
	return nil
}

func (s *MemoryStore) PendingTask() (string, error) {
	return s.get(keyPendingTask), nil
}

func (s *MemoryStore) SetPendingTask(id string) error {
	s.set(keyPendingTask, id)
	return nil
}

func (s *MemoryStore) ClearPendingTask() error {
	s.set(keyPendingTask, "")
	return nil
}
