package htmldoc

import (
	"sync"

	"nocookies/internal/dom"
)

// Storage is an ordered in-memory key-value area.
type Storage struct {
	mu     sync.Mutex
	keys   []string
	values map[string]string
	denied bool
}

func NewStorage() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Storage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Deny makes every later access fail with dom.ErrStorageDenied.
func (s *Storage) Deny() {
	s.mu.Lock()
	s.denied = true
	s.mu.Unlock()
}

func (s *Storage) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denied {
		return nil, dom.ErrStorageDenied
	}
	return append([]string(nil), s.keys...), nil
}

func (s *Storage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denied {
		return dom.ErrStorageDenied
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return nil
}
