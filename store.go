package pointlab

import "sync"

// Store holds the current AssetSet. Publication replaces the set
// wholesale; readers either see the previous complete set or the new
// one, never a partial mix.
type Store struct {
	mu  sync.RWMutex
	set *AssetSet
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Publish(set *AssetSet) {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

// Current returns the last published set, nil before the first
// successful run.
func (s *Store) Current() *AssetSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}
