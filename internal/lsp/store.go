package lsp

import "sync"

type Document struct {
	Text    string
	Version int32
}

// Store holds open documents by URI. Handlers may run concurrently, so
// access is locked.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewStore() *Store {
	return &Store{docs: map[string]Document{}}
}

// Set records a new revision. Stale versions (lower than the stored one)
// are ignored and reported as false.
func (s *Store) Set(uri, text string, version int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.docs[uri]; ok && version < cur.Version {
		return false
	}
	s.docs[uri] = Document{Text: text, Version: version}
	return true
}

func (s *Store) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d.Text, ok
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}
