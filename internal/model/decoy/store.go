package decoy

import "github.com/avelier/decoychat/internal/model/session"

// Store exposes decoy profile retrieval to handlers and services.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
	FindByKind(kind session.Kind) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the configured decoy profiles.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Profile{}, false
}

// FindByKind returns the first profile registered for a conversation kind.
func (s *MemoryStore) FindByKind(kind session.Kind) (Profile, bool) {
	for _, item := range s.items {
		if item.Kind == kind {
			return item, true
		}
	}
	return Profile{}, false
}
