package persona

// Store exposes persona profile retrieval for prompt building and handlers.
type Store interface {
	List() []Profile
	FindByID(id ID) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice; the profile set is
// fixed at startup.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the predefined profile list.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id ID) (Profile, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Profile{}, false
}

// Resolve returns the profile for id, falling back to the Efficient profile
// when the id is unknown.
func Resolve(store Store, id ID) Profile {
	if profile, ok := store.FindByID(id); ok {
		return profile
	}
	profile, _ := store.FindByID(Efficient)
	return profile
}
