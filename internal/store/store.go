package store

import (
	"sort"
	"sync"

	"github.com/prepdeck/interview-coach/internal/model/interview"
)

// Stats summarizes a session for the stats endpoint.
type Stats struct {
	TurnCount int
	Warnings  int
	Config    interview.Config
	Topics    []string
}

// Store is keyed storage of per-conversation state. Implementations must
// guarantee that Lock serializes whole-turn read-modify-write sequences for
// a single id while leaving other ids independent.
type Store interface {
	Get(id string) (*interview.Session, bool)
	CreateIfAbsent(id string, cfg interview.Config) *interview.Session
	Delete(id string)
	Stats(id string) (Stats, bool)
	Lock(id string) (unlock func())
}

// Memory implements Store with an in-memory map, suitable for a
// single-process deployment. Sessions do not survive restarts.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
	locks    map[string]*sync.Mutex
}

// NewMemory bootstraps an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*interview.Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get retrieves a session by identifier.
func (m *Memory) Get(id string) (*interview.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// CreateIfAbsent returns the session for id, provisioning a fresh one with
// the supplied config when the id has not been seen before.
func (m *Memory) CreateIfAbsent(id string, cfg interview.Config) *interview.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		return session
	}

	session := &interview.Session{
		ID:          id,
		Transcript:  make([]interview.Turn, 0, 16),
		Config:      cfg,
		AskedTopics: make(map[string]struct{}),
	}
	m.sessions[id] = session
	return session
}

// Delete removes the session for id. Deleting an unknown id is a no-op.
// The per-id lock entry is kept so an in-flight unlock never races a delete.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Stats reports transcript size, warning count, config and covered topics.
// It holds the per-session lock while reading, so a snapshot never observes
// a turn mid-commit.
func (m *Memory) Stats(id string) (Stats, bool) {
	unlock := m.Lock(id)
	defer unlock()

	session, ok := m.Get(id)
	if !ok {
		return Stats{}, false
	}

	topics := session.Topics()
	sort.Strings(topics)

	return Stats{
		TurnCount: len(session.Transcript),
		Warnings:  session.OffTopicWarnings,
		Config:    session.Config,
		Topics:    topics,
	}, true
}

// Lock acquires the exclusive per-session lock for id and returns its
// release func. Callers hold it for the full duration of turn or feedback
// processing and must release unconditionally.
func (m *Memory) Lock(id string) func() {
	m.mu.Lock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
