package eventref

import "sync"

// Entry associates a sent scheduling confirmation with the calendar event it
// describes. The confirmation text is kept so an unmatched reply can be
// answered with the original context.
type Entry struct {
	EventID          string
	ConfirmationText string
}

// Store maps outbound confirmation message ids to calendar events. It is
// injected into the dispatcher so the in-memory implementation can be swapped
// for a persistent one without touching dispatch logic.
type Store interface {
	Get(messageID int) (Entry, bool)
	Put(messageID int, entry Entry)
	Delete(messageID int)
}

// MemoryStore lives for the process lifetime: no persistence, no eviction.
// Message ids are globally unique, so writers from different chats never
// collide on a key.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int]Entry),
	}
}

func (s *MemoryStore) Get(messageID int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[messageID]
	return entry, ok
}

func (s *MemoryStore) Put(messageID int, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[messageID] = entry
}

func (s *MemoryStore) Delete(messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, messageID)
}
