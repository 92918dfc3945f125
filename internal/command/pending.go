package command

import (
	"sync"
	"time"
)

const pendingTTL = 7 * time.Minute

// pendingEntry is one unresolved exchange with a user: either a parsed
// command awaiting a yes/no, or a partial command awaiting the named
// missing field.
type pendingEntry struct {
	command  Command
	question string
	missing  string // field name still needed, empty for yes/no confirmations
	setAt    time.Time
}

// pendingStore holds at most one unconfirmed command per user, expiring
// stale entries lazily on read.
type pendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

func newPendingStore() *pendingStore {
	return &pendingStore{
		entries: make(map[string]pendingEntry),
		now:     time.Now,
	}
}

func (p *pendingStore) Set(userID string, cmd Command, question, missing string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[userID] = pendingEntry{command: cmd, question: question, missing: missing, setAt: p.now()}
}

func (p *pendingStore) Get(userID string) (pendingEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[userID]
	if !ok {
		return pendingEntry{}, false
	}
	if p.now().Sub(entry.setAt) > pendingTTL {
		delete(p.entries, userID)
		return pendingEntry{}, false
	}
	return entry, true
}

func (p *pendingStore) Clear(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, userID)
}
