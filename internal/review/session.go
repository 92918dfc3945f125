// Package review implements the conversational draft-review loop: a
// registry of per-thread draft sessions, reply intent classification,
// revision generation and the post-approval learning flow.
package review

import (
	"errors"
	"sync"
	"time"

	"marks-content-agent/internal/model"
)

// Status is the session lifecycle value. Transitions are monotonic:
// iterating -> approved -> (learnings_pending ->) complete.
type Status string

const (
	StatusIterating        Status = "iterating"
	StatusApproved         Status = "approved"
	StatusLearningsPending Status = "learnings_pending"
	StatusComplete         Status = "complete"
)

// SourceReference points at the upstream item a session replies to.
type SourceReference struct {
	ID           string
	Text         string
	AuthorHandle string
}

// DraftVersion is immutable once appended. Version always equals the
// draft's index in the session.
type DraftVersion struct {
	Version         int
	Content         string
	RevisionRequest string // empty for version 0
	VoiceReference  string
	MessageRef      string // outbound message carrying this version
}

// DraftSession tracks iterative edits to one piece of content.
type DraftSession struct {
	ThreadID         string
	Pillar           model.Pillar
	Topic            string
	Source           *SourceReference
	Drafts           []DraftVersion
	Status           Status
	PendingLearnings []string
	CreatedAt        time.Time
}

// Latest returns the most recent draft. Drafts is never empty.
func (s *DraftSession) Latest() *DraftVersion {
	return &s.Drafts[len(s.Drafts)-1]
}

// appendDraft adds a new version. Callers must hold the thread lock.
func (s *DraftSession) appendDraft(content, instruction, voiceRef string) *DraftVersion {
	s.Drafts = append(s.Drafts, DraftVersion{
		Version:         len(s.Drafts),
		Content:         content,
		RevisionRequest: instruction,
		VoiceReference:  voiceRef,
	})
	return s.Latest()
}

var ErrDuplicateSession = errors.New("draft session already exists for thread")

// Registry holds all active draft sessions keyed by thread id. It also owns
// the per-thread locks that serialize event handling within one thread.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*DraftSession
	locks    map[string]*sync.Mutex
	maxAge   time.Duration
	now      func() time.Time
}

func NewRegistry(maxAge time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*DraftSession),
		locks:    make(map[string]*sync.Mutex),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Create registers a new session with the initial draft as version 0.
// Returns ErrDuplicateSession when the thread already has one; that is a
// dispatcher bug, not a user mistake, so it is never surfaced in chat.
func (r *Registry) Create(threadID string, pillar model.Pillar, topic, initialContent string, src *SourceReference) (*DraftSession, error) {
	r.mu.Lock()
	if _, exists := r.sessions[threadID]; exists {
		r.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	s := &DraftSession{
		ThreadID:  threadID,
		Pillar:    pillar,
		Topic:     topic,
		Source:    src,
		Status:    StatusIterating,
		CreatedAt: r.now(),
	}
	s.appendDraft(initialContent, "", "")
	r.sessions[threadID] = s
	r.mu.Unlock()

	// Lazy sweep: creation is the only growth point, so expiring here keeps
	// the map bounded without a background timer.
	r.PurgeExpired()
	return s, nil
}

// Get returns the session for a thread, or nil when there is none or it has
// expired. Expired sessions are removed on lookup.
func (r *Registry) Get(threadID string) *DraftSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[threadID]
	if !ok {
		return nil
	}
	if r.now().Sub(s.CreatedAt) > r.maxAge {
		delete(r.sessions, threadID)
		delete(r.locks, threadID)
		return nil
	}
	return s
}

// FindByMessageRef maps a reacted-to message id back to its session: either
// the thread root or the outbound message of the latest draft.
func (r *Registry) FindByMessageRef(messageID string) *DraftSession {
	if s := r.Get(messageID); s != nil {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.Latest().MessageRef != messageID {
			continue
		}
		if r.now().Sub(s.CreatedAt) > r.maxAge {
			delete(r.sessions, id)
			delete(r.locks, id)
			return nil
		}
		return s
	}
	return nil
}

// PurgeExpired removes sessions older than the registry max age.
func (r *Registry) PurgeExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if r.now().Sub(s.CreatedAt) > r.maxAge {
			delete(r.sessions, id)
			delete(r.locks, id)
		}
	}
}

// Lock acquires the per-thread handling lock and returns its unlock func.
// Handlers hold it for the whole event, oracle calls included, so revisions
// within one thread can never interleave.
func (r *Registry) Lock(threadID string) func() {
	r.mu.Lock()
	l, ok := r.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[threadID] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Active returns a snapshot of the live sessions, for the admin API.
func (r *Registry) Active() []*DraftSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*DraftSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
