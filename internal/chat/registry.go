package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidNickname is returned by Register for an empty or whitespace-only
// requested nickname. The caller is expected to close the connection; the
// session was never made visible.
var ErrInvalidNickname = errors.New("chat: invalid nickname")

// Registry is the single source of truth for who is online: a mutex-guarded
// map from nickname to session. A nickname is present exactly while its
// connection is believed open and eligible to receive messages. All reads
// and mutations serialize through one lock per instance so no iteration can
// observe a half-inserted or half-removed entry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry. Each server owns exactly one;
// tests construct their own so nothing leaks between them.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register inserts the session under the requested nickname, resolving
// collisions by probing requested_1, requested_2, … until a free key is
// found. The probe and the insert happen under one lock acquisition, so two
// concurrent registrations of the same name can never both win a key.
// Returns the nickname actually assigned.
func (r *Registry) Register(requested string, s *Session) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", ErrInvalidNickname
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nickname := requested
	for counter := 1; ; counter++ {
		if _, taken := r.sessions[nickname]; !taken {
			break
		}
		nickname = fmt.Sprintf("%s_%d", requested, counter)
	}
	s.setNickname(nickname)
	r.sessions[nickname] = s
	return nickname, nil
}

// Unregister removes the nickname and reports whether an entry was removed.
// Removing an absent nickname is a no-op; double-teardown races resolve to
// one winner, which is what gates leave notices to exactly once.
func (r *Registry) Unregister(nickname string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[nickname]; !ok {
		return false
	}
	delete(r.sessions, nickname)
	return true
}

// Lookup returns the session registered under nickname, if any.
func (r *Registry) Lookup(nickname string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[nickname]
	return s, ok
}

// Snapshot returns a point-in-time copy of all registered sessions for
// fan-out. Delivery then proceeds without the lock: every recipient present
// at call time gets the message exactly once, joiners after the snapshot
// get nothing, and concurrent leavers simply fail their write.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	return list
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Drain removes every entry and returns the removed sessions. Used by
// server shutdown to force-close all remaining connections in one sweep.
func (r *Registry) Drain() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*Session, 0, len(r.sessions))
	for nickname, s := range r.sessions {
		list = append(list, s)
		delete(r.sessions, nickname)
	}
	return list
}
