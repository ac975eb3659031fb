package chat

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionState tracks where a connection is in its lifecycle. Transitions
// only ever move forward: Handshaking → Active → Closing → Closed, with
// Handshaking → Closed for connections that never register.
type sessionState int

const (
	stateHandshaking sessionState = iota
	stateActive
	stateClosing
	stateClosed
)

// Session is the live state for one connected user. The connection is owned
// exclusively by this session: its worker performs all reads, and every
// write, whether from the worker or from the dispatcher fanning out a
// broadcast, is serialized through the write mutex so concurrent senders
// cannot interleave bytes on the wire.
type Session struct {
	// id correlates log lines for one connection across its lifetime.
	id string

	conn         net.Conn
	remoteAddr   string
	writeTimeout time.Duration

	mu       sync.Mutex // guards nickname and state
	nickname string
	state    sessionState

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newSession(conn net.Conn, writeTimeout time.Duration) *Session {
	return &Session{
		id:           uuid.NewString(),
		conn:         conn,
		remoteAddr:   conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		state:        stateHandshaking,
	}
}

// Nickname returns the registered nickname, or "" while handshaking.
func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

func (s *Session) setNickname(nickname string) {
	s.mu.Lock()
	s.nickname = nickname
	s.mu.Unlock()
}

// RemoteAddr returns the peer address, fixed at accept time.
func (s *Session) RemoteAddr() string {
	return s.remoteAddr
}

// ID returns the session identifier used for log correlation.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) currentState() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state sessionState) {
	s.mu.Lock()
	if state > s.state {
		s.state = state
	}
	s.mu.Unlock()
}

// Send writes one line to the peer. Writes are serialized per session and
// bounded by the write deadline, so a stalled peer fails here instead of
// blocking a broadcast for everyone else. The caller decides what a failed
// send means for the session.
func (s *Session) Send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err := s.conn.Write([]byte(line))
	return err
}

// Close closes the underlying connection. Safe to call more than once;
// teardown races between the worker and the dispatcher both end up here.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.setState(stateClosed)
		s.conn.Close()
	})
}
