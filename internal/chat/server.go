// Package chat implements the multi-client chat relay: the acceptor loop,
// the per-connection session workers, the nickname registry and the
// broadcast/whisper dispatcher. All state is in-memory and scoped to the
// process; the server relays best-effort and keeps no history.
package chat

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nurichat/nurichat/protocol"
)

// Options configures a Server. Zero values fall back to working defaults so
// tests can construct a server from a listener alone.
type Options struct {
	// Address is the TCP listen address for ListenAndServe, host:port.
	Address string
	// Dialect is the wire dialect; the zero value means protocol.Default().
	Dialect protocol.Dialect
	// WriteTimeout bounds every outbound write.
	WriteTimeout time.Duration
	// HandshakeTimeout bounds how long a connection may take to send its
	// nickname. Zero disables the deadline.
	HandshakeTimeout time.Duration
	// Log receives server events; nil means a no-op logger.
	Log *zap.SugaredLogger
}

// Server owns the listener, the registry and the dispatcher, and spawns one
// session worker goroutine per accepted connection. It is constructed with
// its own fresh registry; nothing is process-global.
type Server struct {
	addr             string
	dialect          protocol.Dialect
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
	log              *zap.SugaredLogger

	registry   *Registry
	dispatcher *Dispatcher
	router     *Router

	// mu guards the listener and the live-session set. The set covers every
	// accepted connection from before its handshake, not just registered
	// ones, so Shutdown can force-close a worker still waiting for its
	// nickname line.
	mu       sync.Mutex
	listener net.Listener
	sessions map[*Session]struct{}
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer builds a server and wires its registry, dispatcher and command
// router together.
func NewServer(opts Options) *Server {
	if opts.Dialect.QuitToken == "" {
		opts.Dialect = protocol.Default()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}

	registry := NewRegistry()
	s := &Server{
		addr:             opts.Address,
		dialect:          opts.Dialect,
		writeTimeout:     opts.WriteTimeout,
		handshakeTimeout: opts.HandshakeTimeout,
		log:              opts.Log,
		registry:         registry,
		dispatcher:       NewDispatcher(registry, opts.Dialect, opts.Log),
		sessions:         make(map[*Session]struct{}),
		shutdown:         make(chan struct{}),
	}
	s.router = s.buildRouter()
	return s
}

// Registry exposes the server's registry, mainly for tests and introspection.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Addr returns the bound listen address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe binds the configured TCP address and serves until Shutdown.
// A bind failure is fatal to the caller; everything past this point is
// per-session and never escalates.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("chat: unable to listen on %s: %w", s.addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on the given listener indefinitely, spawning one
// independent session worker per connection. It returns nil once Shutdown
// closes the listener.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Infof("[nurid] listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Errorf("[nurid] accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting, force-closes every live connection (registered
// or still handshaking), clears the registry and waits for the workers to
// finish. There is no drain; in-flight lines are abandoned.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		// Closing under the lock pairs with track: once this sweep runs,
		// no new session can slip in unclosed.
		for sess := range s.sessions {
			sess.Close()
		}
		s.mu.Unlock()

		s.registry.Drain()
	})
	s.wg.Wait()
}

// track records an accepted session for the shutdown sweep. It reports
// false once shutdown has begun; the caller must close the connection and
// bail out.
func (s *Server) track(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.shutdown:
		return false
	default:
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// handleConn drives one session through its lifecycle:
// Handshaking → Active → Closing → Closed. A session that never reaches
// Active is discarded silently: no registry entry, no notices.
func (s *Server) handleConn(conn net.Conn) {
	sess := newSession(conn, s.writeTimeout)
	if !s.track(sess) {
		sess.Close()
		return
	}
	defer s.untrack(sess)
	reader := bufio.NewReader(conn)

	s.log.Debugf("[chat] connection from %s (session %s)", sess.RemoteAddr(), sess.ID())

	nickname, ok := s.handshake(sess, reader)
	if !ok {
		sess.Close()
		s.log.Debugf("[chat] handshake failed for %s (session %s)", sess.RemoteAddr(), sess.ID())
		return
	}

	sess.setState(stateActive)
	s.dispatcher.Broadcast(s.dialect.FormatJoined(nickname), nickname)
	_ = sess.Send(s.dialect.FormatWelcome(nickname))
	s.log.Infof("[chat] %q joined from %s (session %s)", nickname, sess.RemoteAddr(), sess.ID())

	s.activeLoop(sess, reader)

	sess.setState(stateClosing)
	s.teardown(sess)
}

// handshake prompts for and registers a nickname. It reports ok=false on
// empty input, closed connection or handshake deadline, in which case no
// registry entry was created.
func (s *Server) handshake(sess *Session, reader *bufio.Reader) (string, bool) {
	if err := sess.Send(s.dialect.Prompt); err != nil {
		return "", false
	}

	if s.handshakeTimeout > 0 {
		sess.conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	// Active reads block until the peer sends or goes away.
	sess.conn.SetReadDeadline(time.Time{})

	nickname, err := s.registry.Register(strings.TrimSpace(line), sess)
	if err != nil {
		_ = sess.Send(s.dialect.FormatInvalidNickname())
		return "", false
	}
	return nickname, true
}

// activeLoop reads newline-delimited lines in FIFO order until the peer goes
// away or a handler closes the session. Empty lines are ignored.
func (s *Server) activeLoop(sess *Session, reader *bufio.Reader) {
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if msg := strings.TrimRight(line, "\r\n"); msg != "" {
				if s.router.Dispatch(sess, msg) == ActionClose {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// teardown removes the session from the registry, closes its connection and
// broadcasts the leave notice to whoever remains. The notice is gated on the
// unregister actually removing the entry, so a session the dispatcher
// already dropped, or that shutdown already drained, stays silent.
func (s *Server) teardown(sess *Session) {
	nickname := sess.Nickname()
	removed := s.registry.Unregister(nickname)
	sess.Close()
	if removed {
		s.dispatcher.Broadcast(s.dialect.FormatLeft(nickname), "")
		s.log.Infof("[chat] %q left (session %s)", nickname, sess.ID())
	}
}

// buildRouter wires the session commands: the quit token, the whisper
// command, and ordinary chat as the fallback. Handlers pass when the line
// only resembles their command: "/종료 now" or a bare whisper token are
// ordinary chat.
func (s *Server) buildRouter() *Router {
	router := NewRouter(func(sess *Session, line string) Action {
		s.dispatcher.Broadcast(s.dialect.FormatChat(sess.Nickname(), line), "")
		return ActionContinue
	})

	router.Register(s.dialect.QuitToken, func(sess *Session, line string) Action {
		if !s.dialect.IsQuit(line) {
			return ActionPass
		}
		_ = sess.Send(s.dialect.FormatQuitAck())
		return ActionClose
	})

	router.Register(s.dialect.WhisperToken, func(sess *Session, line string) Action {
		if !s.dialect.IsWhisper(line) {
			return ActionPass
		}
		target, body, ok := s.dialect.ParseWhisper(line)
		if !ok {
			if err := sess.Send(s.dialect.FormatWhisperUsage()); err != nil {
				return ActionClose
			}
			return ActionContinue
		}
		s.dispatcher.Whisper(sess.Nickname(), target, body)
		return ActionContinue
	})

	return router
}
