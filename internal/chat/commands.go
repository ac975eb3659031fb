package chat

import (
	"strings"
	"sync"
)

// Action tells the session worker what to do after a line was handled.
type Action int

const (
	// ActionPass means the handler did not consume the line; the router
	// falls through to the default handler.
	ActionPass Action = iota
	// ActionContinue keeps the session in its read loop.
	ActionContinue
	// ActionClose ends the session gracefully.
	ActionClose
)

// HandlerFunc processes one inbound line for a session.
type HandlerFunc func(s *Session, line string) Action

// Router maps a line's leading token to its handler. The session read loop
// consults it for every non-empty line; lines whose first token has no
// handler, or whose handler passes, go to the default handler, which for
// the chat server is the ordinary broadcast.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	fallback HandlerFunc
}

// NewRouter creates a router with the given default handler.
// The default handler must not return ActionPass.
func NewRouter(fallback HandlerFunc) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		fallback: fallback,
	}
}

// Register binds a leading token to a handler.
func (r *Router) Register(token string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[token] = handler
}

// Dispatch routes one line and returns the resulting action.
func (r *Router) Dispatch(s *Session, line string) Action {
	token := line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		token = line[:i]
	}

	r.mu.RLock()
	handler, ok := r.handlers[token]
	r.mu.RUnlock()

	if ok {
		if action := handler(s, line); action != ActionPass {
			return action
		}
	}
	return r.fallback(s, line)
}
