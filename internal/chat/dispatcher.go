package chat

import (
	"go.uber.org/zap"

	"github.com/nurichat/nurichat/protocol"
)

// Dispatcher fans messages out over the registry. It holds no state of its
// own beyond its collaborators; both operations are fire-and-forget for the
// caller. A recipient whose write fails is treated as gone: it is dropped
// from the registry and the message is not retried, and the failure is never
// escalated to the original sender.
type Dispatcher struct {
	registry *Registry
	dialect  protocol.Dialect
	log      *zap.SugaredLogger
}

// NewDispatcher wires a dispatcher to its registry. The same registry
// instance must be shared with the server accepting the sessions.
func NewDispatcher(registry *Registry, dialect protocol.Dialect, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		dialect:  dialect,
		log:      log,
	}
}

// Broadcast sends line to every session in the current registry snapshot,
// skipping exclude when non-empty. Ordinary chat lines are broadcast with no
// exclusion (the sender hears itself), while join notices exclude the
// joining session, which receives a private welcome instead. That asymmetry
// is deliberate wire behavior; do not "fix" it.
func (d *Dispatcher) Broadcast(line string, exclude string) {
	var failed []*Session
	for _, s := range d.registry.Snapshot() {
		if exclude != "" && s.Nickname() == exclude {
			continue
		}
		if err := s.Send(line); err != nil {
			d.log.Warnf("[chat] broadcast delivery failed, dropping %q (session %s): %v",
				s.Nickname(), s.ID(), err)
			failed = append(failed, s)
		}
	}
	for _, s := range failed {
		d.drop(s)
	}
}

// Whisper delivers a private line from sender to target. An unknown target
// is reported back to the sender only, as a protocol notice rather than an
// error; no other session observes anything.
func (d *Dispatcher) Whisper(sender, target, body string) {
	t, ok := d.registry.Lookup(target)
	if !ok {
		snd, ok := d.registry.Lookup(sender)
		if !ok {
			return
		}
		if err := snd.Send(d.dialect.FormatTargetNotFound(target)); err != nil {
			d.log.Warnf("[chat] notice delivery failed, dropping %q (session %s): %v",
				sender, snd.ID(), err)
			d.drop(snd)
		}
		return
	}
	if err := t.Send(d.dialect.FormatWhisper(sender, body)); err != nil {
		d.log.Warnf("[chat] whisper delivery failed, dropping %q (session %s): %v",
			target, t.ID(), err)
		d.drop(t)
	}
}

// drop evicts a session whose connection proved dead mid-delivery. The
// registry removal gates the leave notice: when the session's own worker
// tears down afterwards it finds the entry already gone and stays silent,
// so the notice goes out exactly once. Recursion through Broadcast is
// bounded because the registry shrinks on every drop.
func (d *Dispatcher) drop(s *Session) {
	nickname := s.Nickname()
	if !d.registry.Unregister(nickname) {
		return
	}
	s.Close()
	d.Broadcast(d.dialect.FormatLeft(nickname), "")
}
