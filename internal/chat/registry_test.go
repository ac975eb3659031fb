package chat

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"
)

func pipeSession(test *testing.T) (*Session, net.Conn) {
	test.Helper()
	server, client := net.Pipe()
	test.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return newSession(server, time.Second), client
}

func TestRegisterCollisionProbing(test *testing.T) {
	r := NewRegistry()
	expected := []string{"bob", "bob_1", "bob_2"}
	for _, exp := range expected {
		s, _ := pipeSession(test)
		nickname, err := r.Register("bob", s)
		if err != nil {
			test.Fatalf("Register returned error: %v", err)
		}
		if nickname != exp {
			test.Errorf("expected assigned nickname %q, actual %q", exp, nickname)
		}
		if s.Nickname() != exp {
			test.Errorf("session nickname not updated: expected %q, actual %q", exp, s.Nickname())
		}
	}
	if r.Len() != len(expected) {
		test.Errorf("expected %d registered sessions, actual %d", len(expected), r.Len())
	}
}

func TestRegisterInvalidNickname(test *testing.T) {
	r := NewRegistry()
	for _, requested := range []string{"", "   ", "\t", " \n "} {
		s, _ := pipeSession(test)
		if _, err := r.Register(requested, s); err != ErrInvalidNickname {
			test.Errorf("Register(%q) expected ErrInvalidNickname, actual %v", requested, err)
		}
	}
	if r.Len() != 0 {
		test.Errorf("invalid registrations must not create entries, registry has %d", r.Len())
	}
}

func TestRegisterTrimsWhitespace(test *testing.T) {
	r := NewRegistry()
	s, _ := pipeSession(test)
	nickname, err := r.Register("  bob \r\n", s)
	if err != nil {
		test.Fatalf("Register returned error: %v", err)
	}
	if nickname != "bob" {
		test.Errorf("expected trimmed nickname \"bob\", actual %q", nickname)
	}
}

func TestUnregisterIdempotent(test *testing.T) {
	r := NewRegistry()
	s, _ := pipeSession(test)
	if _, err := r.Register("bob", s); err != nil {
		test.Fatal(err)
	}
	if !r.Unregister("bob") {
		test.Error("first Unregister expected to report removal")
	}
	if r.Unregister("bob") {
		test.Error("second Unregister expected to be a no-op")
	}
	if r.Unregister("never-existed") {
		test.Error("Unregister of absent nickname expected to be a no-op")
	}
}

func TestLookup(test *testing.T) {
	r := NewRegistry()
	s, _ := pipeSession(test)
	r.Register("bob", s)

	found, ok := r.Lookup("bob")
	if !ok || found != s {
		test.Error("Lookup of registered nickname failed")
	}
	if _, ok := r.Lookup("carol"); ok {
		test.Error("Lookup of absent nickname expected to report absence")
	}
}

func TestConcurrentRegistrationUniqueness(test *testing.T) {
	r := NewRegistry()
	const n = 50

	assigned := make(chan string, n)
	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			server, client := net.Pipe()
			defer server.Close()
			defer client.Close()
			nickname, err := r.Register("bob", newSession(server, time.Second))
			if err != nil {
				test.Errorf("concurrent Register failed: %v", err)
				return
			}
			assigned <- nickname
		}()
	}
	wg.Wait()
	close(assigned)

	seen := map[string]bool{}
	for nickname := range assigned {
		if seen[nickname] {
			test.Errorf("nickname %q assigned twice", nickname)
		}
		seen[nickname] = true
	}
	if len(seen) != n {
		test.Errorf("expected %d distinct nicknames, actual %d", n, len(seen))
	}
	if r.Len() != n {
		test.Errorf("expected %d registry entries, actual %d", n, r.Len())
	}
}

func TestSnapshotIsPointInTime(test *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		s, _ := pipeSession(test)
		r.Register(fmt.Sprintf("user%d", i), s)
	}

	snapshot := r.Snapshot()
	if len(snapshot) != 3 {
		test.Fatalf("expected snapshot of 3 sessions, actual %d", len(snapshot))
	}

	// Mutations after the snapshot must not affect it.
	r.Unregister("user0")
	if len(snapshot) != 3 {
		test.Error("snapshot changed after registry mutation")
	}
}

func TestDrain(test *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		s, _ := pipeSession(test)
		r.Register(fmt.Sprintf("user%d", i), s)
	}
	drained := r.Drain()
	if len(drained) != 4 {
		test.Errorf("expected 4 drained sessions, actual %d", len(drained))
	}
	if r.Len() != 0 {
		test.Errorf("registry expected empty after Drain, actual %d", r.Len())
	}
}
