// Meshfabric
// Copyright (C) 2019-2026+ The Meshfabric project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package transport_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meshfabric/meshfabric/transport"
)

// TestAdmissionDropsBeyondAcceptPending drives more concurrent inbound
// links than accept_pending allows and checks that the excess are closed
// immediately rather than left to queue.
func TestAdmissionDropsBeyondAcceptPending(t *testing.T) {
	release := make(chan struct{})
	est := &blockingEstablisher{release: release}

	m, err := transport.NewBuilder().
		WithEstablisher(est).
		AcceptPending(2).
		AcceptTimeout(time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const inbound = 5
	links := make([]*fakeLink, inbound)
	for i := range links {
		links[i] = &fakeLink{}
		m.HandleNewLink(links[i])
	}

	// The drop path in HandleNewLink closes a rejected link before
	// returning, so give the two admitted handshakes (which block on
	// release) a moment to actually start, then count closures.
	time.Sleep(50 * time.Millisecond)

	var closedNow int
	for _, l := range links {
		if l.isClosed() {
			closedNow++
		}
	}
	if want := inbound - 2; closedNow != want {
		t.Fatalf("got %d links closed while at capacity, want %d", closedNow, want)
	}

	// release stays open: Close cancels the two handshakes still blocked on
	// it, and HandleNewLink closes a link whose establishment fails.
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, l := range links {
		if !l.isClosed() {
			t.Fatal("expected every link to be closed once admission drained")
		}
	}
}

// blockingEstablisher's AcceptLink blocks until release is closed or ctx
// expires, so tests can hold a handshake "in flight" on demand.
type blockingEstablisher struct {
	release <-chan struct{}
}

func (e *blockingEstablisher) OpenLink(ctx context.Context, link transport.Link, m *transport.Manager) (*transport.Transport, error) {
	return nil, nil
}

func (e *blockingEstablisher) AcceptLink(ctx context.Context, link transport.Link, m *transport.Manager) error {
	select {
	case <-e.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fakeLink is a minimal no-op transport.Link used by tests that only
// exercise link bookkeeping, not actual I/O.
type fakeLink struct {
	mu     sync.Mutex
	closed bool
}

func (l *fakeLink) Read(p []byte) (int, error)  { return 0, nil }
func (l *fakeLink) Write(p []byte) (int, error) { return len(p), nil }
func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
func (l *fakeLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
func (l *fakeLink) Source() transport.Locator      { return "mem/local" }
func (l *fakeLink) Destination() transport.Locator { return "mem/remote" }
