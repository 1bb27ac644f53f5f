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

package tcplink_test

import (
	"context"
	"testing"
	"time"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/transport/tcplink"
)

type capturingEstablisher struct {
	accepted chan transport.Link
}

func (e *capturingEstablisher) OpenLink(ctx context.Context, link transport.Link, m *transport.Manager) (*transport.Transport, error) {
	return nil, nil
}

func (e *capturingEstablisher) AcceptLink(ctx context.Context, link transport.Link, m *transport.Manager) error {
	e.accepted <- link
	return nil
}

func TestListenAndDial(t *testing.T) {
	est := &capturingEstablisher{accepted: make(chan transport.Link, 1)}
	m, err := transport.NewBuilder().
		WithEstablisher(est).
		WithLinkManager(tcplink.Protocol, tcplink.NewFactory()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close(context.Background())

	ep := transport.NewEndPoint(transport.Locator(tcplink.Protocol + "/127.0.0.1:0"))
	bound, err := m.AddListener(context.Background(), ep)
	if err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	dialed := transport.NewEndPoint(bound)
	dialLink, err := (func() (transport.Link, error) {
		lm := tcplink.NewFactory()
		inner, err := lm(m)
		if err != nil {
			return nil, err
		}
		return inner.NewLink(context.Background(), dialed)
	})()
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer dialLink.Close()

	if dialLink.Destination() != bound {
		t.Fatalf("got destination %q, want %q", dialLink.Destination(), bound)
	}

	select {
	case accepted := <-est.accepted:
		if accepted.Source() != bound {
			t.Fatalf("got accepted link source %q, want %q", accepted.Source(), bound)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the listener to hand off the accepted link")
	}
}
