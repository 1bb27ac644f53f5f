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
	"testing"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/transport/establishtest"
)

type noopAuthenticator struct {
	opened, closed bool
}

func (a *noopAuthenticator) Open(ctx context.Context) error  { a.opened = true; return nil }
func (a *noopAuthenticator) Close(ctx context.Context) error { a.closed = true; return nil }
func (a *noopAuthenticator) HandleClose(ctx context.Context, peer transport.PeerID) error {
	return nil
}

func peerKeyedEstablisher() *establishtest.Establisher {
	return &establishtest.Establisher{
		PeerFor: func(l transport.Link) transport.PeerID { return transport.NewPeerID() },
		WhatAmI: transport.Peer,
	}
}

func newTestManager(t *testing.T, opts ...func(*transport.Builder)) *transport.Manager {
	t.Helper()
	b := transport.NewBuilder().
		WithEstablisher(peerKeyedEstablisher()).
		WithLinkManager(establishtest.Protocol, establishtest.NewFactory())
	for _, o := range opts {
		o(b)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close(context.Background())
	})
	return m
}

func TestBuildRequiresEstablisher(t *testing.T) {
	_, err := transport.NewBuilder().Build()
	if err == nil {
		t.Fatal("expected an error when building without an establisher")
	}
}

func TestBuildDefaults(t *testing.T) {
	m := newTestManager(t)
	if len(m.GetTransports()) != 0 {
		t.Fatalf("expected no transports on a freshly built manager")
	}
	if len(m.GetListeners()) != 0 {
		t.Fatalf("expected no listeners on a freshly built manager")
	}
}

func TestAuthenticatorOpenAndClose(t *testing.T) {
	auth := &noopAuthenticator{}
	m, err := transport.NewBuilder().
		WithEstablisher(peerKeyedEstablisher()).
		WithAuthenticator(auth).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !auth.opened {
		t.Fatal("expected authenticator.Open to run during Build")
	}
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !auth.closed {
		t.Fatal("expected authenticator.Close to run during Manager.Close")
	}
}
