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
	"errors"
	"testing"

	"github.com/meshfabric/meshfabric/transport"
)

func TestInitTransportIsIdempotentPerPeer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	peer := transport.NewPeerID()
	cfg := transport.TransportConfig{Peer: peer, WhatAmI: transport.Peer, SNResolution: 128}

	first, err := m.InitTransport(ctx, cfg)
	if err != nil {
		t.Fatalf("InitTransport: %v", err)
	}

	// A re-finding InitTransport with a different InitialTxSN must not be
	// rejected: InitialTxSN is non-fundamental and is never revalidated.
	cfg.InitialTxSN = 12345
	second, err := m.InitTransport(ctx, cfg)
	if err != nil {
		t.Fatalf("InitTransport (re-find): %v", err)
	}
	if first != second {
		t.Fatal("expected the same *Transport back for the same peer")
	}

	if got := len(m.GetTransports()); got != 1 {
		t.Fatalf("got %d transports, want 1", got)
	}
}

func TestInitTransportRejectsFundamentalMismatch(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	peer := transport.NewPeerID()

	if _, err := m.InitTransport(ctx, transport.TransportConfig{Peer: peer, WhatAmI: transport.Peer, SNResolution: 128}); err != nil {
		t.Fatalf("InitTransport: %v", err)
	}

	_, err := m.InitTransport(ctx, transport.TransportConfig{Peer: peer, WhatAmI: transport.Router, SNResolution: 128})
	var pme *transport.ParameterMismatchError
	if !errors.As(err, &pme) {
		t.Fatalf("got %v, want *ParameterMismatchError", err)
	}
}

func TestInitTransportRejectsOverMaxSessions(t *testing.T) {
	m := newTestManager(t, func(b *transport.Builder) { b.MaxSessions(1) })
	ctx := context.Background()

	if _, err := m.InitTransport(ctx, transport.TransportConfig{Peer: transport.NewPeerID(), WhatAmI: transport.Peer}); err != nil {
		t.Fatalf("InitTransport: %v", err)
	}

	_, err := m.InitTransport(ctx, transport.TransportConfig{Peer: transport.NewPeerID(), WhatAmI: transport.Peer})
	var mse *transport.MaxSessionsReachedError
	if !errors.As(err, &mse) {
		t.Fatalf("got %v, want *MaxSessionsReachedError", err)
	}
}

func TestOpenTransportRejectsMulticastEndpoint(t *testing.T) {
	m := newTestManager(t)
	_, err := m.OpenTransport(context.Background(), transport.NewEndPoint("mem/239.0.0.1:7447"))
	var mce *transport.MulticastEndpointError
	if !errors.As(err, &mce) {
		t.Fatalf("got %v, want *MulticastEndpointError", err)
	}
}

func TestDelTransportUnknownPeer(t *testing.T) {
	m := newTestManager(t)
	err := m.DelTransport(context.Background(), transport.NewPeerID(), transport.CloseReasonGeneric)
	var upe *transport.UnknownPeerError
	if !errors.As(err, &upe) {
		t.Fatalf("got %v, want *UnknownPeerError", err)
	}
}

func TestDelTransportRemovesEntryWithoutClosingIt(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	peer := transport.NewPeerID()

	tr, err := m.InitTransport(ctx, transport.TransportConfig{Peer: peer, WhatAmI: transport.Peer})
	if err != nil {
		t.Fatalf("InitTransport: %v", err)
	}
	link := &fakeLink{}
	if err := tr.AddLink(link); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	if err := m.DelTransport(ctx, peer, transport.CloseReasonGeneric); err != nil {
		t.Fatalf("DelTransport: %v", err)
	}
	if _, ok := m.GetTransport(peer); ok {
		t.Fatal("expected transport to be gone after DelTransport")
	}
	if link.isClosed() {
		t.Fatal("DelTransport must not close the transport itself; removal and closing are cooperative")
	}

	if err := tr.Close(transport.CloseReasonGeneric); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !link.isClosed() {
		t.Fatal("expected Transport.Close to close its links")
	}
}

func TestTransportCloseRemovesItFromManager(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	peer := transport.NewPeerID()

	tr, err := m.InitTransport(ctx, transport.TransportConfig{Peer: peer, WhatAmI: transport.Peer})
	if err != nil {
		t.Fatalf("InitTransport: %v", err)
	}
	if err := tr.Close(transport.CloseReasonGeneric); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := m.GetTransport(peer); ok {
		t.Fatal("expected Transport.Close to remove its own entry from the manager")
	}
}

func TestTransportAddLinkRespectsMaxLinks(t *testing.T) {
	m := newTestManager(t, func(b *transport.Builder) { b.MaxLinks(1) })
	ctx := context.Background()
	peer := transport.NewPeerID()

	tr, err := m.InitTransport(ctx, transport.TransportConfig{Peer: peer, WhatAmI: transport.Peer})
	if err != nil {
		t.Fatalf("InitTransport: %v", err)
	}

	link1 := &fakeLink{}
	if err := tr.AddLink(link1); err != nil {
		t.Fatalf("AddLink (1st): %v", err)
	}

	link2 := &fakeLink{}
	err = tr.AddLink(link2)
	var mle *transport.MaxLinksReachedError
	if !errors.As(err, &mle) {
		t.Fatalf("got %v, want *MaxLinksReachedError", err)
	}
}
