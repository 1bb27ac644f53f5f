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

// Package establishtest provides fakes for transport's black-box tests: an
// Establisher that completes instantly with a caller-chosen peer identity,
// and an in-memory Link/LinkManager pair that never touches the network.
package establishtest

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/meshfabric/meshfabric/transport"
)

// Protocol is the tag registered for MemLinkManager instances.
const Protocol = "mem"

// Establisher completes every OpenLink/AcceptLink immediately, deriving the
// resulting transport's peer id from a caller-supplied function. It never
// performs any real handshake; it exists purely so that admission and
// session-lifecycle logic can be exercised without a real wire protocol.
type Establisher struct {
	// PeerFor returns the peer identity to associate with link, called for
	// both ends of the handshake. Tests typically close over a fixed
	// transport.PeerID per simulated peer.
	PeerFor func(link transport.Link) transport.PeerID

	// WhatAmI is used for every negotiated transport.
	WhatAmI transport.WhatAmI

	// Delay, if non-zero, is awaited (bounded by ctx) before completing,
	// so tests can exercise accept_timeout.
	Delay func(ctx context.Context) error

	// FailAccept, if set, is returned by AcceptLink instead of completing.
	FailAccept error
}

// OpenLink implements transport.Establisher.
func (e *Establisher) OpenLink(ctx context.Context, link transport.Link, m *transport.Manager) (*transport.Transport, error) {
	if e.Delay != nil {
		if err := e.Delay(ctx); err != nil {
			return nil, err
		}
	}
	return m.InitTransport(ctx, transport.TransportConfig{
		Peer:    e.PeerFor(link),
		WhatAmI: e.WhatAmI,
	})
}

// AcceptLink implements transport.Establisher.
func (e *Establisher) AcceptLink(ctx context.Context, link transport.Link, m *transport.Manager) error {
	if e.FailAccept != nil {
		return e.FailAccept
	}
	if e.Delay != nil {
		if err := e.Delay(ctx); err != nil {
			return err
		}
	}
	t, err := m.InitTransport(ctx, transport.TransportConfig{
		Peer:    e.PeerFor(link),
		WhatAmI: e.WhatAmI,
	})
	if err != nil {
		return err
	}
	return t.AddLink(link)
}

// MemLink is an in-memory transport.Link backed by a net.Pipe half.
type MemLink struct {
	net.Conn
	source, destination transport.Locator
}

// Source implements transport.Link.
func (l *MemLink) Source() transport.Locator { return l.source }

// Destination implements transport.Link.
func (l *MemLink) Destination() transport.Locator { return l.destination }

// MemLinkManager is a transport.LinkManager backed by net.Pipe: NewLink
// fails unless a NewListener call on the same address has already been
// made, and otherwise hands the server half of a fresh pipe to that
// listener, like a real listener accepting a connection.
type MemLinkManager struct {
	mu        sync.Mutex
	listeners map[string]chan net.Conn
	manager   *transport.Manager
}

// NewFactory returns a transport.LinkManagerFactory that hands back a new
// MemLinkManager on each call, wiring HandleNewLink for accepted links.
func NewFactory() transport.LinkManagerFactory {
	return func(m *transport.Manager) (transport.LinkManager, error) {
		return &MemLinkManager{listeners: map[string]chan net.Conn{}, manager: m}, nil
	}
}

// NewListener implements transport.LinkManager.
func (lm *MemLinkManager) NewListener(ctx context.Context, ep transport.EndPoint) (transport.Locator, error) {
	addr := ep.Locator.Address()
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, ok := lm.listeners[addr]; ok {
		return "", fmt.Errorf("establishtest: address %q already listening", addr)
	}
	ch := make(chan net.Conn)
	lm.listeners[addr] = ch

	go func() {
		for conn := range ch {
			lm.manager.HandleNewLink(&MemLink{
				Conn:        conn,
				source:      ep.Locator,
				destination: transport.Locator(Protocol + "/" + conn.RemoteAddr().String()),
			})
		}
	}()
	return ep.Locator, nil
}

// DelListener implements transport.LinkManager.
func (lm *MemLinkManager) DelListener(ctx context.Context, ep transport.EndPoint) error {
	addr := ep.Locator.Address()
	lm.mu.Lock()
	defer lm.mu.Unlock()
	ch, ok := lm.listeners[addr]
	if !ok {
		return nil
	}
	delete(lm.listeners, addr)
	close(ch)
	return nil
}

// NewLink implements transport.LinkManager.
func (lm *MemLinkManager) NewLink(ctx context.Context, ep transport.EndPoint) (transport.Link, error) {
	addr := ep.Locator.Address()
	lm.mu.Lock()
	ch, ok := lm.listeners[addr]
	lm.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("establishtest: no listener at %q", addr)
	}

	client, server := net.Pipe()
	select {
	case ch <- server:
	case <-ctx.Done():
		_ = client.Close()
		_ = server.Close()
		return nil, ctx.Err()
	}
	return &MemLink{Conn: client, source: transport.Locator(Protocol + "/local"), destination: ep.Locator}, nil
}

// GetListeners implements transport.LinkManager.
func (lm *MemLinkManager) GetListeners() []transport.EndPoint {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]transport.EndPoint, 0, len(lm.listeners))
	for addr := range lm.listeners {
		out = append(out, transport.NewEndPoint(transport.Locator(Protocol+"/"+addr)))
	}
	return out
}

// GetLocators implements transport.LinkManager.
func (lm *MemLinkManager) GetLocators() []transport.Locator {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]transport.Locator, 0, len(lm.listeners))
	for addr := range lm.listeners {
		out = append(out, transport.Locator(Protocol+"/"+addr))
	}
	return out
}
