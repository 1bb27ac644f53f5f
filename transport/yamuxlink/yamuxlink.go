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

// Package yamuxlink implements transport.LinkManager over a yamux session
// per TCP connection: every transport.Link it hands out is a yamux stream,
// so a peer configured with max_links > 1 can get all of its links over a
// single underlying TCP connection instead of opening one per link.
package yamuxlink

import (
	"context"
	"net"
	"sync"

	"github.com/hashicorp/yamux"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Protocol is the locator tag this package registers under.
const Protocol = "tcpmux"

// Link wraps a yamux stream as a transport.Link.
type Link struct {
	*yamux.Stream
	source, destination transport.Locator
}

// Source implements transport.Link.
func (l *Link) Source() transport.Locator { return l.source }

// Destination implements transport.Link.
func (l *Link) Destination() transport.Locator { return l.destination }

// Manager is a transport.LinkManager that multiplexes links over yamux
// sessions, reusing one outbound TCP connection (and its yamux session)
// per remote address.
type Manager struct {
	manager *transport.Manager

	mu        sync.Mutex
	listeners map[string]net.Listener
	sessions  map[string]*yamux.Session // outbound sessions, keyed by remote address
}

// NewFactory returns a transport.LinkManagerFactory for Protocol.
func NewFactory() transport.LinkManagerFactory {
	return func(m *transport.Manager) (transport.LinkManager, error) {
		return &Manager{
			manager:   m,
			listeners: map[string]net.Listener{},
			sessions:  map[string]*yamux.Session{},
		}, nil
	}
}

// NewListener implements transport.LinkManager.
func (m *Manager) NewListener(ctx context.Context, ep transport.EndPoint) (transport.Locator, error) {
	ln, err := net.Listen("tcp", ep.Locator.Address())
	if err != nil {
		return "", errwrap.Wrapf(err, "listening on %q", ep.Locator.Address())
	}

	bound := transport.Locator(Protocol + "/" + ln.Addr().String())

	m.mu.Lock()
	m.listeners[bound.Address()] = ln
	m.mu.Unlock()

	go m.acceptLoop(ln, bound)
	return bound, nil
}

func (m *Manager) acceptLoop(ln net.Listener, local transport.Locator) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go m.serveInbound(conn, local)
	}
}

func (m *Manager) serveInbound(conn net.Conn, local transport.Locator) {
	session, err := yamux.Server(conn, yamux.DefaultConfig())
	if err != nil {
		m.manager.Logf("yamuxlink: failed to start server session with %s: %s", conn.RemoteAddr(), err)
		_ = conn.Close()
		return
	}
	remote := transport.Locator(Protocol + "/" + conn.RemoteAddr().String())
	for {
		stream, err := session.AcceptStream()
		if err != nil {
			return
		}
		m.manager.HandleNewLink(&Link{Stream: stream, source: local, destination: remote})
	}
}

// DelListener implements transport.LinkManager.
func (m *Manager) DelListener(ctx context.Context, ep transport.EndPoint) error {
	addr := ep.Locator.Address()
	m.mu.Lock()
	ln, ok := m.listeners[addr]
	if ok {
		delete(m.listeners, addr)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	if err := ln.Close(); err != nil {
		return errwrap.Wrapf(err, "closing listener on %q", addr)
	}
	return nil
}

// NewLink implements transport.LinkManager. Successive calls for the same
// remote address reuse the same underlying yamux session, opening a new
// stream each time.
func (m *Manager) NewLink(ctx context.Context, ep transport.EndPoint) (transport.Link, error) {
	addr := ep.Locator.Address()

	m.mu.Lock()
	session, ok := m.sessions[addr]
	m.mu.Unlock()

	if !ok || session.IsClosed() {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errwrap.Wrapf(err, "dialing %q", addr)
		}
		session, err = yamux.Client(conn, yamux.DefaultConfig())
		if err != nil {
			_ = conn.Close()
			return nil, errwrap.Wrapf(err, "starting yamux session with %q", addr)
		}
		m.mu.Lock()
		m.sessions[addr] = session
		m.mu.Unlock()
	}

	stream, err := session.OpenStream()
	if err != nil {
		return nil, errwrap.Wrapf(err, "opening yamux stream to %q", addr)
	}

	return &Link{
		Stream:      stream,
		source:      transport.Locator(Protocol + "/" + session.LocalAddr().String()),
		destination: ep.Locator,
	}, nil
}

// GetListeners implements transport.LinkManager.
func (m *Manager) GetListeners() []transport.EndPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.EndPoint, 0, len(m.listeners))
	for addr := range m.listeners {
		out = append(out, transport.NewEndPoint(transport.Locator(Protocol+"/"+addr)))
	}
	return out
}

// GetLocators implements transport.LinkManager.
func (m *Manager) GetLocators() []transport.Locator {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.Locator, 0, len(m.listeners))
	for addr := range m.listeners {
		out = append(out, transport.Locator(Protocol+"/"+addr))
	}
	return out
}
