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

// Package tcplink implements transport.LinkManager over plain TCP. Each
// accepted connection becomes exactly one transport.Link; no multiplexing
// happens at this layer, so a peer with max_links > 1 needs one TCP
// connection per link.
package tcplink

import (
	"context"
	"net"
	"sync"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Protocol is the locator tag this package registers under.
const Protocol = "tcp"

// Link wraps a *net.TCPConn as a transport.Link.
type Link struct {
	*net.TCPConn
	source, destination transport.Locator
}

// Source implements transport.Link.
func (l *Link) Source() transport.Locator { return l.source }

// Destination implements transport.Link.
func (l *Link) Destination() transport.Locator { return l.destination }

// Manager is a transport.LinkManager backed by net.Listen("tcp", ...).
type Manager struct {
	manager *transport.Manager

	mu        sync.Mutex
	listeners map[string]*net.TCPListener
}

// NewFactory returns a transport.LinkManagerFactory for Protocol.
func NewFactory() transport.LinkManagerFactory {
	return func(m *transport.Manager) (transport.LinkManager, error) {
		return &Manager{manager: m, listeners: map[string]*net.TCPListener{}}, nil
	}
}

// NewListener implements transport.LinkManager.
func (m *Manager) NewListener(ctx context.Context, ep transport.EndPoint) (transport.Locator, error) {
	addr, err := net.ResolveTCPAddr("tcp", ep.Locator.Address())
	if err != nil {
		return "", errwrap.Wrapf(err, "resolving tcp address %q", ep.Locator.Address())
	}

	ln, err := net.ListenTCP("tcp", addr)
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

func (m *Manager) acceptLoop(ln *net.TCPListener, local transport.Locator) {
	for {
		conn, err := ln.AcceptTCP()
		if err != nil {
			// The listener was closed by DelListener, or the accept
			// failed for good; either way there's nothing left to do.
			m.manager.Logf("tcplink: accept loop on %s stopped: %s", local, err)
			return
		}
		link := &Link{
			TCPConn:     conn,
			source:      local,
			destination: transport.Locator(Protocol + "/" + conn.RemoteAddr().String()),
		}
		m.manager.HandleNewLink(link)
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

// NewLink implements transport.LinkManager.
func (m *Manager) NewLink(ctx context.Context, ep transport.EndPoint) (transport.Link, error) {
	addr, err := net.ResolveTCPAddr("tcp", ep.Locator.Address())
	if err != nil {
		return nil, errwrap.Wrapf(err, "resolving tcp address %q", ep.Locator.Address())
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, errwrap.Wrapf(err, "dialing %q", ep.Locator.Address())
	}
	tcpConn := conn.(*net.TCPConn)

	return &Link{
		TCPConn:     tcpConn,
		source:      transport.Locator(Protocol + "/" + tcpConn.LocalAddr().String()),
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
