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

package transport

import (
	"context"
	"sync"

	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Transport is an established session with a single peer, backed by one or
// more Links. A Transport is only ever reachable through the Manager that
// created it; there is no way to construct one directly.
type Transport struct {
	manager *Manager

	peer         PeerID
	whatAmI      WhatAmI
	snResolution uint64
	initialTxSN  uint64
	isSHM        bool
	isQoS        bool

	linksMu sync.Mutex
	links   []Link

	closeOnce sync.Once
	closed    bool
}

// Peer returns the id of the remote end of the transport.
func (t *Transport) Peer() PeerID { return t.peer }

// WhatAmI returns the remote end's declared role.
func (t *Transport) WhatAmI() WhatAmI { return t.whatAmI }

// Links returns a snapshot copy of the transport's current links.
func (t *Transport) Links() []Link {
	t.linksMu.Lock()
	defer t.linksMu.Unlock()
	out := make([]Link, len(t.links))
	copy(out, t.links)
	return out
}

// AddLink attaches link to the transport, enforcing the manager's
// configured per-transport link cap.
func (t *Transport) AddLink(link Link) error {
	t.linksMu.Lock()
	defer t.linksMu.Unlock()

	max := t.manager.config.MaxLinks
	if max > 0 && len(t.links) >= max {
		return &MaxLinksReachedError{Max: max, Peer: t.peer}
	}
	t.links = append(t.links, link)
	return nil
}

// Close tears down every link held by the transport and removes it from
// its manager's transport map. It is safe to call more than once; only the
// first call does any work.
//
// The map removal happens here, as a callback into the manager, rather
// than at the call site that decided to close the transport: destruction
// is cooperative, and the manager's map never closes a transport on a
// caller's behalf (see Manager.DelTransport).
func (t *Transport) Close(reason CloseReason) error {
	var err error
	t.closeOnce.Do(func() {
		t.linksMu.Lock()
		links := t.links
		t.links = nil
		t.linksMu.Unlock()

		t.closed = true
		for _, l := range links {
			if cerr := l.Close(); cerr != nil {
				err = errwrap.Append(err, cerr)
			}
		}
		t.manager.forgetTransport(t.peer)
		t.manager.logf("closed transport with peer %s (%s)", t.peer, reason)
	})
	return err
}

// InitTransport installs a freshly negotiated session, or returns the
// existing one for cfg.Peer after checking that the fundamental parameters
// agree. It is called by an Establisher once a handshake has negotiated
// TransportConfig, never directly by application code.
//
// InitialTxSN is deliberately excluded from the fundamental-parameter
// check: re-finding an existing transport never revalidates it against the
// new request. See DESIGN.md for the reasoning behind preserving this.
func (m *Manager) InitTransport(ctx context.Context, cfg TransportConfig) (*Transport, error) {
	m.transportsMu.Lock()
	defer m.transportsMu.Unlock()

	if existing, ok := m.transports[cfg.Peer]; ok {
		if existing.whatAmI != cfg.WhatAmI {
			return nil, &ParameterMismatchError{Peer: cfg.Peer, Field: "what_am_i", Got: cfg.WhatAmI, Expected: existing.whatAmI}
		}
		if existing.snResolution != cfg.SNResolution {
			return nil, &ParameterMismatchError{Peer: cfg.Peer, Field: "sn_resolution", Got: cfg.SNResolution, Expected: existing.snResolution}
		}
		if existing.isSHM != cfg.IsSHM {
			return nil, &ParameterMismatchError{Peer: cfg.Peer, Field: "is_shm", Got: cfg.IsSHM, Expected: existing.isSHM}
		}
		if existing.isQoS != cfg.IsQoS {
			return nil, &ParameterMismatchError{Peer: cfg.Peer, Field: "is_qos", Got: cfg.IsQoS, Expected: existing.isQoS}
		}
		return existing, nil
	}

	if max := m.config.MaxSessions; max > 0 && len(m.transports) >= max {
		return nil, &MaxSessionsReachedError{Max: max, Peer: cfg.Peer}
	}

	t := &Transport{
		manager:      m,
		peer:         cfg.Peer,
		whatAmI:      cfg.WhatAmI,
		snResolution: cfg.SNResolution,
		initialTxSN:  cfg.InitialTxSN,
		isSHM:        cfg.IsSHM,
		isQoS:        cfg.IsQoS,
	}
	m.transports[cfg.Peer] = t
	m.metrics.transportsActive.Set(float64(len(m.transports)))
	m.logf("initialized transport with peer %s (what_am_i=%s)", cfg.Peer, cfg.WhatAmI)
	return t, nil
}

// OpenTransport drives an outbound session establishment to ep: it opens a
// Link through the protocol's LinkManager, then hands it to the
// Establisher to run the handshake and call back into InitTransport.
func (m *Manager) OpenTransport(ctx context.Context, ep EndPoint) (*Transport, error) {
	isMulticast, err := m.locatorInspector.IsMulticast(ep.Locator)
	if err != nil {
		return nil, errwrap.Wrapf(err, "inspecting locator %s", ep.Locator)
	}
	if isMulticast {
		return nil, &MulticastEndpointError{EndPoint: ep}
	}

	lm, err := m.linkManager(ep.Protocol())
	if err != nil {
		return nil, err
	}

	link, err := lm.NewLink(ctx, m.mergedEndPoint(ep))
	if err != nil {
		return nil, errwrap.Wrapf(err, "opening link to %s", ep.Locator)
	}

	t, err := m.establisher.OpenLink(ctx, link, m)
	if err != nil {
		_ = link.Close()
		return nil, errwrap.Wrapf(err, "establishing transport over %s", ep.Locator)
	}
	return t, nil
}

// GetTransport returns the transport for peer, if any.
func (m *Manager) GetTransport(peer PeerID) (*Transport, bool) {
	m.transportsMu.Lock()
	defer m.transportsMu.Unlock()
	t, ok := m.transports[peer]
	return t, ok
}

// GetTransports returns a snapshot copy of every active transport.
func (m *Manager) GetTransports() []*Transport {
	m.transportsMu.Lock()
	defer m.transportsMu.Unlock()
	out := make([]*Transport, 0, len(m.transports))
	for _, t := range m.transports {
		out = append(out, t)
	}
	return out
}

// forgetTransport removes peer's entry from the transports map, if still
// present. Transport.Close calls it as a callback once its links are down.
// DelTransport and Manager.Close do not call it; they remove entries from
// the map themselves.
func (m *Manager) forgetTransport(peer PeerID) {
	m.transportsMu.Lock()
	delete(m.transports, peer)
	m.metrics.transportsActive.Set(float64(len(m.transports)))
	m.transportsMu.Unlock()
}

// DelTransport removes peer's entry from the transports map and runs every
// registered authenticator's HandleClose hook. It deliberately does not
// close the transport itself: removal from the map and closing are
// cooperative, independent operations (the reverse happens in
// Transport.Close, which removes its own entry once its links are down).
// A caller that wants both should call Transport.Close first, or keep
// going through Close for a full manager shutdown, which closes every
// remaining transport directly.
func (m *Manager) DelTransport(ctx context.Context, peer PeerID, reason CloseReason) error {
	m.transportsMu.Lock()
	_, ok := m.transports[peer]
	if ok {
		delete(m.transports, peer)
		m.metrics.transportsActive.Set(float64(len(m.transports)))
	}
	m.transportsMu.Unlock()

	if !ok {
		return &UnknownPeerError{Peer: peer}
	}

	var err error
	for _, a := range m.authenticators {
		if aerr := a.HandleClose(ctx, peer); aerr != nil {
			err = errwrap.Append(err, aerr)
		}
	}
	return err
}
