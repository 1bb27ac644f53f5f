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

// Package transport multiplexes unicast peer sessions across one or more
// link protocols behind a single Manager. It owns admission control,
// session deduplication by peer id, and the concurrent lifecycle of
// listeners, in-flight handshakes and established transports.
package transport

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Manager is the unicast transport manager. Its three maps (pending
// inbound counter, per-protocol link managers, per-peer transports) are
// each guarded by their own mutex; no operation in this package holds more
// than one of those mutexes at a time, so no ordering between them is
// needed.
type Manager struct {
	config Config

	incomingMu sync.Mutex
	incoming   int

	protocolsMu sync.Mutex
	protocols   map[string]LinkManager
	factories   map[string]LinkManagerFactory

	transportsMu sync.Mutex
	transports   map[PeerID]*Transport

	establisher      Establisher
	authenticators   []PeerAuthenticator
	locatorInspector LocatorInspector
	metrics          *Metrics

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// newManager is the shared constructor used by Builder.Build. It is not
// exported: callers assemble a Manager through a Builder so that required
// collaborators (at minimum an Establisher) can't be forgotten.
func newManager(cfg Config, factories map[string]LinkManagerFactory, authenticators []PeerAuthenticator, establisher Establisher, li LocatorInspector) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	m := &Manager{
		config:           cfg,
		protocols:        map[string]LinkManager{},
		factories:        factories,
		transports:       map[PeerID]*Transport{},
		establisher:      establisher,
		authenticators:   authenticators,
		locatorInspector: li,
		metrics:          newMetrics(),
		group:            group,
		ctx:              gctx,
		cancel:           cancel,
	}

	for _, a := range authenticators {
		if err := a.Open(ctx); err != nil {
			cancel()
			return nil, errwrap.Wrapf(err, "opening peer authenticator")
		}
	}

	m.logf("transport manager started: max_sessions=%d max_links=%d accept_pending=%d", cfg.MaxSessions, cfg.MaxLinks, cfg.AcceptPending)
	return m, nil
}

// logf forwards to the configured Config.Logf, or silently does nothing if
// none was set. Every log call site in this package goes through here so
// that an unset logger never has to be special-cased at the point of use.
func (m *Manager) logf(format string, v ...interface{}) {
	if m.config.Logf == nil {
		return
	}
	m.config.Logf(format, v...)
}

// Logf exposes the manager's logging sink to LinkManager implementations
// living in other packages (tcplink, yamuxlink, ...), so they can report
// accept-loop errors through the same unset-safe sink as the manager
// itself.
func (m *Manager) Logf(format string, v ...interface{}) {
	m.logf(format, v...)
}

// linkManager returns the LinkManager for protocol, instantiating it from
// the registered factory on first use.
func (m *Manager) linkManager(protocol string) (LinkManager, error) {
	m.protocolsMu.Lock()
	defer m.protocolsMu.Unlock()

	if lm, ok := m.protocols[protocol]; ok {
		return lm, nil
	}

	factory, ok := m.factories[protocol]
	if !ok {
		return nil, &UnknownProtocolError{Protocol: protocol}
	}

	lm, err := factory(m)
	if err != nil {
		return nil, errwrap.Wrapf(err, "instantiating link manager for protocol %q", protocol)
	}
	m.protocols[protocol] = lm
	m.metrics.protocolsActive.Set(float64(len(m.protocols)))
	return lm, nil
}

// existingLinkManager returns the LinkManager already instantiated for
// protocol, without falling back to its factory. DelListener uses this: a
// delete against a protocol whose LinkManager was never created, or has
// already been removed once empty, is a hard error rather than an
// implicit re-creation.
func (m *Manager) existingLinkManager(protocol string) (LinkManager, error) {
	m.protocolsMu.Lock()
	defer m.protocolsMu.Unlock()

	lm, ok := m.protocols[protocol]
	if !ok {
		return nil, &UnknownProtocolError{Protocol: protocol}
	}
	return lm, nil
}

// dropLinkManagerIfEmpty removes protocol's LinkManager from the active set
// once it has no remaining listeners, so a fully torn-down protocol doesn't
// linger in the protocols map.
func (m *Manager) dropLinkManagerIfEmpty(protocol string, lm LinkManager) {
	if len(lm.GetListeners()) != 0 {
		return
	}
	m.protocolsMu.Lock()
	delete(m.protocols, protocol)
	m.metrics.protocolsActive.Set(float64(len(m.protocols)))
	m.protocolsMu.Unlock()
}

// mergedEndPoint applies the manager's configured defaults for ep's
// protocol to ep, without mutating ep itself.
func (m *Manager) mergedEndPoint(ep EndPoint) EndPoint {
	defaults, ok := m.config.EndpointDefaults[ep.Protocol()]
	if !ok {
		return ep
	}
	return mergeDefaults(ep, defaults)
}
