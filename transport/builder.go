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
	"fmt"
	"time"
)

// Builder assembles a Config and an initial set of LinkManager factories
// into a Manager. Use NewBuilder to get sane defaults, chain the option
// methods, then call Build.
type Builder struct {
	lease         time.Duration
	keepAlive     int
	acceptTimeout time.Duration
	acceptPending int
	maxSessions   int
	maxLinks      int
	isQoS         bool
	isSHM         bool

	endpointDefaults map[string]map[string]string
	factories        map[string]LinkManagerFactory
	authenticators   []PeerAuthenticator
	establisher      Establisher
	locatorInspector LocatorInspector
	logf             func(format string, v ...interface{})
}

// NewBuilder returns a Builder pre-filled with the package defaults.
func NewBuilder() *Builder {
	return &Builder{
		lease:            DefaultLease,
		keepAlive:        DefaultKeepAlive,
		acceptTimeout:    DefaultAcceptTimeout,
		acceptPending:    DefaultAcceptPending,
		maxSessions:      DefaultMaxSessions,
		maxLinks:         DefaultMaxLinks,
		endpointDefaults: map[string]map[string]string{},
		factories:        map[string]LinkManagerFactory{},
		locatorInspector: DefaultLocatorInspector{},
	}
}

// Lease sets the peer liveness deadline.
func (b *Builder) Lease(d time.Duration) *Builder { b.lease = d; return b }

// KeepAlive sets the divisor applied to Lease for the actual keep-alive
// interval.
func (b *Builder) KeepAlive(n int) *Builder { b.keepAlive = n; return b }

// AcceptTimeout sets the upper bound on a single inbound establishment.
func (b *Builder) AcceptTimeout(d time.Duration) *Builder { b.acceptTimeout = d; return b }

// AcceptPending sets the maximum concurrent inbound handshakes.
func (b *Builder) AcceptPending(n int) *Builder { b.acceptPending = n; return b }

// MaxSessions sets the cap on active transports.
func (b *Builder) MaxSessions(n int) *Builder { b.maxSessions = n; return b }

// MaxLinks sets the cap on links per transport.
func (b *Builder) MaxLinks(n int) *Builder { b.maxLinks = n; return b }

// QoS enables multi-priority channels per transport.
func (b *Builder) QoS(enabled bool) *Builder { b.isQoS = enabled; return b }

// SHM advertises shared-memory capability.
func (b *Builder) SHM(enabled bool) *Builder { b.isSHM = enabled; return b }

// Logf sets the logging sink forwarded into the built Manager's Config.
func (b *Builder) Logf(f func(format string, v ...interface{})) *Builder { b.logf = f; return b }

// EndpointDefaults sets the default option bag merged into every EndPoint
// opened or listened on for protocol.
func (b *Builder) EndpointDefaults(protocol string, defaults map[string]string) *Builder {
	b.endpointDefaults[protocol] = defaults
	return b
}

// WithLinkManager registers the factory used to create the LinkManager for
// protocol on first use.
func (b *Builder) WithLinkManager(protocol string, factory LinkManagerFactory) *Builder {
	b.factories[protocol] = factory
	return b
}

// WithAuthenticator registers a peer authenticator whose Open hook fires
// during Build and whose Close/HandleClose hooks fire from Manager.Close
// and Manager.DelTransport respectively.
func (b *Builder) WithAuthenticator(a PeerAuthenticator) *Builder {
	b.authenticators = append(b.authenticators, a)
	return b
}

// WithEstablisher sets the establishment collaborator used by
// OpenTransport and HandleNewLink. Build fails without one.
func (b *Builder) WithEstablisher(e Establisher) *Builder {
	b.establisher = e
	return b
}

// WithLocatorInspector overrides the default multicast-detection logic.
func (b *Builder) WithLocatorInspector(li LocatorInspector) *Builder {
	b.locatorInspector = li
	return b
}

// Build validates the accumulated options and returns a ready-to-use
// Manager. The returned Manager owns a background context that Close
// cancels; callers must call Close when done.
func (b *Builder) Build() (*Manager, error) {
	if b.establisher == nil {
		return nil, fmt.Errorf("cannot build a transport manager without an establisher")
	}
	if b.lease <= 0 {
		return nil, fmt.Errorf("lease must be positive")
	}
	if b.acceptPending < 0 || b.maxSessions < 0 || b.maxLinks < 0 {
		return nil, fmt.Errorf("accept_pending, max_sessions and max_links must be non-negative")
	}

	cfg := Config{
		Lease:            b.lease,
		KeepAlive:        b.keepAlive,
		AcceptTimeout:    b.acceptTimeout,
		AcceptPending:    b.acceptPending,
		MaxSessions:      b.maxSessions,
		MaxLinks:         b.maxLinks,
		IsQoS:            b.isQoS,
		IsSHM:            b.isSHM,
		EndpointDefaults: b.endpointDefaults,
		Logf:             b.logf,
	}

	return newManager(cfg, b.factories, b.authenticators, b.establisher, b.locatorInspector)
}
