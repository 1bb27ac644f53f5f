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

import "time"

// Default values, chosen to match the upstream fabric's own unicast
// manager defaults.
const (
	// DefaultLease is the peer liveness deadline communicated to peers.
	DefaultLease = 10 * time.Second
	// DefaultKeepAlive is the divisor applied to Lease to get the actual
	// keep-alive interval. ITU-T G.8013/Y.1731 treats a link as failed
	// after 3.5 missed intervals, so a divisor of 4 gives half an
	// interval of slack.
	DefaultKeepAlive = 4
	// DefaultAcceptTimeout bounds a single inbound establishment.
	DefaultAcceptTimeout = 10 * time.Second
	// DefaultAcceptPending bounds concurrent inbound handshakes.
	DefaultAcceptPending = 100
	// DefaultMaxSessions bounds the number of active transports.
	DefaultMaxSessions = 1000
	// DefaultMaxLinks bounds the number of links per transport.
	DefaultMaxLinks = 1
)

// Config holds the resolved settings a Manager was built with. It is
// immutable once the Manager is built; use Builder to assemble one.
type Config struct {
	Lease         time.Duration
	KeepAlive     int
	AcceptTimeout time.Duration
	AcceptPending int
	MaxSessions   int
	MaxLinks      int
	IsQoS         bool
	IsSHM         bool

	// EndpointDefaults maps a protocol tag to the option bag merged into
	// every EndPoint opened or listened on for that protocol.
	EndpointDefaults map[string]map[string]string

	// Logf is an optional logging sink. It is safe to leave nil; all
	// call sites in this package go through Manager.logf, which no-ops
	// when Logf is unset.
	Logf func(format string, v ...interface{})
}

// KeepAliveInterval returns the actual keep-alive interval, Lease divided
// by KeepAlive.
func (c Config) KeepAliveInterval() time.Duration {
	if c.KeepAlive <= 0 {
		return c.Lease
	}
	return c.Lease / time.Duration(c.KeepAlive)
}

// TransportConfig describes the peer a transport is being initialized for.
// Peer, WhatAmI, SNResolution, IsSHM and IsQoS are fundamental: a
// re-establishment attempt against an existing transport must match all of
// them exactly. InitialTxSN is not fundamental and is never revalidated
// against an existing transport (see DESIGN.md's note on this).
type TransportConfig struct {
	Peer         PeerID
	WhatAmI      WhatAmI
	SNResolution uint64
	InitialTxSN  uint64
	IsSHM        bool
	IsQoS        bool
}
