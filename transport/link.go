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
	"io"
)

// Link is a single transport-level connection to a peer, as established by
// a LinkManager. It does not perform the fabric's own handshake; that is
// the job of an Establisher.
type Link interface {
	io.Reader
	io.Writer
	Close() error
	Source() Locator
	Destination() Locator
}

// LinkManager drives listeners and outbound links for one protocol. The
// manager obtains one LinkManager per protocol tag on first use and shares
// it by handle; a LinkManager's internal state (its listeners, its open
// links) is its own responsibility, not the transport manager's.
type LinkManager interface {
	// NewListener opens a listener bound to ep and returns the Locator it
	// ended up bound to (which may differ from ep.Locator, e.g. when an
	// ephemeral port was requested).
	NewListener(ctx context.Context, ep EndPoint) (Locator, error)
	// DelListener closes a previously opened listener. Implementations
	// must tolerate concurrent callers but need not succeed on an unknown
	// endpoint.
	DelListener(ctx context.Context, ep EndPoint) error
	// NewLink establishes a transport-level connection to ep. It does not
	// perform the fabric handshake.
	NewLink(ctx context.Context, ep EndPoint) (Link, error)
	// GetListeners returns a snapshot copy of the currently bound
	// listener endpoints.
	GetListeners() []EndPoint
	// GetLocators returns a snapshot copy of the locators this manager is
	// currently reachable at.
	GetLocators() []Locator
}

// LinkManagerFactory constructs a LinkManager for one protocol tag, given
// the owning Manager (so the LinkManager can, for example, hand newly
// accepted links back via Manager.HandleNewLink).
type LinkManagerFactory func(m *Manager) (LinkManager, error)
