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

import "context"

// PeerAuthenticator is the hook point for peer authentication. The actual
// handshake payloads and cryptography are out of scope for this module;
// this interface exists so that Manager.Close and Manager.DelTransport
// have somewhere real to call, even while no production authenticator
// ships here.
type PeerAuthenticator interface {
	// Open is called once, from Builder.Build, when the Manager the
	// authenticator was registered with (via Builder.WithAuthenticator) is
	// constructed.
	Open(ctx context.Context) error
	// Close is called once, from Manager.Close.
	Close(ctx context.Context) error
	// HandleClose is called from Manager.DelTransport, after the peer's
	// transport has been removed from the manager's table.
	HandleClose(ctx context.Context, peer PeerID) error
}
