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

import "fmt"

// UnknownProtocolError is returned by operations on a protocol for which no
// LinkManager has been registered or instantiated yet.
type UnknownProtocolError struct {
	Protocol string
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("no link manager for protocol %q", e.Protocol)
}

// MulticastEndpointError is returned by OpenTransport when given a
// multicast locator, since unicast transports can't be opened to a group.
type MulticastEndpointError struct {
	EndPoint EndPoint
}

func (e *MulticastEndpointError) Error() string {
	return fmt.Sprintf("cannot open a unicast transport with a multicast endpoint: %s", e.EndPoint.Locator)
}

// ParameterMismatchError is returned by InitTransport when a peer already
// has a transport whose fundamental parameters disagree with the new
// request.
type ParameterMismatchError struct {
	Peer     PeerID
	Field    string
	Got      interface{}
	Expected interface{}
}

func (e *ParameterMismatchError) Error() string {
	return fmt.Sprintf("transport with peer %s already exists; invalid %s: %v, expected: %v", e.Peer, e.Field, e.Got, e.Expected)
}

// MaxSessionsReachedError is returned by InitTransport when the active
// transport cap has been reached and no transport exists yet for the peer.
type MaxSessionsReachedError struct {
	Max  int
	Peer PeerID
}

func (e *MaxSessionsReachedError) Error() string {
	return fmt.Sprintf("max transports reached (%d); denying new transport with peer %s", e.Max, e.Peer)
}

// UnknownPeerError is returned by DelTransport on a peer with no active
// transport.
type UnknownPeerError struct {
	Peer PeerID
}

func (e *UnknownPeerError) Error() string {
	return fmt.Sprintf("cannot delete the transport of peer %s: not found", e.Peer)
}

// MaxLinksReachedError is returned by Transport.AddLink when the transport
// already holds its configured maximum number of links.
type MaxLinksReachedError struct {
	Max  int
	Peer PeerID
}

func (e *MaxLinksReachedError) Error() string {
	return fmt.Sprintf("max links reached (%d) for transport with peer %s", e.Max, e.Peer)
}
