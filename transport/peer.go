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
	"github.com/google/uuid"
)

// PeerID is the 128-bit identity a transport is keyed by. A peer has at
// most one transport at a time.
type PeerID [16]byte

// NewPeerID mints a fresh random peer identity.
func NewPeerID() PeerID {
	return PeerID(uuid.New())
}

// ParsePeerID parses the canonical string form of a peer identity.
func ParsePeerID(s string) (PeerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PeerID{}, err
	}
	return PeerID(id), nil
}

// String renders the peer identity in its canonical textual form.
func (p PeerID) String() string {
	return uuid.UUID(p).String()
}

// WhatAmI is a peer's role in the fabric.
type WhatAmI uint8

const (
	// Router routes traffic between peers and other routers.
	Router WhatAmI = iota
	// Peer both produces and consumes traffic and may route for others.
	Peer
	// ClientRole only produces and consumes traffic through a router or peer.
	ClientRole
)

// String renders the role for logging and error messages.
func (w WhatAmI) String() string {
	switch w {
	case Router:
		return "router"
	case Peer:
		return "peer"
	case ClientRole:
		return "client"
	default:
		return "unknown"
	}
}
