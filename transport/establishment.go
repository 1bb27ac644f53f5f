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

// Establisher runs the fabric handshake over a Link: authentication and
// parameter negotiation are its job, not the manager's. On success it
// calls back into Manager.InitTransport to install the result. Encoding of
// the handshake payloads and any cryptography are out of scope for this
// module; Establisher is the seam where a real implementation plugs in.
type Establisher interface {
	// OpenLink drives the outbound handshake over link and returns the
	// resulting Transport on success.
	OpenLink(ctx context.Context, link Link, m *Manager) (*Transport, error)
	// AcceptLink drives the inbound handshake over link. It returns an
	// error on failure or timeout; the caller is responsible for closing
	// the link in that case.
	AcceptLink(ctx context.Context, link Link, m *Manager) error
}

// CloseReason classifies why a transport was closed.
type CloseReason uint8

const (
	// CloseReasonGeneric covers any closure the manager itself initiates
	// (shutdown) without a more specific cause.
	CloseReasonGeneric CloseReason = iota
	// CloseReasonExpired means the peer's lease expired without renewal.
	CloseReasonExpired
	// CloseReasonMaxSessions means the transport was rejected or dropped
	// because the session cap was reached.
	CloseReasonMaxSessions
)

// String renders the reason for logging.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonGeneric:
		return "generic"
	case CloseReasonExpired:
		return "expired"
	case CloseReasonMaxSessions:
		return "max_sessions"
	default:
		return "unknown"
	}
}
