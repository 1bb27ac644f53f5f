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

// HandleNewLink is called by a LinkManager whenever it accepts an inbound
// link, before any handshake bytes have been read. It is the sole
// admission-control choke point against a slow-handshake denial of
// service: the incoming counter is incremented here, synchronously, and
// only then is the (potentially slow) handshake handed off to a
// background task bounded by Config.AcceptTimeout.
//
// If the pending-handshake cap has already been reached the link is
// rejected immediately and closed by the caller's responsibility is
// discharged: HandleNewLink itself closes link in that case.
func (m *Manager) HandleNewLink(link Link) {
	m.incomingMu.Lock()
	if m.incoming >= m.config.AcceptPending {
		m.incomingMu.Unlock()
		m.metrics.acceptDropped.Inc()
		m.logf("dropping inbound link from %s: accept_pending limit reached (%d)", link.Source(), m.config.AcceptPending)
		_ = link.Close()
		return
	}
	m.incoming++
	m.metrics.incomingPending.Set(float64(m.incoming))
	m.incomingMu.Unlock()

	m.group.Go(func() error {
		defer func() {
			m.incomingMu.Lock()
			m.incoming--
			m.metrics.incomingPending.Set(float64(m.incoming))
			m.incomingMu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(m.ctx, m.config.AcceptTimeout)
		defer cancel()

		if err := m.establisher.AcceptLink(ctx, link, m); err != nil {
			m.logf("inbound establishment from %s failed: %s", link.Source(), err)
			_ = link.Close()
		}
		// Errors from an individual accept never fail the manager's
		// errgroup: one bad peer must not cancel every other in-flight
		// handshake or block Close.
		return nil
	})
}
