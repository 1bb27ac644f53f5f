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

	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Close shuts the manager down in a fixed order: stop accepting new work
// first, then drain everything already in flight, then tear down what was
// accepted. Reversing this order would let a listener hand HandleNewLink a
// link after the manager has started closing transports out from under it.
//
//  1. every listener, across every instantiated protocol, is closed so no
//     further inbound links can arrive, and the protocols map itself is
//     cleared;
//  2. the manager's context is cancelled and the errgroup is waited on, so
//     every in-flight accept task (started by HandleNewLink) either
//     finishes or observes the cancellation;
//  3. every remaining transport is closed with CloseReasonGeneric;
//  4. every registered authenticator's Close hook runs.
//
// After Close returns, all three of the manager's maps (protocols,
// transports, and the pending-inbound counter) are empty.
//
// Close is idempotent; only the first call does any work.
func (m *Manager) Close(ctx context.Context) error {
	var err error
	m.closeOnce.Do(func() {
		m.protocolsMu.Lock()
		protocols := make([]LinkManager, 0, len(m.protocols))
		for _, lm := range m.protocols {
			protocols = append(protocols, lm)
		}
		m.protocolsMu.Unlock()

		for _, lm := range protocols {
			for _, ep := range lm.GetListeners() {
				if lerr := lm.DelListener(ctx, ep); lerr != nil {
					err = errwrap.Append(err, lerr)
				}
			}
		}

		m.protocolsMu.Lock()
		m.protocols = map[string]LinkManager{}
		m.metrics.protocolsActive.Set(0)
		m.protocolsMu.Unlock()

		m.cancel()
		if gerr := m.group.Wait(); gerr != nil {
			err = errwrap.Append(err, gerr)
		}

		m.transportsMu.Lock()
		transports := make([]*Transport, 0, len(m.transports))
		for peer, t := range m.transports {
			transports = append(transports, t)
			delete(m.transports, peer)
		}
		m.metrics.transportsActive.Set(0)
		m.transportsMu.Unlock()

		for _, t := range transports {
			if terr := t.Close(CloseReasonGeneric); terr != nil {
				err = errwrap.Append(err, terr)
			}
		}

		for _, a := range m.authenticators {
			if aerr := a.Close(ctx); aerr != nil {
				err = errwrap.Append(err, aerr)
			}
		}

		m.logf("transport manager stopped")
	})
	return err
}
