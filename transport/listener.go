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

// AddListener opens a listener on ep, instantiating the LinkManager for
// its protocol on first use, and returns the locator it was actually bound
// to.
func (m *Manager) AddListener(ctx context.Context, ep EndPoint) (Locator, error) {
	lm, err := m.linkManager(ep.Protocol())
	if err != nil {
		return "", err
	}

	bound, err := lm.NewListener(ctx, m.mergedEndPoint(ep))
	if err != nil {
		return "", errwrap.Wrapf(err, "opening listener on %s", ep.Locator)
	}
	m.logf("listening on %s", bound)
	return bound, nil
}

// DelListener closes a previously opened listener. Deleting against a
// protocol whose LinkManager was never created (or has already been
// removed once empty) is a hard error, not a silent no-op. Once the
// LinkManager has no remaining listeners it is itself removed from the
// protocols map.
func (m *Manager) DelListener(ctx context.Context, ep EndPoint) error {
	protocol := ep.Protocol()
	lm, err := m.existingLinkManager(protocol)
	if err != nil {
		return err
	}
	if err := lm.DelListener(ctx, m.mergedEndPoint(ep)); err != nil {
		return errwrap.Wrapf(err, "closing listener on %s", ep.Locator)
	}
	m.logf("stopped listening on %s", ep.Locator)
	m.dropLinkManagerIfEmpty(protocol, lm)
	return nil
}

// GetListeners returns a snapshot of every bound listener endpoint across
// all instantiated protocols.
func (m *Manager) GetListeners() []EndPoint {
	m.protocolsMu.Lock()
	protocols := make([]LinkManager, 0, len(m.protocols))
	for _, lm := range m.protocols {
		protocols = append(protocols, lm)
	}
	m.protocolsMu.Unlock()

	var out []EndPoint
	for _, lm := range protocols {
		out = append(out, lm.GetListeners()...)
	}
	return out
}

// GetLocators returns a snapshot of every locator the manager is currently
// reachable at, across all instantiated protocols.
func (m *Manager) GetLocators() []Locator {
	m.protocolsMu.Lock()
	protocols := make([]LinkManager, 0, len(m.protocols))
	for _, lm := range m.protocols {
		protocols = append(protocols, lm)
	}
	m.protocolsMu.Unlock()

	var out []Locator
	for _, lm := range protocols {
		out = append(out, lm.GetLocators()...)
	}
	return out
}
