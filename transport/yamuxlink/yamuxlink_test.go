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

package yamuxlink_test

import (
	"context"
	"testing"
	"time"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/transport/yamuxlink"
)

type capturingEstablisher struct {
	accepted chan transport.Link
}

func (e *capturingEstablisher) OpenLink(ctx context.Context, link transport.Link, m *transport.Manager) (*transport.Transport, error) {
	return nil, nil
}

func (e *capturingEstablisher) AcceptLink(ctx context.Context, link transport.Link, m *transport.Manager) error {
	e.accepted <- link
	return nil
}

func TestListenDialAndMultiplexedStreams(t *testing.T) {
	est := &capturingEstablisher{accepted: make(chan transport.Link, 2)}
	m, err := transport.NewBuilder().
		WithEstablisher(est).
		WithLinkManager(yamuxlink.Protocol, yamuxlink.NewFactory()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close(context.Background())

	ep := transport.NewEndPoint(transport.Locator(yamuxlink.Protocol + "/127.0.0.1:0"))
	bound, err := m.AddListener(context.Background(), ep)
	if err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	lm, err := yamuxlink.NewFactory()(m)
	if err != nil {
		t.Fatalf("building dialer link manager: %v", err)
	}
	dialed := transport.NewEndPoint(bound)

	link1, err := lm.NewLink(context.Background(), dialed)
	if err != nil {
		t.Fatalf("NewLink (1st stream): %v", err)
	}
	defer link1.Close()

	link2, err := lm.NewLink(context.Background(), dialed)
	if err != nil {
		t.Fatalf("NewLink (2nd stream): %v", err)
	}
	defer link2.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-est.accepted:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for stream %d to be accepted", i+1)
		}
	}
}
