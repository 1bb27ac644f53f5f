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

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meshfabric/meshfabric/config"
	"github.com/meshfabric/meshfabric/transport"
)

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meshfabricd.yaml")
	contents := []byte("max_sessions: 5\nlisten:\n  - locator: tcp/0.0.0.0:7447\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if f.MaxSessions != 5 {
		t.Fatalf("got MaxSessions %d, want 5", f.MaxSessions)
	}
	if f.Lease != 10*time.Second {
		t.Fatalf("got Lease %s, want the package default", f.Lease)
	}
	if len(f.Listen) != 1 || f.Listen[0].Locator != "tcp/0.0.0.0:7447" {
		t.Fatalf("got Listen %+v, want one tcp endpoint", f.Listen)
	}
}

func TestEndPointsCarriesOptions(t *testing.T) {
	f := config.Default()
	f.Listen = []config.ListenEndpoint{
		{Locator: "tcp/127.0.0.1:0", Options: map[string]string{"backlog": "16"}},
	}

	eps := f.EndPoints()
	if len(eps) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(eps))
	}
	if eps[0].Config["backlog"] != "16" {
		t.Fatalf("got backlog option %q, want \"16\"", eps[0].Config["backlog"])
	}
}

func TestBuilderBuildsWithTuning(t *testing.T) {
	f := config.Default()
	f.MaxLinks = 3

	m, err := f.Builder().WithEstablisher(&nopEstablisher{}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close(context.Background())
}

type nopEstablisher struct{}

func (nopEstablisher) OpenLink(ctx context.Context, l transport.Link, m *transport.Manager) (*transport.Transport, error) {
	return nil, nil
}

func (nopEstablisher) AcceptLink(ctx context.Context, l transport.Link, m *transport.Manager) error {
	return nil
}
