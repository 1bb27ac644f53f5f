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

// Package config loads the on-disk YAML configuration for a meshfabric
// daemon process: transport manager tuning, the listener set, and the
// optional shared scope registry.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/util/errwrap"
)

// ListenEndpoint is one entry of the config file's listener list: a
// locator string plus its per-protocol option bag.
type ListenEndpoint struct {
	Locator string            `yaml:"locator"`
	Options map[string]string `yaml:"options,omitempty"`
}

// EtcdConfig configures an optional cluster-shared scope registry.
type EtcdConfig struct {
	Seeds  []string `yaml:"seeds"`
	Prefix string   `yaml:"prefix,omitempty"`
}

// File is the root of the YAML configuration document.
type File struct {
	Lease         time.Duration `yaml:"lease"`
	KeepAlive     int           `yaml:"keep_alive"`
	AcceptTimeout time.Duration `yaml:"accept_timeout"`
	AcceptPending int           `yaml:"accept_pending"`
	MaxSessions   int           `yaml:"max_sessions"`
	MaxLinks      int           `yaml:"max_links"`
	QoS           bool          `yaml:"qos"`
	SHM           bool          `yaml:"shm"`

	// EndpointDefaults maps a protocol tag to the option bag merged into
	// every endpoint opened or listened on for that protocol.
	EndpointDefaults map[string]map[string]string `yaml:"endpoint_defaults,omitempty"`

	Listen []ListenEndpoint `yaml:"listen,omitempty"`

	PrometheusListen string `yaml:"prometheus_listen,omitempty"`

	Etcd *EtcdConfig `yaml:"etcd,omitempty"`
}

// Default returns a File pre-filled with transport's package defaults.
func Default() File {
	return File{
		Lease:            transport.DefaultLease,
		KeepAlive:        transport.DefaultKeepAlive,
		AcceptTimeout:    transport.DefaultAcceptTimeout,
		AcceptPending:    transport.DefaultAcceptPending,
		MaxSessions:      transport.DefaultMaxSessions,
		MaxLinks:         transport.DefaultMaxLinks,
		PrometheusListen: "127.0.0.1:9233",
	}
}

// Load reads and parses the YAML configuration file at path, starting from
// Default() so that any field the file omits keeps the package default.
func Load(path string) (File, error) {
	f := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errwrap.Wrapf(err, "reading config file %q", path)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, errwrap.Wrapf(err, "parsing config file %q", path)
	}
	return f, nil
}

// Builder turns a parsed File into a *transport.Builder, leaving
// WithEstablisher and every WithLinkManager registration (including those
// for the protocols named in Listen) to the caller, since those require
// collaborators this package has no opinion about.
func (f File) Builder() *transport.Builder {
	b := transport.NewBuilder().
		Lease(f.Lease).
		KeepAlive(f.KeepAlive).
		AcceptTimeout(f.AcceptTimeout).
		AcceptPending(f.AcceptPending).
		MaxSessions(f.MaxSessions).
		MaxLinks(f.MaxLinks).
		QoS(f.QoS).
		SHM(f.SHM)

	for protocol, defaults := range f.EndpointDefaults {
		b = b.EndpointDefaults(protocol, defaults)
	}
	return b
}

// EndPoints converts the file's listener list into transport.EndPoint
// values.
func (f File) EndPoints() []transport.EndPoint {
	out := make([]transport.EndPoint, 0, len(f.Listen))
	for _, l := range f.Listen {
		ep := transport.NewEndPoint(transport.Locator(l.Locator))
		for k, v := range l.Options {
			ep.Config[k] = v
		}
		out = append(out, ep)
	}
	return out
}
