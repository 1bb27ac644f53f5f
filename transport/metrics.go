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
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gauges and counters exported by a Manager. Each
// Manager owns its own prometheus.Registry rather than registering into
// the global default registry, so that more than one Manager (e.g. one per
// test case) can coexist in the same process without a duplicate
// registration panic.
type Metrics struct {
	registry *prometheus.Registry

	incomingPending  prometheus.Gauge
	protocolsActive  prometheus.Gauge
	transportsActive prometheus.Gauge
	acceptDropped    prometheus.Counter
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		incomingPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshfabric_transport_incoming_pending",
			Help: "Number of inbound links currently undergoing establishment.",
		}),
		protocolsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshfabric_transport_protocols_active",
			Help: "Number of link protocols with an instantiated link manager.",
		}),
		transportsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshfabric_transport_sessions_active",
			Help: "Number of established unicast transports.",
		}),
		acceptDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshfabric_transport_accept_dropped_total",
			Help: "Inbound links rejected outright because accept_pending was already saturated.",
		}),
	}

	reg.MustRegister(m.incomingPending, m.protocolsActive, m.transportsActive, m.acceptDropped)
	return m
}

// Handler returns an http.Handler exposing this manager's metrics in the
// Prometheus exposition format, suitable for mounting under e.g. /metrics.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.metrics.registry, promhttp.HandlerOpts{})
}
