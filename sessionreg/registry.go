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

// Package sessionreg implements the scope registry that
// keyexpr.Resolve needs but that keyexpr itself stays agnostic of: a table
// mapping a scope id minted during a session to the key expression body it
// stands for. This is session-level state, not part of the pure matching
// core.
package sessionreg

import (
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/meshfabric/meshfabric/util/errwrap"
)

// Registry is an in-memory scope table. The zero value is not usable; call
// New.
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	bodies map[uint64]string
}

// New returns an empty Registry. Scope ids are minted starting at 1, since
// keyexpr.KeyExpr reserves 0 to mean "no scope".
func New() *Registry {
	return &Registry{nextID: 1, bodies: map[uint64]string{}}
}

// Register assigns a fresh scope id to body and returns it.
func (r *Registry) Register(body string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.bodies[id] = body
	return id
}

// Unregister drops scope. It is a no-op if scope was never registered.
func (r *Registry) Unregister(scope uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bodies, scope)
}

// Lookup implements keyexpr.Lookup.
func (r *Registry) Lookup(scope uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	body, ok := r.bodies[scope]
	return body, ok
}

// snapshot is the YAML-serializable form of a Registry's contents.
type snapshot struct {
	NextID uint64            `yaml:"next_id"`
	Bodies map[uint64]string `yaml:"bodies"`
}

// Dump serializes the registry's current contents to YAML.
func (r *Registry) Dump() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := snapshot{NextID: r.nextID, Bodies: r.bodies}
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, errwrap.Wrapf(err, "marshaling scope registry")
	}
	return out, nil
}

// Load replaces the registry's contents with a previously Dump-ed snapshot.
func (r *Registry) Load(data []byte) error {
	var s snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return errwrap.Wrapf(err, "unmarshaling scope registry")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Bodies == nil {
		s.Bodies = map[uint64]string{}
	}
	r.bodies = s.Bodies
	if s.NextID > 0 {
		r.nextID = s.NextID
	}
	return nil
}
