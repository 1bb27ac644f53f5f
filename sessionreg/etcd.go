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

package sessionreg

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/meshfabric/meshfabric/util/errwrap"
)

// DefaultEtcdPrefix namespaces scope keys so a registry can share an etcd
// cluster with other users.
const DefaultEtcdPrefix = "/meshfabric/sessionreg/"

// EtcdRegistry is a scope registry backed by an etcd cluster, for
// deployments where a set of routers must agree on the same scope table.
// Build one with NewEtcdRegistry and call Init before use; call Close when
// done. Debug and Logf may be set any time before Init.
type EtcdRegistry struct {
	Debug bool
	Logf  func(format string, v ...interface{})

	seeds  []string
	prefix string

	client *etcd.Client
	nextID uint64

	wg sync.WaitGroup
}

// NewEtcdRegistry builds an EtcdRegistry that will connect to seeds on
// Init, namespacing every key under prefix. An empty prefix defaults to
// DefaultEtcdPrefix.
func NewEtcdRegistry(seeds []string, prefix string) *EtcdRegistry {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	return &EtcdRegistry{seeds: seeds, prefix: prefix, nextID: 1}
}

func (r *EtcdRegistry) logf(format string, v ...interface{}) {
	if r.Logf == nil {
		return
	}
	r.Logf(format, v...)
}

// Init connects to the configured etcd seeds.
func (r *EtcdRegistry) Init() error {
	if len(r.seeds) == 0 {
		return fmt.Errorf("sessionreg: zero etcd seeds")
	}
	client, err := etcd.New(etcd.Config{
		Endpoints:   r.seeds,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return errwrap.Wrapf(err, "connecting to etcd")
	}
	r.client = client
	return nil
}

// Close disconnects from etcd.
func (r *EtcdRegistry) Close() error {
	defer r.wg.Wait()
	if r.client == nil {
		return fmt.Errorf("sessionreg: did not Init")
	}
	return r.client.Close()
}

func (r *EtcdRegistry) key(scope uint64) string {
	return r.prefix + strconv.FormatUint(scope, 10)
}

// Register assigns a fresh scope id to body, persists it to etcd, and
// returns it.
func (r *EtcdRegistry) Register(ctx context.Context, body string) (uint64, error) {
	id := atomic.AddUint64(&r.nextID, 1) - 1
	if _, err := r.client.Put(ctx, r.key(id), body); err != nil {
		return 0, errwrap.Wrapf(err, "registering scope %d", id)
	}
	if r.Debug {
		r.logf("registered scope %d", id)
	}
	return id, nil
}

// Unregister removes scope from etcd.
func (r *EtcdRegistry) Unregister(ctx context.Context, scope uint64) error {
	if _, err := r.client.Delete(ctx, r.key(scope)); err != nil {
		return errwrap.Wrapf(err, "unregistering scope %d", scope)
	}
	return nil
}

// Lookup fetches scope's body from etcd. It does not implement
// keyexpr.Lookup directly since that interface has no context parameter;
// use LookupFunc(ctx) to adapt it for a single resolution.
func (r *EtcdRegistry) Lookup(ctx context.Context, scope uint64) (string, bool, error) {
	resp, err := r.client.Get(ctx, r.key(scope))
	if err != nil {
		return "", false, errwrap.Wrapf(err, "looking up scope %d", scope)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// LookupFunc returns a keyexpr.Lookup bound to ctx, for call sites that
// need to pass an EtcdRegistry wherever an in-memory Registry's Lookup
// method would go. Any etcd error is reported as "not found" to the
// caller; use Lookup directly when the distinction matters.
func (r *EtcdRegistry) LookupFunc(ctx context.Context) func(scope uint64) (string, bool) {
	return func(scope uint64) (string, bool) {
		body, ok, err := r.Lookup(ctx, scope)
		if err != nil {
			r.logf("sessionreg: lookup of scope %d failed: %s", scope, err)
			return "", false
		}
		return body, ok
	}
}
