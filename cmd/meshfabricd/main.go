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

// Command meshfabricd loads a configuration file, starts a unicast
// transport manager with the link protocols it names, exposes a
// Prometheus metrics endpoint, and runs until interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/meshfabric/meshfabric/config"
	"github.com/meshfabric/meshfabric/transport"
	"github.com/meshfabric/meshfabric/transport/tcplink"
	"github.com/meshfabric/meshfabric/transport/yamuxlink"
)

const (
	program = "meshfabricd"
	version = "0.1.0"
)

// cliArgs is the top-level CLI parsing structure.
type cliArgs struct {
	Config  string `arg:"--config,required" help:"path to the YAML configuration file"`
	Verbose bool   `arg:"-v,--verbose" help:"enable debug logging"`
}

// Version implements go-arg's version hook.
func (cliArgs) Version() string {
	return fmt.Sprintf("%s %s", program, version)
}

func main() {
	args := cliArgs{}
	arg.MustParse(&args)

	logf := func(format string, v ...interface{}) {
		log.Printf(format, v...)
	}
	if !args.Verbose {
		logf = func(format string, v ...interface{}) {} // quiet by default, matching the teacher's opt-in Debug convention
	}

	if err := run(args, logf); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", program, err)
		os.Exit(1)
	}
}

func run(args cliArgs, logf func(format string, v ...interface{})) error {
	file, err := config.Load(args.Config)
	if err != nil {
		return err
	}

	est := &handshakeEstablisher{logf: logf}

	manager, err := file.Builder().
		Logf(logf).
		WithEstablisher(est).
		WithLinkManager(tcplink.Protocol, tcplink.NewFactory()).
		WithLinkManager(yamuxlink.Protocol, yamuxlink.NewFactory()).
		Build()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, ep := range file.EndPoints() {
		bound, err := manager.AddListener(ctx, ep)
		if err != nil {
			_ = manager.Close(context.Background())
			return err
		}
		logf("listening on %s", bound)
	}

	srv := &http.Server{Addr: file.PrometheusListen, Handler: manager.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logf("metrics server stopped: %s", err)
		}
	}()

	logf("%s %s started", program, version)
	<-ctx.Done()
	logf("shutting down")

	_ = srv.Close()
	return manager.Close(context.Background())
}

// handshakeEstablisher runs a minimal cleartext parameter exchange:
// each side writes a freshly minted peer id and its role as a single
// newline-terminated line and reads the peer's. There is no encryption or
// proof of identity here; authentication payloads are out of scope for
// this daemon and are left to a transport.PeerAuthenticator.
type handshakeEstablisher struct {
	logf func(format string, v ...interface{})
}

func (e *handshakeEstablisher) OpenLink(ctx context.Context, link transport.Link, m *transport.Manager) (*transport.Transport, error) {
	return e.negotiate(ctx, link, m, transport.Peer)
}

func (e *handshakeEstablisher) AcceptLink(ctx context.Context, link transport.Link, m *transport.Manager) error {
	_, err := e.negotiate(ctx, link, m, transport.Peer)
	return err
}

func (e *handshakeEstablisher) negotiate(ctx context.Context, link transport.Link, m *transport.Manager, whatAmI transport.WhatAmI) (*transport.Transport, error) {
	self := transport.NewPeerID()
	if _, err := fmt.Fprintf(link, "%s %d\n", self, whatAmI); err != nil {
		return nil, err
	}

	var peerStr string
	var remoteWhatAmI uint8
	if _, err := fmt.Fscanf(link, "%s %d\n", &peerStr, &remoteWhatAmI); err != nil {
		return nil, err
	}
	peer, err := transport.ParsePeerID(peerStr)
	if err != nil {
		return nil, err
	}

	t, err := m.InitTransport(ctx, transport.TransportConfig{
		Peer:    peer,
		WhatAmI: transport.WhatAmI(remoteWhatAmI),
	})
	if err != nil {
		return nil, err
	}
	if err := t.AddLink(link); err != nil {
		return nil, err
	}
	e.logf("negotiated transport with peer %s over %s", peer, link.Destination())
	return t, nil
}
