// Copyright 2026 The odb Authors
// This file is part of the odb library.
//
// The odb library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The odb library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the odb library. If not, see <http://www.gnu.org/licenses/>.

package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/wire"
)

// TestLoopStopWhileRunning is Scenario F: the VM spins forever (jmp 0 never
// exits), a stop request arrives from another goroutine, and the loop
// honors it without ever blocking the VM-owning goroutine on the request.
func TestLoopStopWhileRunning(t *testing.T) {
	vm := mockvm.New([]mockvm.Instr{{Op: mockvm.OpJmp, A: 0}}, nil)
	dbg := debugger.New(vm, debugger.Options{})
	require.NoError(t, dbg.OnInit())

	loop := NewLoop(dbg, vm)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- loop.Run(ctx) }()

	require.NoError(t, loop.Submit(ctx, &wire.StopReq{}))

	require.Eventually(t, func() bool {
		req := &wire.CheckStoppedReq{}
		if err := loop.Submit(ctx, req); err != nil {
			return false
		}
		return req.OutStopped.Stopped
	}, time.Second, time.Millisecond)

	cancel()
	<-runErrCh
}

// TestServeOverPipeConnect exercises the full client<->server wire path
// end to end: Serve reads a framed Connect request off a net.Pipe and
// writes back the encoded VMInfos/StoppedUpdate.
func TestServeOverPipeConnect(t *testing.T) {
	vm, dbg := buildTestDebugger(t)
	loop := NewLoop(dbg, vm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	client, srv := net.Pipe()
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- Serve(ctx, loop, srv) }()

	req := &wire.ConnectReq{}
	require.NoError(t, wire.SendFrame(client, wire.EncodeRequest(req)))
	respBytes, err := wire.RecvFrame(client)
	require.NoError(t, err)
	require.NoError(t, wire.DecodeResponse(req, respBytes))
	require.Equal(t, "mvm0", req.OutInfos.Name)

	client.Close()
	<-serveErrCh
}
