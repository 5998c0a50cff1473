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

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/log"
	"github.com/obs145628/odb/wire"
)

// Serve drives one client connection against loop until the peer
// disconnects or ctx is cancelled. Multiple Serve goroutines may run
// concurrently against the same Loop; Loop.Submit serializes them onto the
// VM-owning goroutine.
//
// On disconnect, if the debugger is sitting stopped, Serve resumes it to
// finish rather than leave the VM paused forever with nobody left to ever
// issue another resume.
func Serve(ctx context.Context, loop *Loop, conn net.Conn) error {
	l := log.New("component", "server.session", "remote", conn.RemoteAddr())
	defer conn.Close()
	_ = wire.DisableNagle(conn)

	for {
		payload, err := wire.RecvFrame(conn)
		if err != nil {
			l.Debug("client disconnected", "err", err)
			check := &wire.CheckStoppedReq{}
			if loop.Submit(ctx, check) == nil && check.OutStopped.Stopped {
				_ = loop.Submit(ctx, &wire.ResumeReq{InType: int8(debugger.ResumeToFinish)})
			}
			return err
		}

		req, err := wire.DecodeRequestEnvelope(payload)
		if err != nil {
			l.Warn("malformed request envelope", "err", err)
			return err
		}

		if dispatchErr := loop.Submit(ctx, req); dispatchErr != nil {
			if err := wire.SendFrame(conn, wire.EncodeErrResponse(dispatchErr.Error())); err != nil {
				return err
			}
			continue
		}
		if err := wire.SendFrame(conn, wire.EncodeResponse(req)); err != nil {
			return err
		}
	}
}
