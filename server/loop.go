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

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/log"
	"github.com/obs145628/odb/wire"
)

// Ticker is the one thing a host VM must expose to Loop: advance by
// exactly one instruction. The loop never reaches into the VM any other
// way — everything else happens through dbg.
type Ticker interface {
	Tick()
}

// Call is one request handed to the loop's owning goroutine.
type Call struct {
	Req wire.Request
}

// Result is Dispatch's outcome, handed back to whoever submitted the Call.
type Result struct {
	Err error
}

// Loop is the single goroutine allowed to touch the VM and the Debugger
// bound to it. Every other goroutine (one per client connection) talks to
// it exclusively through ReqCh/RespCh, mirroring the bounded
// request/result channel pair miner.worker's main loop uses to keep all
// mutation of mining state on one goroutine.
type Loop struct {
	Dbg *debugger.Debugger
	VM  Ticker

	ReqCh  chan Call
	RespCh chan Result

	log log15Like
}

type log15Like interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
}

// NewLoop constructs a Loop with an unbuffered request/result channel
// pair: Submit blocks until the owning goroutine has actually applied the
// call, so callers never observe a half-dispatched request.
func NewLoop(dbg *debugger.Debugger, vm Ticker) *Loop {
	return &Loop{
		Dbg:    dbg,
		VM:     vm,
		ReqCh:  make(chan Call),
		RespCh: make(chan Result),
		log:    log.New("component", "server.loop"),
	}
}

// Submit hands req to the loop goroutine and blocks for its Result. Safe
// to call from any number of goroutines; the loop serializes them.
func (l *Loop) Submit(ctx context.Context, req wire.Request) error {
	select {
	case l.ReqCh <- Call{Req: req}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case res := <-l.RespCh:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run owns the VM: while the debugger is in a running_* state it ticks the
// VM and feeds the result to OnUpdate once per instruction, per spec.md
// §4.8's on_tick polling pattern, opportunistically draining one pending
// request per tick so a running VM never blocks a client's stop request.
// Once the debugger is stopped or terminal, Run blocks on ReqCh instead of
// busy-polling. Returns when ctx is cancelled or OnUpdate reports an
// unrecoverable VM-adapter error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if l.Dbg.State().IsRunning() {
			l.VM.Tick()
			if err := l.Dbg.OnUpdate(); err != nil {
				l.log.Error("vm adapter error", "err", err)
				return err
			}
			select {
			case call := <-l.ReqCh:
				l.RespCh <- Result{Err: Dispatch(l.Dbg, call.Req)}
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case call := <-l.ReqCh:
			l.RespCh <- Result{Err: Dispatch(l.Dbg, call.Req)}
		}
	}
}
