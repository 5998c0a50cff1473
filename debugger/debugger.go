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

// Package debugger implements the per-instruction debugger state machine:
// breakpoints, call-stack maintenance, and register/symbol caching, all
// driven by a host VM through the vmapi.Adapter capability set.
package debugger

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"

	"github.com/obs145628/odb/log"
	"github.com/obs145628/odb/rangemap"
	"github.com/obs145628/odb/vmapi"
)

// DefaultPreloadWindow is the minimum symbol-preload window in address
// units, per spec.md §9 ("make it configurable but default to 256").
const DefaultPreloadWindow = 256

var (
	ErrNotInitialized    = errors.New("debugger: not initialized")
	ErrAlreadyStopped     = errors.New("debugger: already stopped")
	ErrTerminated         = errors.New("debugger: terminated")
	ErrCallStackUnderflow = errors.New("debugger: call stack underflow")
	ErrBreakpointExists   = errors.New("debugger: breakpoint already set")
	ErrNoSuchBreakpoint   = errors.New("debugger: no breakpoint at address")
	ErrAddrOutOfRange     = errors.New("debugger: address out of range")
)

// Options configures a Debugger.
type Options struct {
	// PreloadWindow is the minimum symbol-preload window, in address units.
	// Zero means DefaultPreloadWindow.
	PreloadWindow uint64
}

// Debugger is the per-VM debugger core. It is not safe for concurrent use:
// the spec assigns it to a single VM-owning thread (see server.Loop).
type Debugger struct {
	adapter vmapi.Adapter
	opts    Options
	log     loggerIface

	state State
	addr  vmapi.Addr

	vmInfos    vmapi.VMInfos
	callStack  []vmapi.CallFrame
	breakpoints mapset.Set // of vmapi.Addr

	symLoaded *rangemap.Map

	regInfos    *lru.ARCCache // RegID -> *vmapi.RegInfos
	regByName   map[string]vmapi.RegID
	symInfos    *lru.ARCCache // SymID -> *vmapi.SymbolInfos

	savedDepth   int
	pendingStop  bool
	lastUpdate   vmapi.UpdateState
}

type loggerIface interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
}

// New constructs a Debugger bound to adapter. Call OnInit before anything
// else.
func New(adapter vmapi.Adapter, opts Options) *Debugger {
	if opts.PreloadWindow == 0 {
		opts.PreloadWindow = DefaultPreloadWindow
	}
	return &Debugger{
		adapter:     adapter,
		opts:        opts,
		log:         log.New("component", "debugger"),
		state:       NotStarted,
		breakpoints: mapset.NewThreadUnsafeSet(),
		regByName:   make(map[string]vmapi.RegID),
	}
}

// OnInit queries the VM's static facts, allocates the symbol-preload range
// map, pushes the initial call frame, and enters running_tofinish.
func (d *Debugger) OnInit() error {
	infos, err := d.adapter.GetVMInfos()
	if err != nil {
		return err
	}
	d.vmInfos = infos

	memMax := uint64(0)
	if infos.MemSize > 0 {
		memMax = infos.MemSize - 1
	}
	d.symLoaded = rangemap.New(0, memMax, 0) // 0 == "not loaded"

	regCacheSize := int(infos.TotalRegCount)
	if regCacheSize < 8 {
		regCacheSize = 8
	}
	symCacheSize := int(infos.SymbolsCount)
	if symCacheSize < 8 {
		symCacheSize = 8
	}
	d.regInfos, err = lru.NewARC(regCacheSize)
	if err != nil {
		return fmt.Errorf("debugger: allocating register cache: %w", err)
	}
	d.symInfos, err = lru.NewARC(symCacheSize)
	if err != nil {
		return fmt.Errorf("debugger: allocating symbol cache: %w", err)
	}

	upd, err := d.adapter.GetUpdateInfos()
	if err != nil {
		return err
	}
	d.addr = upd.NextAddr
	d.callStack = []vmapi.CallFrame{{CallerStartAddr: d.addr}}
	d.state = RunningToFinish
	d.log.Info("debugger initialized", "vm", infos.Name, "entry", d.addr)
	return nil
}

// State returns the current debugger state.
func (d *Debugger) State() State { return d.state }

// CurrentAddr returns the instruction address execution is currently at.
func (d *Debugger) CurrentAddr() vmapi.Addr { return d.addr }

// CallStack returns the call stack, outermost first. The returned slice
// must not be retained past the next resume.
func (d *Debugger) CallStack() []vmapi.CallFrame { return d.callStack }

// VMInfos returns the static facts queried at OnInit.
func (d *Debugger) VMInfos() vmapi.VMInfos { return d.vmInfos }

// StoppedUpdate builds the bundle sent client-ward on a stop.
func (d *Debugger) StoppedUpdate() vmapi.StoppedUpdate {
	u := vmapi.StoppedUpdate{
		Stopped:   d.state == Stopped || d.state.IsTerminal(),
		Addr:      d.addr,
		CallStack: d.callStack,
	}
	switch d.state {
	case Exit:
		u.State = vmapi.StoppedExit
	case Error:
		u.State = vmapi.StoppedError
	default:
		u.State = vmapi.StoppedReady
	}
	return u
}

// OnUpdate runs one instruction-tick's worth of state-machine logic: it
// asks the VM adapter what happened, maintains the call stack, and applies
// the stop policy for the current running state.
func (d *Debugger) OnUpdate() error {
	if !d.state.IsRunning() {
		return nil
	}

	upd, err := d.adapter.GetUpdateInfos()
	if err != nil {
		return err
	}
	d.lastUpdate = upd.State

	switch upd.State {
	case vmapi.UpdateError:
		d.state = Error
		return nil
	case vmapi.UpdateExit:
		d.state = Exit
		return nil
	case vmapi.UpdateCallSub:
		if len(d.callStack) == 0 {
			return ErrCallStackUnderflow
		}
		d.callStack[len(d.callStack)-1].CallAddr = d.addr
		d.callStack = append(d.callStack, vmapi.CallFrame{CallerStartAddr: upd.NextAddr})
	case vmapi.UpdateRetSub:
		if len(d.callStack) <= 1 {
			return ErrCallStackUnderflow
		}
		d.callStack = d.callStack[:len(d.callStack)-1]
	case vmapi.UpdateOK:
		// no stack change
	}

	prevAddr := d.addr
	d.addr = upd.NextAddr
	_ = prevAddr

	if d.pendingStop {
		d.pendingStop = false
		d.state = Stopped
		return nil
	}

	switch d.state {
	case RunningToFinish:
		// never stops on its own
	case RunningStep:
		d.state = Stopped
		return nil
	case RunningStepOver:
		if d.savedDepth >= len(d.callStack) {
			d.state = Stopped
			return nil
		}
	case RunningStepOut:
		if upd.State == vmapi.UpdateRetSub {
			d.state = Stopped
			return nil
		}
	}

	if d.breakpoints.Contains(d.addr) {
		d.state = Stopped
	}
	return nil
}

// Resume moves the debugger from stopped (or not_started) into the
// running_* state named by t. Illegal once exit/error.
func (d *Debugger) Resume(t ResumeType) error {
	if d.state.IsTerminal() {
		return ErrTerminated
	}
	if t == ResumeStepOver {
		d.savedDepth = len(d.callStack)
	}
	d.state = t.state()
	return nil
}

// Stop requests a pause. Illegal when already stopped or terminated; the
// actual transition happens on the next OnUpdate.
func (d *Debugger) Stop() error {
	if d.state == Stopped {
		return ErrAlreadyStopped
	}
	if d.state.IsTerminal() {
		return ErrTerminated
	}
	d.pendingStop = true
	return nil
}

// AddBreakpoint inserts a breakpoint at addr.
func (d *Debugger) AddBreakpoint(addr vmapi.Addr) error {
	if d.vmInfos.MemSize > 0 && uint64(addr) >= d.vmInfos.MemSize {
		return ErrAddrOutOfRange
	}
	if d.breakpoints.Contains(addr) {
		return ErrBreakpointExists
	}
	d.breakpoints.Add(addr)
	return nil
}

// DelBreakpoint removes the breakpoint at addr.
func (d *Debugger) DelBreakpoint(addr vmapi.Addr) error {
	if !d.breakpoints.Contains(addr) {
		return ErrNoSuchBreakpoint
	}
	d.breakpoints.Remove(addr)
	return nil
}

// Breakpoints returns the current set of breakpoint addresses, unordered.
func (d *Debugger) Breakpoints() []vmapi.Addr {
	out := make([]vmapi.Addr, 0, d.breakpoints.Cardinality())
	for v := range d.breakpoints.Iter() {
		out = append(out, v.(vmapi.Addr))
	}
	return out
}
