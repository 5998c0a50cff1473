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

package debugger

import (
	"encoding/binary"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/vmapi"
)

// requireCallStackLen asserts the call stack depth, dumping the full stack
// on failure since a depth mismatch is otherwise hard to debug blind.
func requireCallStackLen(t *testing.T, dbg *Debugger, want int) {
	t.Helper()
	stack := dbg.CallStack()
	if len(stack) != want {
		t.Fatalf("call stack depth = %d, want %d:\n%s", len(stack), want, spew.Sdump(stack))
	}
}

// buildAddProgram assembles:
//
//	_start: movi 12,r0 ; movi 45,r1 ; call my_add ; mov r0,r10 ; movi 0,r0 ; sys 0
//	my_add: add r1,r0 ; ret
//
// with my_add placed right after _start, so addresses are fixed and easy to
// reason about in assertions below.
func buildAddProgram() (*mockvm.VM, *Debugger) {
	code := []mockvm.Instr{
		{Op: mockvm.OpMovi, A: 12, B: int64(mockvm.R0)}, // 0
		{Op: mockvm.OpMovi, A: 45, B: int64(mockvm.R1)}, // 1
		{Op: mockvm.OpCall, A: 6, SymTgt: true, SymID: 1}, // 2 -> my_add
		{Op: mockvm.OpMov, A: int64(mockvm.R0), B: int64(mockvm.R10)}, // 3
		{Op: mockvm.OpMovi, A: 0, B: int64(mockvm.R0)}, // 4
		{Op: mockvm.OpSys, A: 0}, // 5
		{Op: mockvm.OpAdd, A: int64(mockvm.R1), B: int64(mockvm.R0)}, // 6 my_add
		{Op: mockvm.OpRet}, // 7
	}
	syms := []mockvm.Symbol{
		{Name: "_start", Addr: 0},
		{Name: "my_add", Addr: 6},
	}
	vm := mockvm.New(code, syms)
	dbg := New(vm, Options{})
	return vm, dbg
}

// runUntilStopped drives the VM one tick at a time, feeding each tick to
// the debugger, until it leaves its current running_* state. Mirrors the
// per-instruction polling loop a server.Loop performs around a live VM.
func runUntilStopped(t *testing.T, vm *mockvm.VM, dbg *Debugger) {
	t.Helper()
	for dbg.State().IsRunning() {
		vm.Tick()
		require.NoError(t, dbg.OnUpdate())
	}
}

func TestScenarioA_StepAcrossCall(t *testing.T) {
	vm, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())
	require.Equal(t, vmapi.Addr(0), dbg.CurrentAddr())

	for i := 0; i < 3; i++ {
		require.NoError(t, dbg.Resume(ResumeStep))
		runUntilStopped(t, vm, dbg)
		require.Equal(t, Stopped, dbg.State())
	}

	require.Equal(t, vmapi.Addr(6), dbg.CurrentAddr())
	requireCallStackLen(t, dbg, 2)
	require.Equal(t, vmapi.Addr(6), dbg.CallStack()[1].CallerStartAddr)
}

func TestScenarioB_StepOverCall(t *testing.T) {
	vm, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())

	// Three step_overs: the first two cross a plain instruction each, the
	// third crosses the whole call/add/ret sequence in one go, since
	// running_step_over only stops once the call depth returns to (or
	// below) what it was when the step_over began.
	for i := 0; i < 3; i++ {
		require.NoError(t, dbg.Resume(ResumeStepOver))
		runUntilStopped(t, vm, dbg)
		require.Equal(t, Stopped, dbg.State())
	}

	require.Equal(t, vmapi.Addr(3), dbg.CurrentAddr())
	requireCallStackLen(t, dbg, 1)

	r0, err := dbg.GetReg(mockvm.R0)
	require.NoError(t, err)
	require.Equal(t, uint32(57), binary.LittleEndian.Uint32(r0.Value))
}

func TestScenarioC_ContinueWithBreakpoint(t *testing.T) {
	vm, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())
	require.NoError(t, dbg.AddBreakpoint(6))

	require.NoError(t, dbg.Resume(ResumeContinue))
	runUntilStopped(t, vm, dbg)

	require.Equal(t, Stopped, dbg.State())
	require.Equal(t, vmapi.Addr(6), dbg.CurrentAddr())
	requireCallStackLen(t, dbg, 2)
}

func TestScenarioD_StepOut(t *testing.T) {
	vm, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())
	require.NoError(t, dbg.AddBreakpoint(6))
	require.NoError(t, dbg.Resume(ResumeContinue))
	runUntilStopped(t, vm, dbg)
	require.Equal(t, vmapi.Addr(6), dbg.CurrentAddr())

	require.NoError(t, dbg.Resume(ResumeStepOut))
	runUntilStopped(t, vm, dbg)

	require.Equal(t, Stopped, dbg.State())
	require.Equal(t, vmapi.Addr(3), dbg.CurrentAddr())
	requireCallStackLen(t, dbg, 1)
}

func TestScenarioRunToExit(t *testing.T) {
	vm, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())

	require.NoError(t, dbg.Resume(ResumeToFinish))
	runUntilStopped(t, vm, dbg)

	require.Equal(t, Exit, dbg.State())
	u := dbg.StoppedUpdate()
	require.Equal(t, vmapi.StoppedExit, u.State)
	require.True(t, u.Stopped)
}

func TestBreakpointAddRemoveErrors(t *testing.T) {
	_, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())

	require.NoError(t, dbg.AddBreakpoint(3))
	require.ErrorIs(t, dbg.AddBreakpoint(3), ErrBreakpointExists)
	require.ErrorIs(t, dbg.AddBreakpoint(9999), ErrAddrOutOfRange)

	require.NoError(t, dbg.DelBreakpoint(3))
	require.ErrorIs(t, dbg.DelBreakpoint(3), ErrNoSuchBreakpoint)
}

func TestSymbolLookupByAddr(t *testing.T) {
	_, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())

	syms, err := dbg.GetSymbolsByAddr(0, dbg.VMInfos().MemSize)
	require.NoError(t, err)
	names := map[string]vmapi.Addr{}
	for _, s := range syms {
		names[s.Name] = s.Address
	}
	require.Equal(t, vmapi.Addr(0), names["_start"])
	require.Equal(t, vmapi.Addr(6), names["my_add"])

	id, err := dbg.FindSymID("my_add")
	require.NoError(t, err)
	info, err := dbg.GetSymbolInfos(id)
	require.NoError(t, err)
	require.Equal(t, "my_add", info.Name)
}

func TestGetCodeText(t *testing.T) {
	_, dbg := buildAddProgram()
	require.NoError(t, dbg.OnInit())

	text, size, err := dbg.GetCodeText(2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), size)
	require.Equal(t, "call {1}", text)
}
