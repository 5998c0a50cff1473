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

package client

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/server"
)

// newTestClient boots an in-process loop around the same add-two-numbers
// program used throughout the debugger/server tests, running the loop's
// goroutine for the lifetime of the test.
func newTestClient(t *testing.T) (*Client, *mockvm.VM) {
	t.Helper()
	code := []mockvm.Instr{
		{Op: mockvm.OpMovi, A: 12, B: int64(mockvm.R0)},
		{Op: mockvm.OpMovi, A: 45, B: int64(mockvm.R1)},
		{Op: mockvm.OpCall, A: 6, SymTgt: true, SymID: 1},
		{Op: mockvm.OpMov, A: int64(mockvm.R0), B: int64(mockvm.R10)},
		{Op: mockvm.OpMovi, A: 0, B: int64(mockvm.R0)},
		{Op: mockvm.OpSys, A: 0},
		{Op: mockvm.OpAdd, A: int64(mockvm.R1), B: int64(mockvm.R0)},
		{Op: mockvm.OpRet},
	}
	syms := []mockvm.Symbol{{Name: "_start", Addr: 0}, {Name: "my_add", Addr: 6}}
	vm := mockvm.New(code, syms)
	dbg := debugger.New(vm, debugger.Options{})
	require.NoError(t, dbg.OnInit())
	require.NoError(t, dbg.Stop()) // pendingStop, takes effect on first OnUpdate below
	require.NoError(t, dbg.OnUpdate())
	require.Equal(t, debugger.Stopped, dbg.State())

	loop := server.NewLoop(dbg, vm)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	backend := &InProcessBackend{Loop: loop, Ctx: ctx}
	return New(backend), vm
}

func TestClientStateMachine(t *testing.T) {
	c, _ := newTestClient(t)
	require.Equal(t, NotConnected, c.State())

	_, err := c.Connect()
	require.NoError(t, err)
	require.Equal(t, VMStopped, c.State())

	_, err = c.Connect()
	require.ErrorIs(t, err, ErrAlreadyConnected)

	require.NoError(t, c.Resume(debugger.ResumeStepOver))
	require.Equal(t, VMRunning, c.State())
	require.ErrorIs(t, c.Resume(debugger.ResumeStep), ErrNotStopped)
}

func TestClientFetchCacheDedupsAndInvalidatesOnResume(t *testing.T) {
	c, vm := newTestClient(t)
	_, err := c.Connect()
	require.NoError(t, err)

	r0id, err := c.FindRegID("r0")
	require.NoError(t, err)

	first, err := c.GetReg(r0id)
	require.NoError(t, err)

	// Mutate the VM directly, bypassing the client entirely: if the cache
	// is serving a stale dedup, GetReg below won't notice.
	require.NoError(t, vm.SetReg(mockvm.R0, []byte{99, 0, 0, 0}))

	second, err := c.GetReg(r0id)
	require.NoError(t, err)
	require.Equal(t, first.Value, second.Value, "cache should have served the dedup'd value, unchanged")

	require.NoError(t, c.Resume(debugger.ResumeStep))
	for c.State() == VMRunning {
		_, err := c.CheckStopped()
		require.NoError(t, err)
	}

	third, err := c.GetReg(r0id)
	require.NoError(t, err)
	require.Equal(t, []byte{12, 0, 0, 0}, third.Value, "resume must invalidate the cached register value")
}

// TestClientFetchCacheInfoSurvivesResume is spec.md §8 Scenario E's second
// half: a resume must only clear cached register values, never the
// immutable info (name/size/kind) fetched alongside them.
func TestClientFetchCacheInfoSurvivesResume(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Connect()
	require.NoError(t, err)

	r0id, err := c.FindRegID("r0")
	require.NoError(t, err)
	_, err = c.GetReg(r0id)
	require.NoError(t, err)
	require.Contains(t, c.cache.regInfo, r0id, "info must be cached after the first fetch")

	require.NoError(t, c.Resume(debugger.ResumeStep))
	for c.State() == VMRunning {
		_, err := c.CheckStopped()
		require.NoError(t, err)
	}

	require.Contains(t, c.cache.regInfo, r0id, "resume must not drop cached register info")
	require.Empty(t, c.cache.regValue, "resume must drop cached register values")
}

// TestClientGetRegsBatchesRoundTrips is spec.md §8 Scenario E's first half:
// two overlapping GetRegsInfos calls only request the ids missing from the
// first, and a multi-id GetRegs issues at most one value round-trip.
func TestClientGetRegsBatchesRoundTrips(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Connect()
	require.NoError(t, err)

	ids, err := c.FindRegsIDs([]string{"r0", "r1"})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	infos, err := c.GetRegsInfos(ids)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, id := range ids {
		require.Contains(t, c.cache.regInfo, id)
	}

	regs, err := c.GetRegs(ids)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(regs[0].Value))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(regs[1].Value))

	vals := [][]byte{{1, 0, 0, 0}, {2, 0, 0, 0}}
	require.NoError(t, c.SetRegs(ids, vals))
	regs, err = c.GetRegs(ids)
	require.NoError(t, err)
	require.Equal(t, vals[0], regs[0].Value)
	require.Equal(t, vals[1], regs[1].Value)
}

func TestClientSymbolAndCodeTextLookup(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Connect()
	require.NoError(t, err)

	id, err := c.FindSymID("my_add")
	require.NoError(t, err)
	info, err := c.GetSymbolInfos(id)
	require.NoError(t, err)
	require.Equal(t, "my_add", info.Name)

	text, size, err := c.GetCodeText(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), size)
	require.Equal(t, "movi 12,r0", text)
}

func TestClientBreakpoints(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Connect()
	require.NoError(t, err)

	require.NoError(t, c.AddBreakpoint(6))
	require.NoError(t, c.DelBreakpoint(6))
}

func TestClientRejectsOperationsBeforeConnect(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.GetReg(mockvm.R0)
	require.ErrorIs(t, err, ErrNotConnected)
}
