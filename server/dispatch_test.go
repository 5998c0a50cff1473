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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/vmapi"
	"github.com/obs145628/odb/wire"
)

func buildTestDebugger(t *testing.T) (*mockvm.VM, *debugger.Debugger) {
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
	require.NoError(t, dbg.Stop())
	require.NoError(t, dbg.OnUpdate())
	return vm, dbg
}

func TestDispatchConnect(t *testing.T) {
	_, dbg := buildTestDebugger(t)
	req := &wire.ConnectReq{}
	require.NoError(t, Dispatch(dbg, req))
	require.Equal(t, "mvm0", req.OutInfos.Name)
	require.True(t, req.OutStopped.Stopped)
}

func TestDispatchRejectsNonStopWhileRunning(t *testing.T) {
	_, dbg := buildTestDebugger(t)
	require.NoError(t, dbg.Resume(debugger.ResumeToFinish))

	err := Dispatch(dbg, &wire.GetRegsInfosReq{InIDs: []vmapi.RegID{mockvm.R0}})
	require.ErrorIs(t, err, ErrBusy)

	require.NoError(t, Dispatch(dbg, &wire.StopReq{}))
	require.NoError(t, Dispatch(dbg, &wire.CheckStoppedReq{}))
}

func TestDispatchRegsAndMem(t *testing.T) {
	_, dbg := buildTestDebugger(t)

	setReq := &wire.SetRegsReq{InIDs: []vmapi.RegID{mockvm.R0}, InSizes: []uint64{4}, InVals: [][]byte{{7, 0, 0, 0}}}
	require.NoError(t, Dispatch(dbg, setReq))

	getReq := &wire.GetRegsReq{InIDs: []vmapi.RegID{mockvm.R0}, InSizes: []uint64{4}}
	require.NoError(t, Dispatch(dbg, getReq))
	require.Equal(t, []byte{7, 0, 0, 0}, getReq.OutVals[0])

	writeReq := &wire.WriteMemReq{InAddrs: []vmapi.Addr{100}, InSizes: []uint64{3}, InVals: [][]byte{{1, 2, 3}}}
	require.NoError(t, Dispatch(dbg, writeReq))
	readReq := &wire.ReadMemReq{InAddrs: []vmapi.Addr{100}, InSizes: []uint64{3}}
	require.NoError(t, Dispatch(dbg, readReq))
	require.Equal(t, []byte{1, 2, 3}, readReq.OutVals[0])
}

func TestDispatchSymbolsAndCodeText(t *testing.T) {
	_, dbg := buildTestDebugger(t)

	byName := &wire.GetSymsByNameReq{InNames: []string{"my_add"}}
	require.NoError(t, Dispatch(dbg, byName))
	require.Equal(t, vmapi.Addr(6), byName.OutInfos[0].Address)

	codeReq := &wire.GetCodeTextReq{InAddr: 0, InNIns: 2}
	require.NoError(t, Dispatch(dbg, codeReq))
	require.Equal(t, []string{"movi 12,r0", "movi 45,r1"}, codeReq.OutText)
}

func TestDispatchBreakpointsAndResume(t *testing.T) {
	vm, dbg := buildTestDebugger(t)

	require.NoError(t, Dispatch(dbg, &wire.AddBkpsReq{InAddrs: []vmapi.Addr{6}}))
	require.NoError(t, Dispatch(dbg, &wire.ResumeReq{InType: int8(debugger.ResumeContinue)}))

	for dbg.State().IsRunning() {
		vm.Tick()
		require.NoError(t, dbg.OnUpdate())
	}
	require.Equal(t, debugger.Stopped, dbg.State())
	require.Equal(t, vmapi.Addr(6), dbg.CurrentAddr())

	require.NoError(t, Dispatch(dbg, &wire.DelBkpsReq{InAddrs: []vmapi.Addr{6}}))
	require.Empty(t, dbg.Breakpoints())
}

// TestDispatchErrorSurfacesLikeInProcess exercises Scenario G: an error
// from the VM adapter (here, an unknown register id) must come back as
// the same error the adapter itself returned, unchanged — whether Dispatch
// is called in-process or, per wire.DecodeResponse, unwrapped from a
// ServerError sent over the network.
func TestDispatchErrorSurfacesLikeInProcess(t *testing.T) {
	_, dbg := buildTestDebugger(t)
	err := Dispatch(dbg, &wire.GetRegsInfosReq{InIDs: []vmapi.RegID{9999}})
	require.ErrorIs(t, err, mockvm.ErrBadReg)

	wireErr := wire.DecodeResponse(&wire.GetRegsInfosReq{InIDs: []vmapi.RegID{9999}}, wire.EncodeErrResponse(err.Error()))
	require.EqualError(t, wireErr, err.Error())
}
