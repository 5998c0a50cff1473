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

package cliutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/client"
	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/server"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *bytes.Buffer) {
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

	loop := server.NewLoop(dbg, vm)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	c := client.New(&client.InProcessBackend{Loop: loop, Ctx: ctx})
	_, err := c.Connect()
	require.NoError(t, err)

	var out bytes.Buffer
	return &Evaluator{Client: c, Out: &out}, &out
}

func TestEvalRegisterCommands(t *testing.T) {
	e, out := newTestEvaluator(t)

	require.NoError(t, e.Eval("preg u32 %r0"))
	require.True(t, strings.Contains(out.String(), "r0 = 0"), out.String())
	out.Reset()

	require.NoError(t, e.Eval("sreg u32 %r0 99"))
	require.NoError(t, e.Eval("preg u32 %r0"))
	require.True(t, strings.Contains(out.String(), "r0 = 99"), out.String())
}

func TestEvalRegisterCommandsBatched(t *testing.T) {
	e, out := newTestEvaluator(t)

	require.NoError(t, e.Eval("preg u32 %r0 %r1"))
	require.True(t, strings.Contains(out.String(), "r0 = 0"), out.String())
	require.True(t, strings.Contains(out.String(), "r1 = 0"), out.String())
	out.Reset()

	require.NoError(t, e.Eval("sreg u32 %r0 1 %r1 2"))
	require.NoError(t, e.Eval("preg u32 %r0 %r1"))
	require.True(t, strings.Contains(out.String(), "r0 = 1"), out.String())
	require.True(t, strings.Contains(out.String(), "r1 = 2"), out.String())
}

func TestEvalSymbolAndCodeCommands(t *testing.T) {
	e, out := newTestEvaluator(t)

	require.NoError(t, e.Eval("psym my_add"))
	require.True(t, strings.Contains(out.String(), "my_add @ 0x6"), out.String())
	out.Reset()

	require.NoError(t, e.Eval("code 0 2"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.Contains(lines[0], "movi 12,r0"))
	require.True(t, strings.Contains(lines[1], "movi 45,r1"))
}

func TestEvalMemoryCommands(t *testing.T) {
	e, out := newTestEvaluator(t)

	require.NoError(t, e.Eval("smem u8 0 1 2 3 4"))
	out.Reset()
	require.NoError(t, e.Eval("pmem u8 0 4"))
	require.True(t, strings.Contains(out.String(), "0x0: 1"), out.String())
	require.True(t, strings.Contains(out.String(), "0x1: 2"), out.String())
	require.True(t, strings.Contains(out.String(), "0x2: 3"), out.String())
	require.True(t, strings.Contains(out.String(), "0x3: 4"), out.String())
}

func TestEvalBreakpointsAndResume(t *testing.T) {
	e, _ := newTestEvaluator(t)

	require.NoError(t, e.Eval("b my_add"))
	require.NoError(t, e.Eval("c"))
	require.NoError(t, e.Eval("delb my_add"))
}

func TestEvalStateAndVM(t *testing.T) {
	e, out := newTestEvaluator(t)

	require.NoError(t, e.Eval("vm"))
	require.True(t, strings.Contains(out.String(), "mvm0"), out.String())
	out.Reset()

	require.NoError(t, e.Eval("state"))
	require.True(t, strings.Contains(out.String(), "vm_stopped") || strings.Contains(out.String(), "VMStopped"), out.String())
}

func TestEvalUnknownCommand(t *testing.T) {
	e, _ := newTestEvaluator(t)
	err := e.Eval("frobnicate")
	require.Error(t, err)
}

func TestEvalBlankLine(t *testing.T) {
	e, _ := newTestEvaluator(t)
	require.NoError(t, e.Eval("   "))
}
