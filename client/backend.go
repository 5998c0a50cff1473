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

// Package client implements the debugger-facing API consumed by a CLI or
// any other front end: a state-guarded façade over a Backend, with a fetch
// cache that dedups repeated register/memory/symbol lookups and discards
// the transient parts of that cache on every resume.
package client

import (
	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/vmapi"
)

// Backend is every operation the façade can perform against a VM session,
// whether the debugger core lives in this process (InProcessBackend) or on
// the far end of a TCP connection (TransportBackend). Both implementations
// funnel through the exact same wire.Request shapes and server.Dispatch
// logic, so in-process and remote sessions behave identically, including
// how errors surface (spec.md's "same error kind" requirement).
type Backend interface {
	Connect() (vmapi.VMInfos, vmapi.StoppedUpdate, error)
	Stop() error
	CheckStopped() (vmapi.StoppedUpdate, error)
	Resume(t debugger.ResumeType) error

	GetRegs(ids []vmapi.RegID, sizes []uint64, variable bool) ([][]byte, error)
	SetRegs(ids []vmapi.RegID, sizes []uint64, vals [][]byte, variable bool) error
	GetRegsInfos(ids []vmapi.RegID) ([]vmapi.RegInfos, error)
	FindRegsIDs(names []string) ([]vmapi.RegID, error)

	ReadMem(addrs []vmapi.Addr, sizes []uint64, variable bool) ([][]byte, error)
	WriteMem(addrs []vmapi.Addr, sizes []uint64, vals [][]byte, variable bool) error

	GetSymsByIDs(ids []vmapi.SymID) ([]vmapi.SymbolInfos, error)
	GetSymsByAddr(addr vmapi.Addr, size uint64) ([]vmapi.SymbolInfos, error)
	GetSymsByName(names []string) ([]vmapi.SymbolInfos, error)

	GetCodeText(addr vmapi.Addr, nins uint32) ([]string, []uint64, error)

	AddBkps(addrs []vmapi.Addr) error
	DelBkps(addrs []vmapi.Addr) error
}
