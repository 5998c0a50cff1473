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

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/server"
	"github.com/obs145628/odb/vmapi"
	"github.com/obs145628/odb/wire"
)

// InProcessBackend submits every call to a server.Loop running in this
// same process, the way the bundled CLI demo (cmd/odb, no TCP involved)
// talks to its VM. Requests still cross the loop's channel pair, so the
// VM-owning goroutine invariant holds even with no network in the picture.
type InProcessBackend struct {
	Loop *server.Loop
	Ctx  context.Context
}

func (b *InProcessBackend) submit(req wire.Request) error {
	return b.Loop.Submit(b.Ctx, req)
}

func (b *InProcessBackend) Connect() (vmapi.VMInfos, vmapi.StoppedUpdate, error) {
	req := &wire.ConnectReq{}
	err := b.submit(req)
	return req.OutInfos, req.OutStopped, err
}

func (b *InProcessBackend) Stop() error { return b.submit(&wire.StopReq{}) }

func (b *InProcessBackend) CheckStopped() (vmapi.StoppedUpdate, error) {
	req := &wire.CheckStoppedReq{}
	err := b.submit(req)
	return req.OutStopped, err
}

func (b *InProcessBackend) Resume(t debugger.ResumeType) error {
	return b.submit(&wire.ResumeReq{InType: int8(t)})
}

func (b *InProcessBackend) GetRegs(ids []vmapi.RegID, sizes []uint64, variable bool) ([][]byte, error) {
	req := &wire.GetRegsReq{Variable: variable, InIDs: ids, InSizes: sizes}
	err := b.submit(req)
	return req.OutVals, err
}

func (b *InProcessBackend) SetRegs(ids []vmapi.RegID, sizes []uint64, vals [][]byte, variable bool) error {
	return b.submit(&wire.SetRegsReq{Variable: variable, InIDs: ids, InSizes: sizes, InVals: vals})
}

func (b *InProcessBackend) GetRegsInfos(ids []vmapi.RegID) ([]vmapi.RegInfos, error) {
	req := &wire.GetRegsInfosReq{InIDs: ids}
	err := b.submit(req)
	return req.OutInfos, err
}

func (b *InProcessBackend) FindRegsIDs(names []string) ([]vmapi.RegID, error) {
	req := &wire.FindRegsIDsReq{InNames: names}
	err := b.submit(req)
	return req.OutIDs, err
}

func (b *InProcessBackend) ReadMem(addrs []vmapi.Addr, sizes []uint64, variable bool) ([][]byte, error) {
	req := &wire.ReadMemReq{Variable: variable, InAddrs: addrs, InSizes: sizes}
	err := b.submit(req)
	return req.OutVals, err
}

func (b *InProcessBackend) WriteMem(addrs []vmapi.Addr, sizes []uint64, vals [][]byte, variable bool) error {
	return b.submit(&wire.WriteMemReq{Variable: variable, InAddrs: addrs, InSizes: sizes, InVals: vals})
}

func (b *InProcessBackend) GetSymsByIDs(ids []vmapi.SymID) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByIDsReq{InIDs: ids}
	err := b.submit(req)
	return req.OutInfos, err
}

func (b *InProcessBackend) GetSymsByAddr(addr vmapi.Addr, size uint64) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByAddrReq{InAddr: addr, InSize: size}
	err := b.submit(req)
	return req.OutInfos, err
}

func (b *InProcessBackend) GetSymsByName(names []string) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByNameReq{InNames: names}
	err := b.submit(req)
	return req.OutInfos, err
}

func (b *InProcessBackend) GetCodeText(addr vmapi.Addr, nins uint32) ([]string, []uint64, error) {
	req := &wire.GetCodeTextReq{InAddr: addr, InNIns: nins}
	err := b.submit(req)
	return req.OutText, req.OutSize, err
}

func (b *InProcessBackend) AddBkps(addrs []vmapi.Addr) error {
	return b.submit(&wire.AddBkpsReq{InAddrs: addrs})
}

func (b *InProcessBackend) DelBkps(addrs []vmapi.Addr) error {
	return b.submit(&wire.DelBkpsReq{InAddrs: addrs})
}
