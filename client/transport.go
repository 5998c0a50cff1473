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
	"net"
	"sync"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/vmapi"
	"github.com/obs145628/odb/wire"
)

// TransportBackend sends every call as one framed request/response
// round-trip over conn. Safe for concurrent use: calls are serialized so a
// response is always read by whoever sent the matching request.
type TransportBackend struct {
	conn net.Conn
	mu   sync.Mutex
}

// NewTransportBackend wraps conn, disabling Nagle so request/response
// latency isn't held hostage to small-packet coalescing.
func NewTransportBackend(conn net.Conn) *TransportBackend {
	_ = wire.DisableNagle(conn)
	return &TransportBackend{conn: conn}
}

func (b *TransportBackend) roundTrip(req wire.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := wire.SendFrame(b.conn, wire.EncodeRequest(req)); err != nil {
		return err
	}
	payload, err := wire.RecvFrame(b.conn)
	if err != nil {
		return err
	}
	return wire.DecodeResponse(req, payload)
}

func (b *TransportBackend) Connect() (vmapi.VMInfos, vmapi.StoppedUpdate, error) {
	req := &wire.ConnectReq{}
	err := b.roundTrip(req)
	return req.OutInfos, req.OutStopped, err
}

func (b *TransportBackend) Stop() error { return b.roundTrip(&wire.StopReq{}) }

func (b *TransportBackend) CheckStopped() (vmapi.StoppedUpdate, error) {
	req := &wire.CheckStoppedReq{}
	err := b.roundTrip(req)
	return req.OutStopped, err
}

func (b *TransportBackend) Resume(t debugger.ResumeType) error {
	return b.roundTrip(&wire.ResumeReq{InType: int8(t)})
}

func (b *TransportBackend) GetRegs(ids []vmapi.RegID, sizes []uint64, variable bool) ([][]byte, error) {
	req := &wire.GetRegsReq{Variable: variable, InIDs: ids, InSizes: sizes}
	err := b.roundTrip(req)
	return req.OutVals, err
}

func (b *TransportBackend) SetRegs(ids []vmapi.RegID, sizes []uint64, vals [][]byte, variable bool) error {
	return b.roundTrip(&wire.SetRegsReq{Variable: variable, InIDs: ids, InSizes: sizes, InVals: vals})
}

func (b *TransportBackend) GetRegsInfos(ids []vmapi.RegID) ([]vmapi.RegInfos, error) {
	req := &wire.GetRegsInfosReq{InIDs: ids}
	err := b.roundTrip(req)
	return req.OutInfos, err
}

func (b *TransportBackend) FindRegsIDs(names []string) ([]vmapi.RegID, error) {
	req := &wire.FindRegsIDsReq{InNames: names}
	err := b.roundTrip(req)
	return req.OutIDs, err
}

func (b *TransportBackend) ReadMem(addrs []vmapi.Addr, sizes []uint64, variable bool) ([][]byte, error) {
	req := &wire.ReadMemReq{Variable: variable, InAddrs: addrs, InSizes: sizes}
	err := b.roundTrip(req)
	return req.OutVals, err
}

func (b *TransportBackend) WriteMem(addrs []vmapi.Addr, sizes []uint64, vals [][]byte, variable bool) error {
	return b.roundTrip(&wire.WriteMemReq{Variable: variable, InAddrs: addrs, InSizes: sizes, InVals: vals})
}

func (b *TransportBackend) GetSymsByIDs(ids []vmapi.SymID) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByIDsReq{InIDs: ids}
	err := b.roundTrip(req)
	return req.OutInfos, err
}

func (b *TransportBackend) GetSymsByAddr(addr vmapi.Addr, size uint64) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByAddrReq{InAddr: addr, InSize: size}
	err := b.roundTrip(req)
	return req.OutInfos, err
}

func (b *TransportBackend) GetSymsByName(names []string) ([]vmapi.SymbolInfos, error) {
	req := &wire.GetSymsByNameReq{InNames: names}
	err := b.roundTrip(req)
	return req.OutInfos, err
}

func (b *TransportBackend) GetCodeText(addr vmapi.Addr, nins uint32) ([]string, []uint64, error) {
	req := &wire.GetCodeTextReq{InAddr: addr, InNIns: nins}
	err := b.roundTrip(req)
	return req.OutText, req.OutSize, err
}

func (b *TransportBackend) AddBkps(addrs []vmapi.Addr) error {
	return b.roundTrip(&wire.AddBkpsReq{InAddrs: addrs})
}

func (b *TransportBackend) DelBkps(addrs []vmapi.Addr) error {
	return b.roundTrip(&wire.DelBkpsReq{InAddrs: addrs})
}
