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

// Package server runs the VM-owning thread: it drives a host VM one tick
// at a time through the debugger state machine and dispatches incoming
// wire requests against it, the way only the thread that owns the VM is
// allowed to.
package server

import (
	"errors"
	"fmt"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/vmapi"
	"github.com/obs145628/odb/wire"
)

// ErrBusy is returned when a request other than stop/check_stopped arrives
// while the VM is running. Per spec.md, the running dispatcher only ever
// accepts those two tags; everything else must wait for a stop.
var ErrBusy = errors.New("server: debugger is running, only stop/check_stopped are accepted")

// Dispatch applies req against dbg, filling in its output fields, and
// returns any error from the VM adapter or a precondition violation. It is
// the one place that knows how every wire.Request maps onto a Debugger
// method call.
func Dispatch(dbg *debugger.Debugger, req wire.Request) error {
	switch req.(type) {
	case *wire.StopReq, *wire.CheckStoppedReq:
		// always legal, running or not
	default:
		if dbg.State().IsRunning() {
			return ErrBusy
		}
	}

	switch q := req.(type) {
	case *wire.ConnectReq:
		q.OutInfos = dbg.VMInfos()
		q.OutStopped = dbg.StoppedUpdate()

	case *wire.StopReq:
		return dbg.Stop()

	case *wire.CheckStoppedReq:
		q.OutStopped = dbg.StoppedUpdate()

	case *wire.ResumeReq:
		return dbg.Resume(debugger.ResumeType(q.InType))

	case *wire.GetRegsReq:
		q.OutVals = make([][]byte, len(q.InIDs))
		for i, id := range q.InIDs {
			info, err := dbg.GetReg(id)
			if err != nil {
				return err
			}
			q.OutVals[i] = info.Value
		}

	case *wire.SetRegsReq:
		for i, id := range q.InIDs {
			if err := dbg.SetReg(id, q.InVals[i]); err != nil {
				return err
			}
		}

	case *wire.GetRegsInfosReq:
		q.OutInfos = make([]vmapi.RegInfos, len(q.InIDs))
		for i, id := range q.InIDs {
			info, err := dbg.GetRegInfos(id)
			if err != nil {
				return err
			}
			q.OutInfos[i] = info
		}

	case *wire.FindRegsIDsReq:
		q.OutIDs = make([]vmapi.RegID, len(q.InNames))
		for i, name := range q.InNames {
			id, err := dbg.FindRegID(name)
			if err != nil {
				return err
			}
			q.OutIDs[i] = id
		}

	case *wire.ReadMemReq:
		q.OutVals = make([][]byte, len(q.InAddrs))
		for i, addr := range q.InAddrs {
			v, err := dbg.ReadMem(addr, q.InSizes[i])
			if err != nil {
				return err
			}
			q.OutVals[i] = v
		}

	case *wire.WriteMemReq:
		for i, addr := range q.InAddrs {
			if err := dbg.WriteMem(addr, q.InVals[i]); err != nil {
				return err
			}
		}

	case *wire.GetSymsByIDsReq:
		q.OutInfos = make([]vmapi.SymbolInfos, len(q.InIDs))
		for i, id := range q.InIDs {
			info, err := dbg.GetSymbolInfos(id)
			if err != nil {
				return err
			}
			q.OutInfos[i] = info
		}

	case *wire.GetSymsByAddrReq:
		infos, err := dbg.GetSymbolsByAddr(q.InAddr, q.InSize)
		if err != nil {
			return err
		}
		q.OutInfos = infos

	case *wire.GetSymsByNameReq:
		q.OutInfos = make([]vmapi.SymbolInfos, len(q.InNames))
		for i, name := range q.InNames {
			id, err := dbg.FindSymID(name)
			if err != nil {
				return err
			}
			info, err := dbg.GetSymbolInfos(id)
			if err != nil {
				return err
			}
			q.OutInfos[i] = info
		}

	case *wire.GetCodeTextReq:
		q.OutText = make([]string, q.InNIns)
		q.OutSize = make([]uint64, q.InNIns)
		addr := q.InAddr
		for i := 0; i < int(q.InNIns); i++ {
			text, size, err := dbg.GetCodeText(addr)
			if err != nil {
				return err
			}
			q.OutText[i] = text
			q.OutSize[i] = size
			addr += vmapi.Addr(size)
		}

	case *wire.AddBkpsReq:
		for _, a := range q.InAddrs {
			if err := dbg.AddBreakpoint(a); err != nil {
				return err
			}
		}

	case *wire.DelBkpsReq:
		for _, a := range q.InAddrs {
			if err := dbg.DelBreakpoint(a); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("server: unhandled request type %T", req)
	}
	return nil
}
