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

package wire

import "github.com/obs145628/odb/vmapi"

// This file holds the codec for the shared data-model structs (§3 of the
// spec): RegInfos, SymbolInfos, VMInfos, CallFrame, StoppedUpdate. Every
// request descriptor that embeds one of these reuses these helpers instead
// of re-deriving the field layout.

func writeRegInfos(w *Writer, r vmapi.RegInfos) {
	w.WriteU32(uint32(r.ID))
	w.WriteString(r.DisplayName)
	w.WriteU64(r.ByteSize)
	w.WriteI8(int8(r.Kind))
	w.WriteBool(r.Value != nil)
	if r.Value != nil {
		w.WriteBytes(r.Value)
	}
}

func readRegInfos(r *Reader) (vmapi.RegInfos, error) {
	var out vmapi.RegInfos
	id, err := r.ReadU32()
	if err != nil {
		return out, err
	}
	out.ID = vmapi.RegID(id)
	if out.DisplayName, err = r.ReadString(); err != nil {
		return out, err
	}
	if out.ByteSize, err = r.ReadU64(); err != nil {
		return out, err
	}
	kind, err := r.ReadI8()
	if err != nil {
		return out, err
	}
	out.Kind = vmapi.RegKind(kind)
	hasVal, err := r.ReadBool()
	if err != nil {
		return out, err
	}
	if hasVal {
		if out.Value, err = r.ReadBytes(); err != nil {
			return out, err
		}
	}
	return out, nil
}

func writeSymbolInfos(w *Writer, s vmapi.SymbolInfos) {
	w.WriteU32(uint32(s.ID))
	w.WriteString(s.Name)
	w.WriteU64(uint64(s.Address))
}

func readSymbolInfos(r *Reader) (vmapi.SymbolInfos, error) {
	var out vmapi.SymbolInfos
	id, err := r.ReadU32()
	if err != nil {
		return out, err
	}
	out.ID = vmapi.SymID(id)
	if out.Name, err = r.ReadString(); err != nil {
		return out, err
	}
	addr, err := r.ReadU64()
	if err != nil {
		return out, err
	}
	out.Address = vmapi.Addr(addr)
	return out, nil
}

func writeCallFrame(w *Writer, f vmapi.CallFrame) {
	w.WriteU64(uint64(f.CallerStartAddr))
	w.WriteU64(uint64(f.CallAddr))
}

func readCallFrame(r *Reader) (vmapi.CallFrame, error) {
	var out vmapi.CallFrame
	a, err := r.ReadU64()
	if err != nil {
		return out, err
	}
	out.CallerStartAddr = vmapi.Addr(a)
	b, err := r.ReadU64()
	if err != nil {
		return out, err
	}
	out.CallAddr = vmapi.Addr(b)
	return out, nil
}

func writeCallStack(w *Writer, frames []vmapi.CallFrame) {
	w.WriteU64(uint64(len(frames)))
	for _, f := range frames {
		writeCallFrame(w, f)
	}
}

func readCallStack(r *Reader) ([]vmapi.CallFrame, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	out := make([]vmapi.CallFrame, 0, n)
	for i := uint64(0); i < n; i++ {
		f, err := readCallFrame(r)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func writeStoppedUpdate(w *Writer, u vmapi.StoppedUpdate) {
	w.WriteI8(int8(u.State))
	w.WriteBool(u.Stopped)
	w.WriteU64(uint64(u.Addr))
	writeCallStack(w, u.CallStack)
}

func readStoppedUpdate(r *Reader) (vmapi.StoppedUpdate, error) {
	var out vmapi.StoppedUpdate
	st, err := r.ReadI8()
	if err != nil {
		return out, err
	}
	out.State = vmapi.StoppedState(st)
	if out.Stopped, err = r.ReadBool(); err != nil {
		return out, err
	}
	addr, err := r.ReadU64()
	if err != nil {
		return out, err
	}
	out.Addr = vmapi.Addr(addr)
	if out.CallStack, err = readCallStack(r); err != nil {
		return out, err
	}
	return out, nil
}

func writeVMInfos(w *Writer, v vmapi.VMInfos) {
	w.WriteString(v.Name)
	w.WriteU32(v.TotalRegCount)
	kinds := []vmapi.RegKind{vmapi.RegGeneral, vmapi.RegProgramCounter, vmapi.RegStackPointer, vmapi.RegBasePointer, vmapi.RegFlags}
	for _, k := range kinds {
		ids := v.RegIDsByKind[k]
		w.WriteU64(uint64(len(ids)))
		for _, id := range ids {
			w.WriteU32(uint32(id))
		}
	}
	w.WriteU64(v.MemSize)
	w.WriteU32(v.SymbolsCount)
	w.WriteU8(v.PointerWidth)
	w.WriteU8(v.IntWidth)
	w.WriteBool(v.HasBinaryOpcodes)
}

func readVMInfos(r *Reader) (vmapi.VMInfos, error) {
	var out vmapi.VMInfos
	var err error
	if out.Name, err = r.ReadString(); err != nil {
		return out, err
	}
	if out.TotalRegCount, err = r.ReadU32(); err != nil {
		return out, err
	}
	out.RegIDsByKind = make(map[vmapi.RegKind][]vmapi.RegID)
	kinds := []vmapi.RegKind{vmapi.RegGeneral, vmapi.RegProgramCounter, vmapi.RegStackPointer, vmapi.RegBasePointer, vmapi.RegFlags}
	for _, k := range kinds {
		n, err := r.ReadU64()
		if err != nil {
			return out, err
		}
		ids := make([]vmapi.RegID, 0, n)
		for i := uint64(0); i < n; i++ {
			id, err := r.ReadU32()
			if err != nil {
				return out, err
			}
			ids = append(ids, vmapi.RegID(id))
		}
		// Kinds with no registers were absent from the encoded map; leave
		// them absent so decode(encode(x)) reproduces x.
		if n > 0 {
			out.RegIDsByKind[k] = ids
		}
	}
	if out.MemSize, err = r.ReadU64(); err != nil {
		return out, err
	}
	if out.SymbolsCount, err = r.ReadU32(); err != nil {
		return out, err
	}
	if out.PointerWidth, err = r.ReadU8(); err != nil {
		return out, err
	}
	if out.IntWidth, err = r.ReadU8(); err != nil {
		return out, err
	}
	if out.HasBinaryOpcodes, err = r.ReadBool(); err != nil {
		return out, err
	}
	return out, nil
}
