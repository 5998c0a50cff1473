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

// GetSymsByIDsReq: in — n, ids[n]; out — SymbolInfos[n].
type GetSymsByIDsReq struct {
	InIDs    []vmapi.SymID
	OutInfos []vmapi.SymbolInfos
}

func (*GetSymsByIDsReq) Tag() Tag { return TagGetSymsByIDs }

func (q *GetSymsByIDsReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InIDs)))
	for _, id := range q.InIDs {
		w.WriteU32(uint32(id))
	}
}

func (q *GetSymsByIDsReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InIDs = make([]vmapi.SymID, n)
	for i := range q.InIDs {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		q.InIDs[i] = vmapi.SymID(id)
	}
	return nil
}

func (q *GetSymsByIDsReq) EncodeResponse(w *Writer) {
	for _, s := range q.OutInfos {
		writeSymbolInfos(w, s)
	}
}

func (q *GetSymsByIDsReq) DecodeResponse(r *Reader) error {
	q.OutInfos = make([]vmapi.SymbolInfos, len(q.InIDs))
	for i := range q.OutInfos {
		s, err := readSymbolInfos(r)
		if err != nil {
			return err
		}
		q.OutInfos[i] = s
	}
	return nil
}

// GetSymsByAddrReq: in — addr, size; out — SymbolInfos[] (unbounded).
type GetSymsByAddrReq struct {
	InAddr   vmapi.Addr
	InSize   uint64
	OutInfos []vmapi.SymbolInfos
}

func (*GetSymsByAddrReq) Tag() Tag { return TagGetSymsByAddr }

func (q *GetSymsByAddrReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(q.InAddr))
	w.WriteU64(q.InSize)
}

func (q *GetSymsByAddrReq) DecodeRequest(r *Reader) error {
	a, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InAddr = vmapi.Addr(a)
	if q.InSize, err = r.ReadU64(); err != nil {
		return err
	}
	return nil
}

func (q *GetSymsByAddrReq) EncodeResponse(w *Writer) {
	w.WriteU64(uint64(len(q.OutInfos)))
	for _, s := range q.OutInfos {
		writeSymbolInfos(w, s)
	}
}

func (q *GetSymsByAddrReq) DecodeResponse(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.OutInfos = make([]vmapi.SymbolInfos, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := readSymbolInfos(r)
		if err != nil {
			return err
		}
		q.OutInfos = append(q.OutInfos, s)
	}
	return nil
}

// GetSymsByNameReq: in — n, names (flat null-terminated block); out —
// SymbolInfos[n].
type GetSymsByNameReq struct {
	InNames  []string
	OutInfos []vmapi.SymbolInfos
}

func (*GetSymsByNameReq) Tag() Tag { return TagGetSymsByName }

func (q *GetSymsByNameReq) EncodeRequest(w *Writer) { w.WriteNullTermStrings(q.InNames) }

func (q *GetSymsByNameReq) DecodeRequest(r *Reader) error {
	names, err := r.ReadNullTermStrings()
	q.InNames = names
	return err
}

func (q *GetSymsByNameReq) EncodeResponse(w *Writer) {
	for _, s := range q.OutInfos {
		writeSymbolInfos(w, s)
	}
}

func (q *GetSymsByNameReq) DecodeResponse(r *Reader) error {
	q.OutInfos = make([]vmapi.SymbolInfos, len(q.InNames))
	for i := range q.OutInfos {
		s, err := readSymbolInfos(r)
		if err != nil {
			return err
		}
		q.OutInfos[i] = s
	}
	return nil
}
