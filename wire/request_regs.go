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

// GetRegsReq: uniform (tag 3) in — n, size, ids[n]; variable (tag 4) in —
// n, ids[n], sizes[n]. Out, both forms — the concatenated value bytes.
// Which wire form is used is fixed at construction time (the uniform vs.
// variable tag, per spec.md §9's "second size entry is zero" convention,
// not something this struct decides for itself).
type GetRegsReq struct {
	Variable bool
	InIDs    []vmapi.RegID
	InSizes  []uint64 // one entry per id after decode, regardless of wire form
	OutVals  [][]byte
}

func (q *GetRegsReq) Tag() Tag {
	if q.Variable {
		return TagGetRegsVar
	}
	return TagGetRegs
}

func (q *GetRegsReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InIDs)))
	if !q.Variable {
		size := uint64(0)
		if len(q.InSizes) > 0 {
			size = q.InSizes[0]
		}
		w.WriteU64(size)
		for _, id := range q.InIDs {
			w.WriteU32(uint32(id))
		}
		return
	}
	for _, id := range q.InIDs {
		w.WriteU32(uint32(id))
	}
	for _, s := range q.InSizes {
		w.WriteU64(s)
	}
}

func (q *GetRegsReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	if !q.Variable {
		size, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InIDs = make([]vmapi.RegID, n)
		for i := range q.InIDs {
			id, err := r.ReadU32()
			if err != nil {
				return err
			}
			q.InIDs[i] = vmapi.RegID(id)
		}
		q.InSizes = make([]uint64, n)
		for i := range q.InSizes {
			q.InSizes[i] = size
		}
		return nil
	}
	q.InIDs = make([]vmapi.RegID, n)
	for i := range q.InIDs {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		q.InIDs[i] = vmapi.RegID(id)
	}
	q.InSizes = make([]uint64, n)
	for i := range q.InSizes {
		s, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InSizes[i] = s
	}
	return nil
}

func (q *GetRegsReq) EncodeResponse(w *Writer) {
	for _, v := range q.OutVals {
		w.WriteRaw(v)
	}
}

func (q *GetRegsReq) DecodeResponse(r *Reader) error {
	q.OutVals = make([][]byte, len(q.InSizes))
	for i, s := range q.InSizes {
		v, err := r.ReadRaw(int(s))
		if err != nil {
			return err
		}
		q.OutVals[i] = v
	}
	return nil
}

// SetRegsReq: uniform (tag 5) in — n, size, ids[n], bytes[n][size];
// variable (tag 6) in — n, ids[n], sizes[n], bytes[n][sizes[i]]. Out —
// (none).
type SetRegsReq struct {
	Variable bool
	InIDs    []vmapi.RegID
	InSizes  []uint64
	InVals   [][]byte
}

func (q *SetRegsReq) Tag() Tag {
	if q.Variable {
		return TagSetRegsVar
	}
	return TagSetRegs
}

func (q *SetRegsReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InIDs)))
	if !q.Variable {
		size := uint64(0)
		if len(q.InSizes) > 0 {
			size = q.InSizes[0]
		}
		w.WriteU64(size)
		for _, id := range q.InIDs {
			w.WriteU32(uint32(id))
		}
		for _, v := range q.InVals {
			w.WriteRaw(v)
		}
		return
	}
	for _, id := range q.InIDs {
		w.WriteU32(uint32(id))
	}
	for _, s := range q.InSizes {
		w.WriteU64(s)
	}
	for _, v := range q.InVals {
		w.WriteRaw(v)
	}
}

func (q *SetRegsReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	if !q.Variable {
		size, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InIDs = make([]vmapi.RegID, n)
		for i := range q.InIDs {
			id, err := r.ReadU32()
			if err != nil {
				return err
			}
			q.InIDs[i] = vmapi.RegID(id)
		}
		q.InSizes = make([]uint64, n)
		for i := range q.InSizes {
			q.InSizes[i] = size
		}
	} else {
		q.InIDs = make([]vmapi.RegID, n)
		for i := range q.InIDs {
			id, err := r.ReadU32()
			if err != nil {
				return err
			}
			q.InIDs[i] = vmapi.RegID(id)
		}
		q.InSizes = make([]uint64, n)
		for i := range q.InSizes {
			s, err := r.ReadU64()
			if err != nil {
				return err
			}
			q.InSizes[i] = s
		}
	}
	q.InVals = make([][]byte, n)
	for i, s := range q.InSizes {
		v, err := r.ReadRaw(int(s))
		if err != nil {
			return err
		}
		q.InVals[i] = v
	}
	return nil
}

func (*SetRegsReq) EncodeResponse(w *Writer)       {}
func (*SetRegsReq) DecodeResponse(r *Reader) error { return nil }

// GetRegsInfosReq: in — n, ids[n]; out — RegInfos[n].
type GetRegsInfosReq struct {
	InIDs   []vmapi.RegID
	OutInfos []vmapi.RegInfos
}

func (*GetRegsInfosReq) Tag() Tag { return TagGetRegsInfos }

func (q *GetRegsInfosReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InIDs)))
	for _, id := range q.InIDs {
		w.WriteU32(uint32(id))
	}
}

func (q *GetRegsInfosReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InIDs = make([]vmapi.RegID, n)
	for i := range q.InIDs {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		q.InIDs[i] = vmapi.RegID(id)
	}
	return nil
}

func (q *GetRegsInfosReq) EncodeResponse(w *Writer) {
	for _, infos := range q.OutInfos {
		writeRegInfos(w, infos)
	}
}

func (q *GetRegsInfosReq) DecodeResponse(r *Reader) error {
	q.OutInfos = make([]vmapi.RegInfos, len(q.InIDs))
	for i := range q.OutInfos {
		infos, err := readRegInfos(r)
		if err != nil {
			return err
		}
		q.OutInfos[i] = infos
	}
	return nil
}

// FindRegsIDsReq: in — n, names[n] (flat null-terminated block); out — ids[n].
type FindRegsIDsReq struct {
	InNames []string
	OutIDs  []vmapi.RegID
}

func (*FindRegsIDsReq) Tag() Tag { return TagFindRegsIDs }

func (q *FindRegsIDsReq) EncodeRequest(w *Writer) { w.WriteNullTermStrings(q.InNames) }

func (q *FindRegsIDsReq) DecodeRequest(r *Reader) error {
	names, err := r.ReadNullTermStrings()
	q.InNames = names
	return err
}

func (q *FindRegsIDsReq) EncodeResponse(w *Writer) {
	for _, id := range q.OutIDs {
		w.WriteU32(uint32(id))
	}
}

func (q *FindRegsIDsReq) DecodeResponse(r *Reader) error {
	q.OutIDs = make([]vmapi.RegID, len(q.InNames))
	for i := range q.OutIDs {
		id, err := r.ReadU32()
		if err != nil {
			return err
		}
		q.OutIDs[i] = vmapi.RegID(id)
	}
	return nil
}
