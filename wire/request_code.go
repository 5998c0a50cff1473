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

// GetCodeTextReq: in — addr, nins; out — text[nins], sizes[nins].
type GetCodeTextReq struct {
	InAddr  vmapi.Addr
	InNIns  uint32
	OutText []string
	OutSize []uint64
}

func (*GetCodeTextReq) Tag() Tag { return TagGetCodeText }

func (q *GetCodeTextReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(q.InAddr))
	w.WriteU32(q.InNIns)
}

func (q *GetCodeTextReq) DecodeRequest(r *Reader) error {
	a, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InAddr = vmapi.Addr(a)
	if q.InNIns, err = r.ReadU32(); err != nil {
		return err
	}
	return nil
}

func (q *GetCodeTextReq) EncodeResponse(w *Writer) {
	for _, t := range q.OutText {
		w.WriteString(t)
	}
	for _, s := range q.OutSize {
		w.WriteU64(s)
	}
}

func (q *GetCodeTextReq) DecodeResponse(r *Reader) error {
	q.OutText = make([]string, q.InNIns)
	for i := range q.OutText {
		t, err := r.ReadString()
		if err != nil {
			return err
		}
		q.OutText[i] = t
	}
	q.OutSize = make([]uint64, q.InNIns)
	for i := range q.OutSize {
		s, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.OutSize[i] = s
	}
	return nil
}
