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

// ReadMemReq: uniform (tag 9) in — n, size, addrs[n]; variable (tag 10)
// in — n, addrs[n], sizes[n]. Out, both forms — the concatenated bytes.
type ReadMemReq struct {
	Variable bool
	InAddrs  []vmapi.Addr
	InSizes  []uint64
	OutVals  [][]byte
}

func (q *ReadMemReq) Tag() Tag {
	if q.Variable {
		return TagReadMemVar
	}
	return TagReadMem
}

func (q *ReadMemReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InAddrs)))
	if !q.Variable {
		size := uint64(0)
		if len(q.InSizes) > 0 {
			size = q.InSizes[0]
		}
		w.WriteU64(size)
		for _, a := range q.InAddrs {
			w.WriteU64(uint64(a))
		}
		return
	}
	for _, a := range q.InAddrs {
		w.WriteU64(uint64(a))
	}
	for _, s := range q.InSizes {
		w.WriteU64(s)
	}
}

func (q *ReadMemReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	if !q.Variable {
		size, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InAddrs = make([]vmapi.Addr, n)
		for i := range q.InAddrs {
			a, err := r.ReadU64()
			if err != nil {
				return err
			}
			q.InAddrs[i] = vmapi.Addr(a)
		}
		q.InSizes = make([]uint64, n)
		for i := range q.InSizes {
			q.InSizes[i] = size
		}
		return nil
	}
	q.InAddrs = make([]vmapi.Addr, n)
	for i := range q.InAddrs {
		a, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InAddrs[i] = vmapi.Addr(a)
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

func (q *ReadMemReq) EncodeResponse(w *Writer) {
	for _, v := range q.OutVals {
		w.WriteRaw(v)
	}
}

func (q *ReadMemReq) DecodeResponse(r *Reader) error {
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

// WriteMemReq: uniform (tag 11) in — n, size, addrs[n], bytes[n][size];
// variable (tag 12) in — n, addrs[n], sizes[n], bytes[n][sizes[i]]. Out —
// (none).
type WriteMemReq struct {
	Variable bool
	InAddrs  []vmapi.Addr
	InSizes  []uint64
	InVals   [][]byte
}

func (q *WriteMemReq) Tag() Tag {
	if q.Variable {
		return TagWriteMemVar
	}
	return TagWriteMem
}

func (q *WriteMemReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InAddrs)))
	if !q.Variable {
		size := uint64(0)
		if len(q.InSizes) > 0 {
			size = q.InSizes[0]
		}
		w.WriteU64(size)
		for _, a := range q.InAddrs {
			w.WriteU64(uint64(a))
		}
		for _, v := range q.InVals {
			w.WriteRaw(v)
		}
		return
	}
	for _, a := range q.InAddrs {
		w.WriteU64(uint64(a))
	}
	for _, s := range q.InSizes {
		w.WriteU64(s)
	}
	for _, v := range q.InVals {
		w.WriteRaw(v)
	}
}

func (q *WriteMemReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	if !q.Variable {
		size, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InAddrs = make([]vmapi.Addr, n)
		for i := range q.InAddrs {
			a, err := r.ReadU64()
			if err != nil {
				return err
			}
			q.InAddrs[i] = vmapi.Addr(a)
		}
		q.InSizes = make([]uint64, n)
		for i := range q.InSizes {
			q.InSizes[i] = size
		}
	} else {
		q.InAddrs = make([]vmapi.Addr, n)
		for i := range q.InAddrs {
			a, err := r.ReadU64()
			if err != nil {
				return err
			}
			q.InAddrs[i] = vmapi.Addr(a)
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

func (*WriteMemReq) EncodeResponse(w *Writer)       {}
func (*WriteMemReq) DecodeResponse(r *Reader) error { return nil }
