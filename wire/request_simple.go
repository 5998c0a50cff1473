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

// ConnectReq: in — (none); out — VMInfos, StoppedUpdate.
type ConnectReq struct {
	OutInfos   vmapi.VMInfos
	OutStopped vmapi.StoppedUpdate
}

func (*ConnectReq) Tag() Tag                        { return TagConnect }
func (*ConnectReq) EncodeRequest(w *Writer)          {}
func (*ConnectReq) DecodeRequest(r *Reader) error    { return nil }
func (q *ConnectReq) EncodeResponse(w *Writer) {
	writeVMInfos(w, q.OutInfos)
	writeStoppedUpdate(w, q.OutStopped)
}
func (q *ConnectReq) DecodeResponse(r *Reader) error {
	var err error
	if q.OutInfos, err = readVMInfos(r); err != nil {
		return err
	}
	if q.OutStopped, err = readStoppedUpdate(r); err != nil {
		return err
	}
	return nil
}

// StopReq: in — (none); out — (none).
type StopReq struct{}

func (*StopReq) Tag() Tag                        { return TagStop }
func (*StopReq) EncodeRequest(w *Writer)          {}
func (*StopReq) DecodeRequest(r *Reader) error    { return nil }
func (*StopReq) EncodeResponse(w *Writer)         {}
func (*StopReq) DecodeResponse(r *Reader) error   { return nil }

// CheckStoppedReq: in — (none); out — StoppedUpdate.
type CheckStoppedReq struct {
	OutStopped vmapi.StoppedUpdate
}

func (*CheckStoppedReq) Tag() Tag                     { return TagCheckStopped }
func (*CheckStoppedReq) EncodeRequest(w *Writer)       {}
func (*CheckStoppedReq) DecodeRequest(r *Reader) error { return nil }
func (q *CheckStoppedReq) EncodeResponse(w *Writer)    { writeStoppedUpdate(w, q.OutStopped) }
func (q *CheckStoppedReq) DecodeResponse(r *Reader) error {
	var err error
	q.OutStopped, err = readStoppedUpdate(r)
	return err
}

// ResumeReq: in — type (i8); out — (none).
type ResumeReq struct {
	InType int8
}

func (*ResumeReq) Tag() Tag               { return TagResume }
func (q *ResumeReq) EncodeRequest(w *Writer) { w.WriteI8(q.InType) }
func (q *ResumeReq) DecodeRequest(r *Reader) error {
	v, err := r.ReadI8()
	q.InType = v
	return err
}
func (*ResumeReq) EncodeResponse(w *Writer)       {}
func (*ResumeReq) DecodeResponse(r *Reader) error { return nil }

// AddBkpsReq: in — n, addrs[n]; out — (none).
type AddBkpsReq struct {
	InAddrs []vmapi.Addr
}

func (*AddBkpsReq) Tag() Tag { return TagAddBkps }
func (q *AddBkpsReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InAddrs)))
	for _, a := range q.InAddrs {
		w.WriteU64(uint64(a))
	}
}
func (q *AddBkpsReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InAddrs = make([]vmapi.Addr, 0, n)
	for i := uint64(0); i < n; i++ {
		a, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InAddrs = append(q.InAddrs, vmapi.Addr(a))
	}
	return nil
}
func (*AddBkpsReq) EncodeResponse(w *Writer)       {}
func (*AddBkpsReq) DecodeResponse(r *Reader) error { return nil }

// DelBkpsReq: in — n, addrs[n]; out — (none).
type DelBkpsReq struct {
	InAddrs []vmapi.Addr
}

func (*DelBkpsReq) Tag() Tag { return TagDelBkps }
func (q *DelBkpsReq) EncodeRequest(w *Writer) {
	w.WriteU64(uint64(len(q.InAddrs)))
	for _, a := range q.InAddrs {
		w.WriteU64(uint64(a))
	}
}
func (q *DelBkpsReq) DecodeRequest(r *Reader) error {
	n, err := r.ReadU64()
	if err != nil {
		return err
	}
	q.InAddrs = make([]vmapi.Addr, 0, n)
	for i := uint64(0); i < n; i++ {
		a, err := r.ReadU64()
		if err != nil {
			return err
		}
		q.InAddrs = append(q.InAddrs, vmapi.Addr(a))
	}
	return nil
}
func (*DelBkpsReq) EncodeResponse(w *Writer)       {}
func (*DelBkpsReq) DecodeResponse(r *Reader) error { return nil }

// ErrResp is the reserved tag-100 response sent in place of any request's
// normal response when the server hit a VM-adapter or precondition error.
type ErrResp struct {
	Message string
}

func (*ErrResp) Tag() Tag                     { return TagErr }
func (q *ErrResp) EncodeRequest(w *Writer)     { w.WriteString(q.Message) }
func (q *ErrResp) DecodeRequest(r *Reader) error {
	s, err := r.ReadString()
	q.Message = s
	return err
}
func (q *ErrResp) EncodeResponse(w *Writer) { w.WriteString(q.Message) }
func (q *ErrResp) DecodeResponse(r *Reader) error {
	s, err := r.ReadString()
	q.Message = s
	return err
}
