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

import "fmt"

// Tag is the i8 request-type discriminant written right after the frame's
// length prefix.
type Tag int8

const (
	TagConnect       Tag = 0
	TagStop          Tag = 1
	TagCheckStopped  Tag = 2
	TagGetRegs       Tag = 3
	TagGetRegsVar    Tag = 4
	TagSetRegs       Tag = 5
	TagSetRegsVar    Tag = 6
	TagGetRegsInfos  Tag = 7
	TagFindRegsIDs   Tag = 8
	TagReadMem       Tag = 9
	TagReadMemVar    Tag = 10
	TagWriteMem      Tag = 11
	TagWriteMemVar   Tag = 12
	TagGetSymsByIDs  Tag = 13
	TagGetSymsByAddr Tag = 14
	TagGetSymsByName Tag = 15
	TagGetCodeText   Tag = 16
	TagAddBkps       Tag = 17
	TagDelBkps       Tag = 18
	TagResume        Tag = 19

	// TagErr is the reserved server-error response tag, never sent as a
	// request.
	TagErr Tag = 100
)

// Request is the one-schema-per-type descriptor. Each concrete type
// implements all four roles named in spec.md §4.4:
//
//	EncodeRequest  — client-encode: serialize the input fields
//	DecodeRequest  — server-decode: deserialize input fields
//	EncodeResponse — server-encode: serialize the (now filled) output fields
//	DecodeResponse — client-decode: deserialize output fields into the caller's struct
type Request interface {
	Tag() Tag
	EncodeRequest(w *Writer)
	DecodeRequest(r *Reader) error
	EncodeResponse(w *Writer)
	DecodeResponse(r *Reader) error
}

// NewByTag constructs a zero-valued Request for tag, used by the server to
// decode an incoming envelope whose shape it doesn't know ahead of time.
func NewByTag(tag Tag) (Request, error) {
	switch tag {
	case TagConnect:
		return &ConnectReq{}, nil
	case TagStop:
		return &StopReq{}, nil
	case TagCheckStopped:
		return &CheckStoppedReq{}, nil
	case TagGetRegs:
		return &GetRegsReq{Variable: false}, nil
	case TagGetRegsVar:
		return &GetRegsReq{Variable: true}, nil
	case TagSetRegs:
		return &SetRegsReq{Variable: false}, nil
	case TagSetRegsVar:
		return &SetRegsReq{Variable: true}, nil
	case TagGetRegsInfos:
		return &GetRegsInfosReq{}, nil
	case TagFindRegsIDs:
		return &FindRegsIDsReq{}, nil
	case TagReadMem:
		return &ReadMemReq{Variable: false}, nil
	case TagReadMemVar:
		return &ReadMemReq{Variable: true}, nil
	case TagWriteMem:
		return &WriteMemReq{Variable: false}, nil
	case TagWriteMemVar:
		return &WriteMemReq{Variable: true}, nil
	case TagGetSymsByIDs:
		return &GetSymsByIDsReq{}, nil
	case TagGetSymsByAddr:
		return &GetSymsByAddrReq{}, nil
	case TagGetSymsByName:
		return &GetSymsByNameReq{}, nil
	case TagGetCodeText:
		return &GetCodeTextReq{}, nil
	case TagAddBkps:
		return &AddBkpsReq{}, nil
	case TagDelBkps:
		return &DelBkpsReq{}, nil
	case TagResume:
		return &ResumeReq{}, nil
	default:
		return nil, fmt.Errorf("wire: unknown request tag %d", tag)
	}
}

// UniformSizes reports whether a size array (per spec.md §9's convention)
// encodes a uniform per-element size: true when n < 2 or sizes[1] == 0. The
// uniform value itself, when uniform, is sizes[0].
func UniformSizes(sizes []uint64) (uniform bool, size uint64) {
	if len(sizes) < 2 {
		if len(sizes) == 1 {
			return true, sizes[0]
		}
		return true, 0
	}
	if sizes[1] == 0 {
		return true, sizes[0]
	}
	return false, 0
}
