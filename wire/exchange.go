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

// ServerError wraps the human-readable message carried by a tag-100
// response. The client mirrors it as the same error kind a local
// in-process call would have produced.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// EncodeRequest serializes req's tag plus input fields — the
// client-encode role.
func EncodeRequest(req Request) []byte {
	w := NewWriter()
	w.WriteI8(int8(req.Tag()))
	req.EncodeRequest(w)
	return w.Bytes()
}

// DecodeRequestEnvelope reads the tag and dispatches to the matching
// Request's DecodeRequest — the server-decode role. Used by server.Serve
// on an incoming payload.
func DecodeRequestEnvelope(payload []byte) (Request, error) {
	r := NewReader(payload)
	t, err := r.ReadI8()
	if err != nil {
		return nil, err
	}
	req, err := NewByTag(Tag(t))
	if err != nil {
		return nil, err
	}
	if err := req.DecodeRequest(r); err != nil {
		return nil, err
	}
	return req, nil
}

// EncodeResponse serializes req's tag plus (now filled) output fields —
// the server-encode role.
func EncodeResponse(req Request) []byte {
	w := NewWriter()
	w.WriteI8(int8(req.Tag()))
	req.EncodeResponse(w)
	return w.Bytes()
}

// EncodeErrResponse builds the reserved tag-100 error envelope.
func EncodeErrResponse(msg string) []byte {
	w := NewWriter()
	w.WriteI8(int8(TagErr))
	w.WriteString(msg)
	return w.Bytes()
}

// DecodeResponse reads payload into req via its DecodeResponse — the
// client-decode role — unless the server replied with tag 100, in which
// case it returns a *ServerError.
func DecodeResponse(req Request, payload []byte) error {
	r := NewReader(payload)
	t, err := r.ReadI8()
	if err != nil {
		return err
	}
	if Tag(t) == TagErr {
		msg, err := r.ReadString()
		if err != nil {
			return err
		}
		return &ServerError{Message: msg}
	}
	if Tag(t) != req.Tag() {
		return fmt.Errorf("wire: response tag %d does not match request tag %d", t, req.Tag())
	}
	return req.DecodeResponse(r)
}
