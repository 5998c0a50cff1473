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

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// MaxFrameSize bounds a single envelope's payload, guarding the reader
// against an attacker or corrupt peer claiming an absurd length.
const MaxFrameSize = 64 << 20

// SendFrame writes a u32-little-endian length prefix followed by payload,
// looping until the whole envelope is written or w fails.
func SendFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if err := writeFull(w, hdr[:]); err != nil {
		return fmt.Errorf("wire: send frame header: %w", err)
	}
	if err := writeFull(w, payload); err != nil {
		return fmt.Errorf("wire: send frame payload: %w", err)
	}
	return nil
}

// RecvFrame reads one length-prefixed envelope, looping until the whole
// frame is read or r fails.
func RecvFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("wire: recv frame header: %w", err)
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("wire: frame size %d exceeds max %d", n, MaxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: recv frame payload: %w", err)
	}
	return payload, nil
}

func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// DisableNagle turns off small-packet coalescing on a TCP connection so
// request/response latency isn't held hostage to Nagle's algorithm — the
// framed protocol already batches what it needs to batch above the socket.
func DisableNagle(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tc.SetNoDelay(true)
}
