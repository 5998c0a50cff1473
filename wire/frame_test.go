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
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendRecvFrameOverBuffer(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello, odb")
	require.NoError(t, SendFrame(&buf, payload))

	got, err := RecvFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSendRecvFrameOverPipe(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	payload := make([]byte, 70000) // larger than a typical TCP segment
	for i := range payload {
		payload[i] = byte(i)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- SendFrame(a, payload) }()

	got, err := RecvFrame(b)
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	require.Equal(t, payload, got)
}

func TestRecvFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := RecvFrame(&buf)
	require.Error(t, err)
}
