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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/obs145628/odb/vmapi"
)

func TestConnectReqRoundTrip(t *testing.T) {
	req := &ConnectReq{
		OutInfos: vmapi.VMInfos{
			Name:          "mvm0",
			TotalRegCount: 4,
			RegIDsByKind:  map[vmapi.RegKind][]vmapi.RegID{vmapi.RegGeneral: {0, 1, 2}, vmapi.RegProgramCounter: {3}},
			MemSize:       1024,
			SymbolsCount:  2,
			PointerWidth:  8,
			IntWidth:      8,
		},
		OutStopped: vmapi.StoppedUpdate{
			State:     vmapi.StoppedReady,
			Stopped:   false,
			Addr:      0x100,
			CallStack: []vmapi.CallFrame{{CallerStartAddr: 0}},
		},
	}

	decoded, _ := DecodeRequestEnvelope(EncodeRequest(req))
	dc := decoded.(*ConnectReq)
	if err := DecodeResponse(dc, EncodeResponse(req)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(req.OutInfos, dc.OutInfos); diff != "" {
		t.Fatalf("VMInfos mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(req.OutStopped, dc.OutStopped); diff != "" {
		t.Fatalf("StoppedUpdate mismatch (-want +got):\n%s", diff)
	}
}

func TestGetRegsUniformRoundTrip(t *testing.T) {
	orig := &GetRegsReq{Variable: false, InIDs: []vmapi.RegID{1, 2, 3}, InSizes: []uint64{8}}
	reqBytes := EncodeRequest(orig)
	decoded, err := DecodeRequestEnvelope(reqBytes)
	require.NoError(t, err)
	server := decoded.(*GetRegsReq)
	require.Equal(t, []vmapi.RegID{1, 2, 3}, server.InIDs)
	require.Equal(t, []uint64{8, 8, 8}, server.InSizes)

	server.OutVals = [][]byte{{1, 2, 3, 4, 5, 6, 7, 8}, {9, 9, 9, 9, 9, 9, 9, 9}, {0, 0, 0, 0, 0, 0, 0, 1}}
	respBytes := EncodeResponse(server)

	orig.InIDs = server.InIDs
	orig.InSizes = server.InSizes
	require.NoError(t, DecodeResponse(orig, respBytes))
	require.Equal(t, server.OutVals, orig.OutVals)
}

func TestGetRegsVarRoundTrip(t *testing.T) {
	orig := &GetRegsReq{Variable: true, InIDs: []vmapi.RegID{1, 2}, InSizes: []uint64{4, 2}}
	reqBytes := EncodeRequest(orig)
	decoded, err := DecodeRequestEnvelope(reqBytes)
	require.NoError(t, err)
	server := decoded.(*GetRegsReq)
	require.True(t, server.Variable)
	require.Equal(t, []uint64{4, 2}, server.InSizes)

	server.OutVals = [][]byte{{1, 2, 3, 4}, {5, 6}}
	require.NoError(t, DecodeResponse(orig, EncodeResponse(server)))
	require.Equal(t, server.OutVals, orig.OutVals)
}

func TestUniformSizesConvention(t *testing.T) {
	cases := []struct {
		sizes   []uint64
		uniform bool
		size    uint64
	}{
		{nil, true, 0},
		{[]uint64{8}, true, 8},
		{[]uint64{8, 0}, true, 8},
		{[]uint64{4, 2}, false, 0},
		{[]uint64{4, 2, 2}, false, 0},
	}
	for _, c := range cases {
		uniform, size := UniformSizes(c.sizes)
		require.Equal(t, c.uniform, uniform, "sizes=%v", c.sizes)
		if uniform {
			require.Equal(t, c.size, size, "sizes=%v", c.sizes)
		}
	}
}

func TestFindRegsIDsNullTermRoundTrip(t *testing.T) {
	orig := &FindRegsIDsReq{InNames: []string{"r0", "pc", "sp"}}
	decoded, err := DecodeRequestEnvelope(EncodeRequest(orig))
	require.NoError(t, err)
	server := decoded.(*FindRegsIDsReq)
	require.Equal(t, orig.InNames, server.InNames)

	server.OutIDs = []vmapi.RegID{0, 3, 4}
	require.NoError(t, DecodeResponse(orig, EncodeResponse(server)))
	require.Equal(t, server.OutIDs, orig.OutIDs)
}

func TestErrResponseDecodesAsServerError(t *testing.T) {
	req := &GetRegsInfosReq{InIDs: []vmapi.RegID{1}}
	err := DecodeResponse(req, EncodeErrResponse("bad register id"))
	require.Error(t, err)
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "bad register id", serr.Message)
}
