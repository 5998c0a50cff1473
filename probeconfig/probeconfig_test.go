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

package probeconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.False(t, cfg.Enabled)
	require.False(t, cfg.NoStart)
	require.False(t, cfg.ModeServerCLI)
	require.True(t, cfg.ServerCLISigHandler)
	require.False(t, cfg.ModeTCP)
	require.Equal(t, 12644, cfg.TCPPort)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("ODB_ENABLED", "true")
	t.Setenv("ODB_TCP_PORT", "9000")
	t.Setenv("ODB_MODE_TCP", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Enabled)
	require.Equal(t, 9000, cfg.TCPPort)
	require.True(t, cfg.ModeTCP)

	// Untouched options keep their defaults.
	require.False(t, cfg.NoStart)
	require.True(t, cfg.ServerCLISigHandler)
}

func TestLoadRejectsMalformedOverride(t *testing.T) {
	t.Setenv("ODB_TCP_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
	var envErr *EnvError
	require.ErrorAs(t, err, &envErr)
	require.Equal(t, "ODB_TCP_PORT", envErr.Var)
}
