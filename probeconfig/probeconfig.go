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

// Package probeconfig holds the handful of options that gate whether the
// debugger runtime is active at all, and how it's exposed, loaded first
// from hardcoded defaults and then overridden by environment variables.
// cmd/odb layers cli.v1 flags with the same defaults on top of this.
package probeconfig

import (
	"os"
	"strconv"
)

// Config mirrors spec §6.3's option table. Zero value is NOT a usable
// config — use Default() or Load().
type Config struct {
	// Enabled is the master switch: when false the per-instruction hook is
	// a no-op and nothing else in this package matters.
	Enabled bool

	// NoStart forces the debugger to Stopped before the first instruction
	// runs, instead of running to completion/breakpoint immediately.
	NoStart bool

	// ModeServerCLI enables the on-server stdin/stdout CLI loop.
	ModeServerCLI bool

	// ServerCLISigHandler installs a SIGINT handler that sets the
	// debugger's stop-latch, when ModeServerCLI is active.
	ServerCLISigHandler bool

	// ModeTCP enables the TCP server handler.
	ModeTCP bool

	// TCPPort is the listen port used when ModeTCP is set.
	TCPPort int
}

// Default returns the hardcoded defaults from spec §6.3.
func Default() Config {
	return Config{
		Enabled:             false,
		NoStart:             false,
		ModeServerCLI:       false,
		ServerCLISigHandler: true,
		ModeTCP:             false,
		TCPPort:             12644,
	}
}

// envVar pairs one Config field's environment variable name with the
// setter that parses and applies it.
type envVar struct {
	name string
	set  func(c *Config, raw string) error
}

var envVars = []envVar{
	{"ODB_ENABLED", func(c *Config, raw string) error { return setBool(&c.Enabled, raw) }},
	{"ODB_NOSTART", func(c *Config, raw string) error { return setBool(&c.NoStart, raw) }},
	{"ODB_MODE_SERVER_CLI", func(c *Config, raw string) error { return setBool(&c.ModeServerCLI, raw) }},
	{"ODB_SERVER_CLI_SIGHANDLER", func(c *Config, raw string) error { return setBool(&c.ServerCLISigHandler, raw) }},
	{"ODB_MODE_TCP", func(c *Config, raw string) error { return setBool(&c.ModeTCP, raw) }},
	{"ODB_TCP_PORT", func(c *Config, raw string) error { return setInt(&c.TCPPort, raw) }},
}

func setBool(dst *bool, raw string) error {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setInt(dst *int, raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Load starts from Default() and overrides each option whose environment
// variable is set. A malformed value for a set variable is an error naming
// that variable; unset variables are left at their default.
func Load() (Config, error) {
	cfg := Default()
	for _, ev := range envVars {
		raw, ok := os.LookupEnv(ev.name)
		if !ok {
			continue
		}
		if err := ev.set(&cfg, raw); err != nil {
			return Config{}, &EnvError{Var: ev.name, Raw: raw, Err: err}
		}
	}
	return cfg, nil
}

// EnvError reports a malformed environment variable override.
type EnvError struct {
	Var string
	Raw string
	Err error
}

func (e *EnvError) Error() string {
	return "probeconfig: invalid value " + strconv.Quote(e.Raw) + " for " + e.Var + ": " + e.Err.Error()
}

func (e *EnvError) Unwrap() error { return e.Err }
