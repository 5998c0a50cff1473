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

// Package log is a thin wrapper over log15 giving every odb subsystem the
// same package-level Info/Debug/Warn/Error/Crit call shape.
package log

import (
	"os"

	"github.com/inconshreveable/log15"
)

var root = log15.New()

func init() {
	root.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// SetVerbosity adjusts the minimum level emitted by the root logger.
func SetVerbosity(lvl log15.Lvl) {
	root.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// New returns a sub-logger carrying the given context, the same way
// go-probeum's log package hands out per-component loggers.
func New(ctx ...interface{}) log15.Logger {
	return root.New(ctx...)
}

func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...); os.Exit(1) }
