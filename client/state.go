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

package client

// State is the façade's view of the session, independent of whatever
// running_* sub-state the debugger itself is in.
type State int8

const (
	NotConnected State = iota
	Disconnected
	VMStopped
	VMRunning
)

func (s State) String() string {
	switch s {
	case NotConnected:
		return "not_connected"
	case Disconnected:
		return "disconnected"
	case VMStopped:
		return "vm_stopped"
	case VMRunning:
		return "vm_running"
	default:
		return "unknown"
	}
}
