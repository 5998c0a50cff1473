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

// Package vmapi defines the capability set a host VM exposes to the
// debugger core, and the immutable/transient data model shared by every
// other odb package. The VM adapter itself (a real interpreter's
// instruction loop, memory, and symbol table) is an external collaborator:
// odb only ever talks to it through the Adapter interface below.
package vmapi

// RegID identifies a register. The all-ones value is never a valid id.
type RegID uint32

// Addr is a VM memory address.
type Addr uint64

// SymID identifies a symbol. NoSym means "no symbol at this location".
type SymID uint32

// NoSym is the reserved sentinel meaning "no symbol".
const NoSym SymID = 0xFFFFFFFF

// RegKind classifies a register's role.
type RegKind int8

const (
	RegGeneral RegKind = iota
	RegProgramCounter
	RegStackPointer
	RegBasePointer
	RegFlags
)

// RegInfos describes one register. Id/DisplayName/ByteSize/Kind are
// immutable for the life of a connection; Value is transient and only
// valid until the next resume.
type RegInfos struct {
	ID          RegID
	DisplayName string
	ByteSize    uint64
	Kind        RegKind
	Value       []byte // nil if not yet fetched
}

// SymbolInfos describes one symbol. Immutable per run.
type SymbolInfos struct {
	ID      SymID
	Name    string
	Address Addr
}

// VMInfos describes static facts about the VM, queried once per connection.
type VMInfos struct {
	Name              string
	TotalRegCount     uint32
	RegIDsByKind      map[RegKind][]RegID
	MemSize           uint64
	SymbolsCount      uint32
	PointerWidth      uint8
	IntWidth          uint8
	HasBinaryOpcodes  bool
}

// CallFrame is one entry in the debugger's call stack.
type CallFrame struct {
	CallerStartAddr Addr // entry address of the subroutine currently executing
	CallAddr        Addr // call-site address inside this frame's subroutine of the call that entered the next frame; meaningless for the innermost (last) frame
}

// UpdateState is what the VM adapter reports happened on the last tick.
type UpdateState int8

const (
	UpdateOK UpdateState = iota
	UpdateCallSub
	UpdateRetSub
	UpdateExit
	UpdateError
)

// UpdateInfos is the per-tick report from the VM adapter.
type UpdateInfos struct {
	State   UpdateState
	NextAddr Addr
}

// StoppedState is the high-level reason execution is (or isn't) stopped.
type StoppedState int8

const (
	StoppedReady StoppedState = iota
	StoppedExit
	StoppedError
)

// StoppedUpdate is sent client-ward whenever the debugger transitions to
// (or reports on) a stop.
type StoppedUpdate struct {
	State     StoppedState
	Stopped   bool
	Addr      Addr
	CallStack []CallFrame
}

// Adapter is the capability set a host VM must expose to the debugger.
// Any method may return a recoverable error (bad id, address out of range,
// unknown symbol name); the debugger surfaces such errors unchanged.
type Adapter interface {
	GetVMInfos() (VMInfos, error)
	GetUpdateInfos() (UpdateInfos, error)

	// GetReg returns the full RegInfos (including a fresh Value) for id. The
	// debugger's register cache uses this both to learn the immutable
	// fields on first reference and to refresh Value on every later call.
	GetReg(id RegID) (RegInfos, error)
	SetReg(id RegID, val []byte) error
	FindRegID(name string) (RegID, error)

	ReadMem(addr Addr, size uint64) ([]byte, error)
	WriteMem(addr Addr, val []byte) error

	// GetSymbols returns the ids of every symbol whose address falls in
	// [addr, addr+size).
	GetSymbols(addr Addr, size uint64) ([]SymID, error)
	GetSymbolInfos(id SymID) (SymbolInfos, error)
	FindSymID(name string) (SymID, error)

	// GetCodeText renders one unit of code (instruction or directive) at
	// addr, returning its text and the number of address units it occupies.
	// Symbolic operands are rendered as "{<sym_id>}".
	GetCodeText(addr Addr) (text string, size uint64, err error)
}
