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

// Package mockvm is a tiny toy VM used only by tests and the bundled demo
// binary. It implements vmapi.Adapter the way a real host VM would, with
// just enough of an instruction set (movi, mov, add, jmp, call, ret, sys) to
// drive the debugger's call/return/breakpoint scenarios, mirroring the
// mvm0 fixture VM from the original odb's own test suite.
package mockvm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/obs145628/odb/vmapi"
)

// Register ids, mirroring mvm0's reg_names layout: 15 general registers,
// then stack pointer, program counter, flags.
const (
	R0 vmapi.RegID = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	RegSP
	RegPC
	RegZF
	numRegs
)

const regSize = 4

// MemSize is the flat address space size: low addresses hold code (one
// instruction per address unit), high addresses are the call stack.
const MemSize = 2048

// Op is an instruction opcode.
type Op string

const (
	OpMovi Op = "movi"
	OpMov  Op = "mov"
	OpAdd  Op = "add"
	OpCall Op = "call"
	OpRet  Op = "ret"
	OpSys  Op = "sys"
	OpJmp  Op = "jmp"
)

// Instr is one decoded instruction.
type Instr struct {
	Op     Op
	A, B   int64 // meaning depends on Op: movi(imm,dstReg), mov/add(srcReg,dstReg), call(targetAddr), sys(code)
	SymTgt bool  // true if A (call's target) was written symbolically, for GetCodeText rendering
	SymID  vmapi.SymID
}

// Symbol names one code address.
type Symbol struct {
	Name string
	Addr vmapi.Addr
}

type status int

const (
	statusRunning status = iota
	statusExit
	statusError
)

// VM is the toy machine. Not safe for concurrent use.
type VM struct {
	regs [numRegs]uint32
	mem  []byte
	code []Instr
	syms []Symbol

	pc, prevPC vmapi.Addr
	status     status
	lastOp     Op
	errMsg     string
}

// New constructs a VM with the given code and symbol table. pc starts at
// the first instruction (address 0).
func New(code []Instr, syms []Symbol) *VM {
	v := &VM{
		mem:  make([]byte, MemSize),
		code: code,
		syms: syms,
	}
	v.regs[RegSP] = MemSize
	return v
}

var ErrBadReg = errors.New("mockvm: bad register id")
var ErrBadAddr = errors.New("mockvm: address out of range")
var ErrBadSym = errors.New("mockvm: unknown symbol")

// Tick executes exactly one instruction. Safe to call repeatedly after
// exit/error: it becomes a no-op.
func (v *VM) Tick() {
	if v.status != statusRunning {
		return
	}
	if int(v.pc) >= len(v.code) {
		v.status = statusError
		v.errMsg = "pc ran off the end of code"
		return
	}
	ins := v.code[v.pc]
	v.prevPC = v.pc
	v.lastOp = ins.Op
	next := v.pc + 1

	switch ins.Op {
	case OpMovi:
		v.regs[ins.B] = uint32(ins.A)
	case OpMov:
		v.regs[ins.B] = v.regs[ins.A]
	case OpAdd:
		v.regs[ins.B] += v.regs[ins.A]
	case OpCall:
		sp := v.regs[RegSP] - regSize
		binary.LittleEndian.PutUint32(v.mem[sp:], uint32(next))
		v.regs[RegSP] = sp
		next = vmapi.Addr(ins.A)
	case OpRet:
		sp := v.regs[RegSP]
		next = vmapi.Addr(binary.LittleEndian.Uint32(v.mem[sp:]))
		v.regs[RegSP] = sp + regSize
	case OpSys:
		if ins.A == 0 {
			v.status = statusExit
		}
	case OpJmp:
		next = vmapi.Addr(ins.A)
	default:
		v.status = statusError
		v.errMsg = fmt.Sprintf("bad opcode %q", ins.Op)
	}
	v.pc = next
}

func (v *VM) GetVMInfos() (vmapi.VMInfos, error) {
	general := make([]vmapi.RegID, 0, 15)
	for i := R0; i <= R14; i++ {
		general = append(general, i)
	}
	return vmapi.VMInfos{
		Name:          "mvm0",
		TotalRegCount: uint32(numRegs),
		RegIDsByKind: map[vmapi.RegKind][]vmapi.RegID{
			vmapi.RegGeneral:        general,
			vmapi.RegStackPointer:   {RegSP},
			vmapi.RegProgramCounter: {RegPC},
			vmapi.RegFlags:          {RegZF},
		},
		MemSize:      MemSize,
		SymbolsCount: uint32(len(v.syms)),
		PointerWidth: 4,
		IntWidth:     4,
	}, nil
}

func (v *VM) GetUpdateInfos() (vmapi.UpdateInfos, error) {
	switch v.status {
	case statusError:
		return vmapi.UpdateInfos{State: vmapi.UpdateError, NextAddr: v.pc}, nil
	case statusExit:
		return vmapi.UpdateInfos{State: vmapi.UpdateExit, NextAddr: v.pc}, nil
	}
	var st vmapi.UpdateState
	switch v.lastOp {
	case OpCall:
		st = vmapi.UpdateCallSub
	case OpRet:
		st = vmapi.UpdateRetSub
	default:
		st = vmapi.UpdateOK
	}
	return vmapi.UpdateInfos{State: st, NextAddr: v.pc}, nil
}

func (v *VM) GetReg(id vmapi.RegID) (vmapi.RegInfos, error) {
	if id >= numRegs {
		return vmapi.RegInfos{}, ErrBadReg
	}
	kind := vmapi.RegGeneral
	switch id {
	case RegSP:
		kind = vmapi.RegStackPointer
	case RegPC:
		kind = vmapi.RegProgramCounter
	case RegZF:
		kind = vmapi.RegFlags
	}
	var val [regSize]byte
	binary.LittleEndian.PutUint32(val[:], v.regs[id])
	return vmapi.RegInfos{
		ID:          id,
		DisplayName: regName(id),
		ByteSize:    regSize,
		Kind:        kind,
		Value:       val[:],
	}, nil
}

func (v *VM) SetReg(id vmapi.RegID, val []byte) error {
	if id >= numRegs {
		return ErrBadReg
	}
	if len(val) != regSize {
		return fmt.Errorf("mockvm: register %d is %d bytes, got %d", id, regSize, len(val))
	}
	v.regs[id] = binary.LittleEndian.Uint32(val)
	return nil
}

func (v *VM) FindRegID(name string) (vmapi.RegID, error) {
	for id := vmapi.RegID(0); id < numRegs; id++ {
		if regName(id) == name {
			return id, nil
		}
	}
	return 0, ErrBadReg
}

func regName(id vmapi.RegID) string {
	switch {
	case id <= R14:
		return fmt.Sprintf("r%d", id)
	case id == RegSP:
		return "sp"
	case id == RegPC:
		return "pc"
	case id == RegZF:
		return "zf"
	default:
		return "?"
	}
}

func (v *VM) ReadMem(addr vmapi.Addr, size uint64) ([]byte, error) {
	if uint64(addr)+size > uint64(len(v.mem)) {
		return nil, ErrBadAddr
	}
	out := make([]byte, size)
	copy(out, v.mem[addr:uint64(addr)+size])
	return out, nil
}

func (v *VM) WriteMem(addr vmapi.Addr, val []byte) error {
	if uint64(addr)+uint64(len(val)) > uint64(len(v.mem)) {
		return ErrBadAddr
	}
	copy(v.mem[addr:], val)
	return nil
}

func (v *VM) GetSymbols(addr vmapi.Addr, size uint64) ([]vmapi.SymID, error) {
	var out []vmapi.SymID
	for i, s := range v.syms {
		if uint64(s.Addr) >= uint64(addr) && uint64(s.Addr) < uint64(addr)+size {
			out = append(out, vmapi.SymID(i))
		}
	}
	return out, nil
}

func (v *VM) GetSymbolInfos(id vmapi.SymID) (vmapi.SymbolInfos, error) {
	if int(id) >= len(v.syms) {
		return vmapi.SymbolInfos{}, ErrBadSym
	}
	s := v.syms[id]
	return vmapi.SymbolInfos{ID: id, Name: s.Name, Address: s.Addr}, nil
}

func (v *VM) FindSymID(name string) (vmapi.SymID, error) {
	for i, s := range v.syms {
		if s.Name == name {
			return vmapi.SymID(i), nil
		}
	}
	return 0, ErrBadSym
}

func (v *VM) GetCodeText(addr vmapi.Addr) (string, uint64, error) {
	if int(addr) >= len(v.code) {
		return "", 0, ErrBadAddr
	}
	ins := v.code[addr]
	switch ins.Op {
	case OpMovi:
		return fmt.Sprintf("movi %d,r%d", ins.A, ins.B), 1, nil
	case OpMov:
		return fmt.Sprintf("mov r%d,r%d", ins.A, ins.B), 1, nil
	case OpAdd:
		return fmt.Sprintf("add r%d,r%d", ins.A, ins.B), 1, nil
	case OpCall:
		if ins.SymTgt {
			return fmt.Sprintf("call {%d}", ins.SymID), 1, nil
		}
		return fmt.Sprintf("call %d", ins.A), 1, nil
	case OpRet:
		return "ret", 1, nil
	case OpSys:
		return fmt.Sprintf("sys %d", ins.A), 1, nil
	case OpJmp:
		return fmt.Sprintf("jmp %d", ins.A), 1, nil
	default:
		return "", 0, fmt.Errorf("mockvm: bad opcode %q", ins.Op)
	}
}
