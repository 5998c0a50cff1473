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

package cliutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/obs145628/odb/client"
	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/vmapi"
)

// Evaluator runs one tokenized command line against a client.Client,
// writing human-readable results to Out. It holds no state of its own
// beyond that: every lookup round-trips through the client's fetch cache.
type Evaluator struct {
	Client *client.Client
	Out    io.Writer
}

// Eval tokenizes and executes one line. A blank line is a no-op.
func (e *Evaluator) Eval(line string) error {
	cmd, args, err := Tokenize(line)
	if err != nil {
		return err
	}
	if cmd == "" {
		return nil
	}
	switch cmd {
	case "preg":
		return e.preg(args)
	case "sreg":
		return e.sreg(args)
	case "pregi":
		return e.pregi(args)
	case "pmem":
		return e.pmem(args)
	case "smem":
		return e.smem(args)
	case "psym":
		return e.psym(args)
	case "code":
		return e.code(args)
	case "b":
		return e.addBkp(args)
	case "delb":
		return e.delBkp(args)
	case "c", "continue":
		return e.resume(debugger.ResumeContinue)
	case "s", "step":
		return e.resume(debugger.ResumeStep)
	case "n", "next":
		return e.resume(debugger.ResumeStepOver)
	case "fin", "finish":
		return e.resume(debugger.ResumeStepOut)
	case "state":
		return e.state()
	case "bt":
		return e.backtrace()
	case "vm":
		return e.vmInfos()
	default:
		return fmt.Errorf("cliutil: unknown command %q", cmd)
	}
}

func need(args []Token, n int) error {
	if len(args) < n {
		return fmt.Errorf("cliutil: expected at least %d argument(s), got %d", n, len(args))
	}
	return nil
}

// numType is one of spec.md §6.2's <type> tokens: the byte width and
// signed/float interpretation used to format printed values and lay out
// written ones.
type numType struct {
	bytes  uint64
	signed bool
	float  bool
}

var numTypes = map[string]numType{
	"u8":  {bytes: 1},
	"u16": {bytes: 2},
	"u32": {bytes: 4},
	"u64": {bytes: 8},
	"i8":  {bytes: 1, signed: true},
	"i16": {bytes: 2, signed: true},
	"i32": {bytes: 4, signed: true},
	"i64": {bytes: 8, signed: true},
	"f32": {bytes: 4, float: true},
	"f64": {bytes: 8, float: true},
}

// parseNumType consumes the mandatory leading <type> token every preg,
// sreg, pmem, and smem command requires.
func parseNumType(t Token) (numType, error) {
	if t.Kind != TokIdent {
		return numType{}, fmt.Errorf("cliutil: %q is not a <type>", t.Text)
	}
	nt, ok := numTypes[t.Text]
	if !ok {
		return numType{}, fmt.Errorf("cliutil: unknown type %q (want one of u8|u16|u32|u64|i8|i16|i32|i64|f32|f64)", t.Text)
	}
	return nt, nil
}

// resolveReg resolves a <reg> token (% followed by a decimal id or a
// name) to a register id.
func (e *Evaluator) resolveReg(t Token) (vmapi.RegID, error) {
	if t.Kind != TokRegRef {
		return 0, fmt.Errorf("cliutil: %q is not a <reg> (expected %%<id>|%%<name>)", t.Text)
	}
	if isNumberLiteral(t.Text) {
		v, err := strconv.ParseUint(t.Text, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cliutil: bad register id %q: %w", t.Text, err)
		}
		return vmapi.RegID(v), nil
	}
	return e.Client.FindRegID(t.Text)
}

// resolveAddr resolves a numeric literal or a <symbol> reference (@
// followed by a decimal id or name) to an address.
func (e *Evaluator) resolveAddr(t Token) (vmapi.Addr, error) {
	switch t.Kind {
	case TokNumber:
		v, err := t.Uint()
		return vmapi.Addr(v), err
	case TokSymRef, TokIdent:
		id, err := e.resolveSymID(t)
		if err != nil {
			return 0, err
		}
		info, err := e.Client.GetSymbolInfos(id)
		return info.Address, err
	default:
		return 0, fmt.Errorf("cliutil: cannot resolve %q to an address", t.Text)
	}
}

// resolveSymID resolves a <symbol> token to a symbol id: a TokSymRef whose
// text is a decimal number is the id itself; anything else is looked up by
// name.
func (e *Evaluator) resolveSymID(t Token) (vmapi.SymID, error) {
	if t.Kind == TokSymRef && isDigits(t.Text, 10) {
		v, err := strconv.ParseUint(t.Text, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("cliutil: bad symbol id %q: %w", t.Text, err)
		}
		return vmapi.SymID(v), nil
	}
	return e.Client.FindSymID(t.Text)
}

// resolveVal resolves a <val> token (signed integer, float, or symbol
// reference) to its little-endian encoding at the width t dictates.
func (e *Evaluator) resolveVal(t Token, nt numType) ([]byte, error) {
	switch t.Kind {
	case TokSymRef:
		addr, err := e.resolveAddr(t)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, nt.bytes)
		putUintLE(buf, uint64(addr))
		return buf, nil
	case TokFloat:
		f, err := t.Float()
		if err != nil {
			return nil, err
		}
		return encodeFloat(f, nt), nil
	case TokNumber:
		v, err := t.Uint()
		if err != nil {
			return nil, err
		}
		if nt.float {
			return encodeFloat(float64(int64(v)), nt), nil
		}
		buf := make([]byte, nt.bytes)
		putUintLE(buf, v)
		return buf, nil
	default:
		return nil, fmt.Errorf("cliutil: %q is not a valid <val>", t.Text)
	}
}

func (e *Evaluator) preg(args []Token) error {
	if err := need(args, 2); err != nil {
		return err
	}
	nt, err := parseNumType(args[0])
	if err != nil {
		return err
	}
	ids := make([]vmapi.RegID, 0, len(args)-1)
	for _, a := range args[1:] {
		id, err := e.resolveReg(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	regs, err := e.Client.GetRegs(ids)
	if err != nil {
		return err
	}
	for _, r := range regs {
		fmt.Fprintf(e.Out, "%s = %s\n", r.DisplayName, formatValue(r.Value, nt))
	}
	return nil
}

func (e *Evaluator) sreg(args []Token) error {
	if err := need(args, 3); err != nil {
		return err
	}
	nt, err := parseNumType(args[0])
	if err != nil {
		return err
	}
	rest := args[1:]
	if len(rest)%2 != 0 {
		return fmt.Errorf("cliutil: sreg expects (<reg> <val>)+ pairs, got %d trailing argument(s)", len(rest))
	}
	ids := make([]vmapi.RegID, 0, len(rest)/2)
	vals := make([][]byte, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		id, err := e.resolveReg(rest[i])
		if err != nil {
			return err
		}
		val, err := e.resolveVal(rest[i+1], nt)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		vals = append(vals, val)
	}
	return e.Client.SetRegs(ids, vals)
}

func (e *Evaluator) pregi(args []Token) error {
	if err := need(args, 1); err != nil {
		return err
	}
	ids := make([]vmapi.RegID, 0, len(args))
	for _, a := range args {
		id, err := e.resolveReg(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	infos, err := e.Client.GetRegsInfos(ids)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(e.Out, "%s: id=%d size=%d kind=%d\n", info.DisplayName, info.ID, info.ByteSize, info.Kind)
	}
	return nil
}

func (e *Evaluator) pmem(args []Token) error {
	if err := need(args, 3); err != nil {
		return err
	}
	nt, err := parseNumType(args[0])
	if err != nil {
		return err
	}
	addr, err := e.resolveAddr(args[1])
	if err != nil {
		return err
	}
	count, err := args[2].Uint()
	if err != nil {
		return err
	}
	val, err := e.Client.ReadMem(addr, count*nt.bytes)
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		chunk := val[i*nt.bytes : (i+1)*nt.bytes]
		fmt.Fprintf(e.Out, "%#x: %s\n", uint64(addr)+i*nt.bytes, formatValue(chunk, nt))
	}
	return nil
}

func (e *Evaluator) smem(args []Token) error {
	if err := need(args, 3); err != nil {
		return err
	}
	nt, err := parseNumType(args[0])
	if err != nil {
		return err
	}
	addr, err := e.resolveAddr(args[1])
	if err != nil {
		return err
	}
	buf := make([]byte, 0, nt.bytes*uint64(len(args)-2))
	for _, a := range args[2:] {
		v, err := e.resolveVal(a, nt)
		if err != nil {
			return err
		}
		buf = append(buf, v...)
	}
	return e.Client.WriteMem(addr, buf)
}

func (e *Evaluator) psym(args []Token) error {
	if err := need(args, 1); err != nil {
		return err
	}
	if args[0].Kind == TokNumber {
		addr, err := e.resolveAddr(args[0])
		if err != nil {
			return err
		}
		syms, err := e.Client.GetSymbolsByAddr(addr, 1)
		if err != nil {
			return err
		}
		if len(syms) == 0 {
			fmt.Fprintf(e.Out, "no symbol at %#x\n", uint64(addr))
			return nil
		}
		fmt.Fprintf(e.Out, "%s @ %#x\n", syms[0].Name, uint64(syms[0].Address))
		return nil
	}
	id, err := e.resolveSymID(args[0])
	if err != nil {
		return err
	}
	info, err := e.Client.GetSymbolInfos(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.Out, "%s @ %#x\n", info.Name, uint64(info.Address))
	return nil
}

func (e *Evaluator) code(args []Token) error {
	if err := need(args, 1); err != nil {
		return err
	}
	addr, err := e.resolveAddr(args[0])
	if err != nil {
		return err
	}
	n := uint64(1)
	if len(args) > 1 {
		if n, err = args[1].Uint(); err != nil {
			return err
		}
	}
	for i := uint64(0); i < n; i++ {
		text, size, err := e.Client.GetCodeText(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.Out, "%#x: %s\n", uint64(addr), text)
		addr += vmapi.Addr(size)
	}
	return nil
}

func (e *Evaluator) addBkp(args []Token) error {
	if err := need(args, 1); err != nil {
		return err
	}
	addr, err := e.resolveAddr(args[0])
	if err != nil {
		return err
	}
	return e.Client.AddBreakpoint(addr)
}

func (e *Evaluator) delBkp(args []Token) error {
	if err := need(args, 1); err != nil {
		return err
	}
	addr, err := e.resolveAddr(args[0])
	if err != nil {
		return err
	}
	return e.Client.DelBreakpoint(addr)
}

func (e *Evaluator) resume(t debugger.ResumeType) error {
	return e.Client.Resume(t)
}

func (e *Evaluator) state() error {
	u := e.Client.LastStopped()
	fmt.Fprintf(e.Out, "%s: addr=%#x stopped=%v\n", e.Client.State(), uint64(u.Addr), u.Stopped)
	return nil
}

func (e *Evaluator) backtrace() error {
	u := e.Client.LastStopped()
	for i := len(u.CallStack) - 1; i >= 0; i-- {
		f := u.CallStack[i]
		if i == 0 {
			fmt.Fprintf(e.Out, "#%d %#x\n", len(u.CallStack)-1-i, uint64(f.CallerStartAddr))
			continue
		}
		// The call site that entered frame i is recorded on its caller, frame i-1.
		fmt.Fprintf(e.Out, "#%d %#x (called from %#x)\n", len(u.CallStack)-1-i, uint64(f.CallerStartAddr), uint64(u.CallStack[i-1].CallAddr))
	}
	return nil
}

func (e *Evaluator) vmInfos() error {
	v := e.Client.VMInfos()
	fmt.Fprintf(e.Out, "%s: %d registers, %d bytes memory, %d symbols\n", v.Name, v.TotalRegCount, v.MemSize, v.SymbolsCount)
	return nil
}

// formatValue interprets val (truncated/padded to nt.bytes) as nt's type
// and renders it the way a debugger prints a typed value: decimal for
// integers, %g for floats.
func formatValue(val []byte, nt numType) string {
	val = adjustWidth(val, nt.bytes)
	switch {
	case nt.float:
		if nt.bytes == 4 {
			return fmt.Sprintf("%g", math.Float32frombits(uint32(readUintLE(val))))
		}
		return fmt.Sprintf("%g", math.Float64frombits(readUintLE(val)))
	case nt.signed:
		return fmt.Sprintf("%d", signExtend(readUintLE(val), nt.bytes*8))
	default:
		return fmt.Sprintf("%d", readUintLE(val))
	}
}

func encodeFloat(f float64, nt numType) []byte {
	buf := make([]byte, nt.bytes)
	if nt.bytes == 4 {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
	} else {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
	}
	return buf
}

func adjustWidth(val []byte, n uint64) []byte {
	if uint64(len(val)) >= n {
		return val[:n]
	}
	out := make([]byte, n)
	copy(out, val)
	return out
}

func readUintLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func signExtend(v uint64, bits uint64) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

func putUintLE(dst []byte, v uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	default:
		for i := range dst {
			dst[i] = byte(v >> (8 * uint(i)))
		}
	}
}
