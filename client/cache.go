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

import "github.com/obs145628/odb/vmapi"

// memKey indexes one read result by the exact (addr, size) pair requested;
// a different size at the same address is a different fetch.
type memKey struct {
	addr vmapi.Addr
	size uint64
}

// fetchCache dedups repeated lookups within one stop. Register values and
// memory contents are transient and cleared on every resume; register
// infos (name/size/kind), register/symbol names, symbol infos, and
// rendered code text are immutable for the life of a connection and are
// never invalidated by a resume — only regValue and mem are, since those
// are the only two halves that can actually change while the VM runs. This
// split is load-bearing: bundling info and value in one invalidated map
// would force a re-fetch of immutable info on every single resume, which
// is exactly the extra round-trip the fetch cache exists to avoid.
type fetchCache struct {
	regInfo     map[vmapi.RegID]vmapi.RegInfos
	regValue    map[vmapi.RegID][]byte
	regIDByName map[string]vmapi.RegID
	mem         map[memKey][]byte
	symInfos    map[vmapi.SymID]vmapi.SymbolInfos
	symIDByName map[string]vmapi.SymID
	codeText    map[vmapi.Addr]codeEntry
}

type codeEntry struct {
	text string
	size uint64
}

func newFetchCache() *fetchCache {
	return &fetchCache{
		regInfo:     make(map[vmapi.RegID]vmapi.RegInfos),
		regValue:    make(map[vmapi.RegID][]byte),
		regIDByName: make(map[string]vmapi.RegID),
		mem:         make(map[memKey][]byte),
		symInfos:    make(map[vmapi.SymID]vmapi.SymbolInfos),
		symIDByName: make(map[string]vmapi.SymID),
		codeText:    make(map[vmapi.Addr]codeEntry),
	}
}

// invalidate drops everything that could have changed because the VM ran:
// register values and memory contents. Register infos survive — they're
// immutable for the life of a connection — per spec.md's fetch cache
// scenario ("a get_regs on id 1 issues a value request even though its
// info is cached").
func (c *fetchCache) invalidate() {
	c.regValue = make(map[vmapi.RegID][]byte)
	c.mem = make(map[memKey][]byte)
}

func (c *fetchCache) getRegInfo(id vmapi.RegID) (vmapi.RegInfos, bool) {
	v, ok := c.regInfo[id]
	return v, ok
}

func (c *fetchCache) putRegInfo(id vmapi.RegID, v vmapi.RegInfos) { c.regInfo[id] = v }

func (c *fetchCache) getRegValue(id vmapi.RegID) ([]byte, bool) {
	v, ok := c.regValue[id]
	return v, ok
}

func (c *fetchCache) putRegValue(id vmapi.RegID, v []byte) { c.regValue[id] = v }

func (c *fetchCache) invalidateReg(id vmapi.RegID) { delete(c.regValue, id) }

func (c *fetchCache) getRegIDByName(name string) (vmapi.RegID, bool) {
	v, ok := c.regIDByName[name]
	return v, ok
}

func (c *fetchCache) putRegIDByName(name string, id vmapi.RegID) { c.regIDByName[name] = id }

func (c *fetchCache) getMem(addr vmapi.Addr, size uint64) ([]byte, bool) {
	v, ok := c.mem[memKey{addr, size}]
	return v, ok
}

func (c *fetchCache) putMem(addr vmapi.Addr, size uint64, v []byte) {
	c.mem[memKey{addr, size}] = v
}

func (c *fetchCache) getSym(id vmapi.SymID) (vmapi.SymbolInfos, bool) {
	v, ok := c.symInfos[id]
	return v, ok
}

func (c *fetchCache) putSym(id vmapi.SymID, v vmapi.SymbolInfos) { c.symInfos[id] = v }

func (c *fetchCache) getSymIDByName(name string) (vmapi.SymID, bool) {
	v, ok := c.symIDByName[name]
	return v, ok
}

func (c *fetchCache) putSymIDByName(name string, id vmapi.SymID) { c.symIDByName[name] = id }

func (c *fetchCache) getCodeText(addr vmapi.Addr) (codeEntry, bool) {
	v, ok := c.codeText[addr]
	return v, ok
}

func (c *fetchCache) putCodeText(addr vmapi.Addr, e codeEntry) { c.codeText[addr] = e }
