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

package debugger

import "github.com/obs145628/odb/vmapi"

const (
	symNotLoaded = 0
	symLoaded    = 1
)

// preloadSymbols expands [addr, addr+size) to at least opts.PreloadWindow,
// trims it to the sub-ranges not yet marked loaded in the range map
// (checking the low and high endpoints first to short-circuit the common
// case), queries the VM adapter for symbol ids with one call per
// not-yet-loaded segment, marks the window loaded, then loads info for each
// returned id. Idempotent and O(1) after the first reference to a window.
func (d *Debugger) preloadSymbols(addr vmapi.Addr, size uint64) error {
	lo := uint64(addr)
	hi := lo + size
	if size < d.opts.PreloadWindow {
		grow := (d.opts.PreloadWindow - size) / 2
		if lo > grow {
			lo -= grow
		} else {
			lo = 0
		}
		hi = lo + d.opts.PreloadWindow
	}
	max := d.symLoaded.Max()
	if hi > max+1 {
		hi = max + 1
	}
	if lo > max {
		lo = max
	}
	if hi == lo {
		hi = lo + 1
	}

	// Short-circuit: if both endpoints already fall in loaded segments
	// that cover the whole window, nothing to do.
	loLo, loHi, loVal := d.symLoaded.RangeOf(lo)
	hiLo, hiHi, hiVal := d.symLoaded.RangeOf(hi - 1)
	if loVal == symLoaded && hiVal == symLoaded && loLo <= lo && loHi >= lo && hiLo <= hi-1 && hiHi >= hi-1 && loHi+1 >= hi-1 {
		return nil
	}

	// Walk the segments in [lo, hi-1], querying the VM only for the gaps.
	k := lo
	for k < hi {
		segLo, segHi, val := d.symLoaded.RangeOf(k)
		if segHi >= hi {
			segHi = hi - 1
		}
		if val == symNotLoaded {
			ids, err := d.adapter.GetSymbols(vmapi.Addr(segLo), segHi-segLo+1)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := d.loadSym(id); err != nil {
					return err
				}
			}
		}
		d.symLoaded.Set(segLo, segHi, symLoaded)
		k = segHi + 1
	}
	return nil
}

func (d *Debugger) loadSym(id vmapi.SymID) (vmapi.SymbolInfos, error) {
	if v, ok := d.symInfos.Get(id); ok {
		return *v.(*vmapi.SymbolInfos), nil
	}
	infos, err := d.adapter.GetSymbolInfos(id)
	if err != nil {
		return vmapi.SymbolInfos{}, err
	}
	cp := infos
	d.symInfos.Add(id, &cp)
	return infos, nil
}

// GetSymbolInfos returns the (cached) info for id, preloading the address
// space around it isn't necessary since the id is already known.
func (d *Debugger) GetSymbolInfos(id vmapi.SymID) (vmapi.SymbolInfos, error) {
	return d.loadSym(id)
}

// GetSymbolsByAddr preloads and returns every symbol in [addr, addr+size).
func (d *Debugger) GetSymbolsByAddr(addr vmapi.Addr, size uint64) ([]vmapi.SymbolInfos, error) {
	if err := d.preloadSymbols(addr, size); err != nil {
		return nil, err
	}
	ids, err := d.adapter.GetSymbols(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]vmapi.SymbolInfos, 0, len(ids))
	for _, id := range ids {
		infos, err := d.loadSym(id)
		if err != nil {
			return nil, err
		}
		out = append(out, infos)
	}
	return out, nil
}

// FindSymID resolves a symbol name to its id.
func (d *Debugger) FindSymID(name string) (vmapi.SymID, error) {
	return d.adapter.FindSymID(name)
}

// GetCodeText renders one unit of code at addr.
func (d *Debugger) GetCodeText(addr vmapi.Addr) (string, uint64, error) {
	return d.adapter.GetCodeText(addr)
}

// ReadMem reads size bytes at addr.
func (d *Debugger) ReadMem(addr vmapi.Addr, size uint64) ([]byte, error) {
	return d.adapter.ReadMem(addr, size)
}

// WriteMem writes val at addr.
func (d *Debugger) WriteMem(addr vmapi.Addr, val []byte) error {
	return d.adapter.WriteMem(addr, val)
}
