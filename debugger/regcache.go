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

// loadReg is idempotent: the first reference to id queries RegInfos from
// the VM adapter and indexes it by both id and display name. Later calls
// are a cache hit.
func (d *Debugger) loadReg(id vmapi.RegID) (vmapi.RegInfos, error) {
	if v, ok := d.regInfos.Get(id); ok {
		return *v.(*vmapi.RegInfos), nil
	}
	infos, err := d.adapter.GetReg(id)
	if err != nil {
		return vmapi.RegInfos{}, err
	}
	cp := infos
	d.regInfos.Add(id, &cp)
	d.regByName[infos.DisplayName] = id
	return infos, nil
}

// GetRegInfos returns the (possibly cached) immutable fields plus whatever
// value was last fetched for id. It never refreshes the value by itself;
// use GetReg for that.
func (d *Debugger) GetRegInfos(id vmapi.RegID) (vmapi.RegInfos, error) {
	return d.loadReg(id)
}

// GetReg ensures infos are cached, then always issues a fresh value-only
// query to the VM adapter before returning — per spec.md §4.5, value bytes
// are transient and loadReg's cache hit says nothing about their freshness.
func (d *Debugger) GetReg(id vmapi.RegID) (vmapi.RegInfos, error) {
	if _, err := d.loadReg(id); err != nil {
		return vmapi.RegInfos{}, err
	}
	fresh, err := d.adapter.GetReg(id)
	if err != nil {
		return vmapi.RegInfos{}, err
	}
	cp := fresh
	d.regInfos.Add(id, &cp)
	return fresh, nil
}

// SetReg writes val to register id via the VM adapter and write-through
// updates the cached value.
func (d *Debugger) SetReg(id vmapi.RegID, val []byte) error {
	if _, err := d.loadReg(id); err != nil {
		return err
	}
	if err := d.adapter.SetReg(id, val); err != nil {
		return err
	}
	if v, ok := d.regInfos.Get(id); ok {
		cp := *v.(*vmapi.RegInfos)
		cp.Value = val
		d.regInfos.Add(id, &cp)
	}
	return nil
}

// FindRegID resolves a register display name to its id, loading and
// caching its infos along the way.
func (d *Debugger) FindRegID(name string) (vmapi.RegID, error) {
	if id, ok := d.regByName[name]; ok {
		return id, nil
	}
	id, err := d.adapter.FindRegID(name)
	if err != nil {
		return 0, err
	}
	if _, err := d.loadReg(id); err != nil {
		return 0, err
	}
	return id, nil
}
