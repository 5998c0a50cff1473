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

import (
	"errors"
	"sync"

	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/vmapi"
	"github.com/obs145628/odb/wire"
)

var (
	ErrNotConnected  = errors.New("client: not connected")
	ErrAlreadyConnected = errors.New("client: already connected")
	ErrNotStopped    = errors.New("client: vm is running, resume not legal")
)

// Client is the state-guarded façade a CLI drives: not_connected until
// Connect succeeds, then vm_stopped/vm_running as reported by the backend,
// or disconnected if the backend reports a transport failure.
type Client struct {
	backend Backend

	mu          sync.Mutex
	state       State
	cache       *fetchCache
	vmInfos     vmapi.VMInfos
	lastStopped vmapi.StoppedUpdate
}

// New wraps backend in a fresh, not-yet-connected façade.
func New(backend Backend) *Client {
	return &Client{backend: backend, state: NotConnected, cache: newFetchCache()}
}

func (c *Client) State() State { return c.state }

// VMInfos returns the static facts learned at Connect.
func (c *Client) VMInfos() vmapi.VMInfos { return c.vmInfos }

// LastStopped returns the most recently observed stop bundle, from either
// Connect or CheckStopped.
func (c *Client) LastStopped() vmapi.StoppedUpdate { return c.lastStopped }

func (c *Client) requireConnected() error {
	if c.state == NotConnected {
		return ErrNotConnected
	}
	return nil
}

func (c *Client) onTransportErr(err error) error {
	if err != nil {
		c.state = Disconnected
	}
	return err
}

func (c *Client) setStateFromStopped(u vmapi.StoppedUpdate) {
	if u.Stopped {
		c.state = VMStopped
	} else {
		c.state = VMRunning
	}
}

// Connect performs the initial handshake. Legal from not_connected or
// disconnected (a reconnect after a transport failure).
func (c *Client) Connect() (vmapi.VMInfos, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == VMStopped || c.state == VMRunning {
		return vmapi.VMInfos{}, ErrAlreadyConnected
	}
	infos, stopped, err := c.backend.Connect()
	if err != nil {
		return vmapi.VMInfos{}, c.onTransportErr(err)
	}
	c.vmInfos = infos
	c.lastStopped = stopped
	c.setStateFromStopped(stopped)
	return infos, nil
}

// Stop requests a pause. Legal in any connected state, including while
// running — it's the one request the running dispatcher always accepts.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.onTransportErr(c.backend.Stop())
}

// CheckStopped polls the current stop state and refreshes the façade's
// cached copy of it.
func (c *Client) CheckStopped() (vmapi.StoppedUpdate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return vmapi.StoppedUpdate{}, err
	}
	u, err := c.backend.CheckStopped()
	if err != nil {
		return u, c.onTransportErr(err)
	}
	c.lastStopped = u
	c.setStateFromStopped(u)
	return u, nil
}

// Resume moves the VM into the running_* mode named by t. Legal only from
// vm_stopped. On success, the fetch cache's transient half (register
// values, memory contents) is dropped since the VM is about to run.
func (c *Client) Resume(t debugger.ResumeType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	if c.state != VMStopped {
		return ErrNotStopped
	}
	if err := c.backend.Resume(t); err != nil {
		return c.onTransportErr(err)
	}
	c.cache.invalidate()
	c.state = VMRunning
	return nil
}

// GetRegsInfos returns the immutable info (name/size/kind) for each id in
// ids, issuing a single batched server request for whichever ids aren't
// already cached. Per spec.md §8 Scenario E, two overlapping calls to this
// method only ever request the ids missing from the first.
func (c *Client) GetRegsInfos(ids []vmapi.RegID) ([]vmapi.RegInfos, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	return c.ensureRegInfos(ids)
}

// ensureRegInfos fetches and caches the infos missing from ids in one
// batched round-trip, then returns the full set in request order. Callers
// must already hold c.mu.
func (c *Client) ensureRegInfos(ids []vmapi.RegID) ([]vmapi.RegInfos, error) {
	var missing []vmapi.RegID
	for _, id := range ids {
		if _, ok := c.cache.getRegInfo(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		infos, err := c.backend.GetRegsInfos(missing)
		if err != nil {
			return nil, c.onTransportErr(err)
		}
		for _, info := range infos {
			c.cache.putRegInfo(info.ID, info)
		}
	}
	out := make([]vmapi.RegInfos, len(ids))
	for i, id := range ids {
		out[i], _ = c.cache.getRegInfo(id)
	}
	return out, nil
}

// GetRegs returns each id's full info plus its current value, serving both
// from the fetch cache where possible and issuing at most one batched info
// request and one batched value request for whatever is missing — not one
// round-trip per register, which is the entire point of the cache (spec.md
// §4.6, §8 Scenario E).
func (c *Client) GetRegs(ids []vmapi.RegID) ([]vmapi.RegInfos, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	infos, err := c.ensureRegInfos(ids)
	if err != nil {
		return nil, err
	}

	var missingIDs []vmapi.RegID
	var missingSizes []uint64
	for i, id := range ids {
		if _, ok := c.cache.getRegValue(id); !ok {
			missingIDs = append(missingIDs, id)
			missingSizes = append(missingSizes, infos[i].ByteSize)
		}
	}
	if len(missingIDs) > 0 {
		uniform, _ := wire.UniformSizes(missingSizes)
		vals, err := c.backend.GetRegs(missingIDs, missingSizes, !uniform)
		if err != nil {
			return nil, c.onTransportErr(err)
		}
		for i, id := range missingIDs {
			c.cache.putRegValue(id, vals[i])
		}
	}

	out := make([]vmapi.RegInfos, len(ids))
	for i, id := range ids {
		out[i] = infos[i]
		out[i].Value, _ = c.cache.getRegValue(id)
	}
	return out, nil
}

// GetReg is GetRegs for a single register, the common case from the CLI.
func (c *Client) GetReg(id vmapi.RegID) (vmapi.RegInfos, error) {
	out, err := c.GetRegs([]vmapi.RegID{id})
	if err != nil {
		return vmapi.RegInfos{}, err
	}
	return out[0], nil
}

// SetRegs writes vals[i] to ids[i] in one batched request and
// write-through-updates the cached value for each.
func (c *Client) SetRegs(ids []vmapi.RegID, vals [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	if _, err := c.ensureRegInfos(ids); err != nil {
		return err
	}
	sizes := make([]uint64, len(vals))
	for i, v := range vals {
		sizes[i] = uint64(len(v))
	}
	uniform, _ := wire.UniformSizes(sizes)
	if err := c.backend.SetRegs(ids, sizes, vals, !uniform); err != nil {
		return c.onTransportErr(err)
	}
	for i, id := range ids {
		c.cache.putRegValue(id, vals[i])
	}
	return nil
}

// SetReg is SetRegs for a single register.
func (c *Client) SetReg(id vmapi.RegID, val []byte) error {
	return c.SetRegs([]vmapi.RegID{id}, [][]byte{val})
}

// FindRegsIDs resolves register names to ids in one batched request for
// whatever names aren't already cached, then prefetches the infos of the
// resolved ids the same way GetRegsInfos does.
func (c *Client) FindRegsIDs(names []string) ([]vmapi.RegID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range names {
		if _, ok := c.cache.getRegIDByName(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		ids, err := c.backend.FindRegsIDs(missing)
		if err != nil {
			return nil, c.onTransportErr(err)
		}
		for i, name := range missing {
			c.cache.putRegIDByName(name, ids[i])
		}
	}
	out := make([]vmapi.RegID, len(names))
	for i, name := range names {
		out[i], _ = c.cache.getRegIDByName(name)
	}
	if _, err := c.ensureRegInfos(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindRegID resolves a register name to its id. Register names never
// change for a connection, so this caches forever.
func (c *Client) FindRegID(name string) (vmapi.RegID, error) {
	ids, err := c.FindRegsIDs([]string{name})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// ReadMem reads size bytes at addr, serving from cache when the exact same
// (addr, size) was already fetched since the last resume.
func (c *Client) ReadMem(addr vmapi.Addr, size uint64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	if v, ok := c.cache.getMem(addr, size); ok {
		return v, nil
	}
	vals, err := c.backend.ReadMem([]vmapi.Addr{addr}, []uint64{size}, false)
	if err != nil {
		return nil, c.onTransportErr(err)
	}
	c.cache.putMem(addr, size, vals[0])
	return vals[0], nil
}

// WriteMem writes val at addr and drops the whole memory half of the
// cache: a write can alias any earlier cached read, so invalidating just
// the written range isn't safe without knowing the VM's aliasing rules.
func (c *Client) WriteMem(addr vmapi.Addr, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.backend.WriteMem([]vmapi.Addr{addr}, []uint64{uint64(len(val))}, [][]byte{val}, false); err != nil {
		return c.onTransportErr(err)
	}
	c.cache.mem = make(map[memKey][]byte)
	return nil
}

// GetSymbolInfos returns a symbol's info by id, cached forever (symbols
// are immutable for the life of a connection).
func (c *Client) GetSymbolInfos(id vmapi.SymID) (vmapi.SymbolInfos, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return vmapi.SymbolInfos{}, err
	}
	if v, ok := c.cache.getSym(id); ok {
		return v, nil
	}
	infos, err := c.backend.GetSymsByIDs([]vmapi.SymID{id})
	if err != nil {
		return vmapi.SymbolInfos{}, c.onTransportErr(err)
	}
	c.cache.putSym(id, infos[0])
	return infos[0], nil
}

// GetSymbolsByAddr is never cached client-side: the range queried varies
// per call, so there's nothing to dedup beyond what the debugger's own
// preload window already does server-side.
func (c *Client) GetSymbolsByAddr(addr vmapi.Addr, size uint64) ([]vmapi.SymbolInfos, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	infos, err := c.backend.GetSymsByAddr(addr, size)
	if err != nil {
		return nil, c.onTransportErr(err)
	}
	for _, s := range infos {
		c.cache.putSym(s.ID, s)
	}
	return infos, nil
}

// FindSymID resolves a symbol name to its id, cached forever.
func (c *Client) FindSymID(name string) (vmapi.SymID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return 0, err
	}
	if id, ok := c.cache.getSymIDByName(name); ok {
		return id, nil
	}
	infos, err := c.backend.GetSymsByName([]string{name})
	if err != nil {
		return 0, c.onTransportErr(err)
	}
	c.cache.putSymIDByName(name, infos[0].ID)
	c.cache.putSym(infos[0].ID, infos[0])
	return infos[0].ID, nil
}

// GetCodeText renders one unit of code at addr, cached forever (code is
// immutable for the life of a connection).
func (c *Client) GetCodeText(addr vmapi.Addr) (string, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return "", 0, err
	}
	if e, ok := c.cache.getCodeText(addr); ok {
		return e.text, e.size, nil
	}
	text, sizes, err := c.backend.GetCodeText(addr, 1)
	if err != nil {
		return "", 0, c.onTransportErr(err)
	}
	e := codeEntry{text: text[0], size: sizes[0]}
	c.cache.putCodeText(addr, e)
	return e.text, e.size, nil
}

// AddBreakpoint inserts a breakpoint at addr.
func (c *Client) AddBreakpoint(addr vmapi.Addr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.onTransportErr(c.backend.AddBkps([]vmapi.Addr{addr}))
}

// DelBreakpoint removes the breakpoint at addr.
func (c *Client) DelBreakpoint(addr vmapi.Addr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.onTransportErr(c.backend.DelBkps([]vmapi.Addr{addr}))
}
