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

// Package rangemap implements a coalescing map from integer key ranges to
// small value tags. It is used by the debugger to track which address
// windows have already had their symbols loaded.
package rangemap

import "fmt"

// Segment is one contiguous run of keys sharing the same value.
type Segment struct {
	Lo, Hi uint64 // inclusive bounds
	Value  int64
}

// Map covers [min, max] with an ordered, non-overlapping list of segments.
// Adjacent segments never share a value.
type Map struct {
	min, max uint64
	segs     []Segment
}

// New creates a Map covering [min, max], entirely filled with fill.
func New(min, max uint64, fill int64) *Map {
	if max < min {
		panic(fmt.Sprintf("rangemap: max %d < min %d", max, min))
	}
	return &Map{
		min:  min,
		max:  max,
		segs: []Segment{{Lo: min, Hi: max, Value: fill}},
	}
}

// Min returns the lower bound of the map's domain.
func (m *Map) Min() uint64 { return m.min }

// Max returns the upper bound of the map's domain.
func (m *Map) Max() uint64 { return m.max }

// Len returns the number of segments currently in the map.
func (m *Map) Len() int { return len(m.segs) }

// At returns the i-th segment in ascending key order.
func (m *Map) At(i int) Segment { return m.segs[i] }

// indexOf returns the index of the segment containing k, via binary search.
func (m *Map) indexOf(k uint64) int {
	lo, hi := 0, len(m.segs)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		s := m.segs[mid]
		switch {
		case k < s.Lo:
			hi = mid - 1
		case k > s.Hi:
			lo = mid + 1
		default:
			return mid
		}
	}
	panic(fmt.Sprintf("rangemap: key %d out of [%d,%d]", k, m.min, m.max))
}

// Get returns the value of the segment containing k.
func (m *Map) Get(k uint64) int64 {
	return m.segs[m.indexOf(k)].Value
}

// RangeOf returns the inclusive [lo, hi] bounds and value of the segment
// containing k.
func (m *Map) RangeOf(k uint64) (lo, hi uint64, value int64) {
	s := m.segs[m.indexOf(k)]
	return s.Lo, s.Hi, s.Value
}

// Set overwrites [lo, hi] with value, splitting boundary segments as needed
// and coalescing adjacent segments that end up sharing a value.
func (m *Map) Set(lo, hi uint64, value int64) {
	if lo > hi || lo < m.min || hi > m.max {
		panic(fmt.Sprintf("rangemap: invalid set range [%d,%d] in [%d,%d]", lo, hi, m.min, m.max))
	}

	iLo := m.indexOf(lo)
	// Split the segment containing lo if lo falls strictly inside it.
	if m.segs[iLo].Lo < lo {
		left := m.segs[iLo]
		left.Hi = lo - 1
		right := m.segs[iLo]
		right.Lo = lo
		m.segs = append(m.segs[:iLo], append([]Segment{left, right}, m.segs[iLo+1:]...)...)
		iLo++
	}

	iHi := m.indexOf(hi)
	// Split the segment containing hi if hi doesn't already end it.
	if m.segs[iHi].Hi > hi {
		left := m.segs[iHi]
		left.Hi = hi
		right := m.segs[iHi]
		right.Lo = hi + 1
		m.segs = append(m.segs[:iHi], append([]Segment{left, right}, m.segs[iHi+1:]...)...)
	}

	// Recompute iLo/iHi bounds of the now-split segments spanning [lo,hi].
	iLo = m.indexOf(lo)
	iHi = m.indexOf(hi)

	replacement := Segment{Lo: lo, Hi: hi, Value: value}
	m.segs = append(m.segs[:iLo], append([]Segment{replacement}, m.segs[iHi+1:]...)...)

	m.coalesce()
}

// coalesce merges adjacent segments sharing the same value.
func (m *Map) coalesce() {
	out := m.segs[:1]
	for _, s := range m.segs[1:] {
		last := &out[len(out)-1]
		if last.Value == s.Value && last.Hi+1 == s.Lo {
			last.Hi = s.Hi
			continue
		}
		out = append(out, s)
	}
	m.segs = out
}
