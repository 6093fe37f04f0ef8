// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package axp

import "fmt"

// Segment is a contiguous millivolt range with a uniform step; both Min
// and Max are encodable.
type Segment struct {
	Min, Max, Step int
	// Inverted segments store their step code complemented within the
	// register field.
	Inverted bool
}

// Steps is the number of codes in the segment.
func (s Segment) Steps() int { return (s.Max - s.Min + s.Step) / s.Step }

// Segments are listed in ascending voltage order. A zero Max, if
// present, terminates the list.
type Segments []Segment

func (l Segments) table() Segments {
	for i, s := range l {
		if s.Max == 0 {
			return l[:i]
		}
	}
	return l
}

// Encode returns the register field for the given millivolts, already
// shifted into and limited by the rail's CfgMask. The target is clamped
// to the rail bounds and a target that falls in a gap between two
// segments resolves to the lower segment's Max.
func Encode(r Rail, mv int) uint8 {
	segs := r.Segments.table()
	if len(segs) == 0 {
		return 0
	}
	mv = r.Clamp(mv)
	if mv < segs[0].Min {
		mv = segs[0].Min
	}
	base := 0
	for i, s := range segs {
		if i+1 < len(segs) && mv > s.Max && mv < segs[i+1].Min {
			mv = s.Max
		}
		if mv <= s.Max {
			return r.field(base+(mv-s.Min)/s.Step, s.Inverted)
		}
		base += s.Steps()
	}
	// MaxMV beyond the last segment, settle for its ceiling
	last := segs[len(segs)-1]
	return r.field(base-1, last.Inverted)
}

func (r Rail) field(code int, inverted bool) uint8 {
	f := uint8(code<<r.Shift) & r.CfgMask
	if inverted {
		f = ^f & r.CfgMask
	}
	return f
}

// Decode returns the millivolts of a raw configuration register value.
// Inverted segments are not complemented back.
func Decode(r Rail, v uint8) (int, error) {
	code := int(v&r.CfgMask) >> r.Shift
	before := 0
	for _, s := range r.Segments.table() {
		n := s.Steps()
		if code < before+n {
			return (code-before)*s.Step + s.Min, nil
		}
		before += n
	}
	return 0, fmt.Errorf("%s: %w: %#x", r.Name, ErrBadCode, code)
}

// Steps is the total number of codes of the rail.
func Steps(r Rail) (n int) {
	for _, s := range r.Segments.table() {
		n += s.Steps()
	}
	return
}

// Quantize returns the voltage the rail would actually produce for mv.
func Quantize(r Rail, mv int) (int, error) {
	return Decode(r, Encode(r, mv))
}
