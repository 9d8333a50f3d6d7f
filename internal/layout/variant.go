// Copyright 2026 The Layoutc Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package layout

import (
	"github.com/structview/layoutc/internal/dbg"
	"github.com/structview/layoutc/internal/debug"
)

// aligns is the alignment tiers in ascending order. Boundaries are computed
// in this order (L1 fixed, then L2 bounded by L1, then L4 by L2, then L8 by
// L4); bands are *applied* in the reverse, descending order, matching the
// non-increasing alignment discipline of §3.
var aligns = []int{1, 2, 4, 8}

// Arm is one alternative of a variant, described as the flattened list of
// (size, align) leaves it owns directly. Nested variants-of-variants and
// variable-size arms are outside this solver's scope (§1 Non-goals).
type Arm struct {
	Leaves []Leaf
}

func (a Arm) sizes() []int {
	out := make([]int, len(a.Leaves))
	for i, l := range a.Leaves {
		out[i] = l.Size
	}
	return out
}

func (a Arm) requiredSpace() int {
	total := 0
	for _, l := range a.Leaves {
		total += l.Size
	}
	return total
}

// VariantSolution is the result of packing a variant's arms into a shared
// envelope.
type VariantSolution struct {
	// Envelope[a] is the boundary size for alignment tier a (one of 1, 2,
	// 4, 8). Envelope[1] is the overall envelope size.
	Envelope map[int]int
	// Offsets[armIdx][leafIdx] is the byte offset, within the envelope, of
	// that arm's leaf.
	Offsets [][]int
	// Collapsed is true if a fully perfect packing could not be found for
	// at least one band, and padding was introduced instead.
	Collapsed bool

	// The fields below are filled in by [planner.planVariant], not by
	// [SolveVariant] itself: they place the envelope (computed in
	// isolation from the arms alone) within the enclosing struct.

	// Base is the byte offset, from the struct's own base pointer, that
	// every arm offset above is relative to.
	Base int
	// TagIdxMap is the IdxMap slot of the tag leaf, which the queue places
	// outside the envelope, before or after it depending on commit order
	// (§3: "the variant-tag byte(s) live outside the envelope").
	TagIdxMap int
	// TagSize is 1 for variant_count <= 255, else 2 (§4.8).
	TagSize int
	// Field is the schema field name this variant belongs to.
	Field string
	// DynamicVarIdx is the VarOffsets index of the distinguished variable-
	// size arm of a dynamic variant, or -1 if this is a fixed variant or
	// the dynamic variant has no such arm yet planned.
	DynamicVarIdx int
}

// Size is the overall envelope size (Envelope[1], aka L1).
func (s *VariantSolution) Size() int { return s.Envelope[1] }

// SolveVariant finds the smallest envelope such that every arm's leaves fit
// under it with the alignment discipline of §4.5, then assigns each arm's
// leaves an offset within that envelope.
//
// If arms is empty, returns a zero-size envelope.
func SolveVariant(arms []Arm) *VariantSolution {
	sol := &VariantSolution{
		Envelope: map[int]int{1: 0, 2: 0, 4: 0, 8: 0},
		Offsets:  make([][]int, len(arms)),
	}
	for i, arm := range arms {
		sol.Offsets[i] = make([]int, len(arm.Leaves))
	}
	if len(arms) == 0 {
		return sol
	}

	m := 0
	for _, arm := range arms {
		m = max(m, arm.requiredSpace())
	}
	sol.Envelope[1] = m

	// bits[i] is the set of byte counts reachable as a sub-multiset sum of
	// arm i's own leaves — the same bitset is reused for every alignment
	// tier's boundary search, since a boundary is just a partition point of
	// that arm's total multiset (§4.5 step 2-3).
	bits := make([]*Bits, len(arms))
	required := make([]int, len(arms))
	for i, arm := range arms {
		required[i] = arm.requiredSpace()
		bits[i] = GenerateBits(m, arm.sizes())
	}

	upper := m
	for _, a := range []int{2, 4, 8} {
		l, ok := findBoundary(a, upper, arms, required, bits)
		if !ok {
			debug.Log(nil, "variant", "no perfect boundary: %v", dbg.Dict(nil, "align", a, "upper", upper, "arms", len(arms)))
			l = upper
			sol.Collapsed = true
		}
		sol.Envelope[a] = l
		upper = l
	}

	applyVariantLayout(sol, arms)
	return sol
}

// findBoundary searches for the largest multiple of a, no greater than
// upper, that is a reachable subset sum in every arm whose required space is
// at least that candidate.
func findBoundary(a, upper int, arms []Arm, required []int, bits []*Bits) (int, bool) {
	for candidate := upper - upper%a; candidate >= 0; candidate -= a {
		ok := true
		for i := range arms {
			if required[i] >= candidate && !bits[i].Test(candidate) {
				ok = false
				break
			}
		}
		if ok {
			return candidate, true
		}
	}
	return 0, false
}

// applyVariantLayout assigns each arm's leaves an offset within the solved
// envelope, processing alignment bands from 8 down to 1 (§4.5 step 4).
//
// placed is shared across every band iteration (not reset per band): once a
// leaf is absorbed into a higher-aligned band's slack, it must never be
// reconsidered — either as a same-alignment preselect in its own band, or as
// an absorption candidate in a lower band.
func applyVariantLayout(sol *VariantSolution, arms []Arm) {
	placed := make([][]bool, len(arms))
	for ai, arm := range arms {
		placed[ai] = make([]bool, len(arm.Leaves))
	}

	prevEnd := 0
	for _, a := range []int{8, 4, 2, 1} {
		bandEnd := sol.Envelope[a]

		for ai, arm := range arms {
			cursor := prevEnd

			// Fields of exactly this alignment must be placed in this band.
			var preselect []int
			for li, l := range arm.Leaves {
				if l.Align == a && !placed[ai][li] {
					preselect = append(preselect, li)
				}
			}
			for _, li := range preselect {
				sol.Offsets[ai][li] = cursor
				cursor += arm.Leaves[li].Size
				placed[ai][li] = true
			}

			slack := bandEnd - cursor
			if slack < 0 {
				sol.Collapsed = true
				slack = 0
			}

			// Absorb smaller-aligned fields into the slack, best-effort: a
			// subset that doesn't exactly fill the slack is still placed —
			// whatever's left over is simply reconsidered as a preselect or
			// absorption candidate in the next, lower-aligned band, whose
			// own slack may fit it. Only a boundary search that can't find
			// any perfect partition at all (see SolveVariant) or a band
			// whose mandatory same-alignment leaves alone overflow it
			// (above) represents a genuine collapse; failing to use every
			// last byte of one band's slack does not.
			var candIdx []int
			var candSizes []int
			for li, l := range arm.Leaves {
				if l.Align < a && !placed[ai][li] {
					candIdx = append(candIdx, li)
					candSizes = append(candSizes, l.Size)
				}
			}
			if slack > 0 && len(candIdx) > 0 {
				if best := largestReachable(slack, candSizes); best > 0 {
					subset, ok := Solve(best, candSizes)
					debug.Assert(ok, "variant: subset-sum target %d unreachable despite Bits confirming it", best)
					for _, j := range subset {
						li := candIdx[j]
						sol.Offsets[ai][li] = cursor
						cursor += arm.Leaves[li].Size
						placed[ai][li] = true
					}
				}
			}
		}
		prevEnd = bandEnd
	}
}

// largestReachable returns the greatest subset sum of sizes no greater than
// limit, or 0 if nothing fits (the empty subset always reaches 0).
func largestReachable(limit int, sizes []int) int {
	bits := GenerateBits(limit, sizes)
	for v := limit; v > 0; v-- {
		if bits.Test(v) {
			return v
		}
	}
	return 0
}
