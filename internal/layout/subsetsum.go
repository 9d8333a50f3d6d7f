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

// Bits is a dense reachability bitset over byte counts [0, T]: bit i is set
// iff some sub-multiset of the items fed to GenerateBits sums to exactly i.
//
// The original design keeps SIMD-unrolled (AVX2/AVX-512) and scalar
// implementations of the inner shift-and-OR behind a CPU-feature flag; the
// algorithmic shape is identical between them; see DESIGN.md for why this
// port keeps only the scalar form.
type Bits struct {
	words []uint64
	limit int // Highest representable sum, inclusive.
}

const wordBits = 64

// NewBits allocates a reachability bitset capable of representing sums in
// [0, limit].
func NewBits(limit int) *Bits {
	n := limit/wordBits + 1
	b := &Bits{words: make([]uint64, n), limit: limit}
	b.set(0)
	return b
}

func (b *Bits) set(i int) { b.words[i/wordBits] |= 1 << uint(i%wordBits) }

// Test reports whether i is a reachable sum.
func (b *Bits) Test(i int) bool {
	if i < 0 || i > b.limit {
		return false
	}
	return b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Or sets this bitset to the union of itself and other. Both must share the
// same limit.
func (b *Bits) Or(other *Bits) {
	for i := range b.words {
		b.words[i] |= other.words[i]
	}
}

// And sets this bitset to the intersection of itself and other.
func (b *Bits) And(other *Bits) {
	for i := range b.words {
		b.words[i] &= other.words[i]
	}
}

// Clone returns an independent copy.
func (b *Bits) Clone() *Bits {
	out := &Bits{words: make([]uint64, len(b.words)), limit: b.limit}
	copy(out.words, b.words)
	return out
}

// shiftLeft ORs b with itself shifted left by n bits (i.e. adds n to every
// reachable sum, keeping the original reachable sums too), truncating at
// limit. This is the "generate_bits" inner step: folding in one candidate
// item of size n.
func (b *Bits) shiftLeft(n int) {
	if n <= 0 {
		return
	}
	wordShift := n / wordBits
	bitShift := uint(n % wordBits)

	nw := len(b.words)
	shifted := make([]uint64, nw)
	for i := nw - 1; i >= wordShift; i-- {
		v := b.words[i-wordShift] << bitShift
		if bitShift > 0 && i-wordShift-1 >= 0 {
			v |= b.words[i-wordShift-1] >> (wordBits - bitShift)
		}
		shifted[i] = v
	}
	b.Or(&Bits{words: shifted, limit: b.limit})
}

// GenerateBits computes the set of sums reachable from some sub-multiset of
// sizes, as a bitset over [0, T].
func GenerateBits(t int, sizes []int) *Bits {
	bits := NewBits(t)
	for _, n := range sizes {
		if n <= t {
			bits.shiftLeft(n)
		}
	}
	return bits
}

// noItem marks an unreached chain entry.
const noItem = -1

// Solve looks for a sub-multiset of items (by index into sizes) summing to
// exactly t, reconstructing it via a chain array as described in §4.4.
//
// Returns the indices (into sizes) of a subset that sums to t, and whether
// one was found. Complexity is O(n*t) time, O(t) space.
func Solve(t int, sizes []int) (subset []int, ok bool) {
	if t == 0 {
		return nil, true
	}
	if t < 0 {
		return nil, false
	}

	chain := make([]int, t+1)
	for i := range chain {
		chain[i] = noItem
	}
	reachable := make([]bool, t+1)
	reachable[0] = true

	for item, n := range sizes {
		if n <= 0 || n > t {
			continue
		}
		for i := t - n; i >= 0; i-- {
			if reachable[i] && !reachable[i+n] {
				reachable[i+n] = true
				chain[i+n] = item
			}
		}
		if chain[t] != noItem {
			break
		}
	}

	if chain[t] == noItem {
		return nil, false
	}

	// Unwind the chain to reconstruct the subset.
	for remaining := t; remaining > 0; {
		item := chain[remaining]
		subset = append(subset, item)
		remaining -= sizes[item]
	}
	return subset, true
}
