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

// Package layout implements the two tightly coupled subsystems at the heart
// of the compiler: the layout planner (assigning byte offsets to every fixed
// leaf, size-chain formulas to every variable leaf, and packing variants
// into a shared envelope) and the data it hands to the accessor emitter.
package layout

// FixedOffset is the final placement of one fixed-size leaf.
//
// Invariant: ByteOffset mod PackAlignment == 0.
type FixedOffset struct {
	ByteOffset    int
	SourceMapIdx  int // Index into the owning Layout.IdxMap this entry was assigned from.
	PackAlignment int // One of 1, 2, 4, 8.
}

// SizeTerm is one (size-reader, stride) pair in a variable leaf's size
// chain: position = var_region_start + Σ SizeTerm.Stride * size_i(base).
type SizeTerm struct {
	SizeReader int // Index into the owning Layout's size-reader list.
	Stride     int
}

// VarOffset is the size-chain slice for one variable-size leaf: its byte
// position is the sum of every term's contribution, relative to the start
// of the variable region.
type VarOffset struct {
	Field string
	Terms []SizeTerm

	// MinLen is the constant number of bytes always present (min_len for a
	// dynamic string, min element count * ElementSize for a dynamic array).
	MinLen int
	// ElementSize is nonzero when this leaf is a dynamic array: the stride
	// used for idx*ElementSize element addressing. Zero for a dynamic
	// string, whose bytes are addressed directly.
	ElementSize int
	// SizeReader is this leaf's own size<i>(base) reader index, used by
	// later leaves' Terms and by this leaf's own length()/size() accessor.
	SizeReader int
}

// ArrayPackInfo records the per-alignment stride used by the index
// arithmetic code generator for a (possibly nested) fixed array.
type ArrayPackInfo struct {
	ElementSize   int
	ParentPackIdx int // Index of the enclosing ArrayPackInfo, or -1 at the top.
}

// VariantLeafMeta is the per-arm summary the variant solver computes and
// consumes while packing a variant's arms into a shared envelope.
type VariantLeafMeta struct {
	UsedSpaceByAlign      map[int]int // align -> bytes occupied by leaves of that alignment.
	RequiredSpace         int         // Total bytes the arm needs, ignoring holes.
	NonZeroFieldCounts    map[int]int // align -> number of leaves of that alignment.
	FieldIdxRangeInQueue  [2]int      // [start, end) into the arm's flattened leaf list.
}

// Leaf is a flattened (size, align) requirement belonging to one arm or
// scope, used as the unit the subset-sum engine and variant solver reason
// about. Index ties it back to where its FixedOffset (once assigned) goes.
type Leaf struct {
	Size  int
	Align int
	Index int // Index into the owning scope's leaf-producing structure.
}
