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

package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/schema"
)

func planTop(t *testing.T, prog *schema.Program, name string) *layout.Layout {
	t.Helper()
	subs := make(map[*schema.StructDefinition]*layout.Layout)
	var order []*schema.StructDefinition
	// Plan every struct in the program in declaration order; tests build
	// their fixtures with dependencies listed first.
	for _, sd := range prog.Structs {
		lo, err := layout.PlanStruct(prog, sd, subs)
		require.NoError(t, err, "planning %s", sd.Name)
		subs[sd] = lo
		order = append(order, sd)
	}
	for _, sd := range order {
		if sd.Name == name {
			return subs[sd]
		}
	}
	t.Fatalf("no struct named %q", name)
	return nil
}

// TestScenarioS1 mirrors spec.md §8 S1: struct P { a: u8; b: u64; c: u16; }
// packs as b@0, c@8, a@10, total size 11 — the queue holds back the
// mismatched-alignment u8 and u16 leaves until the u64 commits, then fills
// the u16 into the hole left after it and the u8 after that.
func TestScenarioS1(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "P",
		Fields: []schema.StructField{
			{Name: "a", Type: schema.Scalar{T: schema.U8}},
			{Name: "b", Type: schema.Scalar{T: schema.U64}},
			{Name: "c", Type: schema.Scalar{T: schema.U16}},
		},
	}}}

	lo := planTop(t, prog, "P")
	require.Equal(t, 11, lo.FixedSize)

	offsetOf := func(fieldIdx int) int {
		return lo.Offset(*lo.Fields[fieldIdx].Fixed).ByteOffset
	}
	assert.Equal(t, 10, offsetOf(0), "a")
	assert.Equal(t, 0, offsetOf(1), "b")
	assert.Equal(t, 8, offsetOf(2), "c")
}

// TestScenarioS2 mirrors spec.md §8 S2: a FixedArray<u32, 3> field's third
// element sits at the field's own offset plus idx*4.
func TestScenarioS2(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "Q",
		Fields: []schema.StructField{
			{Name: "xs", Type: schema.FixedArray{Len: 3, Inner: schema.Scalar{T: schema.U32}}},
		},
	}}}

	lo := planTop(t, prog, "Q")
	fo := lo.Offset(*lo.Fields[0].Fixed)
	assert.Equal(t, 0, fo.ByteOffset)
	require.Len(t, lo.ArrayPacks, 1)
	assert.Equal(t, 4, lo.ArrayPacks[0].ElementSize)
	assert.Equal(t, 12, lo.FixedSize, "3 * 4-byte elements, no other fields")
}

// TestScenarioS6 mirrors spec.md §8 S6: a nested struct embedded inside a
// fixed array. Inner{x,y: u32} packs to 8 bytes (x@0, y@4); Outer.i is a
// FixedArray<Inner, 2>, so i().get(1) sits at a constant 8-byte stride from
// the array's own base.
func TestScenarioS6(t *testing.T) {
	t.Parallel()
	inner := &schema.StructDefinition{
		Name: "Inner",
		Fields: []schema.StructField{
			{Name: "x", Type: schema.Scalar{T: schema.U32}},
			{Name: "y", Type: schema.Scalar{T: schema.U32}},
		},
	}
	outer := &schema.StructDefinition{
		Name: "Outer",
		Fields: []schema.StructField{
			{Name: "i", Type: schema.FixedArray{Len: 2, Inner: schema.Identifier{Kind: schema.StructIdent, Idx: 0}}},
		},
	}
	prog := &schema.Program{Structs: []*schema.StructDefinition{inner, outer}}

	innerLo := planTop(t, prog, "Inner")
	require.Equal(t, 8, innerLo.FixedSize)
	assert.Equal(t, 0, innerLo.Offset(*innerLo.Fields[0].Fixed).ByteOffset)
	assert.Equal(t, 4, innerLo.Offset(*innerLo.Fields[1].Fixed).ByteOffset)

	outerLo := planTop(t, prog, "Outer")
	fo := outerLo.Offset(*outerLo.Fields[0].Fixed)
	assert.Equal(t, 0, fo.ByteOffset)
	assert.Equal(t, 16, outerLo.FixedSize, "two 8-byte Inner elements back to back")
}

// TestDynamicStringSizeChain mirrors spec.md §8 S5: a dynamic string's
// stored-size leaf feeds a size<i>(base) reader that adds the constant
// MinLen, and the string's own bytes begin exactly at the struct's fixed
// prefix (there is nothing else in this struct to push the variable region
// further out).
func TestDynamicStringSizeChain(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "S",
		Fields: []schema.StructField{
			{Name: "name", Type: schema.String{MinLen: 4, StoredSizeSize: 1, SizeSize: 1}},
		},
	}}}

	lo := planTop(t, prog, "S")
	require.Len(t, lo.SizeReaders, 1)
	sr := lo.SizeReaders[0]
	assert.Equal(t, 4, sr.MinLen)
	assert.Equal(t, 1, sr.StoredSizeSize)
	assert.Equal(t, 0, lo.Offset(sr.FixedMapIdx).ByteOffset)

	require.Len(t, lo.VarOffsets, 1)
	vo := lo.VarOffsets[0]
	assert.Empty(t, vo.Terms, "first variable leaf has no prior size terms to chain from")
	assert.True(t, lo.HasVar)
	assert.Equal(t, 1, lo.VarAlign)
}

// TestVariantEnvelopeIsLargeEnoughForEveryArm mirrors spec.md §8's S3/S4
// shape (a variant whose arms require different amounts of space) without
// pinning the exact tag-vs-envelope byte ordering spec.md's own illustration
// assumes: this port's [Queue] may commit the envelope before or after the
// one-byte tag depending on what else shares its alignment tier. What
// must always hold is the solver's own contract: every
// arm's leaves fit inside the solved envelope without overlapping, and nor
// arm's offsets exceed Envelope[1].
func TestVariantEnvelopeIsLargeEnoughForEveryArm(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "V",
		Fields: []schema.StructField{
			{Name: "v", Type: schema.FixedVariant{Variants: []schema.Type{
				schema.Scalar{T: schema.U64},
				schema.FixedArray{Len: 2, Inner: schema.Scalar{T: schema.U32}},
				schema.Scalar{T: schema.U8},
			}}},
		},
	}}}

	lo := planTop(t, prog, "V")
	require.Len(t, lo.Variants, 1)
	sol := lo.Variants[0]
	assert.False(t, sol.Collapsed, "every arm here fits an 8-byte envelope exactly; no padding should be needed")
	assert.Equal(t, 8, sol.Size())

	for armIdx, offs := range sol.Offsets {
		for leafIdx, off := range offs {
			assert.GreaterOrEqual(t, off, 0, "arm %d leaf %d", armIdx, leafIdx)
			assert.LessOrEqual(t, off, sol.Size(), "arm %d leaf %d", armIdx, leafIdx)
		}
	}
}

// TestPackedVariantIsRejected covers spec.md's explicit Non-goal: a variant
// that would require bit-packing to share an envelope is never planned.
func TestPackedVariantIsRejected(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "Bad",
		Fields: []schema.StructField{
			{Name: "v", Type: schema.PackedVariant{Variants: []schema.Type{schema.Scalar{T: schema.U8}}}},
		},
	}}}

	_, err := layout.PlanStruct(prog, prog.Structs[0], map[*schema.StructDefinition]*layout.Layout{})
	require.Error(t, err)
	var typeErr *layout.SchemaTypeError
	assert.ErrorAs(t, err, &typeErr)
}

// TestArrayDepthCapIsEnforced covers spec.md §5's depth cap: nesting fixed
// arrays deeper than layout.MaxArrayDepth is a SchemaTypeError, not a panic.
func TestArrayDepthCapIsEnforced(t *testing.T) {
	t.Parallel()
	var ty schema.Type = schema.Scalar{T: schema.U8}
	for i := 0; i <= layout.MaxArrayDepth; i++ {
		ty = schema.FixedArray{Len: 1, Inner: ty}
	}
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name:   "Deep",
		Fields: []schema.StructField{{Name: "a", Type: ty}},
	}}}

	_, err := layout.PlanStruct(prog, prog.Structs[0], map[*schema.StructDefinition]*layout.Layout{})
	require.Error(t, err)
}
