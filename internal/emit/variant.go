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

package emit

import (
	"fmt"

	"github.com/structview/layoutc/internal/codebuf"
	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/schema"
)

// variantField emits a fixed or dynamic variant's inner "Variant" view
// type (§4.8 "Fixed variants" / "Dynamic variants") and the field
// accessor constructing it.
//
// Arm depth is always 0: [layout.planner.planVariant] rejects a variant
// arm that is itself a variant (no nested-variant-of-variants support —
// see DESIGN.md), so the "as_<depth>_<i>" naming of spec.md §4.8 always
// has depth == 0 in this implementation; the "<i>" suffix is simply the
// arm's source-order index.
func (r *resolver) variantField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout, variants []schema.Type, dynamic bool) error {
	sol := lo.Variants[*fl.Variant]
	name := viewName(fl.Name, "Variant")
	tagCType := "uint8_t"
	if sol.TagSize == 2 {
		tagCType = "uint16_t"
	}
	tagOff := lo.Offset(sol.TagIdxMap)

	nb := sb.Nested(name)
	cs := ctorStringsFor(0)
	nb.Ctor(cs.CtorArgs, cs.CtorInits)
	nb.Method("", tagCType, "tag", "", scalarExpr(tagCType, tagOff.ByteOffset))

	dynArmIdx := -1
	for i, v := range variants {
		armName := fmt.Sprintf("as_0_%d", i)
		switch v.(type) {
		case schema.String, schema.Array:
			dynArmIdx = i
		}
		if err := r.variantArm(nb, lo, sol, i, v, armName); err != nil {
			return err
		}
	}

	if dynamic {
		r.variantSize(nb, lo, sol, dynArmIdx)
	}

	nb.AddPrivate("size_t base;")
	nb.End()

	sb.Method("", name, fl.Name, "", name+"(base"+offsetTerm(sol.Base)+")")
	return nil
}

// variantArm emits one `as_0_<i>()` accessor. Per [layout.planner], every
// non-dynamic arm is exactly one leaf, placed at sol.Offsets[i][0] within
// the envelope; the one dynamic arm (when present) is a zero-leaf
// placeholder whose bytes live in the struct's variable region instead,
// addressed the same way a plain dynamic string/array field would be.
func (r *resolver) variantArm(nb *codebuf.StructBlock, lo *layout.Layout, sol *layout.VariantSolution, armIdx int, v schema.Type, armName string) error {
	switch vt := v.(type) {
	case schema.Scalar:
		off := sol.Offsets[armIdx][0]
		nb.Method("", vt.Tag().CType(), armName, "", scalarExpr(vt.Tag().CType(), off))

	case schema.FixedString:
		off := sol.Offsets[armIdx][0]
		viewType := "Arm" + fmt.Sprintf("%d", armIdx) + "Str"
		enb := nb.Nested(viewType)
		cs := ctorStringsFor(0)
		enb.Ctor(cs.CtorArgs, cs.CtorInits)
		enb.Method("", "const char*", "c_str", "", ptrExpr("const char", 0))
		enb.Method("constexpr", "size_t", "size", "", fmt.Sprintf("%d", vt.Len))
		enb.Method("constexpr", "size_t", "length", "", "size() - 1")
		enb.AddPrivate("size_t base;")
		nb2 := enb.End()
		nb2.Method("", viewType, armName, "", viewType+"(base"+offsetTerm(off)+")")

	case schema.FixedArray:
		off := sol.Offsets[armIdx][0]
		viewType := "Arm" + fmt.Sprintf("%d", armIdx) + "Arr"
		if err := r.emitArrayView(nb, viewType, vt.Len, vt.Inner, armName); err != nil {
			return err
		}
		nb.Method("", viewType, armName, "", viewType+"(base"+offsetTerm(off)+")")

	case schema.Identifier:
		if vt.Kind == schema.EnumIdent {
			e := r.prog.Enum(vt)
			off := sol.Offsets[armIdx][0]
			nb.Method("", e.Underlying.CType(), armName, "", scalarExpr(e.Underlying.CType(), off))
			return nil
		}
		off := sol.Offsets[armIdx][0]
		sub := r.prog.Struct(vt)
		nb.Method("", sub.Name, armName, "", sub.Name+"(base"+offsetTerm(off)+")")

	case schema.String, schema.Array:
		// The one dynamic arm: its bytes live in the variable region, not
		// the fixed envelope; see dynamicVariantArm below.
		return r.dynamicVariantArm(nb, lo, sol, v, armName)

	default:
		return fmt.Errorf("emit: unsupported variant arm type")
	}
	return nil
}

// dynamicVariantArm emits the accessor for the one variable-size arm of a
// dynamic variant, addressed via [layout.VariantSolution.DynamicVarIdx]
// exactly like an ordinary dynamic string/array field.
func (r *resolver) dynamicVariantArm(nb *codebuf.StructBlock, lo *layout.Layout, sol *layout.VariantSolution, v schema.Type, armName string) error {
	if sol.DynamicVarIdx < 0 {
		return fmt.Errorf("emit: dynamic variant arm has no planned variable offset")
	}
	vo := lo.VarOffsets[sol.DynamicVarIdx]
	terms := chainTerms(vo.Terms)
	expr := varBaseExpr(lo.FixedSize, terms)

	switch arm := v.(type) {
	case schema.String:
		viewType := armName + "Str"
		enb := nb.Nested(viewType)
		cs := ctorStringsFor(0)
		enb.Ctor(cs.CtorArgs, cs.CtorInits)
		enb.Method("", "const char*", "c_str", "", ptrExpr("const char", 0))
		enb.Method("", "size_t", "size", "", sizeReaderCall(vo.SizeReader))
		enb.AddPrivate("size_t base;")
		nb2 := enb.End()
		nb2.Method("", viewType, armName, "", viewType+"("+expr+")")
	case schema.Array:
		inner := arm.Inner.(schema.Scalar)
		ctype := inner.Tag().CType()
		viewType := armName + "Arr"
		enb := nb.Nested(viewType)
		cs := ctorStringsFor(0)
		enb.Ctor(cs.CtorArgs, cs.CtorInits)
		enb.Method("", "size_t", "length", "", sizeReaderCall(vo.SizeReader))
		enb.Method("", ctype, "get", "uint32_t idx", scalarArrayExpr(ctype, 0, idxExpr([]string{"idx"}, []int{inner.Tag().Size()})))
		enb.AddPrivate("size_t base;")
		nb2 := enb.End()
		nb2.Method("", viewType, armName, "", viewType+"("+expr+")")
	}
	return nil
}

// variantSize emits a dynamic variant's additional size() accessor
// (§4.8): the fixed envelope's size, plus the variable tail's byte count
// when the currently-stored tag selects the dynamic arm.
func (r *resolver) variantSize(nb *codebuf.StructBlock, lo *layout.Layout, sol *layout.VariantSolution, dynArmIdx int) {
	if sol.DynamicVarIdx < 0 || dynArmIdx < 0 {
		nb.Method("constexpr", "size_t", "size", "", fmt.Sprintf("%d", sol.Size()))
		return
	}
	vo := lo.VarOffsets[sol.DynamicVarIdx]
	dynBytes := sizeReaderCall(vo.SizeReader)
	expr := fmt.Sprintf("tag() == %d ? %d + %s : %d", dynArmIdx, sol.Size(), dynBytes, sol.Size())
	nb.Method("", "size_t", "size", "", expr)
}
