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
	"strings"

	"github.com/structview/layoutc/internal/codebuf"
	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/schema"
)

// field emits the one zero-argument accessor method spec.md §6 requires
// for a struct field, dispatching on the field's schema tag exactly as
// [layout.planner.visitTopField] did when it planned the field.
func (r *resolver) field(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout) error {
	switch t := fl.Type.(type) {
	case schema.Scalar:
		fo := lo.Offset(*fl.Fixed)
		sb.Method("", t.Tag().CType(), fl.Name, "", scalarExpr(t.Tag().CType(), fo.ByteOffset))

	case schema.Identifier:
		if t.Kind == schema.EnumIdent {
			e := r.prog.Enum(t)
			fo := lo.Offset(*fl.Fixed)
			sb.Method("", e.Underlying.CType(), fl.Name, "", scalarExpr(e.Underlying.CType(), fo.ByteOffset))
			return nil
		}
		return r.nestedStructField(sb, lo, fl)

	case schema.FixedString:
		return r.fixedStringField(sb, lo, fl, t)

	case schema.String:
		return r.dynamicStringField(sb, lo, fl, t)

	case schema.FixedArray:
		return r.fixedArrayField(sb, lo, fl, t)

	case schema.Array:
		return r.dynamicArrayField(sb, lo, fl, t)

	case schema.FixedVariant:
		return r.variantField(sb, lo, fl, t.Variants, false)

	case schema.DynamicVariant:
		return r.variantField(sb, lo, fl, t.Variants, true)

	default:
		return fmt.Errorf("emit: %s.%s: unsupported field type %v", lo.Struct.Name, fl.Name, t.Tag())
	}
	return nil
}

// nestedStructField emits an accessor returning the already-emitted view
// type of a nested struct field, constructed at this struct's base plus a
// constant delta (§4.8 "Nested struct").
func (r *resolver) nestedStructField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout) error {
	fo := lo.Offset(fl.Nested.BaseMapIdx)
	sub := fl.Nested.Layout.Struct
	expr := sub.Name + "(base" + offsetTerm(fo.ByteOffset) + ")"
	sb.Method("", sub.Name, fl.Name, "", expr)
	return nil
}

// viewName is the nested view type name this emitter gives a per-field
// inner type, e.g. "NameStr" or "ItemsArr". There is no collision risk
// with a user struct name because schema identifiers and field names share
// one namespace that the lexer (out of scope here) is responsible for
// keeping distinct; this emitter only needs its own suffix to not collide
// with *other synthesized view types of the same struct*, which distinct
// field names already guarantee.
func viewName(field, suffix string) string {
	return strings.ToUpper(field[:1]) + field[1:] + suffix
}

// fixedStringField emits the inner "Str" view type (§4.8 "Fixed-size
// string") and the field accessor that constructs it.
func (r *resolver) fixedStringField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout, t schema.FixedString) error {
	fo := lo.Offset(*fl.Fixed)
	name := viewName(fl.Name, "Str")

	nb := sb.Nested(name)
	cs := ctorStringsFor(0)
	nb.Ctor(cs.CtorArgs, cs.CtorInits)
	nb.Method("", "const char*", "c_str", "", ptrExpr("const char", 0))
	nb.Method("constexpr", "size_t", "size", "", fmt.Sprintf("%d", t.Len))
	nb.Method("constexpr", "size_t", "length", "", "size() - 1")
	nb.AddPrivate("size_t base;")
	nb.End()

	sb.Method("", name, fl.Name, "", name+"(base"+offsetTerm(fo.ByteOffset)+")")
	return nil
}

// dynamicStringField emits the inner "Str" view type (§4.8 "Dynamic
// string"): identical to the fixed case except size() reads the struct's
// own size<i>(base) reader instead of returning a compile-time constant.
func (r *resolver) dynamicStringField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout, t schema.String) error {
	vo := lo.VarOffsets[*fl.Var]
	name := viewName(fl.Name, "Str")

	nb := sb.Nested(name)
	cs := ctorStringsFor(0)
	nb.Ctor(cs.CtorArgs, cs.CtorInits)
	nb.Method("", "const char*", "c_str", "", ptrExpr("const char", 0))
	nb.Method("", "size_t", "size", "", sizeReaderCall(vo.SizeReader))
	nb.AddPrivate("size_t base;")
	nb.End()

	terms := chainTerms(vo.Terms)
	expr := varBaseExpr(lo.FixedSize, terms)
	sb.Method("", name, fl.Name, "", name+"("+expr+")")
	return nil
}

// chainTerms renders a VarOffset's size-chain as the size0(base)-style
// calls varBaseExpr composes.
func chainTerms(terms []layout.SizeTerm) []termExpr {
	out := make([]termExpr, len(terms))
	for i, t := range terms {
		out[i] = termExpr{SizeCall: sizeReaderCall(t.SizeReader), Stride: t.Stride}
	}
	return out
}
