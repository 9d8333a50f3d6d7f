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

// elemSizeAlign returns a fixed array element's byte size and alignment,
// recursing through nested fixed arrays and fixed-size structs exactly as
// [layout's planner.arrayElementShape] does when planning the same
// element — duplicated here rather than shared, since the emitter needs
// the shape for naming/recursion purposes independent of how the planner
// happened to bookkeep its ArrayPackInfo chain (see DESIGN.md).
func (r *resolver) elemSizeAlign(t schema.Type, fieldName string) (size, align int, err error) {
	switch it := t.(type) {
	case schema.Scalar:
		return it.Tag().Size(), it.Tag().Align(), nil
	case schema.FixedString:
		return it.Len, 1, nil
	case schema.FixedArray:
		elemSize, elemAlign, err := r.elemSizeAlign(it.Inner, fieldName)
		if err != nil {
			return 0, 0, err
		}
		return it.Len * elemSize, elemAlign, nil
	case schema.Identifier:
		if it.Kind == schema.EnumIdent {
			e := r.prog.Enum(it)
			return e.Underlying.Size(), e.Underlying.Align(), nil
		}
		sub := r.prog.Struct(it)
		sl, ok := r.layouts[sub]
		if !ok {
			return 0, 0, fmt.Errorf("emit: %s: struct %s has not been planned", fieldName, sub.Name)
		}
		return sl.FixedSize, sl.MaxAlign(), nil
	default:
		return 0, 0, fmt.Errorf("emit: %s: unsupported fixed-array element type", fieldName)
	}
}

// fixedArrayField emits a [FixedArray] field's inner "Arr" view type and
// the field accessor constructing it.
func (r *resolver) fixedArrayField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout, t schema.FixedArray) error {
	fo := lo.Offset(*fl.Fixed)
	name := viewName(fl.Name, "Arr")

	if err := r.emitArrayView(sb, name, t.Len, t.Inner, fl.Name); err != nil {
		return err
	}
	sb.Method("", name, fl.Name, "", name+"(base"+offsetTerm(fo.ByteOffset)+")")
	return nil
}

// dynamicArrayField emits an [Array] field's inner "Arr" view type: its
// length() reads the struct's size<i>(base) reader instead of a compile-
// time constant, and get(idx) indexes from the variable region's start
// (§4.8 "Scalar in a variable-size array"). Per schema.Array's own
// constraint (enforced at plan time), the element is always a scalar.
func (r *resolver) dynamicArrayField(sb *codebuf.StructBlock, lo *layout.Layout, fl layout.FieldLayout, t schema.Array) error {
	inner, ok := t.Inner.(schema.Scalar)
	if !ok {
		return fmt.Errorf("emit: %s.%s: dynamic array element must be scalar", lo.Struct.Name, fl.Name)
	}
	vo := lo.VarOffsets[*fl.Var]
	name := viewName(fl.Name, "Arr")
	ctype := inner.Tag().CType()

	nb := sb.Nested(name)
	cs := ctorStringsFor(0)
	nb.Ctor(cs.CtorArgs, cs.CtorInits)
	nb.Method("", "size_t", "length", "", sizeReaderCall(vo.SizeReader))
	nb.Method("", ctype, "get", "uint32_t idx", scalarArrayExpr(ctype, 0, idxExpr([]string{"idx"}, []int{inner.Tag().Size()})))
	nb.AddPrivate("size_t base;")
	nb.End()

	terms := chainTerms(vo.Terms)
	expr := varBaseExpr(lo.FixedSize, terms)
	sb.Method("", name, fl.Name, "", name+"("+expr+")")
	return nil
}

// emitArrayView emits one fixed-length array view type nested inside
// parent: `length()` returning the compile-time constant len, and
// `get(idx)` returning the appropriately-typed element view, recursing for
// nested fixed arrays and delegating to the already-emitted struct view
// for a struct element.
func (r *resolver) emitArrayView(parent *codebuf.StructBlock, name string, length int, inner schema.Type, fieldName string) error {
	elemSize, _, err := r.elemSizeAlign(inner, fieldName)
	if err != nil {
		return err
	}

	nb := parent.Nested(name)
	cs := ctorStringsFor(0)
	nb.Ctor(cs.CtorArgs, cs.CtorInits)
	nb.Method("constexpr", "size_t", "length", "", fmt.Sprintf("%d", length))

	idx := idxExpr([]string{"idx"}, []int{elemSize})

	switch it := inner.(type) {
	case schema.Scalar:
		ctype := it.Tag().CType()
		nb.Method("", ctype, "get", "uint32_t idx", scalarArrayExpr(ctype, 0, idx))

	case schema.FixedString:
		elemName := name + "Elem"
		enb := nb.Nested(elemName)
		ecs := ctorStringsFor(0)
		enb.Ctor(ecs.CtorArgs, ecs.CtorInits)
		enb.Method("", "const char*", "c_str", "", ptrExpr("const char", 0))
		enb.Method("constexpr", "size_t", "size", "", fmt.Sprintf("%d", it.Len))
		enb.Method("constexpr", "size_t", "length", "", "size() - 1")
		enb.AddPrivate("size_t base;")
		nb = enb.End()
		nb.Method("", elemName, "get", "uint32_t idx", elemName+"(base + "+idx+")")

	case schema.Identifier:
		if it.Kind == schema.EnumIdent {
			e := r.prog.Enum(it)
			ctype := e.Underlying.CType()
			nb.Method("", ctype, "get", "uint32_t idx", scalarArrayExpr(ctype, 0, idx))
			break
		}
		sub := r.prog.Struct(it)
		nb.Method("", sub.Name, "get", "uint32_t idx", sub.Name+"(base + "+idx+")")

	case schema.FixedArray:
		elemName := name + "Elem"
		if err := r.emitArrayView(nb, elemName, it.Len, it.Inner, fieldName); err != nil {
			return err
		}
		nb.Method("", elemName, "get", "uint32_t idx", elemName+"(base + "+idx+")")

	default:
		return fmt.Errorf("emit: %s: unsupported fixed-array element type", fieldName)
	}

	nb.AddPrivate("size_t base;")
	nb.End()
	return nil
}
