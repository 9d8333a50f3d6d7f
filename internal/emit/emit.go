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

// Package emit is the accessor code emitter of spec.md §4.8: it turns a
// planned [layout.Layout] into the C++ view-type source text described by
// spec.md §6's grammar, using [codebuf] as its code-buffer collaborator.
package emit

import (
	"fmt"

	"github.com/structview/layoutc/internal/codebuf"
	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/schema"
)

// resolver is the shared, read-only context every emission helper needs:
// the program (to resolve enum/struct identifiers) and every struct's
// already-planned layout, keyed by definition identity exactly like the
// planner's own `subs` map.
type resolver struct {
	prog    *schema.Program
	layouts map[*schema.StructDefinition]*layout.Layout
}

// Emit renders one struct view type per entry of order (which must already
// be in dependency-first order — see the scc-driven ordering in package
// layoutc) into a single header: two include lines (<cstdint> and
// <cstddef>), then the structs.
func Emit(prog *schema.Program, layouts map[*schema.StructDefinition]*layout.Layout, order []*schema.StructDefinition) (string, error) {
	r := &resolver{prog: prog, layouts: layouts}

	b := codebuf.New()
	b.Raw("#include <cstdint>")
	b.Raw("#include <cstddef>")
	b.Blank()

	for i, sd := range order {
		lo, ok := layouts[sd]
		if !ok {
			return "", &OutputError{Struct: sd.Name, Reason: "has no planned layout"}
		}
		if err := r.emitStruct(b, lo); err != nil {
			return "", err
		}
		if i != len(order)-1 {
			b.Blank()
		}
	}

	return b.String(), nil
}

// emitStruct renders one top-level struct view type: constructor, one
// accessor method per field in source order, one static size<i>(base)
// reader per declared size leaf, and the base pointer as private data.
func (r *resolver) emitStruct(b *codebuf.Builder, lo *layout.Layout) error {
	sb := b.Struct(lo.Struct.Name)
	cs := ctorStringsFor(0)
	sb.Ctor(cs.CtorArgs, cs.CtorInits)

	for _, fl := range lo.Fields {
		if err := r.field(sb, lo, fl); err != nil {
			return err
		}
	}
	for i, sr := range lo.SizeReaders {
		r.sizeReaderMethod(sb, lo, i, sr)
	}

	sb.AddPrivate("size_t base;")
	sb.EndTop()
	return nil
}

// sizeReaderMethod emits `static size_t size<i>(size_t base) { return ...;
// }` for one declared size leaf (§4.7): the stored field's raw value, plus
// the leaf's constant MinLen.
func (r *resolver) sizeReaderMethod(sb *codebuf.StructBlock, lo *layout.Layout, i int, sr layout.SizeReader) {
	fo := lo.Offset(sr.FixedMapIdx)
	ctype := storedSizeCType(sr.StoredSizeSize)
	read := scalarExpr(ctype, fo.ByteOffset)
	expr := read
	if sr.MinLen != 0 {
		expr = fmt.Sprintf("%d + %s", sr.MinLen, read)
	}
	sb.Method("static", "size_t", fmt.Sprintf("size%d", i), "size_t base", expr)
}

// storedSizeCType picks the unsigned integer type used to read back a
// stored size/count field of the given width.
func storedSizeCType(width int) string {
	switch width {
	case 1:
		return "uint8_t"
	case 2:
		return "uint16_t"
	case 4:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}

// sizeReaderCall renders a call to this struct's own size<i>(base) method,
// for use inside another field's size-chain expression.
func sizeReaderCall(i int) string {
	return fmt.Sprintf("size%d(base)", i)
}
