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

// Package codebuf is the textual code-buffer writer spec.md §1 names as an
// out-of-scope collaborator, boundary-only: a growable byte buffer with
// scoped nested-block emission. It is implemented here (rather than left
// as a bare interface) because the accessor emitter in internal/emit has no
// other way to be exercised by a test; see DESIGN.md.
//
// The design note in spec.md §9 ("Code-buffer scoped blocks ... a
// type-state builder, each .end() returns a parent type") is followed in
// shape: End returns the parent block and EndTop returns the Builder. Nested
// and top-level blocks share the one type [StructBlock], so a mismatched
// close is not rejected by the compiler; End on a top-level block and EndTop
// on a nested block panic at run time.
package codebuf

import (
	"fmt"
	"strings"
)

// Builder accumulates the full output of one compilation: every struct
// view type requested, in emission order.
type Builder struct {
	out    strings.Builder
	indent int
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// String returns everything written so far.
func (b *Builder) String() string { return b.out.String() }

func (b *Builder) writeLine(format string, args ...any) {
	b.out.WriteString(strings.Repeat("    ", b.indent))
	fmt.Fprintf(&b.out, format, args...)
	b.out.WriteByte('\n')
}

// Raw writes a line of already-formatted text at the current indentation
// with no further interpretation, e.g. the header's #include line.
func (b *Builder) Raw(line string) { b.writeLine("%s", line) }

// Blank writes an empty line, for readability between struct definitions.
func (b *Builder) Blank() { b.out.WriteByte('\n') }

// StructBlock is an open `struct Name { ... };` block.
type StructBlock struct {
	b       *Builder
	parent  *StructBlock // non-nil iff this block was opened via Nested.
	name    string
	private []string
}

// Struct opens a top-level (or, via [StructBlock.Nested], a nested) struct
// view type.
func (b *Builder) Struct(name string) *StructBlock {
	b.writeLine("struct %s {", name)
	b.indent++
	return &StructBlock{b: b, name: name}
}

// Ctor emits the constructor: `Name(args) : inits {}`, matching the
// `ctor` production of spec.md §6's grammar.
func (s *StructBlock) Ctor(args, inits string) *StructBlock {
	if inits == "" {
		s.b.writeLine("%s(%s) {}", s.name, args)
	} else {
		s.b.writeLine("%s(%s) : %s {}", s.name, args, inits)
	}
	return s
}

// Method emits one accessor method: `[qualifiers] returnTy name(params) {
// return expr; }`, matching the `method` production of spec.md §6's
// grammar. qualifiers is e.g. "static" or "static constexpr"; pass "" for
// none.
func (s *StructBlock) Method(qualifiers, returnTy, name, params, expr string) *StructBlock {
	sig := name + "(" + params + ")"
	if qualifiers != "" {
		s.b.writeLine("%s %s %s { return %s; }", qualifiers, returnTy, sig, expr)
	} else {
		s.b.writeLine("%s %s { return %s; }", returnTy, sig, expr)
	}
	return s
}

// Nested opens a nested view type inside this struct block, returning a
// child block whose End returns this block.
func (s *StructBlock) Nested(name string) *StructBlock {
	child := s.b.Struct(name)
	child.parent = s
	return child
}

// endCommon writes this struct block's private-data section and the
// closing `};`. It is shared by [StructBlock.EndTop], which then returns
// the Builder, and [StructBlock.End], which returns the parent block.
func (s *StructBlock) endCommon() {
	if len(s.private) > 0 {
		s.b.Blank()
		s.b.indent--
		s.b.writeLine("private:")
		s.b.indent++
		for _, p := range s.private {
			s.b.writeLine("%s", p)
		}
	}
	s.b.indent--
	s.b.writeLine("};")
}

// AddPrivate queues one private member declaration line (e.g. `size_t
// base_;`), written just before the struct closes.
func (s *StructBlock) AddPrivate(line string) *StructBlock {
	s.private = append(s.private, line)
	return s
}

// EndTop closes a top-level struct block, returning to the Builder.
func (s *StructBlock) EndTop() *Builder {
	if s.parent != nil {
		panic("codebuf: EndTop called on a nested struct block; use End instead")
	}
	s.endCommon()
	return s.b
}

// End closes a nested struct block, returning to its parent.
func (s *StructBlock) End() *StructBlock {
	if s.parent == nil {
		panic("codebuf: End called on a top-level struct block; use EndTop instead")
	}
	s.endCommon()
	return s.parent
}
