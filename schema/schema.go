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

// Package schema is the input contract of the layout compiler (§6 of the
// design): the typed tree a schema lexer hands to [layoutc.Compile]. Nothing
// in this package parses schema text or walks a filesystem; it only
// describes the shape of an already-parsed record definition.
package schema

import "fmt"

// Tag identifies which case a [Type] node is.
type Tag uint8

// The scalar tags carry no payload; every other tag pairs with a
// corresponding concrete type below (FixedString, String, FixedArray, ...).
const (
	Bool Tag = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	FixedStringTag
	StringTag
	FixedArrayTag
	ArrayTag
	FixedVariantTag
	PackedVariantTag
	DynamicVariantTag
	IdentifierTag
)

func (t Tag) String() string {
	switch t {
	case Bool:
		return "bool"
	case U8, U16, U32, U64, I8, I16, I32, I64, F32, F64:
		return scalarNames[t]
	case FixedStringTag:
		return "fixed_string"
	case StringTag:
		return "string"
	case FixedArrayTag:
		return "fixed_array"
	case ArrayTag:
		return "array"
	case FixedVariantTag:
		return "fixed_variant"
	case PackedVariantTag:
		return "packed_variant"
	case DynamicVariantTag:
		return "dynamic_variant"
	case IdentifierTag:
		return "identifier"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

var scalarNames = map[Tag]string{
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	F32: "f32", F64: "f64",
}

// IsScalar reports whether t is one of the leaf scalar tags (Bool..F64).
func IsScalar(t Tag) bool { return t <= F64 }

// Size returns a scalar tag's size in bytes. Panics for non-scalar tags.
func (t Tag) Size() int {
	switch t {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		panic(fmt.Sprintf("schema: Size() called on non-scalar tag %v", t))
	}
}

// Align returns a scalar tag's natural alignment, which for every scalar in
// this schema is equal to its size.
func (t Tag) Align() int { return t.Size() }

// CType is the C++ spelling used by the accessor emitter for a scalar tag.
func (t Tag) CType() string {
	switch t {
	case Bool:
		return "bool"
	case U8:
		return "uint8_t"
	case U16:
		return "uint16_t"
	case U32:
		return "uint32_t"
	case U64:
		return "uint64_t"
	case I8:
		return "int8_t"
	case I16:
		return "int16_t"
	case I32:
		return "int32_t"
	case I64:
		return "int64_t"
	case F32:
		return "float"
	case F64:
		return "double"
	default:
		panic(fmt.Sprintf("schema: CType() called on non-scalar tag %v", t))
	}
}

// Type is a node in the schema's type tree. Every concrete type below
// implements it; the set is closed (see the Design Notes' preference for a
// tagged-sum over virtual dispatch), so a tagged switch over Tag() is always
// exhaustive.
type Type interface {
	Tag() Tag
}

// Scalar is a leaf type with no payload: Bool, an integer, or a float.
type Scalar struct{ T Tag }

func (s Scalar) Tag() Tag { return s.T }

// FixedString is a string stored inline at a fixed byte length, including
// its NUL terminator accounted for by Len.
type FixedString struct {
	Len     int // Total bytes reserved, including the terminator.
	LenSize int // Width, in bytes, of Len (always used as a constant here).
}

func (FixedString) Tag() Tag { return FixedStringTag }

// String is a dynamically sized string: MinLen bytes are always present,
// plus a stored size field of StoredSizeSize bytes giving the number of
// bytes beyond MinLen. The stored size is read back with StoredSizeSize
// bytes; SizeSize is carried but not read by the planner or the emitter.
type String struct {
	MinLen         int
	StoredSizeSize int
	SizeSize       int
}

func (String) Tag() Tag { return StringTag }

// FixedArray is a fixed-length array of Inner, laid out contiguously.
type FixedArray struct {
	Len            int
	SizeSize       int // Carried but not read; index arithmetic uses uint32_t.
	StoredSizeSize int
	Inner          Type
}

func (FixedArray) Tag() Tag { return FixedArrayTag }

// Array is a dynamically sized array: MinLen elements are always present,
// plus a stored count of additional elements.
type Array struct {
	MinLen         int
	SizeSize       int
	StoredSizeSize int
	Inner          Type
}

func (Array) Tag() Tag { return ArrayTag }

// VariantMeta is the per-arm leaf/alignment bookkeeping a schema lexer
// precomputes for a variant type: how many fixed and variable leaves the
// arm directly owns, and the arm's own maximum alignment.
type VariantMeta struct {
	FixedLeaves, VarLeaves int
	MaxAlign               int
}

// FixedVariant is a tagged union all of whose arms are themselves fixed
// size. The layout planner packs the arms into a shared envelope (§4.5).
type FixedVariant struct {
	Variants []Type
	Metas    []VariantMeta
}

func (FixedVariant) Tag() Tag { return FixedVariantTag }

// PackedVariant names a variant whose arms would need to be bit-packed to
// share an envelope smaller than natural alignment allows. This is rejected
// by the planner (§1 Non-goals); it exists in the tag set so the visitor's
// switch stays exhaustive over everything a lexer might produce.
type PackedVariant struct {
	Variants []Type
	Metas    []VariantMeta
}

func (PackedVariant) Tag() Tag { return PackedVariantTag }

// DynamicVariant is a FixedVariant that additionally carries a variable-size
// arm, and therefore exposes a size() accessor in addition to a tag.
type DynamicVariant struct {
	Variants []Type
	Metas    []VariantMeta
}

func (DynamicVariant) Tag() Tag { return DynamicVariantTag }

// IdentKind distinguishes what an Identifier resolves to.
type IdentKind uint8

const (
	StructIdent IdentKind = iota
	EnumIdent
)

// Identifier refers to a named struct or enum by its index into the
// enclosing [Program]'s table. The AST is guaranteed acyclic by the lexer:
// no struct definition reaches itself through nested-struct fields.
type Identifier struct {
	Kind IdentKind
	Idx  int
}

func (Identifier) Tag() Tag { return IdentifierTag }

// EnumDef is a named enum: its only layout-relevant property is the scalar
// tag used to store its values.
type EnumDef struct {
	Name       string
	Underlying Tag
}

// StructField is one named member of a [StructDefinition].
type StructField struct {
	Name string
	Type Type
}

// StructDefinition is a named record type: an ordered list of fields. It
// carries no precomputed leaf statistics (no fixed or variable leaf
// counts); the planner walks Fields directly.
type StructDefinition struct {
	Name   string
	Fields []StructField
}

// Program is the full set of named types a schema compiles to; it is the
// buffer that [Identifier.Idx] indexes into.
type Program struct {
	Structs []*StructDefinition
	Enums   []*EnumDef
}

// Struct resolves a struct identifier.
func (p *Program) Struct(id Identifier) *StructDefinition {
	if id.Kind != StructIdent {
		panic("schema: Struct() called on a non-struct identifier")
	}
	return p.Structs[id.Idx]
}

// Enum resolves an enum identifier.
func (p *Program) Enum(id Identifier) *EnumDef {
	if id.Kind != EnumIdent {
		panic("schema: Enum() called on a non-enum identifier")
	}
	return p.Enums[id.Idx]
}
