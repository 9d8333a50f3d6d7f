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

// Package gen decodes the YAML schema file format cmd/layoutc accepts
// into a [schema.Program]. It is not "the schema lexer" spec.md §1 treats
// as an out-of-scope collaborator: there is no expression grammar, no
// macros, no includes — just a structural decode of the same tree
// schema.Program already describes, expanded per SPEC_FULL.md §6.
package gen

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/structview/layoutc/schema"
)

// File is the top-level shape of a schema YAML document.
type File struct {
	Enums   []EnumDef   `yaml:"enums"`
	Structs []StructDef `yaml:"structs"`
}

// EnumDef names an enum and the scalar tag used to store its values.
type EnumDef struct {
	Name       string `yaml:"name"`
	Underlying string `yaml:"underlying"`
}

// StructDef is one named record in the YAML document.
type StructDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef is one field of a StructDef.
type FieldDef struct {
	Name string   `yaml:"name"`
	Type TypeNode `yaml:"type"`
}

// TypeNode is a recursive description of a schema.Type. Kind selects
// which of the remaining fields apply:
//
//	scalar tag name (bool, u8.., f64) -> schema.Scalar
//	"fixed_string"                    -> schema.FixedString   (len, len_size)
//	"string"                          -> schema.String        (min_len, stored_size_size, size_size)
//	"fixed_array"                     -> schema.FixedArray     (len, size_size, stored_size_size, inner)
//	"array"                           -> schema.Array          (min_len, size_size, stored_size_size, inner)
//	"fixed_variant"                   -> schema.FixedVariant   (variants)
//	"dynamic_variant"                 -> schema.DynamicVariant (variants)
//	"packed_variant"                  -> schema.PackedVariant  (variants)
//	"ref"                             -> schema.Identifier     (ref, one of Structs/Enums by name)
type TypeNode struct {
	Kind           string     `yaml:"kind"`
	Len            int        `yaml:"len,omitempty"`
	LenSize        int        `yaml:"len_size,omitempty"`
	MinLen         int        `yaml:"min_len,omitempty"`
	SizeSize       int        `yaml:"size_size,omitempty"`
	StoredSizeSize int        `yaml:"stored_size_size,omitempty"`
	Inner          *TypeNode  `yaml:"inner,omitempty"`
	Variants       []TypeNode `yaml:"variants,omitempty"`
	Ref            string     `yaml:"ref,omitempty"`
}

var scalarKinds = map[string]schema.Tag{
	"bool": schema.Bool,
	"u8":   schema.U8, "u16": schema.U16, "u32": schema.U32, "u64": schema.U64,
	"i8": schema.I8, "i16": schema.I16, "i32": schema.I32, "i64": schema.I64,
	"f32": schema.F32, "f64": schema.F64,
}

// Decode parses a YAML schema document into a [schema.Program].
//
// Decoding happens in two passes so that Identifier references can point
// forward (a struct may name a struct or enum defined later in the file):
// the first pass allocates every schema.StructDefinition/schema.EnumDef by
// name, and the second fills in each struct's fields, resolving "ref"
// nodes against the name tables built in the first pass.
func Decode(data []byte) (*schema.Program, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("gen: decoding schema: %w", err)
	}

	prog := &schema.Program{
		Structs: make([]*schema.StructDefinition, len(f.Structs)),
		Enums:   make([]*schema.EnumDef, len(f.Enums)),
	}
	structIdx := make(map[string]int, len(f.Structs))
	enumIdx := make(map[string]int, len(f.Enums))

	for i, e := range f.Enums {
		underlying, ok := scalarKinds[e.Underlying]
		if !ok {
			return nil, fmt.Errorf("gen: enum %s: unknown underlying type %q", e.Name, e.Underlying)
		}
		prog.Enums[i] = &schema.EnumDef{Name: e.Name, Underlying: underlying}
		enumIdx[e.Name] = i
	}
	for i, s := range f.Structs {
		prog.Structs[i] = &schema.StructDefinition{Name: s.Name}
		structIdx[s.Name] = i
	}

	d := &decoder{structIdx: structIdx, enumIdx: enumIdx}
	for i, s := range f.Structs {
		fields := make([]schema.StructField, len(s.Fields))
		for j, fd := range s.Fields {
			t, err := d.convert(fd.Type)
			if err != nil {
				return nil, fmt.Errorf("gen: %s.%s: %w", s.Name, fd.Name, err)
			}
			fields[j] = schema.StructField{Name: fd.Name, Type: t}
		}
		prog.Structs[i].Fields = fields
	}

	return prog, nil
}

type decoder struct {
	structIdx map[string]int
	enumIdx   map[string]int
}

func (d *decoder) convert(n TypeNode) (schema.Type, error) {
	if tag, ok := scalarKinds[n.Kind]; ok {
		return schema.Scalar{T: tag}, nil
	}

	switch n.Kind {
	case "fixed_string":
		return schema.FixedString{Len: n.Len, LenSize: n.LenSize}, nil

	case "string":
		return schema.String{MinLen: n.MinLen, StoredSizeSize: n.StoredSizeSize, SizeSize: n.SizeSize}, nil

	case "fixed_array":
		inner, err := d.requireInner(n)
		if err != nil {
			return nil, err
		}
		return schema.FixedArray{Len: n.Len, SizeSize: n.SizeSize, StoredSizeSize: n.StoredSizeSize, Inner: inner}, nil

	case "array":
		inner, err := d.requireInner(n)
		if err != nil {
			return nil, err
		}
		return schema.Array{MinLen: n.MinLen, SizeSize: n.SizeSize, StoredSizeSize: n.StoredSizeSize, Inner: inner}, nil

	case "fixed_variant", "dynamic_variant", "packed_variant":
		variants := make([]schema.Type, len(n.Variants))
		for i, v := range n.Variants {
			t, err := d.convert(v)
			if err != nil {
				return nil, err
			}
			variants[i] = t
		}
		switch n.Kind {
		case "fixed_variant":
			return schema.FixedVariant{Variants: variants}, nil
		case "dynamic_variant":
			return schema.DynamicVariant{Variants: variants}, nil
		default:
			return schema.PackedVariant{Variants: variants}, nil
		}

	case "ref":
		if idx, ok := d.structIdx[n.Ref]; ok {
			return schema.Identifier{Kind: schema.StructIdent, Idx: idx}, nil
		}
		if idx, ok := d.enumIdx[n.Ref]; ok {
			return schema.Identifier{Kind: schema.EnumIdent, Idx: idx}, nil
		}
		return nil, fmt.Errorf("unknown ref %q", n.Ref)

	default:
		return nil, fmt.Errorf("unknown type kind %q", n.Kind)
	}
}

func (d *decoder) requireInner(n TypeNode) (schema.Type, error) {
	if n.Inner == nil {
		return nil, fmt.Errorf("%s: missing inner type", n.Kind)
	}
	return d.convert(*n.Inner)
}
