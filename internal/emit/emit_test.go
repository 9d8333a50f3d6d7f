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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/schema"
)

// planAll plans every struct of prog in declaration order, the same way
// package layoutc's Compile drives the planner, and returns the layouts
// keyed by definition plus the struct slice in that same order.
func planAll(t *testing.T, prog *schema.Program) (map[*schema.StructDefinition]*layout.Layout, []*schema.StructDefinition) {
	t.Helper()
	layouts := make(map[*schema.StructDefinition]*layout.Layout)
	for _, sd := range prog.Structs {
		lo, err := layout.PlanStruct(prog, sd, layouts)
		require.NoError(t, err, "planning %s", sd.Name)
		layouts[sd] = lo
	}
	return layouts, prog.Structs
}

func TestEmitScalarFields(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "Point",
		Fields: []schema.StructField{
			{Name: "x", Type: schema.Scalar{T: schema.I32}},
			{Name: "y", Type: schema.Scalar{T: schema.I32}},
		},
	}}}
	layouts, order := planAll(t, prog)

	out, err := Emit(prog, layouts, order)
	require.NoError(t, err)

	assert.Contains(t, out, "#include <cstdint>")
	assert.Contains(t, out, "struct Point {")
	assert.Contains(t, out, "Point(size_t base) : base(base) {}")
	assert.Contains(t, out, "int32_t x() { return *reinterpret_cast<int32_t*>(base")
	assert.Contains(t, out, "int32_t y() { return *reinterpret_cast<int32_t*>(base")
	assert.Contains(t, out, "private:")
	assert.Contains(t, out, "size_t base;")
}

func TestEmitFixedStringField(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "Named",
		Fields: []schema.StructField{
			{Name: "name", Type: schema.FixedString{Len: 16}},
		},
	}}}
	layouts, order := planAll(t, prog)

	out, err := Emit(prog, layouts, order)
	require.NoError(t, err)

	assert.Contains(t, out, "struct NameStr {")
	assert.Contains(t, out, "const char* c_str() { return reinterpret_cast<const char*>(base); }")
	assert.Contains(t, out, "constexpr size_t size() { return 16; }")
	assert.Contains(t, out, "constexpr size_t length() { return size() - 1; }")
	assert.Contains(t, out, "NameStr name() { return NameStr(base")
}

func TestEmitDynamicStringField(t *testing.T) {
	t.Parallel()
	prog := &schema.Program{Structs: []*schema.StructDefinition{{
		Name: "Named",
		Fields: []schema.StructField{
			{Name: "name", Type: schema.String{MinLen: 4, StoredSizeSize: 1, SizeSize: 1}},
		},
	}}}
	layouts, order := planAll(t, prog)

	out, err := Emit(prog, layouts, order)
	require.NoError(t, err)

	assert.Contains(t, out, "struct NameStr {")
	assert.Contains(t, out, "size_t size() { return size0(base); }")
	assert.Contains(t, out, "static size_t size0(size_t base) { return 4 + *reinterpret_cast<uint8_t*>(base")
}

func TestEmitNestedStructField(t *testing.T) {
	t.Parallel()
	inner := &schema.StructDefinition{
		Name: "Inner",
		Fields: []schema.StructField{
			{Name: "x", Type: schema.Scalar{T: schema.U32}},
		},
	}
	outer := &schema.StructDefinition{
		Name: "Outer",
		Fields: []schema.StructField{
			{Name: "i", Type: schema.Identifier{Kind: schema.StructIdent, Idx: 0}},
		},
	}
	prog := &schema.Program{Structs: []*schema.StructDefinition{inner, outer}}
	layouts, order := planAll(t, prog)

	out, err := Emit(prog, layouts, order)
	require.NoError(t, err)

	// Inner must be emitted before Outer since Outer's accessor constructs it.
	assert.Less(t, strings.Index(out, "struct Inner {"), strings.Index(out, "struct Outer {"))
	assert.Contains(t, out, "Inner i() { return Inner(base")
}

func TestEmitMissingLayoutIsAnOutputError(t *testing.T) {
	t.Parallel()
	sd := &schema.StructDefinition{Name: "Orphan"}
	prog := &schema.Program{Structs: []*schema.StructDefinition{sd}}

	_, err := Emit(prog, map[*schema.StructDefinition]*layout.Layout{}, []*schema.StructDefinition{sd})
	require.Error(t, err)
	var outErr *OutputError
	assert.ErrorAs(t, err, &outErr)
}
