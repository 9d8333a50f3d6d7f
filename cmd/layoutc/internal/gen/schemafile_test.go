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

package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/structview/layoutc/cmd/layoutc/internal/gen"
	"github.com/structview/layoutc/schema"
)

// fixtures bundles every YAML schema sample this file exercises into one
// txtar archive, each section addressable by name, the way a table of
// independent fixture files would be but without the directory sprawl.
var fixtures = txtar.Parse([]byte(`
-- simple.yaml --
structs:
  - name: Point
    fields:
      - name: x
        type: {kind: i32}
      - name: y
        type: {kind: i32}
-- forward_ref.yaml --
structs:
  - name: Line
    fields:
      - name: from
        type: {kind: ref, ref: Point}
      - name: to
        type: {kind: ref, ref: Point}
  - name: Point
    fields:
      - name: x
        type: {kind: f32}
      - name: y
        type: {kind: f32}
-- enum.yaml --
enums:
  - name: Color
    underlying: u8
structs:
  - name: Pixel
    fields:
      - name: color
        type: {kind: ref, ref: Color}
-- bad_kind.yaml --
structs:
  - name: Bad
    fields:
      - name: f
        type: {kind: not_a_real_kind}
`))

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	for _, f := range fixtures.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("no fixture named %q", name)
	return nil
}

func TestDecodeSimpleStruct(t *testing.T) {
	t.Parallel()
	prog, err := gen.Decode(fixture(t, "simple.yaml"))
	require.NoError(t, err)
	require.Len(t, prog.Structs, 1)

	point := prog.Structs[0]
	assert.Equal(t, "Point", point.Name)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "x", point.Fields[0].Name)
	assert.Equal(t, schema.Scalar{T: schema.I32}, point.Fields[0].Type)
}

func TestDecodeForwardReference(t *testing.T) {
	t.Parallel()
	prog, err := gen.Decode(fixture(t, "forward_ref.yaml"))
	require.NoError(t, err)
	require.Len(t, prog.Structs, 2)

	line := prog.Structs[0]
	require.Equal(t, "Line", line.Name)
	from, ok := line.Fields[0].Type.(schema.Identifier)
	require.True(t, ok)
	assert.Equal(t, schema.StructIdent, from.Kind)
	assert.Equal(t, prog.Structs[1], prog.Struct(from))
}

func TestDecodeEnumReference(t *testing.T) {
	t.Parallel()
	prog, err := gen.Decode(fixture(t, "enum.yaml"))
	require.NoError(t, err)
	require.Len(t, prog.Enums, 1)
	assert.Equal(t, schema.U8, prog.Enums[0].Underlying)

	pixel := prog.Structs[0]
	ref, ok := pixel.Fields[0].Type.(schema.Identifier)
	require.True(t, ok)
	assert.Equal(t, schema.EnumIdent, ref.Kind)
	assert.Same(t, prog.Enums[0], prog.Enum(ref))
}

func TestDecodeUnknownKindIsAnError(t *testing.T) {
	t.Parallel()
	_, err := gen.Decode(fixture(t, "bad_kind.yaml"))
	assert.Error(t, err)
}
