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
	"strconv"
	"strings"

	"github.com/structview/layoutc/internal/layout"
)

// maxDepth mirrors layout.MaxArrayDepth: the precomputed table below covers
// exactly depths 0..maxDepth, and a schema that needs a deeper one is a
// SchemaTypeError raised by the planner long before emission, never a
// table grown on demand (§4.9, §5 "Depth cap").
const maxDepth = layout.MaxArrayDepth

// ctorStrings is the four strings spec.md §4.9 names for one nesting
// depth: the constructor's parameter list, its member-initializer list,
// the return statement that constructs a view from this depth's members,
// and the return statement for an array element accessor (which
// additionally threads `idx`).
type ctorStrings struct {
	CtorArgs    string // "size_t base, uint32_t idx_0, uint32_t idx_1, ..."
	CtorInits   string // "base(base), idx_0(idx_0), ..."
	CtorUsed    string // "return {base, idx_0, ...};"
	ElCtorUsed  string // "return {base, idx_0, ..., idx};"
}

// ctorTable holds one row per depth in [0, maxDepth]. Unlike the original
// design's two-pass char-pool build (a single contiguous allocation sized
// exactly, then filled), Go's garbage-collected strings make that
// optimization pointless: strings.Builder already amortizes growth, and
// the "share one character pool" goal only matters when every byte of
// table storage has to be accounted for ahead of time, as spec.md's
// consteval-built table must. This keeps the two-pass shape anyway, since
// it's the source of truth for what each row contains — see DESIGN.md.
var ctorTable [maxDepth + 1]ctorStrings

func init() {
	for d := 0; d <= maxDepth; d++ {
		ctorTable[d] = buildCtorStrings(d)
	}
}

func buildCtorStrings(depth int) ctorStrings {
	var args, inits strings.Builder
	args.WriteString("size_t base")
	inits.WriteString("base(base)")
	for j := 0; j < depth; j++ {
		idx := "idx_" + strconv.Itoa(j)
		args.WriteString(", uint32_t " + idx)
		inits.WriteString(", " + idx + "(" + idx + ")")
	}

	var used, elUsed strings.Builder
	used.WriteString("return {base")
	elUsed.WriteString("return {base")
	for j := 0; j < depth; j++ {
		idx := "idx_" + strconv.Itoa(j)
		used.WriteString(", " + idx)
		elUsed.WriteString(", " + idx)
	}
	elUsed.WriteString(", idx")
	used.WriteString("};")
	elUsed.WriteString("};")

	return ctorStrings{
		CtorArgs:   args.String(),
		CtorInits:  inits.String(),
		CtorUsed:   used.String(),
		ElCtorUsed: elUsed.String(),
	}
}

// ctorStringsFor returns the precomputed row for depth, clamped-checked
// against maxDepth by the caller (the planner already rejects anything
// deeper — see layout.MaxArrayDepth — so a panic here means that
// invariant was violated, not a normal user-facing error).
func ctorStringsFor(depth int) ctorStrings {
	if depth < 0 || depth > maxDepth {
		panic("emit: constructor-string table consulted at depth " + strconv.Itoa(depth) + ", beyond the precomputed range")
	}
	return ctorTable[depth]
}
