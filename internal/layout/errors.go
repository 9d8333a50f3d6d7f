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

package layout

import "fmt"

// SchemaTypeError reports that the AST requested a combination of types the
// planner does not support: a dynamic array nested inside another array, a
// variable-length string inside an array, a packed variant, or a fixed
// array nested deeper than [MaxArrayDepth] (§7).
type SchemaTypeError struct {
	Struct string
	Field  string
	Reason string
}

func (e *SchemaTypeError) Error() string {
	return fmt.Sprintf("layout: %s.%s: %s", e.Struct, e.Field, e.Reason)
}

// LayoutImpossibleError would report that the variant solver could not find
// a valid envelope at some alignment tier. Per §7, this is the one error
// kind recovered locally rather than propagated: [SolveVariant] instead
// falls back to a collapsed, padded layout and the planner records
// [VariantSolution.Collapsed] for the caller to inspect or log. The type
// still exists so collaborators that want to surface the warning to a user
// (e.g. a future CLI) have a concrete value to format.
type LayoutImpossibleError struct {
	Struct string
	Field  string
	Align  int
}

func (e *LayoutImpossibleError) Error() string {
	return fmt.Sprintf("layout: %s.%s: no perfect variant envelope at alignment %d; falling back to a padded layout", e.Struct, e.Field, e.Align)
}

// InternalInvariantViolation reports that a bookkeeping invariant the
// planner relies on was broken: a destination FixedOffset slot was written
// twice, an idx-map slot was assigned out of order, or an offset failed its
// own declared alignment. Per §7 this is always fatal; callers should treat
// it like a panic, not a recoverable condition. The planner does not
// construct this type: its own bookkeeping checks are debug.Assert calls,
// which panic in debug builds and are no-ops in release builds.
type InternalInvariantViolation struct {
	Struct string
	Detail string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("layout: %s: internal invariant violated: %s", e.Struct, e.Detail)
}

// MaxArrayDepth is the hard cap on fixed-array nesting depth (§5, §4.9):
// the precomputed constructor-string table only covers depths 0..64, and
// exceeding it is a [SchemaTypeError], not a table grown on demand.
const MaxArrayDepth = 64
