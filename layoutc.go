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

// Package layoutc is the compiler facade: it drives the layout planner
// (internal/layout) over every struct a set of targets transitively
// depends on, in the dependency order internal/scc computes, then hands
// the results to the accessor emitter (internal/emit) to produce one C++
// header (spec.md §6).
package layoutc

import (
	"fmt"
	"iter"

	"github.com/structview/layoutc/internal/emit"
	"github.com/structview/layoutc/internal/layout"
	"github.com/structview/layoutc/internal/scc"
	"github.com/structview/layoutc/schema"
)

// Compile plans and emits a header containing every struct named in
// targets, plus every struct any of them transitively reaches through a
// nested-struct (or array-of-struct, or variant-arm-struct) field.
//
// Fails fast, per spec.md §7: the first SchemaTypeError encountered during
// planning is returned immediately; nothing partial is emitted.
func Compile(prog *schema.Program, targets []string) (string, error) {
	roots := make([]*schema.StructDefinition, 0, len(targets))
	for _, name := range targets {
		sd := findStruct(prog, name)
		if sd == nil {
			return "", fmt.Errorf("layoutc: unknown target struct %q", name)
		}
		roots = append(roots, sd)
	}

	graph := dependencyGraph(prog)

	layouts := make(map[*schema.StructDefinition]*layout.Layout)
	var order []*schema.StructDefinition
	seen := make(map[*schema.StructDefinition]bool)

	for _, root := range roots {
		dag := scc.Sort(root, graph)
		for c := range dag.Topological() {
			for _, sd := range c.Members() {
				if seen[sd] {
					continue
				}
				seen[sd] = true

				lo, err := layout.PlanStruct(prog, sd, layouts)
				if err != nil {
					return "", err
				}
				layouts[sd] = lo
				order = append(order, sd)
			}
		}
	}

	return emit.Emit(prog, layouts, order)
}

func findStruct(prog *schema.Program, name string) *schema.StructDefinition {
	for _, sd := range prog.Structs {
		if sd.Name == name {
			return sd
		}
	}
	return nil
}

// dependencyGraph builds the scc.Graph of direct struct-to-struct
// references: sd depends on every struct named by an Identifier reachable
// from one of its fields without crossing another struct boundary (i.e.
// not the dependencies-of-dependencies — scc.Sort's own recursion handles
// transitivity).
func dependencyGraph(prog *schema.Program) scc.Graph[*schema.StructDefinition] {
	return func(sd *schema.StructDefinition) iter.Seq[*schema.StructDefinition] {
		return func(yield func(*schema.StructDefinition) bool) {
			for _, f := range sd.Fields {
				for _, dep := range structRefs(prog, f.Type) {
					if !yield(dep) {
						return
					}
				}
			}
		}
	}
}

// structRefs collects the struct identifiers directly reachable from t
// without crossing into another struct's own fields: through fixed-array
// element chains and variant arms, since those are planned as part of the
// owning struct's own layout (§4.6), but not further than that.
func structRefs(prog *schema.Program, t schema.Type) []*schema.StructDefinition {
	switch it := t.(type) {
	case schema.Identifier:
		if it.Kind == schema.StructIdent {
			return []*schema.StructDefinition{prog.Struct(it)}
		}
		return nil
	case schema.FixedArray:
		return structRefs(prog, it.Inner)
	case schema.FixedVariant:
		var out []*schema.StructDefinition
		for _, v := range it.Variants {
			out = append(out, structRefs(prog, v)...)
		}
		return out
	case schema.DynamicVariant:
		var out []*schema.StructDefinition
		for _, v := range it.Variants {
			out = append(out, structRefs(prog, v)...)
		}
		return out
	case schema.PackedVariant:
		var out []*schema.StructDefinition
		for _, v := range it.Variants {
			out = append(out, structRefs(prog, v)...)
		}
		return out
	default:
		return nil
	}
}
