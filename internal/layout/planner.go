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

// This file is the offset planner of §4.6: it drives a single pass over a
// struct definition's fields, enqueuing every fixed leaf into a [Queue],
// building the size chain of every variable leaf (§4.7), and invoking the
// variant solver (§4.5) wherever a variant type is encountered. It plays
// the role the design splits across a generic "type visitor" (§4.2) and
// three level states (§4.6); because Go has no pointer arithmetic over a
// flattened AST buffer, the "return the position of the next sibling type"
// contract of §4.2 collapses into ordinary recursion over schema.Type,
// dispatched with the tagged-sum switch the Design Notes recommend in
// place of the original's virtual dispatch.
package layout

import (
	"github.com/structview/layoutc/internal/debug"
	"github.com/structview/layoutc/schema"
)

// SizeReader is one of a struct's size<i>(base) static methods: a
// previously emitted accessor a later variable leaf's size-chain term
// multiplies against (§4.7). For a dynamic string, it returns a byte count
// (MinLen plus the stored size). For a dynamic array, it returns an element
// count; the VarOffset terms that reference it carry the per-element
// stride separately.
type SizeReader struct {
	Field          string
	MinLen         int
	StoredSizeSize int // Width, in bytes, of the stored size/count field.
	FixedMapIdx    int // IdxMap slot of the stored field itself.
}

// FieldLayout is the per-field planning result the emitter consumes: which
// kind of accessor this field needs, and the data that closed-form
// accessor's body is built from. Exactly one of the pointer fields is set,
// matching the field's schema.Tag.
type FieldLayout struct {
	Name string
	Type schema.Type

	// Fixed is the IdxMap slot of a scalar/fixed-string/fixed-array leaf;
	// resolve via Layout.FixedOffsets[Layout.IdxMap[*Fixed]].
	Fixed *int
	// Var is the VarOffsets index of a dynamic string/array.
	Var *int
	// Variant is the Variants index of a fixed/dynamic variant.
	Variant *int
	// Nested is set for an Identifier field naming a struct.
	Nested *NestedRef
}

// NestedRef points a nested-struct field at the already-planned sub-layout
// it reuses, plus the constant delta from this struct's base pointer that
// the nested view's own base is constructed from (§4.8 "Nested struct").
type NestedRef struct {
	Layout     *Layout
	BaseMapIdx int
}

// Layout is the complete offset-planning result for one struct definition
// (§3, §4.6). It is what the accessor emitter walks to produce view types.
type Layout struct {
	Struct *schema.StructDefinition

	FixedOffsets []FixedOffset
	// IdxMap's i-th entry is the FixedOffsets index assigned to the i-th
	// fixed leaf encountered in pre-order AST traversal (§3). Variant tags
	// and nested-struct anchors are fixed leaves too, and get a slot here.
	IdxMap      []int
	VarOffsets  []VarOffset
	ArrayPacks  []ArrayPackInfo
	Variants    []*VariantSolution
	SizeReaders []SizeReader

	Fields []FieldLayout // One per top-level struct field, in source order.

	FixedSize int // Bytes of the fixed-size prefix, after alignment padding.
	VarAlign  int // Alignment the variable region's start is rounded up to.
	HasVar    bool
}

// Offset resolves a leaf's IdxMap slot (as stored in a FieldLayout.Fixed,
// SizeReader.FixedMapIdx, or VariantSolution.TagIdxMap) to its final
// FixedOffset.
func (l *Layout) Offset(mapIdx int) FixedOffset {
	return l.FixedOffsets[l.IdxMap[mapIdx]]
}

// MaxAlign returns the largest PackAlignment among this layout's fixed
// leaves, or 1 if it has none. Used when a struct is itself embedded as a
// fixed array element or a nested-struct field, whose own alignment must
// respect everything the sub-layout needs (§3 "Invariants").
func (l *Layout) MaxAlign() int {
	a := 1
	for _, fo := range l.FixedOffsets {
		a = max(a, fo.PackAlignment)
	}
	return a
}

// planner accumulates a single struct's Layout while its fields are
// visited. It plays the role of both the shared state and the TopLevel
// level state of §4.2/§4.6: at top level there is exactly one lexical
// scope, so the two are not worth separating into distinct types the way
// the nested fixed-array/fixed-variant scopes below are.
type planner struct {
	prog *schema.Program
	subs map[*schema.StructDefinition]*Layout // Already-planned nested structs, by identity.

	out   *Layout
	queue *Queue

	nextMapSlot int
	arrayDepth  int

	// varAccum is the running per-size-leaf accumulator of §4.7: for every
	// size reader declared so far, how many bytes of the variable region
	// every earlier var leaf attributed to it.
	varAccum []SizeTerm
}

// PlanStruct assigns offsets to every leaf of sd, including nested structs
// referenced by Identifier fields, which must already be present in subs
// (the caller drives this in the dependency order the scc package's
// topological sort produces — see package layoutc).
func PlanStruct(prog *schema.Program, sd *schema.StructDefinition, subs map[*schema.StructDefinition]*Layout) (*Layout, error) {
	p := &planner{
		prog:  prog,
		subs:  subs,
		out:   &Layout{Struct: sd},
		queue: NewQueue(),
	}

	for _, f := range sd.Fields {
		fl, err := p.visitTopField(f)
		if err != nil {
			return nil, err
		}
		p.out.Fields = append(p.out.Fields, fl)
	}

	p.out.FixedSize = p.queue.Finalize()
	p.resolveCommitted(p.queue.Committed())

	if p.out.VarAlign == 0 {
		p.out.VarAlign = 1
	}
	pad := (p.out.VarAlign - p.out.FixedSize%p.out.VarAlign) % p.out.VarAlign
	p.out.FixedSize += pad

	return p.out, nil
}

// resolveCommitted walks the queue's final commit order, writing each
// simple leaf's FixedOffset and IdxMap entry, and placing each variant
// envelope at its committed base offset. The planner enqueues no
// KindArrayPack entries, so none are handled here.
//
// IdxMap is indexed by MapIdx (the pre-order slot [FieldLayout.Fixed] and
// friends store), not by commit position: the queue reorders leaves by
// alignment (§4.3), so a leaf's MapIdx and the order it gets a FixedOffsets
// entry in are generally different numbers.
func (p *planner) resolveCommitted(fields []QueuedField) {
	p.out.IdxMap = make([]int, p.nextMapSlot)
	for _, f := range fields {
		switch f.Kind {
		case KindSimple:
			idx := len(p.out.FixedOffsets)
			p.out.FixedOffsets = append(p.out.FixedOffsets, FixedOffset{
				ByteOffset:    f.Offset,
				SourceMapIdx:  f.MapIdx,
				PackAlignment: f.Align,
			})
			debug.Assert(f.MapIdx >= 0 && f.MapIdx < p.nextMapSlot, "planner: idx-map slot %d out of range [0, %d)", f.MapIdx, p.nextMapSlot)
			p.out.IdxMap[f.MapIdx] = idx

		case KindVariantPack:
			p.out.Variants[f.PackIdx].Base = f.Offset
		}
	}
}

// enqueueLeaf reserves the next IdxMap slot and enqueues a simple fixed
// leaf of the given size/align, returning the reserved slot.
func (p *planner) enqueueLeaf(size, align int) int {
	slot := p.nextMapSlot
	p.nextMapSlot++
	p.queue.Enqueue(QueuedField{Size: size, Align: align, Kind: KindSimple, MapIdx: slot})
	return slot
}

func (p *planner) visitTopField(f schema.StructField) (FieldLayout, error) {
	fl := FieldLayout{Name: f.Name, Type: f.Type}

	switch t := f.Type.(type) {
	case schema.Scalar:
		idx := p.enqueueLeaf(t.Tag().Size(), t.Tag().Align())
		fl.Fixed = &idx

	case schema.FixedString:
		idx := p.enqueueLeaf(t.Len, 1)
		fl.Fixed = &idx

	case schema.String:
		vi, err := p.planDynamicString(f.Name, t)
		if err != nil {
			return fl, err
		}
		fl.Var = &vi

	case schema.FixedArray:
		idx, err := p.planFixedArray(f.Name, t)
		if err != nil {
			return fl, err
		}
		fl.Fixed = &idx

	case schema.Array:
		vi, err := p.planDynamicArray(f.Name, t)
		if err != nil {
			return fl, err
		}
		fl.Var = &vi

	case schema.FixedVariant:
		vi, err := p.planVariant(f.Name, t.Variants, nil)
		if err != nil {
			return fl, err
		}
		fl.Variant = &vi

	case schema.DynamicVariant:
		vi, err := p.planVariant(f.Name, t.Variants, &fl)
		if err != nil {
			return fl, err
		}
		fl.Variant = &vi

	case schema.PackedVariant:
		return fl, &SchemaTypeError{Struct: p.out.Struct.Name, Field: f.Name, Reason: "packed variants are rejected"}

	case schema.Identifier:
		if t.Kind == schema.EnumIdent {
			e := p.prog.Enum(t)
			idx := p.enqueueLeaf(e.Underlying.Size(), e.Underlying.Align())
			fl.Fixed = &idx
			return fl, nil
		}
		nested, err := p.planNestedStruct(f.Name, t)
		if err != nil {
			return fl, err
		}
		fl.Nested = nested

	default:
		return fl, &SchemaTypeError{Struct: p.out.Struct.Name, Field: f.Name, Reason: "unsupported top-level field type"}
	}

	return fl, nil
}

// planNestedStruct embeds an already-planned sub-layout as one fixed leaf
// sized to the sub-layout's fixed prefix. A nested struct that itself has a
// variable-size tail cannot be embedded this way — its variable region
// would have nowhere fixed to live — so that combination is rejected; see
// DESIGN.md for why this is a deliberate scope reduction rather than an
// oversight.
func (p *planner) planNestedStruct(name string, id schema.Identifier) (*NestedRef, error) {
	sub := p.prog.Struct(id)
	layout, ok := p.subs[sub]
	if !ok {
		return nil, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "nested struct " + sub.Name + " has not been planned yet (dependency order bug)"}
	}
	if layout.HasVar {
		return nil, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "nesting a variable-size struct (" + sub.Name + ") as a plain field is not supported"}
	}
	idx := p.enqueueLeaf(layout.FixedSize, layout.MaxAlign())
	return &NestedRef{Layout: layout, BaseMapIdx: idx}, nil
}

// planDynamicString adds a dynamic string's stored-size fixed leaf, then
// appends its VarOffset built from the running size-chain accumulator
// (§4.7), and finally folds this leaf's own byte contribution into that
// accumulator for whoever comes after it.
func (p *planner) planDynamicString(name string, t schema.String) (int, error) {
	sizeIdx := len(p.out.SizeReaders)
	mapIdx := p.enqueueLeaf(t.StoredSizeSize, t.StoredSizeSize)
	p.out.SizeReaders = append(p.out.SizeReaders, SizeReader{
		Field: name, MinLen: t.MinLen, StoredSizeSize: t.StoredSizeSize, FixedMapIdx: mapIdx,
	})

	vi := len(p.out.VarOffsets)
	p.out.VarOffsets = append(p.out.VarOffsets, VarOffset{
		Field:      name,
		Terms:      append([]SizeTerm(nil), p.varAccum...),
		MinLen:     t.MinLen,
		SizeReader: sizeIdx,
	})
	p.varAccum = append(p.varAccum, SizeTerm{SizeReader: sizeIdx, Stride: 1})

	p.out.HasVar = true
	p.out.VarAlign = max(p.out.VarAlign, 1)
	return vi, nil
}

// planDynamicArray is planDynamicString's counterpart for a dynamic array
// of scalars: the size reader returns an element count, so later leaves'
// chain terms carry the element's byte stride explicitly.
func (p *planner) planDynamicArray(name string, t schema.Array) (int, error) {
	inner, ok := t.Inner.(schema.Scalar)
	if !ok {
		return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "dynamic arrays of non-scalar elements are not supported"}
	}
	elemSize := inner.Tag().Size()

	sizeIdx := len(p.out.SizeReaders)
	mapIdx := p.enqueueLeaf(t.StoredSizeSize, t.StoredSizeSize)
	p.out.SizeReaders = append(p.out.SizeReaders, SizeReader{
		Field: name, MinLen: t.MinLen, StoredSizeSize: t.StoredSizeSize, FixedMapIdx: mapIdx,
	})

	vi := len(p.out.VarOffsets)
	p.out.VarOffsets = append(p.out.VarOffsets, VarOffset{
		Field:       name,
		Terms:       append([]SizeTerm(nil), p.varAccum...),
		MinLen:      t.MinLen * elemSize,
		ElementSize: elemSize,
		SizeReader:  sizeIdx,
	})
	p.varAccum = append(p.varAccum, SizeTerm{SizeReader: sizeIdx, Stride: elemSize})

	p.out.HasVar = true
	p.out.VarAlign = max(p.out.VarAlign, inner.Tag().Align())
	return vi, nil
}

// planFixedArray plans a fixed-length array of scalars, nested fixed
// arrays, or a fixed-size struct, as a single leaf whose size is the full
// extent of the array (§4.6 FixedArrayLevel, simplified: rather than
// lifting the element's own recursively-queued offsets back into this
// scope as a separate commit, the whole array is sized and aligned as one
// leaf up front, since every element shares one stride). The ArrayPackInfo
// chain still records each nesting level's stride for the index-arithmetic
// code the emitter generates (§4.8 "Scalar in a fixed-array element").
func (p *planner) planFixedArray(name string, t schema.FixedArray) (int, error) {
	if p.arrayDepth >= MaxArrayDepth {
		return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "fixed array nesting exceeds the depth cap"}
	}
	p.arrayDepth++
	defer func() { p.arrayDepth-- }()

	// Reserve this array's own pack slot before recursing, so that any
	// nested array's entry can record it as its enclosing pack (§3
	// ArrayPackInfo: "Index of the enclosing ArrayPackInfo").
	packIdx := len(p.out.ArrayPacks)
	p.out.ArrayPacks = append(p.out.ArrayPacks, ArrayPackInfo{ParentPackIdx: -1})

	elemSize, elemAlign, err := p.arrayElementShape(name, t.Inner, packIdx)
	if err != nil {
		return 0, err
	}
	p.out.ArrayPacks[packIdx].ElementSize = elemSize

	return p.enqueueLeaf(t.Len*elemSize, elemAlign), nil
}

// arrayElementShape returns the per-element byte size and alignment of a
// fixed-array's inner type, recursing through nested fixed arrays and
// fixed-size structs. Dynamic and variant inner types are rejected: §4.2's
// contract is that array and dynamic-sized types are illegal once already
// inside an array scope. parentPackIdx is the ArrayPackInfo slot of the
// array that directly encloses inner.
func (p *planner) arrayElementShape(name string, inner schema.Type, parentPackIdx int) (size, align int, err error) {
	switch it := inner.(type) {
	case schema.Scalar:
		return it.Tag().Size(), it.Tag().Align(), nil

	case schema.FixedString:
		return it.Len, 1, nil

	case schema.FixedArray:
		if p.arrayDepth >= MaxArrayDepth {
			return 0, 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "fixed array nesting exceeds the depth cap"}
		}
		p.arrayDepth++
		defer func() { p.arrayDepth-- }()

		packIdx := len(p.out.ArrayPacks)
		p.out.ArrayPacks = append(p.out.ArrayPacks, ArrayPackInfo{ParentPackIdx: parentPackIdx})
		elemSize, elemAlign, err := p.arrayElementShape(name, it.Inner, packIdx)
		if err != nil {
			return 0, 0, err
		}
		p.out.ArrayPacks[packIdx].ElementSize = elemSize
		return it.Len * elemSize, elemAlign, nil

	case schema.Identifier:
		if it.Kind == schema.EnumIdent {
			e := p.prog.Enum(it)
			return e.Underlying.Size(), e.Underlying.Align(), nil
		}
		sub := p.prog.Struct(it)
		layout, ok := p.subs[sub]
		if !ok || layout.HasVar {
			return 0, 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "array element struct " + sub.Name + " must be fixed-size and already planned"}
		}
		return layout.FixedSize, layout.MaxAlign(), nil

	default:
		return 0, 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "array elements of this kind are not supported inside a fixed array"}
	}
}

// planVariant builds arms from simple flat leaf lists, runs the variant
// solver, and enqueues the resulting envelope as a single leaf sized and
// aligned to the largest alignment tier the envelope actually uses. The
// design's "four aligned sub-blocks" interleaving (§4.5 step 5) is
// deliberately not reproduced at this granularity; see DESIGN.md.
//
// dyn, when non-nil, names the field that may additionally carry exactly
// one variable-size arm (a dynamic variant's distinguishing feature);
// that arm is planned as an ordinary trailing var leaf once the fixed
// envelope above it is known.
func (p *planner) planVariant(name string, variants []schema.Type, dyn *FieldLayout) (int, error) {
	tagSize := 1
	if len(variants) > 255 {
		tagSize = 2
	}
	tagMapIdx := p.enqueueLeaf(tagSize, tagSize)

	var arms []Arm
	var dynArmType schema.Type
	for _, v := range variants {
		switch vt := v.(type) {
		case schema.Scalar:
			arms = append(arms, Arm{Leaves: []Leaf{{Size: vt.Tag().Size(), Align: vt.Tag().Align()}}})
		case schema.FixedString:
			arms = append(arms, Arm{Leaves: []Leaf{{Size: vt.Len, Align: 1}}})
		case schema.FixedArray:
			elemSize, elemAlign, err := p.arrayElementShape(name, vt.Inner, -1)
			if err != nil {
				return 0, err
			}
			arms = append(arms, Arm{Leaves: []Leaf{{Size: vt.Len * elemSize, Align: elemAlign}}})
		case schema.Identifier:
			if vt.Kind == schema.EnumIdent {
				e := p.prog.Enum(vt)
				arms = append(arms, Arm{Leaves: []Leaf{{Size: e.Underlying.Size(), Align: e.Underlying.Align()}}})
				continue
			}
			sub := p.prog.Struct(vt)
			sl, ok := p.subs[sub]
			if !ok || sl.HasVar {
				return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "variant arm struct " + sub.Name + " must be fixed-size and already planned"}
			}
			arms = append(arms, Arm{Leaves: []Leaf{{Size: sl.FixedSize, Align: sl.MaxAlign()}}})
		case schema.String, schema.Array:
			if dyn == nil {
				return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "a variable-size arm requires a dynamic_variant"}
			}
			if dynArmType != nil {
				return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "a dynamic variant may have at most one variable-size arm"}
			}
			dynArmType = v
			arms = append(arms, Arm{}) // A zero-leaf arm: contributes nothing to the fixed envelope.
		default:
			return 0, &SchemaTypeError{Struct: p.out.Struct.Name, Field: name, Reason: "unsupported variant arm type"}
		}
	}

	sol := SolveVariant(arms)
	sol.Field = name
	sol.TagIdxMap = tagMapIdx
	sol.TagSize = tagSize
	sol.DynamicVarIdx = -1

	maxAlign := 1
	for _, a := range []int{8, 4, 2, 1} {
		if sol.Envelope[a] > 0 {
			maxAlign = a
			break
		}
	}

	variantIdx := len(p.out.Variants)
	p.out.Variants = append(p.out.Variants, sol)
	p.queue.Enqueue(QueuedField{Size: sol.Envelope[1], Align: maxAlign, Kind: KindVariantPack, PackIdx: variantIdx})

	if dynArmType != nil {
		var vi int
		var err error
		switch vt := dynArmType.(type) {
		case schema.String:
			vi, err = p.planDynamicString(name, vt)
		case schema.Array:
			vi, err = p.planDynamicArray(name, vt)
		}
		if err != nil {
			return 0, err
		}
		sol.DynamicVarIdx = vi
	}

	return variantIdx, nil
}
