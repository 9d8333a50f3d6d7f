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

import "github.com/structview/layoutc/internal/debug"

// PendingKind distinguishes what a [QueuedField] represents: a single leaf,
// or a leaf-group lifted out of a nested fixed-array or variant scope.
type PendingKind uint8

const (
	// KindSimple is an ordinary scalar, fixed string, or size-reader leaf.
	KindSimple PendingKind = iota
	// KindArrayPack is the block of offsets produced by a nested fixed
	// array, to be committed as a unit (§4.6 FixedArrayLevel).
	KindArrayPack
	// KindVariantPack is one alignment band's worth of a variant's
	// envelope, to be committed as a unit (§4.5 step 5).
	KindVariantPack
)

// QueuedField is a leaf, or leaf-group, not yet assigned a final byte
// offset (§3).
type QueuedField struct {
	Size  int
	Align int
	Kind  PendingKind

	// MapIdx is the IdxMap slot this leaf will resolve to, valid when
	// Kind == KindSimple.
	MapIdx int
	// PackIdx is the ArrayPackInfo/VariantSolution index this group
	// belongs to, valid when Kind != KindSimple.
	PackIdx int

	// Offset is filled in by the queue at commit time: the final byte
	// offset of this leaf (KindSimple) or the base offset this pack's
	// internally-relative sub-offsets are added to (KindArrayPack,
	// KindVariantPack).
	Offset int
}

// Queue is the per-scope list of pending fixed-size leaves not yet assigned
// an offset (§4.3): leaves of mismatched alignment are held back so that,
// collectively, they can fill the hole a higher-aligned leaf would
// otherwise leave behind, instead of leaking padding at the tail of the
// scope.
//
// Within one scope, final commit order is always non-increasing alignment
// (8, 4, 2, 1), then source order within a tier — this is the §3 layout
// invariant the queue exists to uphold.
type Queue struct {
	groups map[int][]QueuedField // align (1, 2, 4) -> pending fields, source order.
	sums   map[int]int           // align -> running raw size sum of groups[align].

	cursor    int           // Next free byte, already advanced past every commit so far.
	committed []QueuedField // Finalized, in non-increasing-alignment / source order.
}

// NewQueue returns an empty queue whose first commit will land at byte 0.
func NewQueue() *Queue {
	return &Queue{
		groups: map[int][]QueuedField{1: nil, 2: nil, 4: nil},
		sums:   map[int]int{1: 0, 2: 0, 4: 0},
	}
}

// Cursor is the next free byte offset: the sum of everything committed so
// far, including padding already absorbed by alignment.
func (q *Queue) Cursor() int { return q.cursor }

// Committed returns the fields committed so far, in final order.
func (q *Queue) Committed() []QueuedField { return q.committed }

// commitAligned advances the cursor to the next multiple of align, then
// appends field there.
func (q *Queue) commitAligned(field QueuedField, align int) {
	pad := (align - q.cursor%align) % align
	q.cursor += pad
	field.Align = align
	field.Offset = q.cursor
	q.committed = append(q.committed, field)
	q.cursor += field.Size
}

// Enqueue adds one leaf or leaf-group of the given size and alignment to
// the queue, following the algorithm of §4.3:
//
//  1. A size that is already a multiple of 8 commits immediately at the
//     8-aligned cursor — there is nothing smaller that could ever need to
//     share its slot.
//  2. Otherwise it joins the per-alignment group for its own align. If that
//     group's running sum becomes a multiple of the next alignment tier up,
//     the whole group promotes into that tier's group (cascading again if
//     the promoted sum is itself a multiple of the tier above that), finally
//     committing immediately once a cascade reaches a multiple of 8.
//
// Step 3 of §4.3 (opportunistic subset-sum flush of a non-exact-multiple
// prefix) is intentionally not duplicated here: at top level that case
// reduces to "commit whatever remains at scope end" (see [Queue.Finalize]),
// since nothing downstream of a struct's own fields needs an early partial
// commit. The subset-sum search itself is still exercised, by the variant
// solver (§4.5), which is where an uneven combination of arm leaves
// actually needs reconstructing rather than just summing.
func (q *Queue) Enqueue(field QueuedField) {
	align := field.Align
	debug.Assert(align == 1 || align == 2 || align == 4 || align == 8, "queue: invalid alignment %d", align)

	if align == 8 || field.Size%8 == 0 {
		q.commitAligned(field, 8)
		return
	}

	q.groups[align] = append(q.groups[align], field)
	q.sums[align] += field.Size
	q.cascade(align)
}

// cascade checks whether groups[align]'s running sum has become a multiple
// of the next alignment tier up, promoting (and committing, if it reaches a
// multiple of 8) as needed.
func (q *Queue) cascade(align int) {
	if align >= 8 {
		return
	}
	next := align * 2
	sum := q.sums[align]
	if sum == 0 || sum%next != 0 {
		return
	}

	promoted := q.groups[align]
	q.groups[align] = nil
	q.sums[align] = 0

	if next == 8 {
		pad := (8 - q.cursor%8) % 8
		q.cursor += pad
		for _, f := range promoted {
			f.Offset = q.cursor
			q.committed = append(q.committed, f)
			q.cursor += f.Size
		}
		return
	}

	q.groups[next] = append(q.groups[next], promoted...)
	q.sums[next] += sum
	q.cascade(next)
}

// Finalize commits every remaining pending group, from alignment 4 down to
// 1, each as a contiguous block in source order (§3, §4.6 TopLevel). It
// returns the cursor position after committing, i.e. the byte past the
// struct's fixed-size prefix.
func (q *Queue) Finalize() int {
	for _, a := range []int{4, 2, 1} {
		group := q.groups[a]
		if len(group) == 0 {
			continue
		}
		pad := (a - q.cursor%a) % a
		q.cursor += pad
		for _, f := range group {
			f.Offset = q.cursor
			q.committed = append(q.committed, f)
			q.cursor += f.Size
		}
		q.groups[a] = nil
		q.sums[a] = 0
	}
	return q.cursor
}
