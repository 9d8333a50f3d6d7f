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

import "testing"

// TestQueueImmediateCommitOnEightAlignedLeaf mirrors §4.3 step 1: a leaf
// whose own alignment is 8 never waits in a group.
func TestQueueImmediateCommitOnEightAlignedLeaf(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueuedField{Size: 8, Align: 8, MapIdx: 0})
	if got := q.Cursor(); got != 8 {
		t.Fatalf("Cursor() = %d, want 8", got)
	}
	committed := q.Committed()
	if len(committed) != 1 || committed[0].Offset != 0 {
		t.Fatalf("committed = %+v, want one leaf at offset 0", committed)
	}
}

// TestQueueImmediateCommitOnSizeMultipleOfEight covers the same step 1 rule
// when the size alone (not the declared alignment) is already a multiple of
// 8, e.g. a FixedArray<u32,2> leaf enqueued at align 4.
func TestQueueImmediateCommitOnSizeMultipleOfEight(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueuedField{Size: 8, Align: 4, MapIdx: 0})
	committed := q.Committed()
	if len(committed) != 1 || committed[0].Offset != 0 || committed[0].Align != 8 {
		t.Fatalf("committed = %+v, want one leaf at offset 0 promoted to align 8", committed)
	}
}

// TestQueueHoldsMismatchedAlignmentUntilFinalize mirrors spec.md §8 S1: a
// u8, then a u64 (which commits immediately since its own alignment is 8),
// then a u16. Both the u8 and u16 are held back and only assigned offsets
// by Finalize, landing after the u64 in non-increasing-alignment order.
func TestQueueHoldsMismatchedAlignmentUntilFinalize(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueuedField{Size: 1, Align: 1, MapIdx: 0}) // a: u8
	q.Enqueue(QueuedField{Size: 8, Align: 8, MapIdx: 1}) // b: u64
	q.Enqueue(QueuedField{Size: 2, Align: 2, MapIdx: 2}) // c: u16

	if got := q.Cursor(); got != 8 {
		t.Fatalf("Cursor() before Finalize = %d, want 8 (only b committed so far)", got)
	}

	final := q.Finalize()
	if final != 11 {
		t.Fatalf("Finalize() = %d, want 11", final)
	}

	offsets := make(map[int]int)
	for _, f := range q.Committed() {
		offsets[f.MapIdx] = f.Offset
	}
	if offsets[1] != 0 {
		t.Errorf("b offset = %d, want 0", offsets[1])
	}
	if offsets[2] != 8 {
		t.Errorf("c offset = %d, want 8", offsets[2])
	}
	if offsets[0] != 10 {
		t.Errorf("a offset = %d, want 10", offsets[0])
	}
}

// TestQueueCascadePromotesAlignTwoGroupToAlignFour covers the inner
// cascade: two align-2 leaves whose sizes sum to a multiple of 4 promote
// together into the align-4 group rather than waiting for Finalize.
func TestQueueCascadePromotesAlignTwoGroupToAlignFour(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueuedField{Size: 2, Align: 2, MapIdx: 0})
	q.Enqueue(QueuedField{Size: 2, Align: 2, MapIdx: 1})

	// Neither leaf is align-8 or a multiple of 8 in size, so nothing has
	// committed yet — the pair is sitting, promoted, in the align-4 group.
	if got := q.Cursor(); got != 0 {
		t.Fatalf("Cursor() before Finalize = %d, want 0", got)
	}

	final := q.Finalize()
	if final != 4 {
		t.Fatalf("Finalize() = %d, want 4", final)
	}
	offsets := make(map[int]int)
	for _, f := range q.Committed() {
		offsets[f.MapIdx] = f.Offset
	}
	if offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("offsets = %+v, want {0:0, 1:2}", offsets)
	}
}

// TestQueueCascadeReachesEightAndCommitsImmediately covers a full cascade:
// four align-2 size-2 leaves sum to 8, promoting align2 -> align4 -> align8
// and committing without waiting for Finalize at all.
func TestQueueCascadeReachesEightAndCommitsImmediately(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 4; i++ {
		q.Enqueue(QueuedField{Size: 2, Align: 2, MapIdx: i})
	}
	if got := q.Cursor(); got != 8 {
		t.Fatalf("Cursor() = %d, want 8 (cascade should commit without Finalize)", got)
	}
	committed := q.Committed()
	if len(committed) != 4 {
		t.Fatalf("committed = %+v, want 4 leaves", committed)
	}
	for i, f := range committed {
		if f.Offset != i*2 {
			t.Errorf("committed[%d].Offset = %d, want %d", i, f.Offset, i*2)
		}
	}
}

// TestQueueFinalizeOnEmptyQueueIsANoop ensures an all-align-8 struct (no
// pending groups at all) finalizes without changing the cursor.
func TestQueueFinalizeOnEmptyQueueIsANoop(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueuedField{Size: 8, Align: 8, MapIdx: 0})
	before := q.Cursor()
	after := q.Finalize()
	if after != before {
		t.Fatalf("Finalize() = %d, want unchanged cursor %d", after, before)
	}
}
