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

func TestGenerateBitsReachableSums(t *testing.T) {
	bits := GenerateBits(8, []int{3, 5})
	reachable := map[int]bool{0: true, 3: true, 5: true, 8: true}
	for i := 0; i <= 8; i++ {
		if got, want := bits.Test(i), reachable[i]; got != want {
			t.Errorf("Test(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGenerateBitsEachItemUsedAtMostOnce(t *testing.T) {
	// Two distinct size-2 items: 0, 1, or 2 of them reachable, never a
	// larger multiple than the item count would allow.
	bits := GenerateBits(6, []int{2, 2})
	for i, want := range map[int]bool{0: true, 2: true, 4: true, 6: false} {
		if got := bits.Test(i); got != want {
			t.Errorf("Test(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGenerateBitsIgnoresItemsLargerThanLimit(t *testing.T) {
	bits := GenerateBits(4, []int{3, 100})
	if !bits.Test(3) {
		t.Error("Test(3) = false, want true")
	}
	if bits.Test(100) {
		t.Error("Test(100) = true, want false (beyond limit, clamped)")
	}
}

func TestBitsOrAndClone(t *testing.T) {
	a := GenerateBits(8, []int{3})
	b := GenerateBits(8, []int{5})
	clone := a.Clone()
	clone.Or(b)
	if !clone.Test(3) || !clone.Test(5) {
		t.Errorf("Or result missing a member: Test(3)=%v Test(5)=%v", clone.Test(3), clone.Test(5))
	}
	// a itself must be untouched by Clone+Or on the clone.
	if a.Test(5) {
		t.Error("Or on the clone mutated the original bitset")
	}

	inter := a.Clone()
	inter.And(b)
	if inter.Test(3) || inter.Test(5) {
		t.Error("And of disjoint reachable sets must leave only the shared sum 0")
	}
	if !inter.Test(0) {
		t.Error("0 is always reachable and must survive And")
	}
}

func TestSolveZeroTargetIsTriviallySatisfied(t *testing.T) {
	subset, ok := Solve(0, []int{3, 5})
	if !ok || len(subset) != 0 {
		t.Fatalf("Solve(0, ...) = %v, %v; want empty subset, true", subset, ok)
	}
}

func TestSolveNegativeTargetFails(t *testing.T) {
	_, ok := Solve(-1, []int{3, 5})
	if ok {
		t.Fatal("Solve(-1, ...) = true, want false")
	}
}

func TestSolveFindsExactSubset(t *testing.T) {
	sizes := []int{3, 5}
	subset, ok := Solve(8, sizes)
	if !ok {
		t.Fatal("Solve(8, [3,5]) = false, want true")
	}
	sum := 0
	seen := make(map[int]bool)
	for _, idx := range subset {
		if seen[idx] {
			t.Fatalf("index %d used twice in subset %v", idx, subset)
		}
		seen[idx] = true
		sum += sizes[idx]
	}
	if sum != 8 {
		t.Errorf("subset %v sums to %d, want 8", subset, sum)
	}
}

func TestSolveUnreachableTargetFails(t *testing.T) {
	// Subset sums of {3,5} are exactly {0,3,5,8}; 7 is not among them.
	_, ok := Solve(7, []int{3, 5})
	if ok {
		t.Fatal("Solve(7, [3,5]) = true, want false")
	}
}

func TestSolveWithRepeatedSizeValues(t *testing.T) {
	sizes := []int{4, 4, 2}
	subset, ok := Solve(6, sizes)
	if !ok {
		t.Fatal("Solve(6, [4,4,2]) = false, want true")
	}
	sum := 0
	for _, idx := range subset {
		sum += sizes[idx]
	}
	if sum != 6 {
		t.Errorf("subset %v sums to %d, want 6", subset, sum)
	}
}
