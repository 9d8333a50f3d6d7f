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

import "strconv"

// offsetTerm renders a nonzero constant byte offset as " + N", or "" when
// the offset is zero — spec.md §4.8: "(omit the + O when O == 0)".
func offsetTerm(n int) string {
	if n == 0 {
		return ""
	}
	return " + " + strconv.Itoa(n)
}

// scalarExpr renders the body of a scalar accessor at a constant byte
// offset from base: `*reinterpret_cast<T*>(base + O)` (§4.8 "Scalar at
// fixed offset O").
func scalarExpr(ctype string, byteOffset int) string {
	return "*reinterpret_cast<" + ctype + "*>(base" + offsetTerm(byteOffset) + ")"
}

// ptrExpr renders a pointer-typed accessor with no dereference — used for
// the c_str() accessor of a fixed string (§4.8: "use reinterpret_cast with
// no dereference when the target type is a pointer").
func ptrExpr(ctype string, byteOffset int) string {
	return "reinterpret_cast<" + ctype + "*>(base" + offsetTerm(byteOffset) + ")"
}

// idxExpr computes the "Scalar in a fixed-array element" offset expression
// of §4.8: `O + idx_expr * sizeof(T)`, where idx_expr composes one index
// variable per enclosing array layer against that layer's element stride.
//
// strides[i] is the byte stride of the i-th enclosing layer (outermost
// first); idxVars[i] is that layer's loop variable name. "When all but the
// last array layer have length 1 or the type is byte-wide, the multiply is
// omitted" is realized here as: a stride of 1 never gets a "* stride" term,
// and a single-layer index composes with no addition at all.
func idxExpr(idxVars []string, strides []int) string {
	if len(idxVars) == 0 {
		return ""
	}
	out := ""
	for i, v := range idxVars {
		term := v
		if strides[i] != 1 {
			term = v + " * " + strconv.Itoa(strides[i])
		}
		if out == "" {
			out = term
		} else {
			out += " + " + term
		}
	}
	return out
}

// scalarArrayExpr renders `*reinterpret_cast<T*>(base + O + idx_expr)` for
// a scalar living inside a (possibly multi-dimensional) fixed array.
func scalarArrayExpr(ctype string, byteOffset int, idx string) string {
	inner := "base" + offsetTerm(byteOffset)
	if idx != "" {
		inner += " + " + idx
	}
	return "*reinterpret_cast<" + ctype + "*>(" + inner + ")"
}

// varBaseExpr renders `base + var_region_start + Σ stride_i * size_i(base)`
// (§4.7): the byte position of a variable-size leaf, measured from the
// struct's own base pointer. varRegionStart is layout.Layout.FixedSize;
// terms is the leaf's size chain.
func varBaseExpr(varRegionStart int, terms []termExpr) string {
	out := "base" + offsetTerm(varRegionStart)
	for _, t := range terms {
		call := t.SizeCall
		if t.Stride != 1 {
			call = strconv.Itoa(t.Stride) + " * " + call
		}
		out += " + " + call
	}
	return out
}

// termExpr is a rendered size-chain term: a call to a previously emitted
// size<i>(base) static method, plus its stride.
type termExpr struct {
	SizeCall string
	Stride   int
}
