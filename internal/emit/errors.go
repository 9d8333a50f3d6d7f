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

import "fmt"

// OutputError reports that a struct named in the emission order has no
// corresponding planned layout, or some other bookkeeping mismatch between
// the planner's output and what Emit was asked to render — a caller bug,
// not a schema problem, so it is kept distinct from a [layout.SchemaTypeError].
type OutputError struct {
	Struct string
	Reason string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("emit: %s: %s", e.Struct, e.Reason)
}
