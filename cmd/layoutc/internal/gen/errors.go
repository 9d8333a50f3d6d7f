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

package gen

import "fmt"

// ResourceError reports that the CLI could not acquire or release a
// filesystem resource it needs: the schema file could not be read, or the
// generated header could not be written. Kept distinct from a schema or
// layout problem, since retrying it (e.g. after fixing a permission)
// requires no change to the schema itself.
type ResourceError struct {
	Path string
	Op   string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("gen: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
