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

// Command layoutc is the CLI collaborator spec.md §6 describes: it reads a
// schema file, selects a target struct, and writes the generated header
// to an output path. Exit code 0 on success, 1 on any fatal condition.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"

	"github.com/structview/layoutc"
	"github.com/structview/layoutc/cmd/layoutc/internal/gen"
	"github.com/structview/layoutc/schema"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("layoutc", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "path to the YAML schema file")
	target := fs.String("target", "", "name of the struct to compile a header for")
	outPath := fs.String("out", "", "path to write the generated header to")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *schemaPath == "" || *target == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "layoutc: -schema, -target, and -out are all required")
		return 1
	}

	data, err := os.ReadFile(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", &gen.ResourceError{Path: *schemaPath, Op: "reading", Err: err})
		return 1
	}

	prog, err := gen.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layoutc: %v\n", err)
		return 1
	}
	normalizeNames(prog)

	header, err := layoutc.Compile(prog, []string{*target})
	if err != nil {
		fmt.Fprintf(os.Stderr, "layoutc: %v\n", err)
		return 1
	}

	header = buildStamp(data) + header
	if err := os.WriteFile(*outPath, []byte(header), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", &gen.ResourceError{Path: *outPath, Op: "writing", Err: err})
		return 1
	}
	return 0
}

// buildStamp renders the `// layoutc:build <uuid> <fingerprint>` comment
// line prepended to every generated header: a fresh uuid per invocation
// (a collision-free run identifier, the same role github.com/google/uuid
// plays in the teacher's table benchmarks) plus a blake2b-256 fingerprint
// of the schema file's bytes, so a downstream build system can recognize
// an unchanged schema without diffing the generated header itself.
func buildStamp(schemaBytes []byte) string {
	sum := blake2b.Sum256(schemaBytes)
	return fmt.Sprintf("// layoutc:build %s %x\n", uuid.NewString(), sum[:8])
}

// normalizeNames NFC-normalizes every struct, field, and enum name before
// they are used as C++ identifiers, so a schema file saved with a
// decomposed Unicode form (e.g. from an editor that doesn't normalize on
// save) doesn't silently produce two differently-spelled identifiers for
// what its author considered the same name.
func normalizeNames(prog *schema.Program) {
	for _, sd := range prog.Structs {
		sd.Name = norm.NFC.String(sd.Name)
		for i := range sd.Fields {
			sd.Fields[i].Name = norm.NFC.String(sd.Fields[i].Name)
		}
	}
	for _, e := range prog.Enums {
		e.Name = norm.NFC.String(e.Name)
	}
}
