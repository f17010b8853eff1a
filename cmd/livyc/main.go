// Command livyc is the thin driver shell around internal/pipeline
// (spec.md §6.1). It owns flag parsing, the optional `.livyc` project
// file, and reading/writing files; the lexer and parser that turn
// source text into a surface AST are out-of-scope collaborators (see
// cmd/livyc/cmd.Frontend).
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/livyc/cmd/livyc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
