package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/livyc/internal/compileerr"
	"github.com/cwbudde/livyc/internal/config"
	"github.com/cwbudde/livyc/internal/pipeline"
)

func runCompile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reading %s (encoding %s)...\n", filename, cfg.Encoding)
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return compileerr.CLI("reading %s: %v", filename, err)
	}

	source, err := config.DecodeSource(raw, cfg.Encoding)
	if err != nil {
		return err
	}

	if flagShowLex {
		return compileerr.CLI("--lex requires a lexer, which is an out-of-scope collaborator for this module (see cmd.Frontend)")
	}

	tree, err := Frontend(source, filename)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Parsed; running compiler pipeline...")
	}

	result, err := pipeline.Run(tree, pipeline.Options{
		SortDefs:       cfg.SortDefs,
		ExpansionLevel: cfg.ExpansionLevel,
		Compress:       cfg.Compress,
		LibMode:        cfg.LibMode,
		Encoding:       cfg.Encoding,
		ShowAST:        flagShowAST,
		ShowTypes:      flagShowTypes,
	})
	if err != nil {
		return err
	}

	if result.Halted {
		fmt.Println(result.Halt.Message)
		return nil
	}

	outFile := outputOverride
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".livy"
		} else {
			outFile = filename + ".livy"
		}
	}

	if err := os.WriteFile(outFile, result.Bytecode, 0o644); err != nil {
		return compileerr.CLI("writing %s: %v", outFile, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Bytecode written to %s (%d bytes)\n", outFile, len(result.Bytecode))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}
