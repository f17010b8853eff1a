package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/livyc/internal/config"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	projectFile    string
	flagEncoding   string
	flagExpansion  int
	flagSortDefs   bool
	flagCompress   bool
	flagLibMode    bool
	flagShowLex    bool
	flagShowAST    bool
	flagShowTypes  bool
	outputOverride string
)

var rootCmd = &cobra.Command{
	Use:   "livyc [flags] file.livy",
	Short: "Livy language compiler",
	Long: `livyc compiles a Livy program to the bytecode format described in
spec.md: Hindley-Milner type inference, constant folding and inline
expansion, instruction generation, and a run-length-compressible binary
encoding.

Examples:
  # Compile a program to <file>.livy bytecode alongside the source
  livyc program.livy

  # Stop after inference and print the annotated tree
  livyc --types program.livy

  # Read Latin-1 source and compress the output
  livyc -e Latin-1 --compress program.livy`,
	Version: Version,
	Args:    cobra.ExactArgs(1),
	RunE:    runCompile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&projectFile, "project", ".livyc", "project file to seed option defaults from, if present")
	rootCmd.Flags().StringVarP(&flagEncoding, "encoding", "e", "", "source encoding (utf-8, iso8859-1); overrides the project file")
	rootCmd.Flags().IntVar(&flagExpansion, "expansion-level", 0, "inline expansion budget; overrides the project file")
	rootCmd.Flags().BoolVar(&flagSortDefs, "sort-defs", false, "topologically sort top-level definitions before inference")
	rootCmd.Flags().BoolVar(&flagCompress, "compress", false, "run-length compress the emitted bytecode")
	rootCmd.Flags().BoolVar(&flagLibMode, "lib-mode", false, "emit the bytecode header's library mode byte")
	rootCmd.Flags().BoolVar(&flagShowLex, "lex", false, "stop after lexing (reports an error: no lexer is wired into this build)")
	rootCmd.Flags().BoolVar(&flagShowAST, "ast", false, "stop after parsing and print the tree")
	rootCmd.Flags().BoolVar(&flagShowTypes, "types", false, "stop after inference and print the annotated tree")
	rootCmd.Flags().StringVarP(&outputOverride, "output", "o", "", "output file (default: <input>.livy)")
}

// loadConfig seeds option defaults from the project file (if present)
// before flag values, explicitly set on the command line, override them.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(projectFile); err == nil {
		cfg, err = config.Load(projectFile)
		if err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Encoding = flagEncoding
	}
	if flags.Changed("expansion-level") {
		cfg.ExpansionLevel = flagExpansion
	}
	if flags.Changed("sort-defs") {
		cfg.SortDefs = flagSortDefs
	}
	if flags.Changed("compress") {
		cfg.Compress = flagCompress
	}
	if flags.Changed("lib-mode") {
		cfg.LibMode = flagLibMode
	}
	return cfg, nil
}
