package commands

import (
	"context"
	"fmt"
	"os"

	"go-pdftools/cmd/pdftool/ui"
	"go-pdftools/internal/engine"
	"go-pdftools/internal/logging"
	"go-pdftools/internal/processors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	optionsFile string
	outputDir   string
	wasmPath    string
	verbose     bool
	quiet       bool
	noColor     bool

	logger   zerolog.Logger
	registry *processors.Registry
	closeEng func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "pdftool",
	Short: "Process PDF files from the command line",
	Long: `pdftool runs the same processors as the go-pdftools API against local files:
merge, split, compress, linearize, grid-combine, rotate, redact and conversion
to EPUB or MOBI. Results are written to the output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, quiet)

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger = logging.New(logging.Config{Level: level, Format: "console", Output: os.Stderr})

		var eng engine.Engine = engine.Native{}
		if wasmPath != "" {
			w, err := engine.LoadWasm(cmd.Context(), wasmPath, engine.WasmConfig{})
			if err != nil {
				return fmt.Errorf("load engine: %w", err)
			}
			eng = w
			closeEng = w.Close
		}
		registry = processors.NewRegistry(processors.Config{Engine: eng, Logger: logger})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeEng != nil {
			return closeEng(cmd.Context())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&optionsFile, "options", "f", "", "YAML file with tool options")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for result files")
	rootCmd.PersistentFlags().StringVar(&wasmPath, "engine-wasm", os.Getenv("ENGINE_WASM_PATH"), "WASI module serving compress and linearize")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print results and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
