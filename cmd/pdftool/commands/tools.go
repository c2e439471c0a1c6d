package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"go-pdftools/cmd/pdftool/ui"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/processors"

	"github.com/spf13/cobra"
)

func init() {
	// Names and descriptions only; the registry used to run is built once
	// flags are parsed.
	for _, t := range processors.NewRegistry(processors.Config{}).Tools() {
		rootCmd.AddCommand(toolCommand(t))
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var rows [][]string
			for _, t := range registry.Tools() {
				files := "1"
				if t.MultiFile {
					files = "many"
				}
				rows = append(rows, []string{t.Name, files, t.Description})
			}
			ui.Table([]string{"TOOL", "FILES", "DESCRIPTION"}, rows)
		},
	})
}

func toolCommand(t processors.Tool) *cobra.Command {
	var sets []string
	use := t.Name + " FILE"
	argCheck := cobra.ExactArgs(1)
	if t.MultiFile {
		use = t.Name + " FILE..."
		argCheck = cobra.MinimumNArgs(1)
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: t.Description,
		Args:  argCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(optionsFile, sets)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bar := ui.NewProgressBar(t.Name)
			out, path, err := runTool(ctx, registry, t.Name, args, opts, outputDir, bar.Set)
			bar.Finish()
			if err != nil {
				return err
			}
			report(out, path)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "tool option as key=value, repeatable")
	return cmd
}

// runTool processes paths with the named tool and writes the result into
// dir. It returns the output and the path written.
func runTool(ctx context.Context, reg *processors.Registry, name string, paths []string, opts processor.Options, dir string, onProgress processor.ProgressFunc) (processor.Output, string, error) {
	p, ok := reg.New(name)
	if !ok {
		return processor.Output{}, "", fmt.Errorf("unknown tool %q", name)
	}

	files := make([]processor.File, 0, len(paths))
	for _, path := range paths {
		f, err := processor.OpenFile(path)
		if err != nil {
			return processor.Output{}, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
		}
		files = append(files, f)
	}

	if res := p.Validate(ctx, files); !res.Valid {
		if len(res.Errors) == 0 {
			return processor.Output{}, "", pdferr.New(pdferr.InvalidOptions, "validation failed", nil)
		}
		for _, e := range res.Errors[1:] {
			ui.Error("%s", describe(e))
		}
		return processor.Output{}, "", res.Errors[0]
	}

	out := p.Process(ctx, processor.Input{Files: files, Options: opts}, onProgress)
	if !out.Success {
		return out, "", out.Error
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return out, "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(dir, out.Filename)
	if err := os.WriteFile(target, out.Result, 0644); err != nil {
		return out, "", fmt.Errorf("write result: %w", err)
	}
	return out, target, nil
}

func report(out processor.Output, path string) {
	ui.Success("wrote %s (%s)", path, processor.FormatSize(int64(len(out.Result))))
	keys := make([]string, 0, len(out.Metadata))
	for k := range out.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ui.Detail(k, out.Metadata[k])
	}
}

func describe(e *pdferr.PDFError) string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		s += " (" + e.Details + ")"
	}
	return s
}
