// Package ui provides terminal output helpers for the pdftool CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)

	quiet bool
)

// InitUI applies the color and quiet settings.
func InitUI(noColor, silent bool) {
	if noColor {
		color.NoColor = true
	}
	quiet = silent
}

// SetOutput redirects normal and error output.
func SetOutput(stdout, stderr io.Writer) {
	out, errOut = stdout, stderr
}

func Success(format string, args ...any) {
	successColor.Fprintf(out, "✓ "+format+"\n", args...)
}

func Error(format string, args ...any) {
	errorColor.Fprintf(errOut, "✗ "+format+"\n", args...)
}

func Warn(format string, args ...any) {
	warnColor.Fprintf(errOut, "! "+format+"\n", args...)
}

func Info(format string, args ...any) {
	if quiet {
		return
	}
	infoColor.Fprintf(out, format+"\n", args...)
}

// Detail prints a dimmed key/value line.
func Detail(key string, value any) {
	if quiet {
		return
	}
	dimColor.Fprintf(out, "  %-18s %v\n", key+":", value)
}

// Table displays rows under headers.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(sep, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// ProgressBar shows processor progress in percent.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a bar counting to 100. It draws nothing when the
// UI is quiet.
func NewProgressBar(description string) *ProgressBar {
	if quiet {
		return &ProgressBar{}
	}
	bar := progressbar.NewOptions64(
		100,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(errOut, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Set moves the bar to percent and shows message next to it.
func (p *ProgressBar) Set(percent int, message string) {
	if p.bar == nil {
		return
	}
	if message != "" {
		p.bar.Describe(message)
	}
	_ = p.bar.Set64(int64(percent))
}

func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
