// Package output renders command results as tables, JSON or YAML, and
// prints colored status lines.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// ANSI colors keyed by status severity.
var severityColors = map[string]string{
	"info":    "\033[36m",
	"success": "\033[32m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

const colorReset = "\033[0m"

// Printer writes results in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. Color is forced off when NO_COLOR is set.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}
	return &Printer{out: out, format: format, color: color}
}

// DefaultPrinter writes tables to stdout.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, FormatTable, true)
}

func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Print outputs data in the configured format. In table format data must
// implement TableRenderer; anything else falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, renderer)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Status prints msg colored by severity (info, success, warning, error).
// Unknown severities print uncolored.
func (p *Printer) Status(severity, msg string) {
	code, ok := severityColors[severity]
	if !p.color || !ok {
		_, _ = fmt.Fprintln(p.out, msg)
		return
	}
	_, _ = fmt.Fprintf(p.out, "%s%s%s\n", code, msg, colorReset)
}

func (p *Printer) Success(msg string) { p.Status("success", msg) }
func (p *Printer) Warning(msg string) { p.Status("warning", msg) }
func (p *Printer) Error(msg string)   { p.Status("error", msg) }
