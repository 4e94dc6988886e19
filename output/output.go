// Package output renders Jobo API results as aligned tables, JSON or CSV.
package output

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/muesli/termenv"
)

// Format is an output encoding
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be 'table', 'json' or 'csv')", s)
	}
}

// Options controls table styling
type Options struct {
	Color      bool
	Hyperlinks bool
}

// Printer writes results to w in one format
type Printer struct {
	w      io.Writer
	format Format
	opts   Options
	term   *termenv.Output
}

// New creates a printer. Styling options only apply to table output.
func New(w io.Writer, format Format, opts Options) *Printer {
	return &Printer{
		w:      w,
		format: format,
		opts:   opts,
		term:   termenv.NewOutput(w),
	}
}

// Format returns the printer's output format
func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) bold(s string) string {
	if !p.opts.Color || s == "" {
		return s
	}
	return p.term.String(s).Bold().String()
}

func (p *Printer) faint(s string) string {
	if !p.opts.Color || s == "" {
		return s
	}
	return p.term.String(s).Faint().String()
}

func (p *Printer) colored(s, color string) string {
	if !p.opts.Color || s == "" {
		return s
	}
	return p.term.String(s).Foreground(p.term.Color(color)).String()
}

// link renders target as a terminal hyperlink labelled with a shortened URL
func (p *Printer) link(target string) string {
	const linkColor = "#87CEEB"

	target = strings.TrimSpace(target)
	if target == "" {
		return "-"
	}
	label := target
	if p.opts.Hyperlinks {
		label = shortURLLabel(target)
	}
	label = p.colored(label, linkColor)
	if p.opts.Hyperlinks {
		return p.term.Hyperlink(target, label)
	}
	return label
}

func shortURLLabel(raw string) string {
	const maxLen = 48
	label := raw
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		label = strings.TrimPrefix(parsed.Host, "www.") + parsed.Path
	}
	return truncate(label, maxLen)
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func boolString(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
