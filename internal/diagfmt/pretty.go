package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"coral/internal/diag"
	"coral/internal/source"
)

// PrettyOpts controls human-readable rendering.
type PrettyOpts struct {
	Color bool
}

// Pretty renders diagnostics for humans: one line per diagnostic in
// <path>:<line>:<col>: <SEV> <CODE>: <message> form, notes indented
// underneath. Call bag.Sort() first for deterministic order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			position(fs, d.Primary),
			severityLabel(d.Severity, opts.Color),
			d.Code, d.Message)
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", position(fs, note.Span), note.Msg)
		}
	}
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	path, lc := fs.Position(sp)
	if path == "" {
		return sp.String()
	}
	return fmt.Sprintf("%s:%d:%d", path, lc.Line, lc.Col)
}

func severityLabel(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(sev.String())
	case diag.SevWarning:
		return color.New(color.FgYellow).Sprint(sev.String())
	default:
		return color.New(color.FgCyan).Sprint(sev.String())
	}
}
