package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cbridge/internal/diag"
	"cbridge/internal/source"
)

type palette struct {
	err, warn, info, code, path, note, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Bold),
		path:   color.New(color.Bold),
		note:   color.New(color.FgBlue),
		gutter: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.note, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes the diagnostics of bag in a human-readable form, one per
// block:
//
//	path:line:col: ERROR GEN1003: message
//	   12 | source line
//	  note: path:line: message
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts, p)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	var b strings.Builder
	if loc := location(d.Primary, fs, opts.PathMode); loc != "" {
		b.WriteString(p.path.Sprint(loc + ":"))
		b.WriteByte(' ')
	}
	if opts.Module != "" {
		fmt.Fprintf(&b, "[%s] ", opts.Module)
	}
	b.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
	b.WriteByte(' ')
	b.WriteString(p.code.Sprint(d.Code.ID()))
	b.WriteString(": ")
	b.WriteString(truncate(d.Message, opts.Width))
	b.WriteByte('\n')

	if opts.ShowPreview {
		if line, ok := sourceLine(d.Primary, fs); ok {
			fmt.Fprintf(&b, "%s %s\n", p.gutter.Sprintf("%5d |", d.Primary.Line), truncate(line, opts.Width))
		}
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			b.WriteString("  ")
			b.WriteString(p.note.Sprint("note:"))
			b.WriteByte(' ')
			if loc := location(n.Pos, fs, opts.PathMode); loc != "" {
				b.WriteString(loc + ": ")
			}
			b.WriteString(truncate(n.Msg, opts.Width))
			b.WriteByte('\n')
		}
	}
	_, _ = io.WriteString(w, b.String())
}

// location renders pos as path:line[:col]; empty for positions outside
// any file.
func location(pos source.Pos, fs *source.FileSet, mode PathMode) string {
	if fs == nil || pos.File == source.NoFileID {
		return ""
	}
	f := fs.Get(pos.File)
	if f == nil {
		return ""
	}
	path := f.FormatPath(mode.String(), fs.BaseDir())
	switch {
	case pos.Line == 0:
		return path
	case pos.Col == 0:
		return fmt.Sprintf("%s:%d", path, pos.Line)
	}
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

func sourceLine(pos source.Pos, fs *source.FileSet) (string, bool) {
	if fs == nil || !pos.IsValid() {
		return "", false
	}
	f := fs.Get(pos.File)
	if !f.HasContent() {
		return "", false
	}
	line := strings.TrimRight(f.GetLine(pos.Line), "\r\n")
	return line, line != ""
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// Summary counts errors and warnings over bags, e.g. "2 errors, 1 warning".
func Summary(bags ...*diag.Bag) string {
	var errs, warns int
	for _, bag := range bags {
		if bag == nil {
			continue
		}
		for _, d := range bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
		}
	}
	return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
