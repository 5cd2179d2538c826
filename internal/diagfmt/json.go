package diagfmt

import (
	"encoding/json"
	"io"

	"cbridge/internal/diag"
	"cbridge/internal/source"
)

// LocationJSON is a position in a declaration file.
type LocationJSON struct {
	File string `json:"file,omitempty"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Module   string        `json:"module,omitempty"`
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(pos source.Pos, fs *source.FileSet, opts JSONOpts) *LocationJSON {
	if fs == nil || pos.File == source.NoFileID {
		return nil
	}
	f := fs.Get(pos.File)
	if f == nil {
		return nil
	}
	loc := &LocationJSON{File: f.FormatPath(opts.PathMode.String(), fs.BaseDir())}
	if opts.IncludePositions {
		loc.Line = pos.Line
		loc.Col = pos.Col
	}
	return loc
}

// ModuleBag pairs a bag with the module it belongs to.
type ModuleBag struct {
	Module string
	Bag    *diag.Bag
}

// BuildDiagnosticsOutput collects the diagnostics of bags without
// serialising them. Max counts over all bags.
func BuildDiagnosticsOutput(bags []ModuleBag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, mb := range bags {
		if mb.Bag == nil {
			continue
		}
		for _, d := range mb.Bag.Items() {
			if opts.Max > 0 && len(diagnostics) >= opts.Max {
				break
			}
			dj := DiagnosticJSON{
				Module:   mb.Module,
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Message:  d.Message,
				Location: makeLocation(d.Primary, fs, opts),
			}
			// заметки таймингов содержат сам отчёт
			if (opts.IncludeNotes || d.Code == diag.ObsTimings) && len(d.Notes) > 0 {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, note := range d.Notes {
					dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Pos, fs, opts)}
				}
			}
			diagnostics = append(diagnostics, dj)
		}
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON writes the diagnostics of bags as one indented JSON document.
func JSON(w io.Writer, bags []ModuleBag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bags, fs, opts))
}
