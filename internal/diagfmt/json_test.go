package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"cbridge/internal/diag"
	"cbridge/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs, fileID := treeFileSet(t)

	bag := diag.NewBag(10)
	d := diag.NewError(diag.GenBadEnumValue, source.Pos{File: fileID, Line: 3, Col: 1}, "bad enum value")
	d = d.WithNote(source.Pos{File: fileID, Line: 1}, "in enum Color")
	bag.Add(d)

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, []ModuleBag{{Module: "geo", Bag: bag}}, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	// Парсим JSON чтобы убедиться что он валидный
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", output.Count)
	}

	got := output.Diagnostics[0]
	if got.Module != "geo" || got.Severity != "ERROR" || got.Code != "GEN1007" {
		t.Errorf("diagnostic = %+v", got)
	}
	if got.Location == nil || got.Location.File != "shape.h" || got.Location.Line != 3 || got.Location.Col != 1 {
		t.Errorf("location = %+v", got.Location)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "in enum Color" || got.Notes[0].Location.Line != 1 {
		t.Errorf("notes = %+v", got.Notes)
	}
}

func TestJSONOptions(t *testing.T) {
	fs, fileID := treeFileSet(t)
	bag := diag.NewBag(10)
	for i := 0; i < 3; i++ {
		d := diag.New(diag.SevWarning, diag.GenVarargs, source.Pos{File: fileID, Line: 2}, "varargs")
		bag.Add(d.WithNote(source.Pos{}, "skipped"))
	}
	timing := diag.New(diag.SevInfo, diag.ObsTimings, source.Pos{}, "timings")
	other := diag.NewBag(2)
	other.Add(timing.WithNote(source.Pos{}, `{"kind":"module"}`))

	// без позиций и заметок
	out := BuildDiagnosticsOutput([]ModuleBag{{Bag: bag}}, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Errorf("Max ignored: %d", out.Count)
	}
	if loc := out.Diagnostics[0].Location; loc == nil || loc.Line != 0 {
		t.Errorf("positions included without IncludePositions: %+v", loc)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Errorf("notes included without IncludeNotes")
	}

	// тайминги всегда несут заметку
	out = BuildDiagnosticsOutput([]ModuleBag{{Bag: other}, {Bag: nil}}, fs, JSONOpts{})
	if out.Count != 1 || len(out.Diagnostics[0].Notes) != 1 {
		t.Errorf("timings note dropped: %+v", out)
	}
	if out.Diagnostics[0].Location != nil {
		t.Errorf("position-less diagnostic has a location")
	}
}

func TestEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, nil, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n" {
		t.Errorf("empty output = %q", got)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, name := range []string{"auto", "absolute", "relative", "basename"} {
		m, ok := ParsePathMode(name)
		if !ok || m.String() != name {
			t.Errorf("ParsePathMode(%q) = %v, %v", name, m, ok)
		}
	}
	if _, ok := ParsePathMode("short"); ok {
		t.Errorf("unknown mode accepted")
	}
}
