package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetReservesNoFileID(t *testing.T) {
	fs := NewFileSet()
	if fs.Len() != 0 {
		t.Fatalf("expected empty set, got %d files", fs.Len())
	}
	id := fs.AddVirtual("a.h", []byte("int x;\n"))
	if id == NoFileID {
		t.Fatalf("first file must not get NoFileID")
	}
	if fs.Path(NoFileID) != "" {
		t.Errorf("NoFileID must have no path, got %q", fs.Path(NoFileID))
	}
	if fs.Get(FileID(42)) != nil {
		t.Errorf("unknown id must return nil")
	}
}

func TestFileSetRegisterIsStable(t *testing.T) {
	fs := NewFileSet()
	a := fs.Register("include/shape.h")
	b := fs.Register("include/../include/shape.h")
	if a != b {
		t.Fatalf("expected same id for equivalent paths, got %d and %d", a, b)
	}
	if fs.Register("") != NoFileID {
		t.Errorf("empty path must map to NoFileID")
	}
	f := fs.Get(a)
	if f.HasContent() {
		t.Errorf("registered file must not claim content")
	}
	if got := f.GetLine(1); got != "" {
		t.Errorf("content-less file returned line %q", got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.h")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("int a;\r\nint b;\r\n")...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 {
		t.Errorf("expected FileHadBOM flag")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected FileNormalizedCRLF flag")
	}
	if string(f.Content) != "int a;\nint b;\n" {
		t.Errorf("unexpected content %q", f.Content)
	}
	if latest, ok := fs.GetLatest(path); !ok || latest != id {
		t.Errorf("GetLatest = %d,%v want %d", latest, ok, id)
	}
}

func TestFileSetLoadMissing(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.h")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileSetLoadContent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vec.h"), []byte("struct Vec;\nint len(Vec*);\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id := fs.Register("vec.h")
	missing := fs.Register("nowhere.h")
	fs.LoadContent()

	if got := fs.Get(id).GetLine(2); got != "int len(Vec*);" {
		t.Errorf("line 2 = %q", got)
	}
	if fs.Get(missing).HasContent() {
		t.Errorf("missing file must stay content-less")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.h", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFormatPath(t *testing.T) {
	f := &File{Path: "include/geometry/shape.h"}
	tests := []struct {
		mode string
		want string
	}{
		{"basename", "shape.h"},
		{"auto", "include/geometry/shape.h"},
		{"", "include/geometry/shape.h"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := f.FormatPath(tt.mode, ""); got != tt.want {
				t.Errorf("FormatPath(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestPosOrdering(t *testing.T) {
	a := Pos{File: 1, Line: 3}
	b := Pos{File: 1, Line: 3, Col: 2}
	c := Pos{File: 2, Line: 1}
	if !a.Before(b) || !b.Before(c) || c.Before(a) {
		t.Errorf("unexpected ordering of %v %v %v", a, b, c)
	}
	if NoPos.IsValid() {
		t.Errorf("NoPos must be invalid")
	}
	if a.String() != "1:3" || b.String() != "1:3:2" {
		t.Errorf("unexpected String(): %q %q", a.String(), b.String())
	}
}
