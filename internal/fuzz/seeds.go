package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"cbridge/internal/decl"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 256 << 10
)

// seedTrees are small modules covering classes, inheritance, overloads
// and plain C.
func seedTrees() []*decl.Tree {
	shape := decl.Class("Shape", nil,
		decl.Ctor(),
		decl.Dtor(),
		decl.Method("area", "double"),
		decl.Var("id", "int"),
	)
	circle := decl.Class("Circle", []string{"Shape"},
		decl.Ctor(decl.P("r", "double")),
		decl.Method("radius", "double"),
	)
	return []*decl.Tree{
		decl.NewTree("geo", true, shape, circle,
			decl.Func("set", "void", decl.P("v", "int")),
			decl.Func("set", "void", decl.P("v", "double")),
		),
		decl.NewTree("pts", false,
			decl.Class("Point", nil, decl.Var("x", "int"), decl.Var("y", "int")),
			decl.Func("dist", "double", decl.P("p", "p.Point")),
		),
		decl.NewTree("empty", true),
	}
}

// addTreeSeeds adds every seed tree in format, plus the trees found under
// testdata.
func addTreeSeeds(f *testing.F, format decl.Format) {
	for _, tree := range seedTrees() {
		var buf bytes.Buffer
		if err := decl.Encode(&buf, tree, format); err != nil {
			f.Fatalf("encode seed %s: %v", tree.Module, err)
		}
		f.Add(clampSeed(buf.Bytes()))
	}
	f.Add([]byte{})
	addTestdataSeeds(f, format)
}

func addTestdataSeeds(f *testing.F, format decl.Format) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if got, err := decl.FormatForPath(path); err != nil || got != format {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
