package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/project"
	"cbridge/internal/source"
	"cbridge/internal/typemap"
)

// loadTypemaps builds the typemap database: built-ins first, then every
// file in order. The returned bytes feed the cache key.
func loadTypemaps(paths []string) (*typemap.DB, []byte, error) {
	db := typemap.Defaults()
	var all bytes.Buffer
	for _, path := range paths {
		// #nosec G304 -- path comes from the manifest or the command line
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("typemaps: %w", err)
		}
		if err := db.LoadBytes(data, path); err != nil {
			return nil, nil, err
		}
		all.WriteString(path)
		all.WriteByte(0)
		all.Write(data)
		all.WriteByte(0)
	}
	return db, all.Bytes(), nil
}

// loadModule reads, decodes and links one declaration tree. Failures are
// reported to rep; the returned meta is usable either way.
func loadModule(m Module, fs *source.FileSet, rep diag.Reporter) (*decl.Tree, project.ModuleMeta, bool) {
	meta := project.ModuleMeta{
		Name:   m.Name,
		Input:  m.Input,
		OutDir: m.OutDir,
		Pos:    source.Pos{File: fs.Register(m.Input), Line: 1},
	}
	if meta.Name == "" {
		meta.Name = strings.TrimSuffix(filepath.Base(m.Input), filepath.Ext(m.Input))
	}

	format, err := decl.FormatForPath(m.Input)
	if err != nil {
		diag.ReportError(rep, diag.IODecodeTreeError, meta.Pos, err.Error()).Emit()
		return nil, meta, false
	}
	// #nosec G304 -- path comes from the manifest or the command line
	data, err := os.ReadFile(m.Input)
	if err != nil {
		diag.ReportError(rep, diag.IOLoadFileError, meta.Pos, fmt.Sprintf("cannot read declaration tree: %v", err)).Emit()
		return nil, meta, false
	}
	meta.ContentHash = project.HashBytes(data)

	tree, err := decl.Decode(bytes.NewReader(data), format)
	if err == nil {
		err = tree.Link(fs)
	}
	if err != nil {
		diag.ReportError(rep, diag.IODecodeTreeError, meta.Pos, fmt.Sprintf("%s: %v", m.Input, err)).Emit()
		return nil, meta, false
	}
	if m.Name == "" {
		meta.Name = tree.Module
	}
	if !project.IsValidModuleIdent(meta.Name) {
		diag.ReportError(rep, diag.ProjManifestInvalid, meta.Pos, fmt.Sprintf("invalid module name %q", meta.Name)).Emit()
		return nil, meta, false
	}
	meta.Imports = importMetas(tree)
	return tree, meta, true
}

// importMetas lists the import directives of tree with their positions.
func importMetas(tree *decl.Tree) []project.ImportMeta {
	var out []project.ImportMeta
	tree.Walk(func(n *decl.Node) bool {
		if n.Kind == decl.KindImport && n.Import != "" {
			out = append(out, project.ImportMeta{Name: n.Import, Pos: n.Pos()})
		}
		return n.Kind != decl.KindClass
	})
	return out
}

func firstError(bag *diag.Bag) *diag.Diagnostic {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			return &d
		}
	}
	return nil
}
