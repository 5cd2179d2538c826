package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// GenerateConfig is the [generate] section: defaults for every module.
type GenerateConfig struct {
	// Language is auto, c or c++.
	Language   string   `toml:"language"`
	Facade     *bool    `toml:"facade"`
	Exceptions *bool    `toml:"exceptions"`
	Namespace  string   `toml:"namespace"`
	Prefix     string   `toml:"prefix"`
	Typemaps   []string `toml:"typemaps"`
	Includes   []string `toml:"includes"`
	OutDir     string   `toml:"outdir"`
	Jobs       int      `toml:"jobs"`
}

// ModuleSpec describes one module entry in [[module]].
type ModuleSpec struct {
	Name      string   `toml:"name"`
	Input     string   `toml:"input"`
	OutDir    string   `toml:"outdir"`
	Includes  []string `toml:"includes"`
	Namespace string   `toml:"namespace"`
	Prefix    string   `toml:"prefix"`
}

// Manifest is a parsed cbridge.toml.
type Manifest struct {
	Path     string
	Root     string
	Generate GenerateConfig
	Modules  []ModuleSpec
}

var (
	// ErrModuleSectionMissing indicates a manifest without any module.
	ErrModuleSectionMissing = errors.New("missing [module]")
	// ErrInputMissing indicates a module without an input tree.
	ErrInputMissing = errors.New("missing input")
	// ErrDuplicateModule indicates two modules with one name.
	ErrDuplicateModule = errors.New("duplicate module")
)

type manifestFile struct {
	Generate GenerateConfig `toml:"generate"`
	Module   toml.Primitive `toml:"module"`
}

// LoadManifest parses a cbridge.toml. A single module may be given as
// [module], several as [[module]].
func LoadManifest(path string) (*Manifest, error) {
	var raw manifestFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("module") {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleSectionMissing)
	}

	var modules []ModuleSpec
	switch kind := meta.Type("module"); kind {
	case "Hash":
		var one ModuleSpec
		if err := meta.PrimitiveDecode(raw.Module, &one); err != nil {
			return nil, fmt.Errorf("%s: [module]: %w", path, err)
		}
		modules = []ModuleSpec{one}
	case "ArrayHash":
		if err := meta.PrimitiveDecode(raw.Module, &modules); err != nil {
			return nil, fmt.Errorf("%s: [[module]]: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: module must be a table, got %s", path, kind)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleSectionMissing)
	}

	seen := make(map[string]struct{}, len(modules))
	for i := range modules {
		m := &modules[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Input = strings.TrimSpace(m.Input)
		if !IsValidModuleIdent(m.Name) {
			return nil, fmt.Errorf("%s: invalid module name %q", path, m.Name)
		}
		if m.Input == "" {
			return nil, fmt.Errorf("%s: module %q: %w", path, m.Name, ErrInputMissing)
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%s: %w %q", path, ErrDuplicateModule, m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	if raw.Generate.Jobs < 0 {
		return nil, fmt.Errorf("%s: invalid [generate].jobs %d", path, raw.Generate.Jobs)
	}

	return &Manifest{
		Path:     path,
		Root:     filepath.Dir(path),
		Generate: raw.Generate,
		Modules:  modules,
	}, nil
}

// Resolve makes a manifest-relative path absolute.
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Root, filepath.FromSlash(path))
}

// InputPath returns the declaration tree of spec.
func (m *Manifest) InputPath(spec ModuleSpec) string {
	return m.Resolve(spec.Input)
}

// OutDir returns where the files of spec are written.
func (m *Manifest) OutDir(spec ModuleSpec) string {
	switch {
	case spec.OutDir != "":
		return m.Resolve(spec.OutDir)
	case m.Generate.OutDir != "":
		return m.Resolve(m.Generate.OutDir)
	}
	return m.Root
}

// TypemapPaths returns the extra typemap files in load order.
func (m *Manifest) TypemapPaths() []string {
	out := make([]string, len(m.Generate.Typemaps))
	for i, p := range m.Generate.Typemaps {
		out[i] = m.Resolve(p)
	}
	return out
}

// Lookup finds a module by name.
func (m *Manifest) Lookup(name string) (ModuleSpec, bool) {
	for _, spec := range m.Modules {
		if spec.Name == name {
			return spec, true
		}
	}
	return ModuleSpec{}, false
}

// StarterManifest is the manifest written by "cbridge init".
func StarterManifest(module, input string) string {
	var b strings.Builder
	b.WriteString("# cbridge project manifest\n\n")
	b.WriteString("[generate]\n")
	b.WriteString("language = \"auto\"\n")
	b.WriteString("facade = true\n")
	b.WriteString("exceptions = true\n")
	b.WriteString("# namespace = \"acme::geo\"\n")
	b.WriteString("# prefix = \"geo\"\n")
	b.WriteString("# typemaps = [\"typemaps.toml\"]\n")
	b.WriteString("outdir = \"gen\"\n\n")
	b.WriteString("[[module]]\n")
	fmt.Fprintf(&b, "name = %q\n", module)
	fmt.Fprintf(&b, "input = %q\n", input)
	b.WriteString("# includes = [\"" + module + ".h\"]\n")
	return b.String()
}
