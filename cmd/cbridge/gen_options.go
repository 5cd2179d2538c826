package main

import (
	"fmt"
	"path/filepath"

	"cbridge/internal/driver"
	"cbridge/internal/pipeline"
	"cbridge/internal/project"
)

// genFlags are the command line settings of "cbridge gen". Zero values
// leave the manifest settings alone.
type genFlags struct {
	module    string
	language  string
	forceC    bool
	nocxx     bool
	noexcept  bool
	namespace string
	prefix    string
	includes  []string
	typemaps  []string
	outdir    string
	jobs      int
	ui        string
	format    string
	pathMode  string
	width     int
	timings   bool
	dryRun    bool
	noCache   bool
}

// buildRequest merges the manifest and the flags into a pipeline request.
// Positional inputs replace the manifest modules; cwd resolves paths given
// on the command line.
func buildRequest(m *project.Manifest, inputs []string, f genFlags, cwd string) (*pipeline.Request, error) {
	if m == nil && len(inputs) == 0 {
		return nil, fmt.Errorf("no declaration trees given and no %s found", project.ManifestName)
	}
	if f.module != "" && len(inputs) != 1 {
		return nil, fmt.Errorf("--module needs exactly one input")
	}
	if f.module != "" && !project.IsValidModuleIdent(f.module) {
		return nil, fmt.Errorf("invalid module name %q", f.module)
	}
	if f.jobs < 0 {
		return nil, fmt.Errorf("invalid --jobs %d", f.jobs)
	}

	base := driver.DefaultOptions()
	var gen project.GenerateConfig
	if m != nil {
		gen = m.Generate
	}
	lang, err := driver.ParseLanguage(gen.Language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	base.Language = lang
	if gen.Facade != nil {
		base.Facade = *gen.Facade
	}
	if gen.Exceptions != nil {
		base.Exceptions = *gen.Exceptions
	}
	base.Namespace = gen.Namespace
	base.Prefix = gen.Prefix
	base.Includes = append([]string(nil), gen.Includes...)

	if err := applyFlags(&base, f); err != nil {
		return nil, err
	}

	req := &pipeline.Request{
		Jobs:    gen.Jobs,
		Timings: f.timings,
		DryRun:  f.dryRun,
	}
	if f.jobs > 0 {
		req.Jobs = f.jobs
	}
	if m != nil {
		req.Typemaps = m.TypemapPaths()
	}
	for _, p := range f.typemaps {
		req.Typemaps = append(req.Typemaps, absFrom(cwd, p))
	}

	if len(inputs) > 0 {
		outDir := cwd
		if f.outdir != "" {
			outDir = absFrom(cwd, f.outdir)
		}
		for _, in := range inputs {
			req.Modules = append(req.Modules, pipeline.Module{
				Name:    f.module,
				Input:   absFrom(cwd, in),
				OutDir:  outDir,
				Options: cloneOptions(base),
			})
		}
		return req, nil
	}

	for _, spec := range m.Modules {
		opts := cloneOptions(base)
		// флаги командной строки сильнее настроек модуля
		if spec.Namespace != "" && f.namespace == "" {
			opts.Namespace = spec.Namespace
		}
		if spec.Prefix != "" && f.prefix == "" {
			opts.Prefix = spec.Prefix
		}
		opts.Includes = append(opts.Includes, spec.Includes...)
		outDir := m.OutDir(spec)
		if f.outdir != "" {
			outDir = absFrom(cwd, f.outdir)
		}
		req.Modules = append(req.Modules, pipeline.Module{
			Name:    spec.Name,
			Input:   m.InputPath(spec),
			OutDir:  outDir,
			Options: opts,
		})
	}
	return req, nil
}

func applyFlags(opts *driver.Options, f genFlags) error {
	if f.language != "" {
		lang, err := driver.ParseLanguage(f.language)
		if err != nil {
			return err
		}
		opts.Language = lang
	}
	if f.forceC {
		if f.language != "" && opts.Language != driver.LangC {
			return fmt.Errorf("--c conflicts with --language %s", f.language)
		}
		opts.Language = driver.LangC
	}
	if f.nocxx {
		opts.Facade = false
	}
	if f.noexcept {
		opts.Exceptions = false
	}
	if f.namespace != "" {
		opts.Namespace = f.namespace
	}
	if f.prefix != "" {
		opts.Prefix = f.prefix
	}
	opts.Includes = append(opts.Includes, f.includes...)
	return nil
}

func cloneOptions(o driver.Options) driver.Options {
	o.Includes = append([]string(nil), o.Includes...)
	return o
}

func absFrom(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

// moduleNames returns the names known before the trees are loaded. Trees
// without a name in the request show up once their first event arrives.
func moduleNames(req *pipeline.Request) []string {
	names := make([]string, 0, len(req.Modules))
	for _, m := range req.Modules {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}
