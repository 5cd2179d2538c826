package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cbridge/internal/driver"
	"cbridge/internal/pipeline"
	"cbridge/internal/project"
)

var errGenerationFailed = errors.New("generation failed")

var genOpts genFlags

var genCmd = &cobra.Command{
	Use:   "gen [tree...]",
	Short: "Generate C wrappers",
	Long: `Generate the wrapper header and source for declaration trees (.json or
.msgpack). Without arguments the modules of the nearest cbridge.toml are
generated, dependencies first.`,
	RunE: runGen,
}

func init() {
	f := genCmd.Flags()
	f.StringVar(&genOpts.module, "module", "", "module name (single input only)")
	f.StringVar(&genOpts.language, "language", "", "input language (auto|c|c++)")
	f.BoolVar(&genOpts.forceC, "c", false, "treat the declarations as plain C")
	f.BoolVar(&genOpts.nocxx, "nocxx", false, "do not generate the C++ facade")
	f.BoolVar(&genOpts.noexcept, "noexcept", false, "let C++ exceptions escape the wrappers")
	f.StringVar(&genOpts.namespace, "namespace", "", "C++ namespace of the facade (a::b)")
	f.StringVar(&genOpts.prefix, "prefix", "", "prefix of every exported symbol")
	f.StringSliceVarP(&genOpts.includes, "include", "I", nil, "header included by the generated source")
	f.StringSliceVar(&genOpts.typemaps, "typemaps", nil, "extra typemap files")
	f.StringVarP(&genOpts.outdir, "outdir", "o", "", "output directory")
	f.IntVarP(&genOpts.jobs, "jobs", "j", 0, "modules generated in parallel (0 = GOMAXPROCS)")
	f.StringVar(&genOpts.ui, "ui", "auto", "progress UI (auto|on|off)")
	f.StringVar(&genOpts.format, "format", "pretty", "diagnostics format (pretty|json)")
	f.StringVar(&genOpts.pathMode, "path-mode", "auto", "paths in diagnostics (auto|absolute|relative|basename)")
	f.IntVar(&genOpts.width, "width", 0, "truncate diagnostic lines to this width (0 = off)")
	f.BoolVar(&genOpts.timings, "timings", false, "show timing information")
	f.BoolVar(&genOpts.dryRun, "dry-run", false, "generate without writing files")
	f.BoolVar(&genOpts.noCache, "no-cache", false, "bypass the output cache")
}

func runGen(cmd *cobra.Command, args []string) error {
	stopProfiles, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiles()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	f := genOpts
	switch f.format = strings.ToLower(f.format); f.format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", genOpts.format)
	}
	mode, err := readUIMode(f.ui)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	var manifest *project.Manifest
	if len(args) == 0 {
		path, ok, err := project.FindManifest(cwd)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no %s found (run \"cbridge init\" or pass declaration trees)", project.ManifestName)
		}
		if manifest, err = project.LoadManifest(path); err != nil {
			return err
		}
	}

	req, err := buildRequest(manifest, args, f, cwd)
	if err != nil {
		return err
	}
	root := cmd.Root().PersistentFlags()
	if req.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return err
	}
	quiet, err := root.GetBool("quiet")
	if err != nil {
		return err
	}
	if !f.noCache {
		cache, err := driver.OpenOutputCache("cbridge")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: output cache disabled: %v\n", err)
		} else {
			req.Cache = cache
		}
	}

	var res *pipeline.Result
	if f.format == "pretty" && !quiet && shouldUseTUI(mode) {
		res, err = runGenWithUI(cmd.Context(), "cbridge gen", moduleNames(req), req)
	} else {
		res, err = pipeline.Run(cmd.Context(), req)
	}
	if res != nil {
		if perr := printResult(cmd, res, f, quiet); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if res.Failed() || res.HasErrors() {
		return errGenerationFailed
	}
	return nil
}
