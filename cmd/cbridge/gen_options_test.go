package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cbridge/internal/diag"
	"cbridge/internal/driver"
	"cbridge/internal/project"
	"cbridge/internal/typemap"
)

func loadManifest(t *testing.T, text string) *project.Manifest {
	t.Helper()
	path := filepath.Join(t.TempDir(), project.ManifestName)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}

const twoModules = `
[generate]
language = "c++"
exceptions = false
namespace = "acme"
includes = ["common.h"]
typemaps = ["extra.toml"]
jobs = 3

[[module]]
name = "base"
input = "base.json"

[[module]]
name = "geo"
input = "geo.json"
namespace = "acme::geo"
includes = ["geo.h"]
`

func TestBuildRequestFromManifest(t *testing.T) {
	m := loadManifest(t, twoModules)
	req, err := buildRequest(m, nil, genFlags{}, "/work")
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if len(req.Modules) != 2 || req.Jobs != 3 {
		t.Fatalf("request = %+v", req)
	}
	base, geo := req.Modules[0], req.Modules[1]
	if base.Name != "base" || base.Input != filepath.Join(m.Root, "base.json") || base.OutDir != m.Root {
		t.Errorf("base = %+v", base)
	}
	o := base.Options
	if o.Language != driver.LangCXX || o.Exceptions || !o.Facade || o.Namespace != "acme" {
		t.Errorf("base options = %+v", o)
	}
	if geo.Options.Namespace != "acme::geo" {
		t.Errorf("module namespace lost: %q", geo.Options.Namespace)
	}
	if got := strings.Join(geo.Options.Includes, ","); got != "common.h,geo.h" {
		t.Errorf("geo includes = %s", got)
	}
	// модули не делят срез includes
	if got := strings.Join(base.Options.Includes, ","); got != "common.h" {
		t.Errorf("base includes = %s", got)
	}
	if len(req.Typemaps) != 1 || req.Typemaps[0] != filepath.Join(m.Root, "extra.toml") {
		t.Errorf("typemaps = %v", req.Typemaps)
	}
}

func TestBuildRequestFlagsOverride(t *testing.T) {
	m := loadManifest(t, twoModules)
	f := genFlags{
		namespace: "flat",
		prefix:    "p",
		nocxx:     true,
		outdir:    "out",
		jobs:      1,
		typemaps:  []string{"more.toml"},
		includes:  []string{"cli.h"},
		timings:   true,
		dryRun:    true,
	}
	req, err := buildRequest(m, nil, f, "/work")
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Jobs != 1 || !req.Timings || !req.DryRun {
		t.Errorf("request = %+v", req)
	}
	for _, mod := range req.Modules {
		o := mod.Options
		if o.Namespace != "flat" || o.Prefix != "p" || o.Facade {
			t.Errorf("%s options = %+v", mod.Name, o)
		}
		if mod.OutDir != filepath.Join("/work", "out") {
			t.Errorf("%s outdir = %s", mod.Name, mod.OutDir)
		}
	}
	if got := req.Typemaps[len(req.Typemaps)-1]; got != filepath.Join("/work", "more.toml") {
		t.Errorf("flag typemap = %s", got)
	}
}

func TestBuildRequestInputs(t *testing.T) {
	req, err := buildRequest(nil, []string{"trees/geo.json", "/abs/base.mp"}, genFlags{forceC: true, noexcept: true}, "/work")
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if len(req.Modules) != 2 {
		t.Fatalf("modules = %+v", req.Modules)
	}
	if req.Modules[0].Input != filepath.Join("/work", "trees", "geo.json") || req.Modules[1].Input != "/abs/base.mp" {
		t.Errorf("inputs = %s, %s", req.Modules[0].Input, req.Modules[1].Input)
	}
	o := req.Modules[0].Options
	if o.Language != driver.LangC || o.Exceptions || !o.Facade {
		t.Errorf("options = %+v", o)
	}
	if req.Modules[0].OutDir != "/work" {
		t.Errorf("outdir = %s", req.Modules[0].OutDir)
	}
	if names := moduleNames(req); len(names) != 0 {
		t.Errorf("unnamed inputs reported as %v", names)
	}

	req, err = buildRequest(nil, []string{"x.json"}, genFlags{module: "geo"}, "/work")
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if names := moduleNames(req); len(names) != 1 || names[0] != "geo" {
		t.Errorf("names = %v", names)
	}
}

func TestBuildRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		flags  genFlags
		msg    string
	}{
		{"nothing", nil, genFlags{}, "no declaration trees"},
		{"module with two inputs", []string{"a.json", "b.json"}, genFlags{module: "a"}, "exactly one input"},
		{"bad module", []string{"a.json"}, genFlags{module: "a-b"}, "invalid module name"},
		{"bad language", []string{"a.json"}, genFlags{language: "rust"}, "invalid language"},
		{"c conflict", []string{"a.json"}, genFlags{language: "c++", forceC: true}, "conflicts"},
		{"negative jobs", []string{"a.json"}, genFlags{jobs: -2}, "--jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildRequest(nil, tt.inputs, tt.flags, "/work")
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %v, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestModuleNameFor(t *testing.T) {
	tests := map[string]string{
		"geo":       "geo",
		"my-lib":    "my_lib",
		"2d.shapes": "_2d_shapes",
		"гео":       "module",
		"":          "module",
	}
	for dir, want := range tests {
		if got := moduleNameFor(dir); got != want {
			t.Errorf("moduleNameFor(%q) = %q, want %q", dir, got, want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestListTypemaps(t *testing.T) {
	var buf bytes.Buffer
	if err := listTypemaps(&buf, typemap.Defaults(), typemap.KindCType, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if out == "" || !strings.Contains(out, "(<builtin>)") {
		t.Fatalf("listing = %q", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "ctype") {
			t.Errorf("kind filter ignored: %q", line)
		}
	}
}

func TestWithoutTimings(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings, Message: "timings"})
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.GenVarargs, Message: "varargs"})
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.GenVarargs, Message: "varargs"})
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.GenVarargs, Message: "varargs"})
	got := withoutTimings(bag)
	if got.Len() != 2 || got.Items()[0].Code != diag.GenVarargs || !got.HasErrors() {
		t.Errorf("items = %+v", got.Items())
	}
	if withoutTimings(nil) != nil {
		t.Errorf("nil bag")
	}
}
