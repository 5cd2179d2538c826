package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/driver"
)

func importNode(module string) *decl.Node {
	return &decl.Node{Kind: decl.KindImport, Name: module, Import: module}
}

func saveTree(t *testing.T, dir string, tree *decl.Tree) string {
	t.Helper()
	path := filepath.Join(dir, tree.Module+".json")
	if err := decl.Save(path, tree); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

// writeProject writes base and shapes, where shapes imports base.
func writeProject(t *testing.T) (dir string, modules []Module) {
	t.Helper()
	dir = t.TempDir()
	base := decl.NewTree("base", true, decl.Class("Shape", nil, decl.Ctor(), decl.Dtor(), decl.Method("area", "double")))
	shapes := decl.NewTree("shapes", true, importNode("base"), decl.Func("unit", "double", decl.P("x", "double")))
	out := filepath.Join(dir, "out")
	// importers listed first: the run must reorder them
	return dir, []Module{
		{Input: saveTree(t, dir, shapes), OutDir: out, Options: driver.DefaultOptions()},
		{Input: saveTree(t, dir, base), OutDir: out, Options: driver.DefaultOptions()},
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestRunProject(t *testing.T) {
	dir, modules := writeProject(t)
	res, err := Run(context.Background(), &Request{Modules: modules, Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, m := range res.Modules {
		if m.Failed() {
			t.Fatalf("module %s failed: %v %v", m.Name, m.Err, m.Bag.Items())
		}
	}
	if res.Failed() {
		t.Errorf("result reports a failure")
	}
	if len(res.Order) != 2 || res.Order[0] != "base" || res.Order[1] != "shapes" {
		t.Errorf("order = %v, want [base shapes]", res.Order)
	}
	for _, name := range []string{"base_wrap.h", "base_wrap.cxx", "shapes_wrap.h", "shapes_wrap.cxx"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	header, err := os.ReadFile(filepath.Join(dir, "out", "shapes_wrap.h"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(header), "#include \"base_wrap.h\"\n") {
		t.Errorf("shapes header does not include base:\n%s", header)
	}
	if res.Modules[0].Output.Exceptions != driver.ExceptionsImported {
		t.Errorf("shapes exceptions = %v, want imported", res.Modules[0].Output.Exceptions)
	}
}

func TestRunDependencyFailed(t *testing.T) {
	dir := t.TempDir()
	shapes := decl.NewTree("shapes", true, importNode("base"), decl.Func("unit", "double"))
	modules := []Module{
		{Name: "base", Input: filepath.Join(dir, "missing.json"), OutDir: dir, Options: driver.DefaultOptions()},
		{Input: saveTree(t, dir, shapes), OutDir: dir, Options: driver.DefaultOptions()},
	}
	res, err := Run(context.Background(), &Request{Modules: modules})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	base, sh := res.Modules[0], res.Modules[1]
	if base.Err == nil || !hasCode(base.Bag, diag.IOLoadFileError) {
		t.Errorf("base: err %v, diagnostics %v", base.Err, base.Bag.Items())
	}
	if !sh.Skipped || sh.Output != nil {
		t.Errorf("shapes was generated despite a failed dependency")
	}
	if !hasCode(sh.Bag, diag.ProjDependencyFailed) {
		t.Errorf("shapes diagnostics = %v", sh.Bag.Items())
	}
	if !res.Failed() {
		t.Errorf("result does not report the failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "shapes_wrap.h")); err == nil {
		t.Errorf("skipped module wrote output")
	}
}

func TestRunPartialOutput(t *testing.T) {
	dir := t.TempDir()
	geo := decl.NewTree("geo", true,
		decl.Func("ok", "int", decl.P("x", "int")),
		decl.Func("logf", "void", decl.P("fmt", "p.q(const).char"), decl.P("", "...")),
	)
	user := decl.NewTree("user", true, importNode("geo"), decl.Func("use", "int"))
	modules := []Module{
		{Input: saveTree(t, dir, geo), OutDir: dir, Options: driver.DefaultOptions()},
		{Input: saveTree(t, dir, user), OutDir: dir, Options: driver.DefaultOptions()},
	}
	res, err := Run(context.Background(), &Request{Modules: modules})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := res.Modules[0]
	if !hasCode(m.Bag, diag.GenVarargs) {
		t.Fatalf("varargs not reported: %v", m.Bag.Items())
	}
	if m.Failed() {
		t.Fatalf("a skipped declaration failed the module: %v", m.Err)
	}
	if !m.HasErrors() || !res.HasErrors() {
		t.Errorf("the error is not reported")
	}
	header, err := os.ReadFile(filepath.Join(dir, "geo_wrap.h"))
	if err != nil {
		t.Fatalf("partial output not written: %v", err)
	}
	if !strings.Contains(string(header), "ok(") || strings.Contains(string(header), "logf") {
		t.Errorf("header:\n%s", header)
	}
	if u := res.Modules[1]; u.Skipped || u.Failed() {
		t.Errorf("importer skipped: %v", u.Bag.Items())
	}
}

func TestRunCycle(t *testing.T) {
	dir := t.TempDir()
	a := decl.NewTree("a", true, importNode("b"), decl.Func("fa", "int"))
	b := decl.NewTree("b", true, importNode("a"), decl.Func("fb", "int"))
	c := decl.NewTree("c", true, decl.Func("fc", "int"))
	modules := []Module{
		{Input: saveTree(t, dir, a), OutDir: dir, Options: driver.DefaultOptions()},
		{Input: saveTree(t, dir, b), OutDir: dir, Options: driver.DefaultOptions()},
		{Input: saveTree(t, dir, c), OutDir: dir, Options: driver.DefaultOptions()},
	}
	res, err := Run(context.Background(), &Request{Modules: modules})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, m := range res.Modules[:2] {
		if !m.Skipped || !hasCode(m.Bag, diag.ProjImportCycle) {
			t.Errorf("%s: skipped %v, diagnostics %v", m.Name, m.Skipped, m.Bag.Items())
		}
	}
	if res.Modules[2].Failed() {
		t.Errorf("independent module c failed: %v", res.Modules[2].Bag.Items())
	}
}

func TestRunDuplicateModule(t *testing.T) {
	dir := t.TempDir()
	first := saveTree(t, dir, decl.NewTree("geo", true, decl.Func("f", "int")))
	second := filepath.Join(dir, "other.json")
	if err := decl.Save(second, decl.NewTree("geo", true, decl.Func("g", "int"))); err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), &Request{
		Modules: []Module{{Input: first, OutDir: dir}, {Input: second, OutDir: dir}},
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Modules[0].Failed() {
		t.Errorf("first module failed: %v", res.Modules[0].Bag.Items())
	}
	dup := res.Modules[1]
	if !dup.Skipped || !hasCode(dup.Bag, diag.ProjDuplicateModule) {
		t.Errorf("duplicate: skipped %v, diagnostics %v", dup.Skipped, dup.Bag.Items())
	}
}

func TestRunCache(t *testing.T) {
	dir := t.TempDir()
	input := saveTree(t, dir, decl.NewTree("calc", true, decl.Func("add", "int", decl.P("a", "int"), decl.P("b", "int"))))
	cache, err := driver.NewOutputCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	req := &Request{
		Modules: []Module{{Input: input, OutDir: filepath.Join(dir, "out"), Options: driver.DefaultOptions()}},
		Cache:   cache,
		Timings: true,
	}

	first, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Modules[0].Cached {
		t.Fatalf("first run hit an empty cache")
	}
	if !hasCode(first.Modules[0].Bag, diag.ObsTimings) {
		t.Errorf("timings not reported")
	}

	second, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	m := second.Modules[0]
	if !m.Cached {
		t.Fatalf("second run missed the cache: %v", m.Bag.Items())
	}
	if m.Output.Header != first.Modules[0].Output.Header {
		t.Errorf("cached header differs")
	}

	// another option set is another entry
	req.Modules[0].Options.Prefix = "c"
	third, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if third.Modules[0].Cached {
		t.Errorf("changed options reused the cached output")
	}
}

func TestRunDryRun(t *testing.T) {
	dir, modules := writeProject(t)
	res, err := Run(context.Background(), &Request{Modules: modules, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed() {
		t.Fatalf("dry run failed")
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run created the output dir: %v", err)
	}
	if res.Modules[1].Output == nil || res.Modules[1].Output.Header == "" {
		t.Errorf("dry run produced no text")
	}
}

func TestRunProgress(t *testing.T) {
	_, modules := writeProject(t)
	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	if _, err := Run(context.Background(), &Request{Modules: modules, Progress: sink, DryRun: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	done := map[string]bool{}
	for _, ev := range events {
		if ev.Status == StatusDone {
			done[ev.Module] = true
		}
	}
	if !done["base"] || !done["shapes"] {
		t.Errorf("missing done events: %+v", events)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), &Request{}); !errors.Is(err, ErrNoModules) {
		t.Errorf("empty request: %v", err)
	}

	dir, modules := writeProject(t)
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[[typemap]]\nkind = \"nope\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(context.Background(), &Request{Modules: modules, Typemaps: []string{bad}}); err == nil {
		t.Errorf("bad typemap file accepted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, &Request{Modules: modules, DryRun: true}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run: %v", err)
	}
}
