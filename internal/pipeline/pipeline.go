// Package pipeline generates the wrappers of a whole project: it loads the
// declaration trees, orders the modules by their imports and runs the
// module driver on independent modules concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/driver"
	"cbridge/internal/observ"
	"cbridge/internal/project"
	"cbridge/internal/project/dag"
	"cbridge/internal/source"
	"cbridge/internal/trace"
	"cbridge/internal/typemap"
)

// ErrNoModules is returned for a request without modules.
var ErrNoModules = errors.New("no modules to generate")

const defaultMaxDiagnostics = 200

// Module is one declaration tree to wrap.
type Module struct {
	// Name overrides the module name of the tree when set.
	Name    string
	Input   string
	OutDir  string
	Options driver.Options
}

// Request configures a pipeline run.
type Request struct {
	Modules        []Module
	Typemaps       []string
	Jobs           int
	MaxDiagnostics int
	Cache          *driver.OutputCache
	Progress       ProgressSink
	Timings        bool
	// DryRun generates without writing any file.
	DryRun bool
}

// ModuleResult is the outcome for one module.
type ModuleResult struct {
	Name    string
	Input   string
	OutDir  string
	Bag     *diag.Bag
	Output  *driver.Result
	Timer   *observ.Timer
	Cached  bool
	Skipped bool
	Err     error
}

// Failed reports whether the module produced no usable output. Errors
// confined to single declarations still leave a partial output.
func (m *ModuleResult) Failed() bool {
	return m.Err != nil || m.Skipped || m.Output == nil
}

// HasErrors reports error diagnostics, including those of a partial
// output.
func (m *ModuleResult) HasErrors() bool {
	return m.Bag != nil && m.Bag.HasErrors()
}

// Result is the outcome of Run.
type Result struct {
	// Modules follow the order of Request.Modules.
	Modules []*ModuleResult
	Files   *source.FileSet
	// Order lists the generated modules, dependencies first.
	Order []string
}

// Failed reports whether any module failed.
func (r *Result) Failed() bool {
	for _, m := range r.Modules {
		if m.Failed() {
			return true
		}
	}
	return false
}

// HasErrors reports whether any module reported an error.
func (r *Result) HasErrors() bool {
	for _, m := range r.Modules {
		if m.HasErrors() {
			return true
		}
	}
	return false
}

// Run generates every module of req. Module failures are reported in the
// module bags; the returned error is reserved for problems that stop the
// whole run (typemap files, cancellation).
func Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || len(req.Modules) == 0 {
		return nil, ErrNoModules
	}
	ctx, root := trace.Start(ctx, trace.ScopeDriver, "pipeline")
	defer root.End("")

	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}

	db, typemapData, err := loadTypemaps(req.Typemaps)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Modules: make([]*ModuleResult, len(req.Modules)),
		Files:   source.NewFileSet(),
	}
	trees := make([]*decl.Tree, len(req.Modules))
	metas := make([]project.ModuleMeta, len(req.Modules))
	nodes := make([]dag.ModuleNode, len(req.Modules))

	_, loadSpan := trace.Start(ctx, trace.ScopePass, "load")
	for i, m := range req.Modules {
		mr := &ModuleResult{
			Name:   m.Name,
			Input:  m.Input,
			OutDir: m.OutDir,
			Bag:    diag.NewBag(maxDiag),
			Timer:  observ.NewTimer(),
		}
		res.Modules[i] = mr
		rep := diag.BagReporter{Bag: mr.Bag}
		emit(req.Progress, mr.Name, StageLoad, StatusWorking, nil, 0)

		idx := mr.Timer.Begin("load")
		tree, meta, ok := loadModule(m, res.Files, rep)
		mr.Timer.End(idx, "")
		mr.Name = meta.Name
		trees[i], metas[i] = tree, meta
		nodes[i] = dag.ModuleNode{Meta: meta, Reporter: rep, Broken: !ok}
		if !ok {
			mr.Err = fmt.Errorf("%s: cannot load %s", meta.Name, m.Input)
			nodes[i].FirstErr = firstError(mr.Bag)
			emit(req.Progress, mr.Name, StageLoad, StatusError, mr.Err, 0)
			continue
		}
		emit(req.Progress, mr.Name, StageLoad, StatusQueued, nil, 0)
	}
	loadSpan.End(fmt.Sprintf("%d modules", len(req.Modules)))

	idx := dag.BuildIndex(metas)
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, topo)
	hashed := computeModuleHashes(graph, slots, topo)

	// slot -> first module with that name; later duplicates never run
	owner := make(map[dag.ModuleID]int, len(metas))
	for i, meta := range metas {
		id := idx.NameToID[meta.Name]
		if _, seen := owner[id]; !seen {
			owner[id] = i
		}
	}
	scheduled := make([]bool, len(req.Modules))

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, batch := range topo.DependencyBatches() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(batch)))
		for _, id := range batch {
			i := owner[id]
			scheduled[i] = true
			mr := res.Modules[i]
			if mr.Err != nil {
				continue
			}
			if dependencyBroken(graph, slots, id) {
				mr.Skipped = true
				emit(req.Progress, mr.Name, StageGenerate, StatusSkipped, nil, 0)
				continue
			}
			tree, meta, mod := trees[i], slots[int(id)].Meta, req.Modules[i]
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				runModule(gctx, req, db, typemapData, hashed, tree, meta, mod, mr)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return res, err
		}
		for _, id := range batch {
			mr := res.Modules[owner[id]]
			slot := &slots[int(id)]
			slot.Broken = mr.Failed()
			slot.FirstErr = firstError(mr.Bag)
			if !slot.Broken {
				res.Order = append(res.Order, mr.Name)
			}
		}
	}
	dag.ReportBrokenDeps(idx, slots)

	for i, mr := range res.Modules {
		if !scheduled[i] && mr.Err == nil {
			// duplicate name or import cycle, both reported already
			mr.Skipped = true
			emit(req.Progress, mr.Name, StageGenerate, StatusSkipped, nil, 0)
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func dependencyBroken(g dag.Graph, slots []dag.ModuleSlot, id dag.ModuleID) bool {
	for _, to := range g.Edges[int(id)] {
		if slots[int(to)].Broken {
			return true
		}
	}
	return false
}

// runModule generates one module. Everything it touches is owned by mr.
func runModule(ctx context.Context, req *Request, db *typemap.DB, typemapData []byte, hashed bool,
	tree *decl.Tree, meta project.ModuleMeta, mod Module, mr *ModuleResult) {
	ctx, span := trace.Start(ctx, trace.ScopeModule, meta.Name)
	// наследованные члены могут дать одну и ту же диагностику дважды
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: mr.Bag})
	started := time.Now()
	status := StatusDone
	defer func() {
		if req.Timings {
			driver.AppendTimingDiagnostic(mr.Bag, driver.NewTimingPayload("module", meta.Name, mr.Timer))
		}
		span.End(string(status))
		emit(req.Progress, meta.Name, StageWrite, status, mr.Err, time.Since(started))
	}()

	opts := mod.Options
	opts.Module = meta.Name

	useCache := req.Cache != nil && hashed
	var key project.Digest
	if useCache {
		key = driver.CacheKey(meta.ModuleHash, typemapData, opts)
		idx := mr.Timer.Begin("cache")
		out, ok, err := req.Cache.Get(key)
		note := "miss"
		switch {
		case err != nil:
			note = "error"
			diag.ReportWarning(rep, diag.IOLoadFileError, meta.Pos, fmt.Sprintf("output cache: %v", err)).Emit()
		case ok:
			note = "hit"
			mr.Output, mr.Cached = out, true
			status = StatusCached
		}
		mr.Timer.End(idx, note)
	}

	if mr.Output == nil {
		emit(req.Progress, meta.Name, StageGenerate, StatusWorking, nil, 0)
		idx := mr.Timer.Begin("generate")
		out, err := driver.Generate(ctx, tree, db, opts, rep)
		if err != nil {
			mr.Timer.End(idx, "failed")
			mr.Err = err
			status = StatusError
			return
		}
		mr.Timer.End(idx, fmt.Sprintf("%d wrappers", out.Wrappers))
		mr.Output = out
		if useCache && !mr.Bag.HasWarnings() {
			if err := req.Cache.Put(key, out); err != nil {
				diag.ReportWarning(rep, diag.IOWriteFileError, meta.Pos, fmt.Sprintf("output cache: %v", err)).Emit()
			}
		}
	}
	if mr.Bag.HasErrors() {
		// skipped declarations; the rest of the module is still written
		status = StatusError
	}
	if req.DryRun {
		return
	}

	emit(req.Progress, meta.Name, StageWrite, StatusWorking, nil, 0)
	_, pass := trace.Start(ctx, trace.ScopePass, "write")
	idx := mr.Timer.Begin("write")
	err := mr.Output.Write(mr.OutDir)
	mr.Timer.End(idx, mr.OutDir)
	pass.End("")
	if err != nil {
		diag.ReportError(rep, diag.IOWriteFileError, meta.Pos, err.Error()).Emit()
		mr.Err = err
		status = StatusError
	}
}
