// Package driver generates the C wrappers of one module: it walks the
// declaration tree, hands every declaration to the flat emitter and the
// façade, and frames the collected sections into a header and a source.
package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"cbridge/internal/backend/facade"
	"cbridge/internal/backend/flat"
	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/symbols"
	"cbridge/internal/trace"
	"cbridge/internal/typemap"
)

// Result is the generated text of one module.
type Result struct {
	Module     string
	HeaderName string
	SourceName string
	Header     string
	Source     string
	// Wrappers counts the generated wrapper functions.
	Wrappers   int
	Exceptions ExceptionMode
}

// Generate produces the wrappers of tree. Diagnostics go to rep as they
// are found; a non-nil error means the module must not be written.
//
// Generation records its state on the nodes, so a tree is generated once.
func Generate(ctx context.Context, tree *decl.Tree, db *typemap.DB, opts Options, rep diag.Reporter) (res *Result, err error) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if db == nil {
		db = typemap.Defaults()
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "generate "+tree.Module, trace.CurrentSpan(ctx).SpanID)
	defer func() {
		if err != nil {
			span.End("failed")
			return
		}
		span.WithExtra("wrappers", strconv.Itoa(res.Wrappers)).End("")
	}()

	if err := tree.Link(nil); err != nil {
		return nil, fmt.Errorf("%s: %w", tree.Module, err)
	}
	s := opts.resolve(tree.Module, tree.CPlusPlus)

	mode := ExceptionsDisabled
	if s.exceptions {
		mode = ExceptionsEnabled
		if namedImport(tree.Children) {
			mode = ExceptionsImported
		}
	}
	if mode == ExceptionsEnabled {
		if _, ok := tree.LookupClass(flat.ExceptionClass); !ok {
			if err := tree.Prepend(exceptionClass(), nil); err != nil {
				return nil, fmt.Errorf("%s: %w", s.module, err)
			}
		}
	}

	p := &parts{runtime: runtimeSection(s, mode)}
	var checks facade.Checks
	if s.facade {
		p.cxx = &facade.Sections{}
		if mode != ExceptionsDisabled {
			checks = facade.SwigChecks
		}
		if mode == ExceptionsEnabled {
			facade.WriteCheckHelpers(p.cxx)
		}
	}

	td := tree.Typedefs()
	names := symbols.NewResolver(symbols.Options{Module: s.module, Prefix: s.prefix}, tree, td)
	em := flat.New(flat.Config{
		Options: flat.Options{
			CPlusPlus:  s.cplusplus,
			Prefix:     s.prefix,
			Exceptions: mode != ExceptionsDisabled,
		},
		Sections: &p.flat,
		Facade:   p.cxx,
		Checks:   checks,
		Lookup:   db.Scope(td),
		Resolver: names,
		Enums:    tree,
		Classes:  tree,
		Typedefs: td,
		Reporter: rep,
	})

	g := &generator{
		ctx:    ctx,
		s:      s,
		mode:   mode,
		emit:   em,
		rep:    rep,
		tracer: tracer,
		span:   span.ID(),
		parts:  p,
	}
	if err := g.visit(flat.Scope{}, tree.Children); err != nil {
		return nil, &FatalError{Module: s.module, Err: err}
	}

	return &Result{
		Module:     s.module,
		HeaderName: s.headerName,
		SourceName: s.sourceName,
		Header:     frameHeader(s, p),
		Source:     frameSource(s, p),
		Wrappers:   em.Wrappers(),
		Exceptions: mode,
	}, nil
}

// generator walks one tree. The scope is passed by value, so returning
// from a class restores the enclosing one.
type generator struct {
	ctx    context.Context
	s      settings
	mode   ExceptionMode
	emit   *flat.Emitter
	rep    diag.Reporter
	tracer trace.Tracer
	span   uint64
	parts  *parts
}

func (g *generator) visit(sc flat.Scope, nodes []*decl.Node) error {
	for _, n := range nodes {
		if err := g.ctx.Err(); err != nil {
			return err
		}
		if err := g.node(sc, n); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) node(sc flat.Scope, n *decl.Node) error {
	if n.IsIgnored() {
		return nil
	}
	switch n.Kind {
	case decl.KindClass:
		return g.class(sc, n)
	case decl.KindFunction, decl.KindConstructor, decl.KindDestructor:
		return g.emit.Function(sc, n)
	case decl.KindVariable:
		return g.emit.Variable(sc, n)
	case decl.KindEnum:
		return g.emit.Enum(sc, n)
	case decl.KindConstant:
		return g.emit.Constant(n)
	case decl.KindImport:
		// imported declarations are only known, never wrapped
		g.importDirective(n)
	case decl.KindInclude, decl.KindNamespace, decl.KindExtend:
		return g.visit(sc, n.Children)
	case decl.KindTypedef, decl.KindEnumItem:
	default:
		diag.ReportWarning(g.rep, diag.GenUnsupportedNode, n.Pos(),
			fmt.Sprintf("%s %s is not supported, ignored", n.Kind, n.Name)).Emit()
	}
	return nil
}

func (g *generator) class(sc flat.Scope, n *decl.Node) error {
	if n.ForwardDecl {
		return nil
	}
	if n.Name == flat.ExceptionClass && g.mode == ExceptionsImported {
		diag.ReportInfo(g.rep, diag.GenExceptionClassSkip, n.Pos(),
			n.Name+" is wrapped by an imported module").Emit()
		return nil
	}

	span := trace.Begin(g.tracer, trace.ScopeNode, n.Name, g.span)
	defer span.End("")

	inner, ok := g.emit.OpenClass(sc, n)
	if !ok {
		return nil
	}
	defer g.emit.CloseClass(inner)
	return g.visit(inner, flat.Members(n))
}

// importDirective includes the header of the imported module. Its name is
// guessed from ours, all generated headers sharing one directory.
func (g *generator) importDirective(n *decl.Node) {
	if n.Import == "" {
		return
	}
	header := strings.Replace(filepath.Base(g.s.headerName), g.s.module, n.Import, 1)
	fmt.Fprintf(&g.parts.cheader, "#include \"%s\"\n", header)
}
