// Package flat emits the C-callable layer of a module: one wrapper function
// per function-like declaration, extern declarations or accessors for
// variables, C enums, constant macros and, for C input, struct definitions.
//
// Output goes to three sections. Types and Decls end up in the generated
// header, Wrappers in the generated source.
package flat

import (
	"fmt"
	"strings"

	"cbridge/internal/backend/facade"
	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
	"cbridge/internal/symbols"
	"cbridge/internal/typemap"
	"cbridge/internal/types"
)

const indent = "  "

// ExceptionClass is the class carrying C++ exceptions across the flat
// layer. Its own wrappers are never guarded.
const ExceptionClass = facade.ExceptionClass

// Sections collect the flat output of one module.
type Sections struct {
	// Types holds struct typedefs, enums and opaque forward declarations.
	Types strings.Builder
	// Decls holds the extern declarations of wrappers and variables.
	Decls strings.Builder
	// Wrappers holds the wrapper definitions.
	Wrappers strings.Builder
}

// Options configure one module.
type Options struct {
	CPlusPlus bool
	// Prefix is the global symbol prefix; empty for none.
	Prefix string
	// Exceptions guards wrapped calls with try/catch.
	Exceptions bool
}

// Scope is the traversal context of one declaration. It is passed by value
// so leaving a class restores the outer scope.
type Scope struct {
	// Class is the class whose members are being generated.
	Class *decl.Node
	// Facade is the façade of Class; nil or inactive when none is built.
	Facade *facade.Class
}

// Config collects the collaborators of an Emitter.
type Config struct {
	Options  Options
	Sections *Sections
	// Facade receives the C++ classes; nil disables them.
	Facade   *facade.Sections
	Checks   facade.Checks
	Lookup   typemap.Lookup
	Resolver *symbols.Resolver
	Symbols  *symbols.Table
	Enums    marshal.Enums
	Classes  symbols.Classes
	Typedefs types.Typedefs
	Reporter diag.Reporter
}

// Emitter generates the flat layer of one module. It is not safe for
// concurrent use.
type Emitter struct {
	opts     Options
	sec      *Sections
	cxx      *facade.Sections
	checks   facade.Checks
	lookup   typemap.Lookup
	ctypes   *marshal.CTypes
	sub      *marshal.Substituter
	res      *symbols.Resolver
	syms     *symbols.Table
	enums    marshal.Enums
	classes  symbols.Classes
	typedefs types.Typedefs
	rep      diag.Reporter

	stdbool   bool
	wrappers  int
	flattened map[*decl.Node]bool
}

// New creates an emitter. Opaque forward declarations are written to the
// types section.
func New(cfg Config) *Emitter {
	if cfg.Typedefs == nil {
		cfg.Typedefs = types.Typedefs{}
	}
	if cfg.Symbols == nil {
		cfg.Symbols = symbols.NewTable()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = diag.NopReporter{}
	}
	sub := marshal.NewSubstituter(cfg.Resolver, cfg.Enums, cfg.Typedefs, cfg.Options.CPlusPlus, &cfg.Sections.Types)
	return &Emitter{
		opts:     cfg.Options,
		sec:      cfg.Sections,
		cxx:      cfg.Facade,
		checks:   cfg.Checks,
		lookup:   cfg.Lookup,
		ctypes:   marshal.NewCTypes(cfg.Lookup, sub),
		sub:      sub,
		res:      cfg.Resolver,
		syms:     cfg.Symbols,
		enums:    cfg.Enums,
		classes:  cfg.Classes,
		typedefs: cfg.Typedefs,
		rep:      cfg.Reporter,
	}
}

// Wrappers returns the number of wrapper functions generated so far.
func (e *Emitter) Wrappers() int {
	return e.wrappers
}

// skip reports a declaration that cannot be wrapped.
func (e *Emitter) skip(n *decl.Node, code diag.Code, msg string) {
	diag.ReportError(e.rep, code, n.Pos(), msg).
		WithNote(n.Pos(), "skipping "+describe(n)).
		Emit()
}

func (e *Emitter) warn(n *decl.Node, code diag.Code, msg string) {
	diag.ReportWarning(e.rep, code, n.Pos(), msg).Emit()
}

func describe(n *decl.Node) string {
	name := n.Name
	if name == "" {
		name = n.SymName
	}
	return fmt.Sprintf("%s %s", n.Kind, name)
}

// writeCode appends a code fragment line by line with one level of
// indentation. Empty fragments write nothing.
func writeCode(b *strings.Builder, code string) {
	if code == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
