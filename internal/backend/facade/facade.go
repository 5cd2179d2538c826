// Package facade synthesises C++ classes on top of the flat C wrappers.
//
// Every façade class owns an opaque pointer to the wrapped object and a flag
// telling whether it must release it. Copying is forbidden unless the
// wrapped class has a copy constructor; moving transfers ownership.
package facade

import (
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
)

// Indent is one level of indentation in generated code.
const Indent = "  "

// Sections collect the façade output of one module. They end up in the
// header inside the target namespace, in this order.
type Sections struct {
	// Types holds forward declarations and namespace-level enums.
	Types strings.Builder
	// Decls holds the class bodies.
	Decls strings.Builder
	// Impls holds out-of-line member definitions.
	Impls strings.Builder
}

// Checks is the text put around a flat call whose pending exception must be
// rethrown. Both parts are empty when exceptions are not supported.
type Checks struct {
	Start string
	End   string
}

// ExceptionClass is the class carrying pending exceptions. swig_check()
// calls its members, so they are never checked themselves.
const ExceptionClass = "SWIG_CException"

// SwigChecks wraps calls in swig_check().
var SwigChecks = Checks{Start: "swig_check(", End: ")"}

// Enabled reports whether calls are checked at all.
func (c Checks) Enabled() bool {
	return c.Start != ""
}

// WriteCheckHelpers writes the swig_check() functions that turn a pending
// C exception into a C++ throw. They are written once per group of
// modules; importing modules reuse them.
func WriteCheckHelpers(sec *Sections) {
	sec.Impls.WriteString("inline void swig_check() {\n")
	sec.Impls.WriteString(Indent + "if (SWIG_CException* swig_ex = SWIG_CException::get_pending()) {\n")
	sec.Impls.WriteString(Indent + Indent + "SWIG_CException swig_ex_copy{*swig_ex};\n")
	sec.Impls.WriteString(Indent + Indent + "SWIG_CException::reset_pending();\n")
	sec.Impls.WriteString(Indent + Indent + "throw swig_ex_copy;\n")
	sec.Impls.WriteString(Indent + "}\n")
	sec.Impls.WriteString("}\n\n")
	sec.Impls.WriteString("template <typename T> T swig_check(T x) {\n")
	sec.Impls.WriteString(Indent + "swig_check();\n")
	sec.Impls.WriteString(Indent + "return x;\n")
	sec.Impls.WriteString("}\n\n")
}

// Types resolves the façade presentation of return values and parameters.
type Types interface {
	FacadeReturn(n *decl.Node) (marshal.Descriptor, error)
	FacadeParm(p *decl.Parm) (marshal.Descriptor, error)
}

// Names gives the C proxy names of classes.
type Names interface {
	ProxyName(n *decl.Node) string
}

// Env is what a class needs from the module generating it.
type Env struct {
	Sections *Sections
	Types    Types
	Names    Names
	Reporter diag.Reporter
	Checks   Checks
}

// BaseKind is the inheritance shape of a class, decided when it is opened.
type BaseKind uint8

const (
	BaseNone BaseKind = iota
	BaseSingle
	// BaseMultiple disables the façade for the class.
	BaseMultiple
)

func (k BaseKind) String() string {
	switch k {
	case BaseNone:
		return "none"
	case BaseSingle:
		return "single"
	case BaseMultiple:
		return "multiple"
	}
	return fmt.Sprintf("BaseKind(%d)", k)
}

type state uint8

const (
	stateAccumulating state = iota
	stateClosed
)

// Class is the façade of one class while its members are being generated.
type Class struct {
	env   Env
	node  *decl.Node
	name  string
	base  BaseKind
	first *decl.Node

	hasCopyCtor bool
	state       state
}

// Open starts the façade of class n. bases are the class nodes of n's
// bases in declaration order; ignored ones are skipped. A second base
// disables the façade with a warning and the returned class ignores all
// further calls.
func Open(env Env, n *decl.Node, bases []*decl.Node) *Class {
	c := &Class{env: env, node: n, name: className(n)}
	for _, b := range bases {
		if b == nil || b.IsIgnored() {
			continue
		}
		if c.first != nil {
			c.base = BaseMultiple
			diag.ReportWarning(env.Reporter, diag.GenMultipleBases, n.Pos(),
				fmt.Sprintf("Multiple inheritance not supported yet, skipping C++ wrapper generation for %s", c.name)).
				WithNote(b.Pos(), "second base "+className(b)).
				Emit()
			c.state = stateClosed
			return c
		}
		c.first = b
		c.base = BaseSingle
	}

	fmt.Fprintf(&env.Sections.Types, "class %s;\n", c.name)
	fmt.Fprintf(&env.Sections.Decls, "class %s", c.name)
	if c.first != nil {
		fmt.Fprintf(&env.Sections.Decls, " : public %s", className(c.first))
	}
	env.Sections.Decls.WriteString(" {\npublic:\n")
	return c
}

// Base reports the inheritance shape decided by Open.
func (c *Class) Base() BaseKind {
	return c.base
}

// Active reports whether members are still being accepted.
func (c *Class) Active() bool {
	return c != nil && c.state == stateAccumulating
}

// Node returns the wrapped class.
func (c *Class) Node() *decl.Node {
	return c.node
}

// Indent returns the indentation of declarations inside the class body.
func (c *Class) Indent() string {
	return Indent
}

// selfPtr is the opaque pointer type the flat layer uses for n.
func (c *Class) selfPtr(n *decl.Node) string {
	return "SwigObj_" + c.env.Names.ProxyName(n) + "*"
}

func className(n *decl.Node) string {
	if n.SymName != "" {
		return n.SymName
	}
	if i := strings.LastIndex(n.Name, "::"); i >= 0 {
		return n.Name[i+2:]
	}
	return n.Name
}

// AddEnum places the C++ declaration of an enum: inside the body of the
// class being generated, or at namespace level when c is nil or inactive.
func (s *Sections) AddEnum(c *Class, text string) {
	if c.Active() {
		s.Decls.WriteString(text)
		return
	}
	s.Types.WriteString(text)
}
