package flat

import (
	"fmt"

	"cbridge/internal/backend/facade"
	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/symbols"
)

// OpenClass starts the generation of class n and returns the scope of its
// members. It reports false when the members must not be visited: C
// structs are declared as a whole.
//
// In C++ the public members of the bases are copied into n first, so the
// derived class exposes them under its own name.
func (e *Emitter) OpenClass(sc Scope, n *decl.Node) (Scope, bool) {
	if !e.opts.CPlusPlus {
		e.Struct(n)
		return sc, false
	}
	e.flatten(n)

	proxy := e.res.ProxyName(n)
	fmt.Fprintf(&e.sec.Types, "typedef struct SwigObj_%s %s;\n\n", proxy, proxy)

	inner := Scope{Class: n}
	if e.cxx != nil {
		env := facade.Env{
			Sections: e.cxx,
			Types:    e.ctypes,
			Names:    e.res,
			Reporter: e.rep,
			Checks:   e.checks,
		}
		inner.Facade = facade.Open(env, n, e.bases(n))
	}
	return inner, true
}

// CloseClass finishes the class opened for sc.
func (e *Emitter) CloseClass(sc Scope) {
	if sc.Facade != nil {
		sc.Facade.Close()
	}
}

// Members returns the nodes to visit for class n: its own children, then
// the members inherited from its bases.
func Members(n *decl.Node) []*decl.Node {
	out := make([]*decl.Node, 0, len(n.Children)+len(n.Gen.Inherited))
	out = append(out, n.Children...)
	return append(out, n.Gen.Inherited...)
}

func (e *Emitter) bases(n *decl.Node) []*decl.Node {
	var out []*decl.Node
	for _, name := range n.Bases {
		if b, ok := e.lookupClass(name); ok {
			out = append(out, b)
		}
	}
	return out
}

func (e *Emitter) lookupClass(name string) (*decl.Node, bool) {
	if e.classes == nil {
		return nil, false
	}
	return e.classes.LookupClass(name)
}

// flatten copies the inheritable members of every base into
// n.Gen.Inherited. Bases are flattened first so members of indirect bases
// are found too.
func (e *Emitter) flatten(n *decl.Node) {
	if e.flattened == nil {
		e.flattened = make(map[*decl.Node]bool)
	}
	if e.flattened[n] {
		return
	}
	e.flattened[n] = true

	for _, name := range n.Bases {
		base, ok := e.lookupClass(name)
		if !ok {
			e.warn(n, diag.GenUnknownClass, fmt.Sprintf("base class %s of %s is not wrapped", name, n.Name))
			continue
		}
		if base.IsIgnored() {
			continue
		}
		e.flatten(base)
		for _, m := range Members(base) {
			if inheritable(m) {
				e.inherit(n, base, m)
			}
		}
	}
}

func inheritable(m *decl.Node) bool {
	if m.Kind != decl.KindVariable && m.Kind != decl.KindFunction {
		return false
	}
	if !m.IsPublic() || m.IsStatic() || m.StaticBase || m.IsIgnored() {
		return false
	}
	// assignment is not inherited in C++
	return m.SymName != "" && symbols.ScopeLast(m.Name) != "operator ="
}

// inherit adds a copy of base member m to cls unless cls hides it. Two
// bases providing the same name get their base name in front of the
// symbol.
func (e *Emitter) inherit(cls, base, m *decl.Node) {
	last := symbols.ScopeLast(m.Name)
	dup := findMember(cls, last)
	if dup == nil {
		cls.Gen.Inherited = append(cls.Gen.Inherited, e.copyMember(cls, base, m))
		return
	}

	from := dup.Gen.InheritedFrom
	switch {
	case from == nil:
		// own members hide the inherited ones
	case from == base:
		// another overload from the same base
		cls.Gen.Inherited = append(cls.Gen.Inherited, e.copyMember(cls, base, m))
	case dup.Gen.BaseName != "":
		diag.ReportError(e.rep, diag.GenBaseNameCollision, m.Pos(),
			fmt.Sprintf("%s is inherited by %s from more than two bases", last, cls.Name)).
			WithNote(dup.Pos(), "already renamed to "+dup.SymName).
			Emit()
	default:
		old := dup.SymName
		dup.SymName = symbols.ScopeLast(from.Name) + old
		dup.Gen.BaseName = old

		c := e.copyMember(cls, base, m)
		c.SymName = symbols.ScopeLast(base.Name) + old
		c.Gen.BaseName = old
		cls.Gen.Inherited = append(cls.Gen.Inherited, c)
	}
}

func (e *Emitter) copyMember(cls, base, m *decl.Node) *decl.Node {
	c := m.Clone()
	c.Parent = cls
	c.Name = cls.Name + "::" + symbols.ScopeLast(m.Name)
	c.Overloaded = m.IsOverloaded()
	c.Gen.InheritedFrom = base
	return c
}

func findMember(cls *decl.Node, last string) *decl.Node {
	for _, m := range Members(cls) {
		if symbols.ScopeLast(m.Name) == last {
			return m
		}
	}
	return nil
}
