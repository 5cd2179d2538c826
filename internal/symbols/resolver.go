package symbols

import (
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/types"
)

// Classes looks up class declarations by qualified name.
type Classes interface {
	LookupClass(name string) (*decl.Node, bool)
}

// Options configure name generation for one module.
type Options struct {
	// Module is the module name, the prefix of last resort.
	Module string
	// Prefix is the global symbol prefix; empty for none.
	Prefix string
}

// Resolver computes and memoises symbol names.
type Resolver struct {
	opts     Options
	classes  Classes
	typedefs types.Typedefs
}

// NewResolver creates a resolver for one module.
func NewResolver(opts Options, classes Classes, td types.Typedefs) *Resolver {
	return &Resolver{opts: opts, classes: classes, typedefs: td}
}

// Prefix returns the configured global prefix.
func (r *Resolver) Prefix() string {
	return r.opts.Prefix
}

// ProxyName returns the C name of a class or enum type:
// "<mangled nspace>_<sym>" inside an nspace, else "<prefix>_<sym>" with a
// global prefix, else the symbol name.
func (r *Resolver) ProxyName(n *decl.Node) string {
	if n.Gen.ProxyName != "" {
		return n.Gen.ProxyName
	}
	sym := symName(n)
	var proxy string
	switch {
	case n.Nspace != "":
		proxy = MangleIdent(strings.ReplaceAll(n.Nspace, ".", "::")) + "_" + sym
	case r.opts.Prefix != "":
		proxy = r.opts.Prefix + "_" + sym
	default:
		proxy = sym
	}
	n.Gen.ProxyName = proxy
	return proxy
}

// ClassProxyName returns the proxy name of the class t refers to, looking
// through one pointer or reference and any qualifiers.
func (r *Resolver) ClassProxyName(t types.Type) (string, bool) {
	cls, ok := r.LookupClassType(t)
	if !ok {
		return "", false
	}
	return r.ProxyName(cls), true
}

// LookupClassType finds the class a type names, looking through typedefs,
// qualifiers and a single pointer, reference or array.
func (r *Resolver) LookupClassType(t types.Type) (*decl.Node, bool) {
	if r.classes == nil {
		return nil, false
	}
	if r.typedefs != nil {
		t = r.typedefs.ResolveAll(t)
	}
	t = t.StripQualifiers()
	if t.IsPointer() || t.IsReference() || t.IsArray() {
		t = t.Pop()
	}
	if !t.IsPlain() || t.IsBuiltin() || t.IsEnum() {
		return nil, false
	}
	return r.classes.LookupClass(t.Base)
}

// EnumName returns the C name of an enum: class-scoped enums are prefixed
// with the class proxy name, others use their own proxy name.
func (r *Resolver) EnumName(n *decl.Node) string {
	if n.Gen.EnumName != "" {
		return n.Gen.EnumName
	}
	name := ""
	if scope := ScopePrefix(n.Name); scope != "" && r.classes != nil {
		if cls, ok := r.classes.LookupClass(scope); ok {
			name = r.ProxyName(cls) + "_" + symName(n)
		}
	}
	if name == "" {
		name = r.ProxyName(n)
	}
	n.Gen.EnumName = name
	return name
}

// SymbolName returns the unprefixed name of a function-like node before
// overload mangling: constructors and destructors are named after their
// class, members get the class proxy name in front.
func (r *Resolver) SymbolName(n *decl.Node) string {
	cls := n.Class()
	switch {
	case cls == nil:
		return symName(n)
	case n.Kind == decl.KindConstructor && n.CopyConstructor:
		return r.ProxyName(cls) + "_copy"
	case n.Kind == decl.KindConstructor:
		return r.ProxyName(cls) + "_new"
	case n.Kind == decl.KindDestructor:
		return r.ProxyName(cls) + "_delete"
	case n.IsFriend():
		return symName(n)
	default:
		return r.ProxyName(cls) + "_" + symName(n)
	}
}

// OverloadName appends the const tie-breaker and one "_<code>" per
// parameter to name. parms is the wrapper parameter list, including the
// implicit object parameter of non-static members, which is skipped.
// Copy constructors are never mangled.
func (r *Resolver) OverloadName(n *decl.Node, name string, parms []*decl.Parm) string {
	if !n.IsOverloaded() || n.CopyConstructor {
		return name
	}
	if n.Kind != decl.KindConstructor && n.IsMember && !n.StaticBase && len(parms) > 0 {
		parms = parms[1:]
		if n.IsConstMethod() && hasNonConstTwin(n) {
			name += "_const"
		}
	}
	var b strings.Builder
	b.WriteString(name)
	for _, p := range parms {
		b.WriteByte('_')
		b.WriteString(MangleType(p.Ty(), r.typedefs))
	}
	return b.String()
}

func hasNonConstTwin(n *decl.Node) bool {
	g := n.Group()
	if g == nil {
		return false
	}
	nonconst := strings.TrimPrefix(n.Decl, "q(const).")
	for _, other := range g.Members {
		if other != n && other.Decl == nonconst {
			return true
		}
	}
	return false
}

// WrapperName applies the module-level prefix rules to name. Class members,
// constructors, destructors and variable accessors are already scoped by
// their class or variable name and stay bare; everything else gets the
// namespace prefix of an nspace parent, the global prefix or the module
// name.
func (r *Resolver) WrapperName(n *decl.Node, name string) string {
	if (n.InClass() && (n.IsMember || n.Kind == decl.KindConstructor || n.Kind == decl.KindDestructor)) ||
		n.Role == decl.RoleVarGet || n.Role == decl.RoleVarSet {
		return name
	}
	prefix := ""
	if p := n.Parent; p != nil && p.HasFeature("nspace") {
		if scope := ScopePrefix(n.Name); scope != "" {
			prefix = MangleIdent(scope)
		}
	}
	if prefix == "" {
		prefix = r.opts.Prefix
	}
	if prefix == "" {
		prefix = r.opts.Module
	}
	return prefix + "_" + name
}

// FunctionName computes, memoises and returns the wrapper name of a
// function-like node.
func (r *Resolver) FunctionName(n *decl.Node, parms []*decl.Parm) string {
	if n.Gen.WrapName != "" {
		return n.Gen.WrapName
	}
	name := r.OverloadName(n, r.SymbolName(n), parms)
	n.Gen.MangledName = name
	n.Gen.WrapName = r.WrapperName(n, name)
	return n.Gen.WrapName
}

// ScopePrefix returns everything before the last "::" of a qualified name.
func ScopePrefix(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[:i]
	}
	return ""
}

// ScopeLast returns the last segment of a qualified name.
func ScopeLast(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func symName(n *decl.Node) string {
	if n.SymName != "" {
		return n.SymName
	}
	return ScopeLast(n.Name)
}
