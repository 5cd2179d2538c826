package flat

import (
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/symbols"
	"cbridge/internal/types"
)

// Variable exports a variable: global variables of a C representable type
// are declared directly, all others get accessor functions.
func (e *Emitter) Variable(sc Scope, n *decl.Node) error {
	if n.Gen.Done {
		return nil
	}
	if sc.Class == nil && !n.IsMember {
		// static globals are not reachable from a shared library
		if n.IsStatic() {
			n.Gen.Done = true
			return nil
		}
		if e.opts.Prefix == "" && symbols.ScopePrefix(n.Name) == "" {
			text, ok, err := e.cVarDecl(n)
			if err != nil {
				n.Gen.Done = true
				e.skip(n, diag.GenAnonymousVariable, err.Error())
				return nil
			}
			if ok {
				n.Gen.Done = true
				fmt.Fprintf(&e.sec.Decls, "SWIGIMPORT %s;\n\n", text)
				return nil
			}
		}
	}
	n.Gen.Done = true

	getter, setter := e.accessors(sc, n)
	if err := e.Function(sc, getter); err != nil {
		return err
	}
	if setter != nil {
		return e.Function(sc, setter)
	}
	return nil
}

// accessors synthesises the getter and, for mutable variables, the setter
// of n. Objects are read through references; arrays of objects become
// arrays of pointers.
func (e *Emitter) accessors(sc Scope, n *decl.Node) (getter, setter *decl.Node) {
	t := e.typedefs.ResolveAll(n.Ty())
	if t.IsArray() && !t.BaseIsBuiltin() && !t.ArrayElem().IsPointer() {
		t = pointerArray(t)
	}

	static := sc.Class != nil && (n.IsStatic() || n.StaticBase)
	member := sc.Class != nil && !static
	getRole, setRole := decl.RoleVarGet, decl.RoleVarSet
	if member {
		getRole, setRole = decl.RoleMemberGet, decl.RoleMemberSet
	}

	sym := n.SymName
	if sym == "" {
		sym = symbols.ScopeLast(n.Name)
	}
	if sc.Class == nil && e.opts.Prefix != "" {
		// module level accessors are not scoped by a class name
		sym = e.opts.Prefix + "_" + sym
	}

	getType := t
	if isObject(t) {
		getType = t.AddReference()
	}
	getter = e.accessor(n, sym+"_get", getType.Encode(), getRole, static)

	if immutable(n, t) {
		return getter, nil
	}
	setter = e.accessor(n, sym+"_set", "void", setRole, static)
	setter.Parms = []*decl.Parm{{Name: symbols.ScopeLast(n.Name), Type: t.Encode()}}
	return getter, setter
}

func (e *Emitter) accessor(v *decl.Node, sym, typ string, role decl.Role, static bool) *decl.Node {
	a := &decl.Node{
		Kind:     decl.KindFunction,
		Name:     scopedName(v.Name, sym),
		SymName:  sym,
		Type:     typ,
		Access:   decl.AccessPublic,
		Role:     role,
		IsMember: v.IsMember || v.Class() != nil,
		NoExcept: true,
		File:     v.File,
		Line:     v.Line,
		Parent:   v.Parent,
		Features: v.Features,
	}
	if static {
		a.StaticBase = true
	}
	a.SetPos(v.Pos())
	a.Gen.Variable = v
	a.Gen.InheritedFrom = v.Gen.InheritedFrom
	return a
}

// pointerArray turns an array of objects into an array of pointers to
// them: "a(3).Point" becomes "a(3).p.Point".
func pointerArray(t types.Type) types.Type {
	elem := t.ArrayElem().AddPointer()
	var elems []types.Elem
	for _, dim := range t.ArrayDims() {
		elems = append(elems, types.Elem{Kind: types.ElemArray, Arg: dim})
	}
	return types.Type{Elems: append(elems, elem.Elems...), Base: elem.Base}
}

func scopedName(name, sym string) string {
	if scope := symbols.ScopePrefix(name); scope != "" {
		return scope + "::" + sym
	}
	return sym
}

// isObject reports a variable holding a class or other non-builtin value.
func isObject(t types.Type) bool {
	s := t.StripQualifiers()
	return s.IsPlain() && !s.IsBuiltin() && !s.IsEnum()
}

func immutable(n *decl.Node, t types.Type) bool {
	if n.HasFeature("immutable") {
		return true
	}
	return t.IsConst() || t.IsReference() || t.IsArray()
}

// cVarDecl spells n as a C declaration. It reports false when the type
// cannot be used from C and accessors are needed instead.
func (e *Emitter) cVarDecl(n *decl.Node) (string, bool, error) {
	t := n.Ty()
	name := symbols.ScopeLast(n.Name)

	if n.UnnamedInstance {
		// anonymous enums are ints, anything else cannot be named
		base := t.BaseType()
		if !base.IsEnum() || !e.isAnonymousEnum(base.EnumName()) {
			return "", false, fmt.Errorf("variables of anonymous non-enum types are not supported")
		}
		t = t.WithBase("int")
	} else if base := t.BaseType(); base.IsEnum() {
		if e.enums == nil {
			t = t.WithBase("int")
		} else if _, ok := e.enums.LookupEnum(base.EnumName()); !ok {
			t = t.WithBase("int")
		}
	} else if e.opts.CPlusPlus {
		if t.IsReference() {
			return "", false, nil
		}
		if !types.IsBuiltinName(t.Base) {
			return "", false, nil
		}
		if t.Base == "bool" {
			e.includeStdbool()
		}
	}

	if t.StripTopQualifiers().IsArray() {
		return t.StripTopQualifiers().Pop().Str(name + "[]"), true, nil
	}
	return t.Str(name), true, nil
}

func (e *Emitter) isAnonymousEnum(name string) bool {
	if strings.HasPrefix(name, "$") {
		return true
	}
	if e.enums == nil {
		return false
	}
	en, ok := e.enums.LookupEnum(name)
	return ok && en.Unnamed
}

func (e *Emitter) includeStdbool() {
	if e.stdbool {
		return
	}
	e.stdbool = true
	e.sec.Types.WriteString("#include <stdbool.h>\n\n")
}
