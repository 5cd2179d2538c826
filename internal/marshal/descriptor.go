package marshal

import (
	"errors"
	"fmt"
	"strings"

	"cbridge/internal/types"
)

// ErrUnknownReturn reports a reference or object return of a type that has
// no façade class.
var ErrUnknownReturn = errors.New("unknown reference return type")

// Descriptor is a type as the façade presents it, with the text to put
// around an expression of the flat type to convert it. The wrap parts are
// always defined, possibly empty; an empty Type means unresolvable.
type Descriptor struct {
	Type      string
	WrapStart string
	WrapEnd   string
}

// Void is the descriptor of a void return.
var Void = Descriptor{Type: "void"}

func (d Descriptor) IsVoid() bool {
	return d.Type == "void"
}

// Wrap surrounds expr with the conversion.
func (d Descriptor) Wrap(expr string) string {
	return d.WrapStart + expr + d.WrapEnd
}

// FacadeParm describes a parameter of a façade method. tm is the ctype
// template of the parameter with the other placeholders already expanded.
func (s *Substituter) FacadeParm(tm string, t types.Type) (Descriptor, error) {
	kind := Classify(tm)
	_, typestr, ok := s.facadeClass(kind, t)
	if !ok {
		return Descriptor{Type: s.ParmType(tm, t, Declarations)}, nil
	}

	d := Descriptor{}
	switch kind {
	case KindPtr:
		d.WrapEnd = "->swig_self()"
	case KindRef:
		d.WrapEnd = ".swig_self()"
	case KindObj:
		// by const reference: copying may be impossible
		typestr += " const&"
		d.WrapEnd = ".swig_self()"
	}
	d.Type = s.Resolve(strings.ReplaceAll(tm, kind.marker(), typestr), t, Declarations)
	return d, nil
}

// FacadeReturn describes the return value of a façade method.
func (s *Substituter) FacadeReturn(tm string, t types.Type) (Descriptor, error) {
	kind := Classify(tm)
	classname, typestr, ok := s.facadeClass(kind, t)
	if !ok {
		if kind == KindRef || kind == KindObj {
			return Descriptor{}, fmt.Errorf("%w %q", ErrUnknownReturn, t.Str(""))
		}
		return Descriptor{Type: s.ReturnType(tm, t, Declarations)}, nil
	}

	d := Descriptor{}
	switch kind {
	case KindPtr:
		// returned pointers are assumed to be new
		d.WrapStart = "[=] { auto swig_res = "
		d.WrapEnd = "; return swig_res ? new " + classname + "(swig_res) : nullptr; }()"
	case KindRef:
		// a non-owning object stands in for the reference
		typestr = classname
		d.WrapStart = classname + "{"
		d.WrapEnd = ", false}"
	case KindObj:
		d.WrapStart = typestr + "("
		d.WrapEnd = ")"
	}
	d.Type = s.Resolve(strings.ReplaceAll(tm, kind.marker(), typestr), t, Declarations)
	return d, nil
}

// facadeClass finds the façade class of an object-passing template and
// spells t with the class name as base.
func (s *Substituter) facadeClass(kind Kind, t types.Type) (classname, typestr string, ok bool) {
	if kind == KindPlain || !s.cplusplus {
		return "", "", false
	}
	cls, found := s.res.LookupClassType(t)
	if !found {
		return "", "", false
	}
	classname = cls.SymName
	if classname == "" {
		classname = lastSegment(cls.Name)
	}
	resolved := s.typedefs.ResolveAll(t)
	if kind == KindObj {
		resolved = resolved.StripQualifiers()
	}
	return classname, resolved.WithBase(classname).Str(""), true
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}
