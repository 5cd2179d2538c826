// Package marshal decides how values cross the boundary between the flat C
// wrappers and the C++ code they call, and how the façade classes present
// them again.
package marshal

import (
	"io"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/symbols"
	"cbridge/internal/types"
)

// Output selects the side of the flat layer a type is spelled for.
type Output uint8

const (
	// Declarations go to the generated header.
	Declarations Output = iota
	// Definitions go to the wrapper source, where every object pointer is
	// a SwigObj pointer.
	Definitions
)

// Resolved type markers used by ctype templates. The trailing '*' of the
// template text follows the marker.
const (
	MarkerResolved = "$resolved_type"
	MarkerDeref    = "$*resolved_type"
	MarkerAddr     = "$&resolved_type"
)

// Enums looks up enum declarations.
type Enums interface {
	LookupEnum(name string) (*decl.Node, bool)
}

// Substituter expands the resolved type markers of one module.
type Substituter struct {
	res       *symbols.Resolver
	enums     Enums
	typedefs  types.Typedefs
	cplusplus bool

	// forward receives opaque type declarations, each at most once.
	forward io.StringWriter
	opaque  map[string]bool
}

// NewSubstituter creates a substituter. Forward declarations of opaque
// types are written to forward.
func NewSubstituter(res *symbols.Resolver, enums Enums, td types.Typedefs, cplusplus bool, forward io.StringWriter) *Substituter {
	if td == nil {
		td = types.Typedefs{}
	}
	return &Substituter{
		res:       res,
		enums:     enums,
		typedefs:  td,
		cplusplus: cplusplus,
		forward:   forward,
		opaque:    make(map[string]bool),
	}
}

// Resolve replaces the markers in tm for a value of type t.
func (s *Substituter) Resolve(tm string, t types.Type, out Output) string {
	stripped := s.typedefs.ResolveAll(t).StripQualifiers()

	if strings.Contains(tm, MarkerResolved) {
		tm = s.special(tm, MarkerResolved, stripped, out)
	}
	if strings.Contains(tm, MarkerDeref) {
		if popped := stripped.Pop(); !popped.IsZero() {
			tm = s.special(tm, MarkerDeref, popped, out)
		}
	}
	if strings.Contains(tm, MarkerAddr) {
		tm = s.special(tm, MarkerAddr, stripped.AddPointer(), out)
	}
	return tm
}

// special replaces one marker. nameType is the type the marker denotes;
// the template supplies the pointer after it where one is needed.
func (s *Substituter) special(tm, marker string, nameType types.Type, out Output) string {
	if !s.cplusplus {
		// plain C types are usable as they are
		return nameType.Str("")
	}
	if nameType.IsEnum() {
		// the source does not see the C enums of the header
		if out == Definitions {
			return strings.ReplaceAll(tm, marker, "int")
		}
		return strings.ReplaceAll(tm, marker, s.enumName(nameType))
	}

	// the spelling before the template's trailing '*'
	target := nameType
	if target.IsPointer() || target.IsArray() {
		target = target.Pop()
	}

	var typestr string
	switch {
	case target.Base == "SwigObj":
		typestr = "SwigObj"
	case target.IsPlain() && !target.IsBuiltin():
		if proxy, ok := s.res.ClassProxyName(target); ok {
			if out == Definitions {
				typestr = "SwigObj"
			} else {
				typestr = proxy
			}
			break
		}
		typestr = s.opaqueName(target, out)
	case target.BaseIsBuiltin():
		typestr = target.Str("")
	default:
		typestr = s.opaqueName(target, out)
	}
	return strings.ReplaceAll(tm, marker, typestr)
}

func (s *Substituter) enumName(t types.Type) string {
	if s.enums != nil {
		if n, ok := s.enums.LookupEnum(t.EnumName()); ok && (!n.Unnamed || n.TDName != "") {
			return s.res.EnumName(n)
		}
	}
	return "int"
}

// opaqueName names a type the module knows nothing about. Declarations
// get a forward declaration of the opaque struct; definitions use SwigObj.
func (s *Substituter) opaqueName(t types.Type, out Output) string {
	if out == Definitions {
		return "SwigObj"
	}
	name := OpaqueName(t)
	if !s.opaque[name] {
		s.opaque[name] = true
		if s.forward != nil {
			_, _ = s.forward.WriteString("typedef struct " + name + " " + name + ";\n\n")
		}
	}
	return name
}

// OpaqueName returns the name of the opaque struct standing for values of
// t, e.g. "SWIGTYPE_p_Handle" for Handle.
func OpaqueName(t types.Type) string {
	return "SWIGTYPE" + t.AddPointer().MangleStr()
}

// ReturnType resolves the ctype template of a wrapper return value. Scope
// separators are not valid in C and become underscores.
func (s *Substituter) ReturnType(tm string, t types.Type, out Output) string {
	return strings.ReplaceAll(s.Resolve(tm, t, out), "::", "_")
}

// ParmType resolves the ctype template of a wrapper parameter. Nested
// typedef names cannot be spelled in C, so they are resolved.
func (s *Substituter) ParmType(tm string, t types.Type, out Output) string {
	resolved := s.Resolve(tm, t, out)
	if !strings.Contains(resolved, "::") {
		return resolved
	}
	return strings.ReplaceAll(s.Resolve(tm, s.typedefs.ResolveAll(t), out), "::", "_")
}

// Kind classifies a ctype template by the marker it uses.
type Kind uint8

const (
	// KindPlain templates spell builtins and enums directly.
	KindPlain Kind = iota
	// KindPtr templates pass pointers to objects.
	KindPtr
	// KindRef templates pass references to objects as pointers.
	KindRef
	// KindObj templates pass objects by value as pointers.
	KindObj
)

var kindMarkers = [...]struct {
	kind   Kind
	marker string
}{
	{KindPtr, MarkerResolved + "*"},
	{KindRef, MarkerDeref + "*"},
	{KindObj, MarkerAddr + "*"},
}

// Classify reports which kind of ctype template tm is.
func Classify(tm string) Kind {
	for _, km := range kindMarkers {
		if strings.Contains(tm, km.marker) {
			return km.kind
		}
	}
	return KindPlain
}

func (k Kind) marker() string {
	for _, km := range kindMarkers {
		if km.kind == k {
			return km.marker
		}
	}
	return ""
}

// LocalType returns the type of the wrapper local holding a value of t
// whose ctype template is tm: references become pointers and objects
// passed by value are held by pointer.
func LocalType(t types.Type, tm string) types.Type {
	if Classify(tm) == KindObj {
		return t.StripQualifiers().AddPointer()
	}
	return t.Ltype()
}
