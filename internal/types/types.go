// Package types models C and C++ types in the dotted declarator encoding
// produced by the front end, e.g. "p.q(const).char" for "char const *".
//
// A Type is a list of declarator elements read from the outside in,
// followed by a base type name. Values are immutable; every operation
// returns a new Type.
package types

import (
	"fmt"
	"strings"
)

// ElemKind enumerates declarator elements.
type ElemKind uint8

const (
	ElemInvalid ElemKind = iota
	ElemPointer
	ElemReference
	ElemRvalueRef
	ElemArray
	ElemQualifier
	ElemMemberPointer
	ElemFunction
)

func (k ElemKind) String() string {
	switch k {
	case ElemPointer:
		return "pointer"
	case ElemReference:
		return "reference"
	case ElemRvalueRef:
		return "rvalue-reference"
	case ElemArray:
		return "array"
	case ElemQualifier:
		return "qualifier"
	case ElemMemberPointer:
		return "member-pointer"
	case ElemFunction:
		return "function"
	default:
		return fmt.Sprintf("ElemKind(%d)", k)
	}
}

// Elem is one declarator element.
type Elem struct {
	Kind ElemKind
	// Arg is the array dimension, the qualifier list ("const volatile") or
	// the member pointer class.
	Arg string
	// Parms holds the parameter types of a function element.
	Parms []Type
}

// Type is a decoded type.
type Type struct {
	Elems []Elem
	Base  string
}

// Named returns a plain named type without declarator elements.
func Named(base string) Type {
	return Type{Base: base}
}

// IsZero reports whether the type is empty, i.e. unknown.
func (t Type) IsZero() bool {
	return t.Base == "" && len(t.Elems) == 0
}

// Equal compares two types structurally.
func (t Type) Equal(other Type) bool {
	return t.Encode() == other.Encode()
}

func (t Type) String() string {
	return t.Encode()
}

// clone copies the element slice so callers can modify the result.
func (t Type) clone() Type {
	elems := make([]Elem, len(t.Elems))
	copy(elems, t.Elems)
	return Type{Elems: elems, Base: t.Base}
}

// Prefix returns the declarator elements as a Type with an empty base.
func (t Type) Prefix() Type {
	return Type{Elems: t.clone().Elems}
}

// WithBase returns t with its base replaced.
func (t Type) WithBase(base string) Type {
	out := t.clone()
	out.Base = base
	return out
}

// BaseType returns the base as a standalone Type.
func (t Type) BaseType() Type {
	return Type{Base: t.Base}
}

// outer returns the index of the first non-qualifier element, or -1.
func (t Type) outer() int {
	for i, e := range t.Elems {
		if e.Kind != ElemQualifier {
			return i
		}
	}
	return -1
}

func (t Type) outerKind() ElemKind {
	if i := t.outer(); i >= 0 {
		return t.Elems[i].Kind
	}
	return ElemInvalid
}

// IsPointer reports whether the outermost non-qualifier element is a pointer.
func (t Type) IsPointer() bool {
	k := t.outerKind()
	return k == ElemPointer || k == ElemMemberPointer
}

// IsReference reports lvalue and rvalue references.
func (t Type) IsReference() bool {
	k := t.outerKind()
	return k == ElemReference || k == ElemRvalueRef
}

// IsRvalueReference reports whether t is T&&.
func (t Type) IsRvalueReference() bool {
	return t.outerKind() == ElemRvalueRef
}

func (t Type) IsArray() bool {
	return t.outerKind() == ElemArray
}

func (t Type) IsFunction() bool {
	return t.outerKind() == ElemFunction
}

func (t Type) IsMemberPointer() bool {
	return t.outerKind() == ElemMemberPointer
}

// IsFunctionPointer reports a pointer (or member pointer) to a function.
func (t Type) IsFunctionPointer() bool {
	i := t.outer()
	if i < 0 {
		return false
	}
	if k := t.Elems[i].Kind; k != ElemPointer && k != ElemMemberPointer {
		return false
	}
	rest := Type{Elems: t.Elems[i+1:], Base: t.Base}
	return rest.IsFunction()
}

// IsConst reports a top-level const qualifier.
func (t Type) IsConst() bool {
	for _, e := range t.Elems {
		if e.Kind != ElemQualifier {
			return false
		}
		if hasWord(e.Arg, "const") {
			return true
		}
	}
	return false
}

// IsPlain reports whether t has no declarator elements other than qualifiers.
func (t Type) IsPlain() bool {
	return t.outer() < 0
}

func (t Type) IsVoid() bool {
	return t.IsPlain() && t.Base == "void"
}

func (t Type) IsVarargs() bool {
	return t.IsPlain() && t.Base == "..."
}

// IsEnum reports whether the base names an enum ("enum Color").
func (t Type) IsEnum() bool {
	return t.IsPlain() && strings.HasPrefix(t.Base, "enum ")
}

// EnumName returns the base without the "enum " keyword.
func (t Type) EnumName() string {
	return strings.TrimPrefix(t.Base, "enum ")
}

var builtinWords = map[string]bool{
	"void":   true,
	"short":  true,
	"int":    true,
	"long":   true,
	"char":   true,
	"float":  true,
	"double": true,
	"bool":   true,
}

// IsBuiltinName reports whether name is a fundamental type name, with or
// without signedness modifiers.
func IsBuiltinName(name string) bool {
	fields := strings.Fields(name)
	for len(fields) > 0 && (fields[0] == "unsigned" || fields[0] == "signed") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		// plain "unsigned"
		return strings.TrimSpace(name) != ""
	}
	return builtinWords[fields[0]]
}

// IsBuiltin reports a plain (possibly qualified) fundamental type.
func (t Type) IsBuiltin() bool {
	return t.IsPlain() && IsBuiltinName(t.Base)
}

// BaseIsBuiltin reports whether the base is fundamental regardless of
// declarator elements.
func (t Type) BaseIsBuiltin() bool {
	return IsBuiltinName(t.Base)
}

// StripQualifiers removes every qualifier element.
func (t Type) StripQualifiers() Type {
	out := Type{Base: t.Base}
	for _, e := range t.Elems {
		if e.Kind != ElemQualifier {
			out.Elems = append(out.Elems, e)
		}
	}
	return out
}

// StripTopQualifiers removes leading qualifiers only.
func (t Type) StripTopQualifiers() Type {
	i := t.outer()
	if i < 0 {
		return Type{Base: t.Base}
	}
	out := t.clone()
	out.Elems = out.Elems[i:]
	return out
}

// Pop removes the outermost pointer, reference or array together with any
// qualifiers in front of it.
func (t Type) Pop() Type {
	i := t.outer()
	if i < 0 {
		return t.clone()
	}
	out := t.clone()
	out.Elems = out.Elems[i+1:]
	return out
}

// AddPointer returns a pointer to t.
func (t Type) AddPointer() Type {
	return t.push(Elem{Kind: ElemPointer})
}

// AddReference returns an lvalue reference to t.
func (t Type) AddReference() Type {
	return t.push(Elem{Kind: ElemReference})
}

// AddQualifier prepends a qualifier element.
func (t Type) AddQualifier(q string) Type {
	return t.push(Elem{Kind: ElemQualifier, Arg: q})
}

func (t Type) push(e Elem) Type {
	elems := make([]Elem, 0, len(t.Elems)+1)
	elems = append(elems, e)
	elems = append(elems, t.Elems...)
	return Type{Elems: elems, Base: t.Base}
}

// Ltype returns the type of a local that can hold a value of t: qualifiers
// are dropped, references become pointers and the outer array decays to a
// pointer.
func (t Type) Ltype() Type {
	out := t.StripQualifiers()
	if len(out.Elems) == 0 {
		return out
	}
	switch out.Elems[0].Kind {
	case ElemReference, ElemRvalueRef, ElemArray:
		out.Elems[0] = Elem{Kind: ElemPointer}
	case ElemFunction:
		out = out.AddPointer()
	}
	return out
}

// ArrayDims returns the dimension strings of leading array elements.
func (t Type) ArrayDims() []string {
	var dims []string
	for _, e := range t.StripTopQualifiers().Elems {
		if e.Kind != ElemArray {
			break
		}
		dims = append(dims, e.Arg)
	}
	return dims
}

// ArrayElem returns the element type after removing all leading arrays.
func (t Type) ArrayElem() Type {
	out := t.StripTopQualifiers()
	for len(out.Elems) > 0 && out.Elems[0].Kind == ElemArray {
		out.Elems = out.Elems[1:]
	}
	return out
}

// FunctionParms returns the parameter types of the outermost function
// element and its return type.
func (t Type) FunctionParms() (parms []Type, ret Type, ok bool) {
	i := t.outer()
	if i < 0 || t.Elems[i].Kind != ElemFunction {
		return nil, Type{}, false
	}
	return t.Elems[i].Parms, Type{Elems: t.Elems[i+1:], Base: t.Base}, true
}

func hasWord(s, w string) bool {
	for _, f := range strings.Fields(s) {
		if f == w {
			return true
		}
	}
	return false
}
