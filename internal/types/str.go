package types

import (
	"strings"
)

// Str renders t as a C declarator for name; an empty name renders an
// abstract declarator such as "char const *".
func (t Type) Str(name string) string {
	decl := name
	// set when decl currently starts with a pointer or reference operator
	ptr := false
	for _, e := range t.Elems {
		switch e.Kind {
		case ElemPointer:
			decl = "*" + decl
			ptr = true
		case ElemReference:
			decl = "&" + decl
			ptr = true
		case ElemRvalueRef:
			decl = "&&" + decl
			ptr = true
		case ElemMemberPointer:
			decl = e.Arg + "::*" + decl
			ptr = true
		case ElemQualifier:
			decl = joinNonEmpty(e.Arg, decl)
			ptr = false
		case ElemArray:
			if ptr {
				decl = "(" + decl + ")"
			}
			decl += "[" + e.Arg + "]"
			ptr = false
		case ElemFunction:
			if ptr {
				decl = "(" + decl + ")"
			}
			parms := make([]string, len(e.Parms))
			for i, p := range e.Parms {
				parms[i] = p.Str("")
			}
			decl += "(" + strings.Join(parms, ", ") + ")"
			ptr = false
		}
	}
	return joinNonEmpty(t.Base, decl)
}

// LStr renders the local type (see Ltype) as an abstract declarator.
func (t Type) LStr() string {
	return t.Ltype().Str("")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// MangleStr returns an identifier-safe encoding of t used to name opaque
// types, e.g. "_p_Shape" for "p.Shape".
func (t Type) MangleStr() string {
	var b strings.Builder
	for _, e := range t.Elems {
		b.WriteByte('_')
		switch e.Kind {
		case ElemPointer:
			b.WriteByte('p')
		case ElemReference:
			b.WriteByte('r')
		case ElemRvalueRef:
			b.WriteByte('z')
		case ElemArray:
			b.WriteString("a_")
			b.WriteString(identChars(e.Arg))
			b.WriteByte('_')
		case ElemQualifier:
			b.WriteString("q_")
			b.WriteString(identChars(e.Arg))
			b.WriteByte('_')
		case ElemMemberPointer:
			b.WriteString("m_")
			b.WriteString(identChars(e.Arg))
			b.WriteByte('_')
		case ElemFunction:
			b.WriteString("f_")
			for _, p := range e.Parms {
				b.WriteString(p.MangleStr())
			}
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	b.WriteString(identChars(t.Base))
	return b.String()
}

// identChars maps every character that is not valid in a C identifier to an
// underscore; "::" becomes "__".
func identChars(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
