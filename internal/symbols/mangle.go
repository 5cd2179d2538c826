package symbols

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"cbridge/internal/types"
)

// MangleIdent turns a (possibly qualified) name into a C identifier:
// scope separators and other punctuation become underscores. Input is
// NFC-normalised first so equal names always mangle identically.
func MangleIdent(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "::", "_")
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// MangleType returns the overload mangle code of t: a pointer to function
// is "f"; otherwise the declarator prefix markers (p, r, z, c, v, aN, mC)
// followed by the first letter of a builtin, "e" plus the enum name, or the
// mangled class name.
func MangleType(t types.Type, td types.Typedefs) string {
	if td != nil {
		t = td.ResolveAll(t)
	}
	if t.IsFunctionPointer() {
		return "f"
	}
	var b strings.Builder
	for _, e := range t.Elems {
		switch e.Kind {
		case types.ElemPointer:
			b.WriteByte('p')
		case types.ElemReference:
			b.WriteByte('r')
		case types.ElemRvalueRef:
			b.WriteByte('z')
		case types.ElemArray:
			b.WriteByte('a')
			b.WriteString(MangleIdent(e.Arg))
		case types.ElemMemberPointer:
			b.WriteByte('m')
			b.WriteString(MangleIdent(e.Arg))
		case types.ElemQualifier:
			for _, q := range strings.Fields(e.Arg) {
				switch q {
				case "const":
					b.WriteByte('c')
				case "volatile":
					b.WriteByte('v')
				}
			}
		case types.ElemFunction:
			b.WriteByte('f')
		}
	}
	base := t.BaseType()
	switch {
	case base.IsBuiltin():
		b.WriteString(base.Base[:1])
	case base.IsEnum():
		name := base.EnumName()
		if i := strings.LastIndex(name, "::"); i >= 0 {
			name = name[i+2:]
		}
		b.WriteByte('e')
		b.WriteString(MangleIdent(name))
	default:
		b.WriteString(MangleIdent(base.Base))
	}
	return b.String()
}
