package flat

import (
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/symbols"
)

// Enum declares n in the types section and, when the façade is built, in
// C++ too: inside the class body for class enums, at namespace level
// otherwise. Enums without exported items produce nothing.
func (e *Emitter) Enum(sc Scope, n *decl.Node) error {
	if n.ForwardDecl || n.Gen.Done {
		return nil
	}
	n.Gen.Done = true
	if sc.Class != nil && !n.IsPublic() {
		return nil
	}

	var c, cxx strings.Builder
	withCxx := e.cxx != nil
	cxxIndent := ""
	if sc.Facade.Active() {
		cxxIndent = sc.Facade.Indent()
	}

	if n.TDName != "" {
		c.WriteString("typedef ")
		cxx.WriteString("typedef ")
	}
	c.WriteString("enum")
	cxx.WriteString("enum")

	prefix := e.opts.Prefix
	if sc.Class != nil {
		prefix = e.res.ProxyName(sc.Class)
	}
	if !n.Unnamed && n.Name != "" && !strings.HasPrefix(n.Name, "$") {
		name := symbols.ScopeLast(n.Name)
		cxx.WriteString(" " + name)
		if prefix != "" {
			name = prefix + "_" + name
		}
		c.WriteString(" " + name)
		if n.ScopedEnum {
			prefix = name
		}
	}
	itemPrefix := ""
	if prefix != "" {
		itemPrefix = prefix + "_"
	}
	c.WriteString(" {\n")
	cxx.WriteString(" {\n")

	items := 0
	for _, item := range n.Children {
		if item.Kind != decl.KindEnumItem || item.IsIgnored() {
			continue
		}
		if item.IsMember && !item.IsPublic() {
			continue
		}
		value, err := e.enumValue(item)
		if err != nil {
			e.skip(n, diag.GenBadEnumValue, err.Error())
			return nil
		}
		if items > 0 {
			c.WriteString(",\n")
			cxx.WriteString(",\n")
		}
		items++

		sym := item.SymName
		if sym == "" {
			sym = symbols.ScopeLast(item.Name)
		}
		c.WriteString(indent + itemPrefix + sym)
		cxx.WriteString(cxxIndent + indent + sym)
		if value != "" {
			c.WriteString(" = " + value)
			cxx.WriteString(" = " + value)
		}
	}
	if items == 0 {
		return nil
	}

	c.WriteString("\n}")
	fmt.Fprintf(&cxx, "\n%s}", cxxIndent)
	if n.TDName != "" {
		c.WriteString(" " + itemPrefix + n.TDName)
		cxx.WriteString(" " + n.TDName)
	}
	c.WriteString(";\n\n")
	cxx.WriteString(";\n\n")

	e.sec.Types.WriteString(c.String())
	if withCxx {
		e.cxx.AddEnum(sc.Facade, cxxIndent+cxx.String())
	}
	return nil
}

// enumValue spells the explicit value of an enumerator for C, or "" when
// it has none. Only literal boolean values can be expressed.
func (e *Emitter) enumValue(item *decl.Node) (string, error) {
	v := item.EnumValue
	if v == "" {
		return "", nil
	}
	switch e.typedefs.ResolveAll(item.Ty()).StripQualifiers().Base {
	case "bool":
		switch v {
		case "true":
			return "1", nil
		case "false":
			return "0", nil
		}
		return "", fmt.Errorf("unsupported boolean enum value %q", v)
	case "char":
		return "'" + escapeChar(v) + "'", nil
	}
	return v, nil
}

// escapeChar escapes a character literal body for C.
func escapeChar(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
