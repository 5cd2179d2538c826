package flat

import (
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
)

// Struct declares a C struct in the types section. Nested enums come
// first since the struct may use them.
func (e *Emitter) Struct(n *decl.Node) {
	if n.Gen.Done {
		return
	}
	n.Gen.Done = true

	var b strings.Builder
	if n.TDName != "" {
		b.WriteString("typedef struct {\n")
	} else {
		fmt.Fprintf(&b, "struct %s {\n", e.res.ProxyName(n))
	}
	e.structFields(&b, n)
	if n.TDName != "" {
		fmt.Fprintf(&b, "} %s;\n\n", n.TDName)
	} else {
		b.WriteString("};\n\n")
	}
	e.sec.Types.WriteString(b.String())
}

func (e *Emitter) structFields(b *strings.Builder, n *decl.Node) {
	cls := n
	if n.Kind == decl.KindExtend {
		cls = n.Parent
	}
	for _, m := range n.Children {
		switch m.Kind {
		case decl.KindVariable, decl.KindFunction:
			t := e.typedefs.ResolveAll(m.Ty())
			if m.Kind == decl.KindFunction || t.IsFunction() {
				e.warn(m, diag.GenStructFunction,
					fmt.Sprintf("Extending C struct with %s is not currently supported, ignored.", describe(m)))
				continue
			}
			text, _, err := e.cVarDecl(m)
			if err != nil {
				e.skip(m, diag.GenAnonymousVariable, err.Error())
				continue
			}
			fmt.Fprintf(b, "%s%s;\n", indent, text)
		case decl.KindEnum:
			_ = e.Enum(Scope{Class: cls}, m)
		case decl.KindExtend:
			e.structFields(b, m)
		}
	}
}
