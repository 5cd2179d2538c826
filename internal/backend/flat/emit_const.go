package flat

import (
	"fmt"

	"cbridge/internal/decl"
)

// Constant exports n as a preprocessor macro in the declarations section.
func (e *Emitter) Constant(n *decl.Node) error {
	if n.Gen.Done {
		return nil
	}
	n.Gen.Done = true

	name := n.SymName
	if name == "" {
		name = n.Name
	}
	fmt.Fprintf(&e.sec.Decls, "#define %s %s\n", name, constValue(n))
	return nil
}

// constValue prefers the literal as written. Values of static members
// refer to C++ variables, so only their char values can be used and those
// need quoting.
func constValue(n *decl.Node) string {
	if n.RawValue != "" {
		return n.RawValue
	}
	if v := n.StaticMemberValue; v != "" {
		if n.ValueType != "char" {
			return v
		}
		c := v[0]
		if isAlnum(c) {
			return fmt.Sprintf("'%c'", c)
		}
		return fmt.Sprintf(`'\x%x%x'`, c/0x10, c%0x10)
	}
	return n.Value
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
