package decl

// Helpers for building trees in code. The generator uses them for
// synthesised accessors; tests use them to describe inputs.

// NewTree creates an unlinked tree.
func NewTree(module string, cplusplus bool, children ...*Node) *Tree {
	return &Tree{Module: module, CPlusPlus: cplusplus, Children: children}
}

// P builds a parameter.
func P(name, typ string) *Parm {
	return &Parm{Name: name, Type: typ}
}

// Func builds a free function.
func Func(name, ret string, parms ...*Parm) *Node {
	return &Node{Kind: KindFunction, Name: name, SymName: name, Type: ret, Decl: funcDecl(parms), Parms: parms}
}

// Method builds a non-static member function.
func Method(name, ret string, parms ...*Parm) *Node {
	n := Func(name, ret, parms...)
	n.IsMember = true
	n.Access = AccessPublic
	return n
}

// ConstMethod builds a member function callable on const objects.
func ConstMethod(name, ret string, parms ...*Parm) *Node {
	n := Method(name, ret, parms...)
	n.Decl = "q(const)." + n.Decl
	return n
}

// StaticMethod builds a static member function.
func StaticMethod(name, ret string, parms ...*Parm) *Node {
	n := Method(name, ret, parms...)
	n.Storage = "static"
	n.StaticBase = true
	return n
}

// Ctor builds a constructor.
func Ctor(parms ...*Parm) *Node {
	return &Node{Kind: KindConstructor, Access: AccessPublic, Decl: funcDecl(parms), Parms: parms}
}

// Dtor builds a destructor.
func Dtor() *Node {
	return &Node{Kind: KindDestructor, Access: AccessPublic, Decl: "f()."}
}

// Var builds a variable.
func Var(name, typ string) *Node {
	return &Node{Kind: KindVariable, Name: name, SymName: name, Type: typ}
}

// Const builds a constant with a raw literal value.
func Const(name, typ, value string) *Node {
	return &Node{Kind: KindConstant, Name: name, SymName: name, Type: typ, Value: value, RawValue: value}
}

// Enum builds an enum with the given items.
func Enum(name string, items ...*Node) *Node {
	n := &Node{Kind: KindEnum, Name: name, SymName: name, Type: "enum " + name, Children: items}
	if len(items) > 0 {
		items[0].FirstEnumItem = true
	}
	return n
}

// Item builds an enumerator; an empty value continues the sequence.
func Item(name, value string) *Node {
	return &Node{Kind: KindEnumItem, Name: name, SymName: name, Type: "int", EnumValue: value, Value: value}
}

// Class builds a class. Member names are qualified with the class name and
// constructors and destructors take their names from it.
func Class(name string, bases []string, members ...*Node) *Node {
	c := &Node{Kind: KindClass, Name: name, SymName: lastSegment(name), Bases: bases, Children: members}
	for _, m := range members {
		switch m.Kind {
		case KindConstructor:
			m.Name = name
			m.SymName = c.SymName
			m.Type = "p." + name
		case KindDestructor:
			m.Name = name + "::~" + c.SymName
			m.SymName = "~" + c.SymName
			m.Type = "void"
		default:
			if m.SymName == "" {
				m.SymName = m.Name
			}
			m.Name = name + "::" + m.SymName
			if m.Kind == KindEnum {
				m.Type = "enum " + m.Name
			}
			if m.Kind == KindVariable || m.Kind == KindFunction {
				m.IsMember = true
				if m.Access == "" {
					m.Access = AccessPublic
				}
			}
		}
	}
	return c
}

func funcDecl(parms []*Parm) string {
	s := "f("
	for i, p := range parms {
		if i > 0 {
			s += ","
		}
		s += p.Type
	}
	return s + ")."
}

func lastSegment(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}
