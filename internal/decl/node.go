// Package decl holds the declaration tree handed to the generator by the
// front end: functions, variables, constants, enums and classes with their
// fully resolved types.
//
// The tree is owned by the caller. The generator reads the declared
// attributes and writes only to Node.Gen and Parm.Gen.
package decl

import (
	"strings"

	"cbridge/internal/source"
	"cbridge/internal/types"
)

// Kind names the sort of a declaration.
type Kind string

const (
	KindModule      Kind = "module"
	KindFunction    Kind = "function"
	KindVariable    Kind = "variable"
	KindClass       Kind = "class"
	KindEnum        Kind = "enum"
	KindEnumItem    Kind = "enumitem"
	KindConstant    Kind = "constant"
	KindConstructor Kind = "constructor"
	KindDestructor  Kind = "destructor"
	KindImport      Kind = "import"
	KindInclude     Kind = "include"
	KindTypedef     Kind = "typedef"
	KindExtend      Kind = "extend"
	KindNamespace   Kind = "namespace"
)

// IsFunctionLike reports kinds that produce a wrapper function.
func (k Kind) IsFunctionLike() bool {
	return k == KindFunction || k == KindConstructor || k == KindDestructor
}

// Access is the C++ access specifier of a member.
type Access string

const (
	AccessPublic    Access = "public"
	AccessProtected Access = "protected"
	AccessPrivate   Access = "private"
)

// Role tags synthesised accessor functions.
type Role string

const (
	RoleNone      Role = ""
	RoleMemberGet Role = "memberget"
	RoleMemberSet Role = "memberset"
	RoleVarGet    Role = "varget"
	RoleVarSet    Role = "varset"
)

// IsAccessor reports getter and setter roles.
func (r Role) IsAccessor() bool {
	return r != RoleNone
}

// IsSetter reports the setter roles.
func (r Role) IsSetter() bool {
	return r == RoleMemberSet || r == RoleVarSet
}

// Node is one declaration.
type Node struct {
	Kind Kind `msgpack:"kind" json:"kind"`
	// Name is the qualified C++ name ("geo::Shape::area").
	Name string `msgpack:"name" json:"name"`
	// SymName is the unqualified name used to derive wrapper names.
	SymName string `msgpack:"sym_name,omitempty" json:"sym_name,omitempty"`
	// Type is the encoded type: the return type of functions, the variable
	// type, the constant type or the typedef target.
	Type string `msgpack:"type,omitempty" json:"type,omitempty"`
	// Decl is the encoded declarator of functions, e.g. "q(const).f(int)."
	// for a const member function.
	Decl    string  `msgpack:"decl,omitempty" json:"decl,omitempty"`
	Parms   []*Parm `msgpack:"parms,omitempty" json:"parms,omitempty"`
	Storage string  `msgpack:"storage,omitempty" json:"storage,omitempty"`
	Access  Access  `msgpack:"access,omitempty" json:"access,omitempty"`
	Role    Role    `msgpack:"role,omitempty" json:"role,omitempty"`
	// Action overrides the synthesised call expression.
	Action string `msgpack:"action,omitempty" json:"action,omitempty"`

	IsMember        bool `msgpack:"is_member,omitempty" json:"is_member,omitempty"`
	StaticBase      bool `msgpack:"static_base,omitempty" json:"static_base,omitempty"`
	CopyConstructor bool `msgpack:"copy_constructor,omitempty" json:"copy_constructor,omitempty"`
	NoExcept        bool `msgpack:"noexcept,omitempty" json:"noexcept,omitempty"`
	// HasThrowSpec marks a dynamic exception specification; ThrowsEmpty
	// marks "throw()".
	HasThrowSpec    bool `msgpack:"throw,omitempty" json:"throw,omitempty"`
	ThrowsEmpty     bool `msgpack:"throws_empty,omitempty" json:"throws_empty,omitempty"`
	ScopedEnum      bool `msgpack:"scoped_enum,omitempty" json:"scoped_enum,omitempty"`
	Unnamed         bool `msgpack:"unnamed,omitempty" json:"unnamed,omitempty"`
	UnnamedInstance bool `msgpack:"unnamed_instance,omitempty" json:"unnamed_instance,omitempty"`
	FirstEnumItem   bool `msgpack:"first_enum_item,omitempty" json:"first_enum_item,omitempty"`
	Overloaded      bool `msgpack:"overloaded,omitempty" json:"overloaded,omitempty"`
	Abstract        bool `msgpack:"abstract,omitempty" json:"abstract,omitempty"`
	ForwardDecl     bool `msgpack:"forward,omitempty" json:"forward,omitempty"`

	Bases    []string `msgpack:"bases,omitempty" json:"bases,omitempty"`
	Children []*Node  `msgpack:"children,omitempty" json:"children,omitempty"`

	Value             string `msgpack:"value,omitempty" json:"value,omitempty"`
	RawValue          string `msgpack:"raw_value,omitempty" json:"raw_value,omitempty"`
	EnumValue         string `msgpack:"enum_value,omitempty" json:"enum_value,omitempty"`
	ValueType         string `msgpack:"value_type,omitempty" json:"value_type,omitempty"`
	StaticMemberValue string `msgpack:"static_member_value,omitempty" json:"static_member_value,omitempty"`

	Features map[string]string `msgpack:"features,omitempty" json:"features,omitempty"`
	// Nspace is the target namespace assigned by the nspace feature.
	Nspace string `msgpack:"nspace,omitempty" json:"nspace,omitempty"`
	// TDName is the typedef name of an anonymous enum or struct.
	TDName string `msgpack:"tdname,omitempty" json:"tdname,omitempty"`
	// Import is the module name referenced by an import node.
	Import string `msgpack:"import,omitempty" json:"import,omitempty"`

	File string `msgpack:"file,omitempty" json:"file,omitempty"`
	Line int    `msgpack:"line,omitempty" json:"line,omitempty"`

	Parent *Node `msgpack:"-" json:"-"`
	Gen    Gen   `msgpack:"-" json:"-"`

	pos      source.Pos
	group    *OverloadGroup
	typ      types.Type
	typValid bool
}

// Gen holds attributes produced during generation. Each field is computed
// at most once.
type Gen struct {
	WrapName  string
	ProxyName string
	EnumName  string
	// MangledName is the overload-resolved symbol name.
	MangledName string
	// InheritedFrom is the class a flattened member was copied from.
	InheritedFrom *Node
	// BaseName is the member name as declared in the base when SymName was
	// changed to tell apart members inherited from different bases.
	BaseName string
	// Variable links an accessor to the variable it reads or writes.
	Variable *Node
	// Parms is the wrapper parameter list; members get the object pointer
	// in front.
	Parms []*Parm
	// Inherited holds the base class members flattened into a class.
	Inherited []*Node
	Done      bool
}

// Parm is one function parameter.
type Parm struct {
	Name  string `msgpack:"name,omitempty" json:"name,omitempty"`
	Type  string `msgpack:"type" json:"type"`
	Value string `msgpack:"value,omitempty" json:"value,omitempty"`
	// Self marks the implicit object parameter of member functions.
	Self bool `msgpack:"self,omitempty" json:"self,omitempty"`

	Gen ParmGen `msgpack:"-" json:"-"`

	typ      types.Type
	typValid bool
}

// ParmGen holds per-parameter generator state.
type ParmGen struct {
	LName     string
	EmitInput string
	// Skip marks parameters consumed by a numinputs=0 or multi-argument
	// typemap of an earlier parameter.
	Skip bool
}

// Ty returns the decoded node type. Malformed strings are rejected by
// Tree.Link, so this never fails for linked trees.
func (n *Node) Ty() types.Type {
	if !n.typValid {
		n.typ, _ = types.Parse(n.Type)
		n.typValid = true
	}
	return n.typ
}

// SetType replaces the node type.
func (n *Node) SetType(t types.Type) {
	n.Type = t.Encode()
	n.typ = t
	n.typValid = true
}

// Ty returns the decoded parameter type.
func (p *Parm) Ty() types.Type {
	if !p.typValid {
		p.typ, _ = types.Parse(p.Type)
		p.typValid = true
	}
	return p.typ
}

// SetType replaces the parameter type.
func (p *Parm) SetType(t types.Type) {
	p.Type = t.Encode()
	p.typ = t
	p.typValid = true
}

// Pos returns the source position recorded by Tree.Link.
func (n *Node) Pos() source.Pos {
	return n.pos
}

// SetPos sets the position of a synthesised node.
func (n *Node) SetPos(p source.Pos) {
	n.pos = p
}

// Feature returns the value of a feature flag.
func (n *Node) Feature(name string) string {
	if n.Features == nil {
		return ""
	}
	return n.Features[name]
}

// HasFeature reports a feature set to anything but "" or "0".
func (n *Node) HasFeature(name string) bool {
	v := n.Feature(name)
	return v != "" && v != "0"
}

// SetFeature sets a feature flag.
func (n *Node) SetFeature(name, value string) {
	if n.Features == nil {
		n.Features = make(map[string]string)
	}
	n.Features[name] = value
}

// IsIgnored reports the ignore feature.
func (n *Node) IsIgnored() bool {
	return n.HasFeature("ignore")
}

func (n *Node) IsStatic() bool {
	return hasStorage(n.Storage, "static")
}

func (n *Node) IsVirtual() bool {
	return hasStorage(n.Storage, "virtual")
}

func (n *Node) IsFriend() bool {
	return hasStorage(n.Storage, "friend")
}

func (n *Node) IsTypedef() bool {
	return hasStorage(n.Storage, "typedef")
}

// IsPublic treats an empty access as public.
func (n *Node) IsPublic() bool {
	return n.Access == "" || n.Access == AccessPublic
}

// IsConstMethod reports a member function with a const-qualified object.
func (n *Node) IsConstMethod() bool {
	return strings.HasPrefix(n.Decl, "q(const).")
}

// IsStaticMember reports a static member of a class.
func (n *Node) IsStaticMember() bool {
	return n.IsMember && n.StaticBase
}

// Class returns the nearest enclosing class, skipping extend blocks.
func (n *Node) Class() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case KindClass:
			return p
		case KindExtend:
			continue
		case KindModule, KindNamespace:
			return nil
		}
	}
	return nil
}

// InClass reports whether the node is a direct member of a class.
func (n *Node) InClass() bool {
	return n.Class() != nil
}

// Group returns the overload group the node belongs to, or nil.
func (n *Node) Group() *OverloadGroup {
	return n.group
}

// IsOverloaded reports a node that needs a mangled name.
func (n *Node) IsOverloaded() bool {
	return n.Overloaded || (n.group != nil && len(n.group.Members) > 1)
}

// Clone makes a shallow copy with fresh generation state and copied
// parameters. Children are shared.
func (n *Node) Clone() *Node {
	c := *n
	c.Gen = Gen{}
	c.group = nil
	if n.Parms != nil {
		c.Parms = make([]*Parm, len(n.Parms))
		for i, p := range n.Parms {
			pc := *p
			pc.Gen = ParmGen{}
			c.Parms[i] = &pc
		}
	}
	if n.Features != nil {
		c.Features = make(map[string]string, len(n.Features))
		for k, v := range n.Features {
			c.Features[k] = v
		}
	}
	return &c
}

func hasStorage(storage, word string) bool {
	for _, f := range strings.Fields(storage) {
		if f == word {
			return true
		}
	}
	return false
}
