package decl

import (
	"fmt"

	"fortio.org/safecast"

	"cbridge/internal/source"
	"cbridge/internal/types"
)

// Tree is a whole module as produced by the front end.
type Tree struct {
	// Module is the module name; it names the generated files.
	Module string `msgpack:"module" json:"module"`
	// CPlusPlus is set when the declarations come from C++ input.
	CPlusPlus bool    `msgpack:"cplusplus,omitempty" json:"cplusplus,omitempty"`
	Children  []*Node `msgpack:"children" json:"children"`

	// Root is the synthetic module node parenting the top-level children.
	Root *Node `msgpack:"-" json:"-"`

	classes  map[string]*Node
	enums    map[string]*Node
	typedefs types.Typedefs
	linked   bool
}

// OverloadGroup is the ordered set of sibling declarations sharing one name.
type OverloadGroup struct {
	Name    string
	Members []*Node
}

// Index returns the position of n in the group, or -1.
func (g *OverloadGroup) Index(n *Node) int {
	for i, m := range g.Members {
		if m == n {
			return i
		}
	}
	return -1
}

// Link restores parent pointers, overload groups, class and enum indexes
// and source positions, and validates every encoded type. It is idempotent.
func (t *Tree) Link(fs *source.FileSet) error {
	if t.linked {
		return nil
	}
	if fs == nil {
		fs = source.NewFileSet()
	}
	t.Root = &Node{Kind: KindModule, Name: t.Module, SymName: t.Module, Children: t.Children}
	t.classes = make(map[string]*Node)
	t.enums = make(map[string]*Node)
	t.typedefs = types.Typedefs{}
	if err := t.link(t.Root, fs); err != nil {
		return err
	}
	t.linked = true
	return nil
}

func (t *Tree) link(parent *Node, fs *source.FileSet) error {
	groups := make(map[string]*OverloadGroup)
	for _, n := range parent.Children {
		if n == nil {
			return fmt.Errorf("%s: nil child", parent.Name)
		}
		n.Parent = parent
		if err := validate(n); err != nil {
			return err
		}
		line, err := safecast.Conv[uint32](n.Line)
		if err != nil {
			return fmt.Errorf("%s: bad line %d: %w", n.Name, n.Line, err)
		}
		n.pos = source.Pos{File: fs.Register(n.File), Line: line}

		switch n.Kind {
		case KindClass:
			if !n.ForwardDecl {
				t.classes[n.Name] = n
			}
		case KindEnum:
			if !n.ForwardDecl {
				t.enums[n.Name] = n
				if n.TDName != "" {
					t.enums[n.TDName] = n
				}
			}
		case KindTypedef:
			t.typedefs.Add(n.Name, n.Ty())
		}

		if n.Kind == KindFunction || n.Kind == KindConstructor {
			if !n.IsIgnored() && n.Role == RoleNone {
				key := string(n.Kind) + ":" + n.symOrName()
				g, ok := groups[key]
				if !ok {
					g = &OverloadGroup{Name: n.symOrName()}
					groups[key] = g
				}
				g.Members = append(g.Members, n)
				n.group = g
			}
		}
		if err := t.link(n, fs); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) symOrName() string {
	if n.SymName != "" {
		return n.SymName
	}
	return n.Name
}

func validate(n *Node) error {
	if _, err := types.Parse(n.Type); err != nil {
		return fmt.Errorf("%s %s: %w", n.Kind, n.Name, err)
	}
	for _, p := range n.Parms {
		if _, err := types.Parse(p.Type); err != nil {
			return fmt.Errorf("%s %s: parameter %s: %w", n.Kind, n.Name, p.Name, err)
		}
	}
	// constructors and destructors derive their types from the class
	if n.Kind == KindFunction && n.Type == "" {
		return fmt.Errorf("%s %s: missing return type", n.Kind, n.Name)
	}
	return nil
}

// LookupClass finds a class by qualified name.
func (t *Tree) LookupClass(name string) (*Node, bool) {
	n, ok := t.classes[name]
	return n, ok
}

// LookupEnum finds an enum by qualified or typedef name.
func (t *Tree) LookupEnum(name string) (*Node, bool) {
	n, ok := t.enums[name]
	return n, ok
}

// Typedefs returns the typedef table collected by Link.
func (t *Tree) Typedefs() types.Typedefs {
	return t.typedefs
}

// AddClass registers a synthesised class.
func (t *Tree) AddClass(n *Node) {
	if t.classes == nil {
		t.classes = make(map[string]*Node)
	}
	t.classes[n.Name] = n
}

// Prepend inserts a synthesised node in front of the top-level
// declarations. The node is linked at once when the tree already is.
func (t *Tree) Prepend(n *Node, fs *source.FileSet) error {
	t.Children = append([]*Node{n}, t.Children...)
	if !t.linked {
		return nil
	}
	if fs == nil {
		fs = source.NewFileSet()
	}
	holder := &Node{Kind: KindModule, Name: t.Module, Children: []*Node{n}}
	if err := t.link(holder, fs); err != nil {
		t.Children = t.Children[1:]
		return err
	}
	n.Parent = t.Root
	t.Root.Children = t.Children
	return nil
}

// Walk visits every node depth first; returning false from fn skips the
// node's children.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				walk(n.Children)
			}
		}
	}
	walk(t.Children)
}

// Imports returns the module names referenced by import nodes.
func (t *Tree) Imports() []string {
	var out []string
	t.Walk(func(n *Node) bool {
		if n.Kind == KindImport && n.Import != "" {
			out = append(out, n.Import)
		}
		return n.Kind != KindClass
	})
	return out
}
