package marshal

import (
	"errors"
	"fmt"

	"cbridge/internal/decl"
	"cbridge/internal/typemap"
	"cbridge/internal/types"
)

// ErrNoCType reports a type without a ctype typemap.
var ErrNoCType = errors.New("no ctype typemap defined")

// CTypes resolves wrapper-facing types through the typemap database.
type CTypes struct {
	lookup typemap.Lookup
	sub    *Substituter
}

// NewCTypes binds a typemap lookup to a substituter.
func NewCTypes(lookup typemap.Lookup, sub *Substituter) *CTypes {
	return &CTypes{lookup: lookup, sub: sub}
}

func (c *CTypes) Substituter() *Substituter {
	return c.sub
}

func (c *CTypes) Lookup() typemap.Lookup {
	return c.lookup
}

// Template finds the ctype template of t and expands the type
// placeholders in it. The resolved type markers are left in place.
func (c *CTypes) Template(t types.Type, name string) (string, error) {
	tm, ok := c.lookup.ForType(typemap.KindCType, t, name)
	if !ok {
		return "", fmt.Errorf("%w for %s", ErrNoCType, t.Str(""))
	}
	return typemap.Expand(tm.Code, TypeVars("1", t, tm.Code)), nil
}

// FacadeReturn describes the façade return type of a function-like node.
func (c *CTypes) FacadeReturn(n *decl.Node) (Descriptor, error) {
	t := n.Ty()
	if t.IsVoid() {
		return Void, nil
	}
	tm, err := c.Template(t, n.SymName)
	if err != nil {
		return Descriptor{}, err
	}
	return c.sub.FacadeReturn(tm, t)
}

// FacadeParm describes a façade parameter.
func (c *CTypes) FacadeParm(p *decl.Parm) (Descriptor, error) {
	t := p.Ty()
	tm, err := c.Template(t, p.Name)
	if err != nil {
		return Descriptor{}, err
	}
	return c.sub.FacadeParm(tm, t)
}

// TypeVars returns the type placeholders of the value numbered num: its
// type, its local type and the types one level down and up.
func TypeVars(num string, t types.Type, ctype string) typemap.Vars {
	local := LocalType(t, ctype)
	return typemap.Vars{
		"$" + num + "_type":   t.Str(""),
		"$" + num + "_ltype":  local.Str(""),
		"$*" + num + "_type":  t.Pop().Str(""),
		"$*" + num + "_ltype": t.Pop().Ltype().Str(""),
		"$&" + num + "_type":  t.AddPointer().Str(""),
		"$&" + num + "_ltype": local.AddPointer().Str(""),
	}
}
