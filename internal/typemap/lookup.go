package typemap

import (
	"cbridge/internal/decl"
	"cbridge/internal/types"
)

// Lookup finds templates for return values and parameters.
type Lookup interface {
	// ForNode finds the template of kind for the node's own type.
	ForNode(kind Kind, n *decl.Node) (Template, bool)
	// ForParms finds the template of kind for parms[i], preferring
	// templates that cover several consecutive parameters.
	ForParms(kind Kind, parms []*decl.Parm, i int) (Template, bool)
	// ForType finds the template of kind for a bare type.
	ForType(kind Kind, t types.Type, name string) (Template, bool)
}

// Scope binds a DB to the typedef table of one module.
type Scope struct {
	db       *DB
	typedefs types.Typedefs
}

var _ Lookup = (*Scope)(nil)

// Scope returns a Lookup resolving typedefs through td.
func (db *DB) Scope(td types.Typedefs) *Scope {
	if td == nil {
		td = types.Typedefs{}
	}
	return &Scope{db: db, typedefs: td}
}

const maxResolveSteps = 32

func (s *Scope) ForNode(kind Kind, n *decl.Node) (Template, bool) {
	return s.ForType(kind, n.Ty(), n.SymName)
}

func (s *Scope) ForParms(kind Kind, parms []*decl.Parm, i int) (Template, bool) {
	if i < 0 || i >= len(parms) {
		return Template{}, false
	}
	if tm, ok := s.forMulti(kind, parms[i:]); ok {
		return tm, true
	}
	return s.ForType(kind, parms[i].Ty(), parms[i].Name)
}

// ForType searches exact, qualifier-stripped and array-generalised forms of
// t, then repeats with each typedef resolution step, and finally falls back
// to SWIGTYPE wildcards on the fully resolved type.
func (s *Scope) ForType(kind Kind, t types.Type, name string) (Template, bool) {
	cur := t
	for i := 0; i < maxResolveSteps; i++ {
		for _, cand := range candidates(cur) {
			if tm, ok := s.match(kind, cand, name); ok {
				return tm, true
			}
		}
		next, ok := s.typedefs.Resolve(cur)
		if !ok {
			break
		}
		cur = next
	}
	for _, cand := range wildcards(cur) {
		if tm, ok := s.match(kind, cand, name); ok {
			return tm, true
		}
	}
	return Template{}, false
}

func (s *Scope) match(kind Kind, pattern, name string) (Template, bool) {
	if name != "" {
		if sl, ok := s.db.index[key{kind: kind, pattern: pattern, name: name}]; ok {
			return sl.template(pattern), true
		}
	}
	if sl, ok := s.db.index[key{kind: kind, pattern: pattern}]; ok {
		return sl.template(pattern), true
	}
	return Template{}, false
}

func (s *Scope) forMulti(kind Kind, parms []*decl.Parm) (Template, bool) {
	slots := s.db.multi[kind]
	for i := len(slots) - 1; i >= 0; i-- {
		sl := slots[i]
		if sl.arity > len(parms) {
			continue
		}
		if sl.entry.Name != "" && sl.entry.Name != parms[0].Name {
			continue
		}
		matched := true
		for j, part := range sl.parts {
			if !s.matchesPattern(parms[j].Ty(), part) {
				matched = false
				break
			}
		}
		if matched {
			return sl.template(joinPatterns(sl.parts)), true
		}
	}
	return Template{}, false
}

func (s *Scope) matchesPattern(t types.Type, pattern string) bool {
	cur := t
	for i := 0; i < maxResolveSteps; i++ {
		for _, cand := range candidates(cur) {
			if cand == pattern {
				return true
			}
		}
		next, ok := s.typedefs.Resolve(cur)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

func candidates(t types.Type) []string {
	out := []string{t.Encode()}
	add := func(c string) {
		for _, o := range out {
			if o == c {
				return
			}
		}
		out = append(out, c)
	}
	stripped := t.StripQualifiers()
	add(stripped.Encode())
	add(anyArrays(t).Encode())
	add(anyArrays(stripped).Encode())
	return out
}

// anyArrays replaces every array dimension by ANY.
func anyArrays(t types.Type) types.Type {
	out := types.Type{Base: t.Base, Elems: make([]types.Elem, len(t.Elems))}
	for i, e := range t.Elems {
		if e.Kind == types.ElemArray {
			e = types.Elem{Kind: types.ElemArray, Arg: "ANY"}
		}
		out.Elems[i] = e
	}
	return out
}

// wildcards generalises the base to SWIGTYPE, first keeping the whole
// declarator and then dropping inner elements one at a time.
func wildcards(t types.Type) []string {
	var out []string
	seen := map[string]bool{}
	add := func(w types.Type) {
		for _, c := range candidates(w) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	if t.IsEnum() || (len(t.Elems) > 0 && t.StripQualifiers().BaseType().IsEnum()) {
		add(t.WithBase("enum SWIGTYPE"))
	}
	for k := len(t.Elems); k >= 0; k-- {
		w := types.Type{Elems: t.Elems[:k], Base: "SWIGTYPE"}
		if k == len(t.Elems) && t.BaseIsBuiltin() && t.IsPlain() {
			// plain builtins without a typemap are not objects
			continue
		}
		add(w)
	}
	return out
}

func joinPatterns(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
