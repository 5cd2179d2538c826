package types

// maxTypedefDepth bounds typedef chains so cycles cannot loop forever.
const maxTypedefDepth = 64

// Typedefs maps typedef names to their underlying types.
type Typedefs map[string]Type

// Add records a typedef.
func (td Typedefs) Add(name string, t Type) {
	td[name] = t
}

// Resolve replaces the base of t with its typedef target once. ok is false
// when the base is not a typedef.
func (td Typedefs) Resolve(t Type) (Type, bool) {
	target, ok := td[t.Base]
	if !ok {
		return t, false
	}
	out := Type{Base: target.Base}
	out.Elems = make([]Elem, 0, len(t.Elems)+len(target.Elems))
	out.Elems = append(out.Elems, t.Elems...)
	out.Elems = append(out.Elems, target.Elems...)
	return out, true
}

// ResolveAll resolves typedefs transitively.
func (td Typedefs) ResolveAll(t Type) Type {
	for i := 0; i < maxTypedefDepth; i++ {
		next, ok := td.Resolve(t)
		if !ok {
			return next
		}
		t = next
	}
	return t
}
