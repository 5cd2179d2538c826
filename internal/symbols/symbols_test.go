package symbols

import (
	"errors"
	"testing"

	"cbridge/internal/decl"
	"cbridge/internal/types"
)

func link(t *testing.T, tree *decl.Tree) *decl.Tree {
	t.Helper()
	if err := tree.Link(nil); err != nil {
		t.Fatalf("Link: %v", err)
	}
	return tree
}

func selfParm(cls string) *decl.Parm {
	return &decl.Parm{Name: "self", Type: "p." + cls, Self: true}
}

func withSelf(n *decl.Node, cls string) []*decl.Parm {
	return append([]*decl.Parm{selfParm(cls)}, n.Parms...)
}

func TestMangleType(t *testing.T) {
	td := types.Typedefs{}
	td.Add("real", types.Named("double"))
	tests := []struct {
		enc  string
		want string
	}{
		{"int", "i"},
		{"double", "d"},
		{"unsigned int", "u"},
		{"p.char", "pc"},
		{"p.q(const).char", "pcc"},
		{"r.q(const).int", "rci"},
		{"q(volatile).int", "vi"},
		{"a(10).int", "a10i"},
		{"enum Color", "eColor"},
		{"enum ns::Color", "eColor"},
		{"Shape", "Shape"},
		{"p.ns::Thing", "pns_Thing"},
		{"p.f(int).void", "f"},
		{"m(Shape).f(int).void", "f"},
		{"real", "d"},
	}
	for _, tt := range tests {
		if got := MangleType(types.MustParse(tt.enc), td); got != tt.want {
			t.Errorf("MangleType(%q) = %q, want %q", tt.enc, got, tt.want)
		}
	}
}

func TestMangleIdent(t *testing.T) {
	tests := map[string]string{
		"a::b::c":  "a_b_c",
		"Shape":    "Shape",
		"operator+": "operator_",
		"café": "café",
	}
	for in, want := range tests {
		if got := MangleIdent(in); got != want {
			t.Errorf("MangleIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOverloadDistinctness(t *testing.T) {
	setInt := decl.Func("set", "void", decl.P("v", "int"))
	setDouble := decl.Func("set", "void", decl.P("v", "double"))
	setPtr := decl.Func("set", "void", decl.P("v", "p.Shape"), decl.P("n", "int"))
	tree := link(t, decl.NewTree("geo", true, setInt, setDouble, setPtr))
	r := NewResolver(Options{Module: "geo"}, tree, tree.Typedefs())

	names := map[string]bool{}
	for _, n := range []*decl.Node{setInt, setDouble, setPtr} {
		name := r.FunctionName(n, n.Parms)
		if names[name] {
			t.Fatalf("duplicate overload name %q", name)
		}
		names[name] = true
	}
	if setInt.Gen.WrapName != "geo_set_i" || setDouble.Gen.WrapName != "geo_set_d" {
		t.Errorf("unexpected names %q %q", setInt.Gen.WrapName, setDouble.Gen.WrapName)
	}
	if setPtr.Gen.WrapName != "geo_set_pShape_i" {
		t.Errorf("unexpected name %q", setPtr.Gen.WrapName)
	}
}

func TestOverloadSkipsSelfAndConstTwin(t *testing.T) {
	get := decl.Method("get", "int", decl.P("i", "int"))
	getConst := decl.ConstMethod("get", "int", decl.P("i", "int"))
	make1 := decl.StaticMethod("make", "p.Box", decl.P("n", "int"))
	make2 := decl.StaticMethod("make", "p.Box")
	ctor1 := decl.Ctor()
	ctor2 := decl.Ctor(decl.P("n", "int"))
	copyCtor := decl.Ctor(decl.P("other", "r.q(const).Box"))
	copyCtor.CopyConstructor = true
	box := decl.Class("Box", nil, get, getConst, make1, make2, ctor1, ctor2, copyCtor)
	tree := link(t, decl.NewTree("m", true, box))
	r := NewResolver(Options{Module: "m"}, tree, nil)

	tests := []struct {
		n     *decl.Node
		parms []*decl.Parm
		want  string
	}{
		{get, withSelf(get, "Box"), "Box_get_i"},
		{getConst, withSelf(getConst, "Box"), "Box_get_const_i"},
		{make1, make1.Parms, "Box_make_i"},
		{make2, make2.Parms, "Box_make"},
		{ctor1, ctor1.Parms, "Box_new"},
		{ctor2, ctor2.Parms, "Box_new_i"},
		{copyCtor, copyCtor.Parms, "Box_copy"},
	}
	for _, tt := range tests {
		if got := r.FunctionName(tt.n, tt.parms); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.n.Name, got, tt.want)
		}
	}
}

func TestWrapperNamePrefixes(t *testing.T) {
	free := decl.Func("version", "int")
	ns := &decl.Node{Kind: decl.KindNamespace, Name: "geo", Features: map[string]string{"nspace": "1"}}
	inner := decl.Func("geo::area", "double")
	inner.SymName = "area"
	ns.Children = []*decl.Node{inner}
	getter := decl.Func("counter_get", "int")
	getter.Role = decl.RoleVarGet
	tree := link(t, decl.NewTree("mod", true, free, ns, getter))

	r := NewResolver(Options{Module: "mod"}, tree, nil)
	if got := r.FunctionName(free, nil); got != "mod_version" {
		t.Errorf("module prefix: %q", got)
	}
	if got := r.FunctionName(inner, nil); got != "geo_area" {
		t.Errorf("nspace prefix: %q", got)
	}
	if got := r.FunctionName(getter, nil); got != "counter_get" {
		t.Errorf("accessor must stay bare: %q", got)
	}

	free.Gen = decl.Gen{}
	rp := NewResolver(Options{Module: "mod", Prefix: "pfx"}, tree, nil)
	if got := rp.FunctionName(free, nil); got != "pfx_version" {
		t.Errorf("global prefix: %q", got)
	}
}

func TestProxyNameMemoised(t *testing.T) {
	shape := decl.Class("Shape", nil)
	thing := decl.Class("Thing", nil)
	thing.Nspace = "geo.parts"
	tree := link(t, decl.NewTree("m", true, shape, thing))

	r := NewResolver(Options{Module: "m", Prefix: "pfx"}, tree, nil)
	first := r.ProxyName(shape)
	if first != "pfx_Shape" {
		t.Fatalf("ProxyName = %q", first)
	}
	// later option changes must not affect the memoised value
	r2 := NewResolver(Options{Module: "m"}, tree, nil)
	if second := r2.ProxyName(shape); second != first {
		t.Fatalf("proxy name not memoised: %q vs %q", first, second)
	}
	if got := r.ProxyName(thing); got != "geo_parts_Thing" {
		t.Errorf("nspace proxy = %q", got)
	}
	if got, ok := r.ClassProxyName(types.MustParse("r.q(const).Shape")); !ok || got != "pfx_Shape" {
		t.Errorf("ClassProxyName = %q, %v", got, ok)
	}
	if _, ok := r.ClassProxyName(types.MustParse("p.p.Shape")); ok {
		t.Errorf("pointer to pointer must not resolve to a class")
	}
}

func TestEnumName(t *testing.T) {
	inner := decl.Enum("Color", decl.Item("Red", "0"))
	shape := decl.Class("Shape", nil, inner)
	global := decl.Enum("Mode", decl.Item("On", "1"))
	tree := link(t, decl.NewTree("m", true, shape, global))

	r := NewResolver(Options{Module: "m"}, tree, nil)
	if got := r.EnumName(inner); got != "Shape_Color" {
		t.Errorf("class enum = %q", got)
	}
	if got := r.EnumName(global); got != "Mode" {
		t.Errorf("global enum = %q", got)
	}
}

func TestTableUniqueness(t *testing.T) {
	tbl := NewTable()
	a := decl.Func("a", "int")
	b := decl.Func("b", "int")
	if err := tbl.Add("m_f", a); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := tbl.Add("m_f", a); err != nil {
		t.Fatalf("re-adding the same node must succeed: %v", err)
	}
	err := tbl.Add("m_f", b)
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected ErrDuplicateSymbol, got %v", err)
	}
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Previous != a || dup.Node != b {
		t.Fatalf("DuplicateError not populated: %+v", dup)
	}
	if n, ok := tbl.Lookup("m_f"); !ok || n != a || tbl.Len() != 1 {
		t.Errorf("lookup after collision")
	}
}

func TestTableRelease(t *testing.T) {
	tbl := NewTable()
	a := decl.Func("a", "int")
	b := decl.Func("b", "int")
	if err := tbl.Add("m_f", a); err != nil {
		t.Fatal(err)
	}
	tbl.Release("m_f", b)
	if n, ok := tbl.Lookup("m_f"); !ok || n != a {
		t.Fatalf("release by another node dropped the name")
	}
	tbl.Release("m_f", a)
	if err := tbl.Add("m_f", b); err != nil {
		t.Errorf("released name still taken: %v", err)
	}
}
