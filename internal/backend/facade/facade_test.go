package facade

import (
	"strings"
	"testing"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
)

// fakeTypes presents builtins as themselves and class pointers the way
// marshal does for known classes.
type fakeTypes struct{}

func (fakeTypes) FacadeReturn(n *decl.Node) (marshal.Descriptor, error) {
	return describe(n.Type, true)
}

func (fakeTypes) FacadeParm(p *decl.Parm) (marshal.Descriptor, error) {
	return describe(p.Type, false)
}

func describe(typ string, ret bool) (marshal.Descriptor, error) {
	switch {
	case typ == "void":
		return marshal.Void, nil
	case typ == "missing":
		return marshal.Descriptor{}, marshal.ErrNoCType
	case strings.HasPrefix(typ, "p."):
		cls := strings.TrimPrefix(typ, "p.")
		d := marshal.Descriptor{Type: cls + " *"}
		if ret {
			d.WrapStart = "[=] { auto swig_res = "
			d.WrapEnd = "; return swig_res ? new " + cls + "(swig_res) : nullptr; }()"
		} else {
			d.WrapEnd = "->swig_self()"
		}
		return d, nil
	case strings.HasPrefix(typ, "r."):
		cls := strings.TrimPrefix(typ, "r.")
		if ret {
			return marshal.Descriptor{Type: cls, WrapStart: cls + "{", WrapEnd: ", false}"}, nil
		}
		return marshal.Descriptor{Type: cls + " &", WrapEnd: ".swig_self()"}, nil
	}
	return marshal.Descriptor{Type: typ}, nil
}

type proxyNames struct{}

func (proxyNames) ProxyName(n *decl.Node) string {
	return n.SymName
}

func newEnv(checks Checks) (Env, *diag.Bag) {
	bag := diag.NewBag(100)
	return Env{
		Sections: &Sections{},
		Types:    fakeTypes{},
		Names:    proxyNames{},
		Reporter: diag.BagReporter{Bag: bag},
		Checks:   checks,
	}, bag
}

// wrapped prepares a member the way the flat emitter leaves it.
func wrapped(n *decl.Node, cls *decl.Node, wname string) *decl.Node {
	n.Parent = cls
	n.Gen.WrapName = wname
	parms := n.Parms
	if n.IsMember && !n.StaticBase && n.Kind != decl.KindConstructor {
		self := &decl.Parm{Name: "self", Type: "p." + cls.Name, Self: true}
		parms = append([]*decl.Parm{self}, parms...)
	}
	for i, p := range parms {
		p.Gen.LName = "arg" + string(rune('1'+i))
	}
	n.Gen.Parms = parms
	return n
}

func TestShapeScenario(t *testing.T) {
	env, bag := newEnv(SwigChecks)

	area := decl.ConstMethod("area", "double")
	area.Storage = "virtual"
	shape := decl.Class("Shape", nil, area)

	circle := decl.Class("Circle", []string{"Shape"},
		decl.Ctor(decl.P("r", "double")),
		decl.Dtor(),
	)

	sc := Open(env, shape, nil)
	if sc.Base() != BaseNone {
		t.Fatalf("Shape base = %v", sc.Base())
	}
	sc.EmitMember(wrapped(area, shape, "Shape_area"))
	sc.Close()

	cc := Open(env, circle, []*decl.Node{shape})
	if cc.Base() != BaseSingle {
		t.Fatalf("Circle base = %v", cc.Base())
	}
	cc.EmitMember(wrapped(circle.Children[0], circle, "Circle_new"))
	cc.EmitMember(wrapped(circle.Children[1], circle, "Circle_delete"))
	cc.Close()

	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	types := env.Sections.Types.String()
	for _, want := range []string{"class Shape;\n", "class Circle;\n"} {
		if !strings.Contains(types, want) {
			t.Errorf("types missing %q:\n%s", want, types)
		}
	}

	decls := env.Sections.Decls.String()
	for _, want := range []string{
		"class Shape {\npublic:\n",
		"  virtual double area() const;\n",
		"  explicit Shape(SwigObj_Shape* swig_self, bool swig_owns_self = true) noexcept : swig_self_{swig_self}, swig_owns_self_{swig_owns_self} {}\n",
		"  Shape(Shape const&) = delete;\n",
		"  Shape& operator=(Shape const&) = delete;\n",
		"  Shape(Shape&& obj) noexcept : swig_self_{obj.swig_self_}, swig_owns_self_{obj.swig_owns_self_} { obj.swig_owns_self_ = false; }\n",
		"  SwigObj_Shape* swig_self() const noexcept { return swig_self_; }\n",
		"  SwigObj_Shape* swig_self_;\n",
		"  bool swig_owns_self_;\n",
		"class Circle : public Shape {\npublic:\n",
		"  Circle(double r);\n",
		"  ~Circle() {\n    if (swig_owns_self_) {\n      Circle_delete(swig_self());\n      swig_owns_self_ = false;\n    }\n  }\n",
		"  explicit Circle(SwigObj_Circle* swig_self, bool swig_owns_self = true) noexcept : Shape{(SwigObj_Shape*)swig_self, swig_owns_self} {}\n",
		"  Circle(Circle&& obj) = default;\n",
		"  Circle& operator=(Circle&& obj) = default;\n",
		"  SwigObj_Circle* swig_self() const noexcept { return (SwigObj_Circle*)Shape::swig_self(); }\n",
	} {
		if !strings.Contains(decls, want) {
			t.Errorf("decls missing %q:\n%s", want, decls)
		}
	}
	if strings.Count(decls, "bool swig_owns_self_;") != 1 {
		t.Errorf("derived class redeclares the ownership flag:\n%s", decls)
	}

	impls := env.Sections.Impls.String()
	for _, want := range []string{
		"inline double Shape::area() const { return swig_check(Shape_area(swig_self())); }\n",
		"inline Circle::Circle(double r) : Circle{swig_check(Circle_new(r))} {}\n",
	} {
		if !strings.Contains(impls, want) {
			t.Errorf("impls missing %q:\n%s", want, impls)
		}
	}
}

func TestMultipleBasesDisableFacade(t *testing.T) {
	env, bag := newEnv(Checks{})

	a := decl.Class("A", nil)
	b := decl.Class("B", nil)
	ignored := decl.Class("Hidden", nil)
	ignored.SetFeature("ignore", "1")
	m := decl.Method("run", "void")
	c := decl.Class("C", []string{"A", "Hidden", "B"}, m)

	fc := Open(env, c, []*decl.Node{a, ignored, b})
	if fc.Base() != BaseMultiple {
		t.Fatalf("base = %v, want multiple", fc.Base())
	}
	if fc.Active() {
		t.Fatal("class with two bases is active")
	}
	fc.EmitMember(wrapped(m, c, "C_run"))
	fc.Close()

	if env.Sections.Types.Len()+env.Sections.Decls.Len()+env.Sections.Impls.Len() != 0 {
		t.Errorf("disabled class produced output:\n%s%s", env.Sections.Types.String(), env.Sections.Decls.String())
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.GenMultipleBases || items[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %+v", items)
	}

	// one ignored base plus one real base is single inheritance
	env2, _ := newEnv(Checks{})
	d := decl.Class("D", []string{"Hidden", "A"})
	if got := Open(env2, d, []*decl.Node{ignored, a}).Base(); got != BaseSingle {
		t.Errorf("base = %v, want single", got)
	}
}

func TestCopyConstructorKeepsCopy(t *testing.T) {
	env, _ := newEnv(Checks{})

	ctor := decl.Ctor(decl.P("other", "r.Box"))
	ctor.CopyConstructor = true
	box := decl.Class("Box", nil, ctor)

	fc := Open(env, box, nil)
	fc.EmitMember(wrapped(ctor, box, "Box_copy"))
	fc.Close()

	decls := env.Sections.Decls.String()
	if strings.Contains(decls, "Box(Box const&) = delete;") {
		t.Errorf("copy constructor deleted despite being wrapped:\n%s", decls)
	}
	if !strings.Contains(decls, "Box& operator=(Box const&) = delete;") {
		t.Errorf("copy assignment not deleted:\n%s", decls)
	}
	impls := env.Sections.Impls.String()
	if !strings.Contains(impls, "inline Box::Box(Box & other) : Box{Box_copy(other.swig_self())} {}\n") {
		t.Errorf("copy constructor impl:\n%s", impls)
	}
}

func TestMemberRules(t *testing.T) {
	env, bag := newEnv(SwigChecks)

	static := decl.StaticMethod("count", "int")
	noexc := decl.Method("size", "int")
	noexc.NoExcept = true
	setter := decl.Method("reset", "void", decl.P("to", "p.Node"))
	inherited := decl.Method("base_only", "void")
	friend := decl.Func("operator==", "bool")
	friend.Storage = "friend"
	getter := decl.Func("x_get", "int")
	getter.IsMember = true
	getter.Role = decl.RoleMemberGet
	xset := decl.Func("x_set", "void", decl.P("x", "int"))
	xset.IsMember = true
	xset.Role = decl.RoleMemberSet
	vget := decl.Func("total_get", "r.Node")
	vget.Role = decl.RoleVarGet
	x := decl.Var("x", "int")
	total := decl.Var("total", "Node")

	node := decl.Class("Node", nil, static, noexc, setter, inherited, friend, x, total)
	getter.Gen.Variable = x
	xset.Gen.Variable = x
	vget.Gen.Variable = total
	inherited.Gen.InheritedFrom = decl.Class("Base", nil)

	fc := Open(env, node, nil)
	for _, m := range []struct {
		n     *decl.Node
		wname string
	}{
		{static, "Node_count"},
		{noexc, "Node_size"},
		{setter, "Node_reset"},
		{inherited, "Node_base_only"},
		{friend, "geo_operator_eq"},
		{getter, "Node_x_get"},
		{xset, "Node_x_set"},
		{vget, "Node_total_get"},
	} {
		fc.EmitMember(wrapped(m.n, node, m.wname))
	}
	fc.Close()

	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	decls := env.Sections.Decls.String()
	impls := env.Sections.Impls.String()

	for _, want := range []string{
		"  static int count();\n",
		"  int size();\n",
		"  void reset(Node * to);\n",
		"  int x() const { return Node_x_get(swig_self()); }\n",
		"  void x(int x) { Node_x_set(swig_self(), x); }\n",
		"  static Node total() { return Node{Node_total_get(), false}; }\n",
	} {
		if !strings.Contains(decls, want) {
			t.Errorf("decls missing %q:\n%s", want, decls)
		}
	}
	for _, want := range []string{
		"inline int Node::count() { return swig_check(Node_count()); }\n",
		"inline int Node::size() { return Node_size(swig_self()); }\n",
		"inline void Node::reset(Node * to) { Node_reset(swig_self(), to->swig_self()); swig_check(); }\n",
	} {
		if !strings.Contains(impls, want) {
			t.Errorf("impls missing %q:\n%s", want, impls)
		}
	}
	for _, unwanted := range []string{"base_only", "operator=="} {
		if strings.Contains(decls+impls, unwanted) {
			t.Errorf("output mentions skipped member %q", unwanted)
		}
	}
}

func TestMissingTypeSkipsMember(t *testing.T) {
	env, bag := newEnv(Checks{})

	m := decl.Method("blob", "missing")
	cls := decl.Class("Store", nil, m)
	fc := Open(env, cls, nil)
	fc.EmitMember(wrapped(m, cls, "Store_blob"))
	fc.Close()

	if strings.Contains(env.Sections.Decls.String(), "blob") {
		t.Errorf("member with unresolved type emitted")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.TmpMissing {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestAddEnum(t *testing.T) {
	env, _ := newEnv(Checks{})
	cls := decl.Class("Palette", nil)
	fc := Open(env, cls, nil)

	env.Sections.AddEnum(fc, "  enum Color {\n    Red\n  };\n\n")
	fc.Close()
	env.Sections.AddEnum(fc, "enum Mode {\n  On\n};\n\n")

	if !strings.Contains(env.Sections.Decls.String(), "  enum Color {") {
		t.Errorf("nested enum not in class body:\n%s", env.Sections.Decls.String())
	}
	if !strings.Contains(env.Sections.Types.String(), "enum Mode {") {
		t.Errorf("namespace enum not in types:\n%s", env.Sections.Types.String())
	}
}
