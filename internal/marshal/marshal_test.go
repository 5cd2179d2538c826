package marshal

import (
	"errors"
	"strings"
	"testing"

	"cbridge/internal/decl"
	"cbridge/internal/symbols"
	"cbridge/internal/types"
)

func newTestSubstituter(t *testing.T, cplusplus bool) (*Substituter, *strings.Builder) {
	t.Helper()
	shape := decl.Class("Shape", nil, decl.Ctor(), decl.Dtor())
	point := decl.Class("geo::Point", nil)
	tree := decl.NewTree("geo", cplusplus,
		shape,
		point,
		decl.Enum("Color", decl.Item("Red", "0")),
	)
	if err := tree.Link(nil); err != nil {
		t.Fatalf("link: %v", err)
	}
	res := symbols.NewResolver(symbols.Options{Module: "geo"}, tree, tree.Typedefs())
	var forward strings.Builder
	return NewSubstituter(res, tree, tree.Typedefs(), cplusplus, &forward), &forward
}

func TestResolve(t *testing.T) {
	s, _ := newTestSubstituter(t, true)

	tests := []struct {
		name string
		tm   string
		typ  string
		out  Output
		want string
	}{
		{"pointer decl", "$resolved_type*", "p.Shape", Declarations, "Shape*"},
		{"pointer def", "$resolved_type*", "p.Shape", Definitions, "SwigObj*"},
		{"const pointer", "$resolved_type*", "p.q(const).Shape", Declarations, "Shape*"},
		{"reference", "$*resolved_type*", "r.q(const).Shape", Declarations, "Shape*"},
		{"value", "$&resolved_type*", "Shape", Declarations, "Shape*"},
		{"value def", "$&resolved_type*", "Shape", Definitions, "SwigObj*"},
		{"nspace class", "$resolved_type*", "p.geo::Point", Declarations, "Point*"},
		{"enum", "$resolved_type", "enum Color", Declarations, "Color"},
		{"unknown enum", "$resolved_type", "enum Mode", Declarations, "int"},
		{"enum def", "$resolved_type", "enum Color", Definitions, "int"},
		{"builtin pointer", "$resolved_type*", "p.p.int", Declarations, "int **"},
		{"array", "$resolved_type*", "a(4).Shape", Declarations, "Shape*"},
		{"no marker", "$1_ltype", "int", Declarations, "$1_ltype"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Resolve(tt.tm, types.MustParse(tt.typ), tt.out)
			if got != tt.want {
				t.Errorf("Resolve(%q, %s) = %q, want %q", tt.tm, tt.typ, got, tt.want)
			}
		})
	}
}

func TestResolveOpaqueForwardOnce(t *testing.T) {
	s, forward := newTestSubstituter(t, true)

	for i := 0; i < 2; i++ {
		got := s.Resolve("$resolved_type*", types.MustParse("p.Handle"), Declarations)
		if got != "SWIGTYPE_p_Handle*" {
			t.Fatalf("got %q", got)
		}
	}
	want := "typedef struct SWIGTYPE_p_Handle SWIGTYPE_p_Handle;\n\n"
	if forward.String() != want {
		t.Errorf("forward declarations = %q, want %q", forward.String(), want)
	}

	if got := s.Resolve("$resolved_type*", types.MustParse("p.Handle"), Definitions); got != "SwigObj*" {
		t.Errorf("definition spelling = %q, want SwigObj*", got)
	}
}

func TestResolveCMode(t *testing.T) {
	s, forward := newTestSubstituter(t, false)

	if got := s.Resolve("$resolved_type*", types.MustParse("p.Point"), Declarations); got != "Point *" {
		t.Errorf("got %q, want %q", got, "Point *")
	}
	if forward.Len() != 0 {
		t.Errorf("C mode wrote forward declarations: %q", forward.String())
	}
}

func TestReturnTypeReplacesScopes(t *testing.T) {
	s, _ := newTestSubstituter(t, true)
	if got := s.ReturnType("ns::Thing", types.Named("int"), Declarations); got != "ns_Thing" {
		t.Errorf("got %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tm   string
		want Kind
	}{
		{"$resolved_type*", KindPtr},
		{"$*resolved_type*", KindRef},
		{"$&resolved_type*", KindObj},
		{"$resolved_type", KindPlain},
		{"int", KindPlain},
	}
	for _, tt := range tests {
		if got := Classify(tt.tm); got != tt.want {
			t.Errorf("Classify(%q) = %d, want %d", tt.tm, got, tt.want)
		}
	}
}

func TestLocalType(t *testing.T) {
	tests := []struct {
		typ  string
		tm   string
		want string
	}{
		{"Shape", "$&resolved_type*", "p.Shape"},
		{"q(const).Shape", "$&resolved_type*", "p.Shape"},
		{"r.q(const).int", "$*1_ltype", "p.int"},
		{"p.q(const).char", "$1_type", "p.char"},
		{"int", "$1_ltype", "int"},
	}
	for _, tt := range tests {
		got := LocalType(types.MustParse(tt.typ), tt.tm).Encode()
		if got != tt.want {
			t.Errorf("LocalType(%s) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestFacadeParm(t *testing.T) {
	s, _ := newTestSubstituter(t, true)

	tests := []struct {
		name     string
		tm       string
		typ      string
		wantType string
		wantCall string
	}{
		{"pointer", "$resolved_type*", "p.Shape", "Shape *", "s->swig_self()"},
		{"reference", "$*resolved_type*", "r.q(const).Shape", "Shape const &", "s.swig_self()"},
		{"value", "$&resolved_type*", "Shape", "Shape const&", "s.swig_self()"},
		{"namespaced", "$resolved_type*", "p.geo::Point", "Point *", "s->swig_self()"},
		{"builtin", "int", "int", "int", "s"},
		{"enum", "$resolved_type", "enum Color", "Color", "s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.FacadeParm(tt.tm, types.MustParse(tt.typ))
			if err != nil {
				t.Fatalf("FacadeParm: %v", err)
			}
			if d.Type != tt.wantType {
				t.Errorf("type = %q, want %q", d.Type, tt.wantType)
			}
			if got := d.Wrap("s"); got != tt.wantCall {
				t.Errorf("call = %q, want %q", got, tt.wantCall)
			}
		})
	}
}

func TestFacadeReturn(t *testing.T) {
	s, _ := newTestSubstituter(t, true)

	tests := []struct {
		name     string
		tm       string
		typ      string
		wantType string
		wantExpr string
	}{
		{
			"pointer", "$resolved_type*", "p.Shape", "Shape *",
			"[=] { auto swig_res = f(); return swig_res ? new Shape(swig_res) : nullptr; }()",
		},
		{"reference", "$*resolved_type*", "r.Shape", "Shape", "Shape{f(), false}"},
		{"value", "$&resolved_type*", "Shape", "Shape", "Shape(f())"},
		{"const value", "$&resolved_type*", "q(const).Shape", "Shape", "Shape(f())"},
		{"builtin", "double", "double", "double", "f()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.FacadeReturn(tt.tm, types.MustParse(tt.typ))
			if err != nil {
				t.Fatalf("FacadeReturn: %v", err)
			}
			if d.Type != tt.wantType {
				t.Errorf("type = %q, want %q", d.Type, tt.wantType)
			}
			if got := d.Wrap("f()"); got != tt.wantExpr {
				t.Errorf("expr = %q, want %q", got, tt.wantExpr)
			}
		})
	}
}

func TestFacadeReturnUnknownReference(t *testing.T) {
	s, _ := newTestSubstituter(t, true)

	_, err := s.FacadeReturn("$*resolved_type*", types.MustParse("r.Handle"))
	if !errors.Is(err, ErrUnknownReturn) {
		t.Fatalf("err = %v, want ErrUnknownReturn", err)
	}

	d, err := s.FacadeReturn("$resolved_type*", types.MustParse("p.Handle"))
	if err != nil {
		t.Fatalf("unknown pointer: %v", err)
	}
	if d.Type != "SWIGTYPE_p_Handle*" || d.WrapStart != "" || d.WrapEnd != "" {
		t.Errorf("unknown pointer descriptor = %+v", d)
	}
}
