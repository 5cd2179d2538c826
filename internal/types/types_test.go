package types

import (
	"errors"
	"testing"
)

func TestParseEncodeRoundTrip(t *testing.T) {
	inputs := []string{
		"int",
		"p.char",
		"p.q(const).char",
		"q(const).p.char",
		"r.q(const).Shape",
		"z.Shape",
		"a(10).int",
		"p.a(3).a(4).double",
		"p.f(int,p.q(const).char).void",
		"m(Shape).f(int).int",
		"enum Color",
		"p.ns::Thing",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			ty, err := Parse(in)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := ty.Encode(); got != in {
				t.Fatalf("round trip: got %q", got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"x.int", "p.", "a(3.int", "q().int", "p.f(int)).void"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) = %v, want ErrMalformed", in, err)
		}
	}
	ty, err := Parse("")
	if err != nil || !ty.IsZero() {
		t.Errorf("empty string must parse to the zero type")
	}
}

func TestStr(t *testing.T) {
	tests := []struct {
		enc, name, want string
	}{
		{"int", "x", "int x"},
		{"p.char", "", "char *"},
		{"p.q(const).char", "s", "char const *s"},
		{"q(const).p.char", "s", "char *const s"},
		{"r.q(const).Shape", "", "Shape const &"},
		{"a(10).int", "v", "int v[10]"},
		{"p.a(10).int", "v", "int (*v)[10]"},
		{"a(3).p.int", "v", "int *v[3]"},
		{"p.f(int,double).void", "cb", "void (*cb)(int, double)"},
		{"m(Shape).int", "pm", "int Shape::*pm"},
		{"enum Color", "c", "enum Color c"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.enc).Str(tt.name); got != tt.want {
			t.Errorf("Str(%q, %q) = %q, want %q", tt.enc, tt.name, got, tt.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		enc                                    string
		ptr, ref, arr, fnptr, builtin, enum, c bool
	}{
		{enc: "int", builtin: true},
		{enc: "unsigned long", builtin: true},
		{enc: "q(const).double", builtin: true, c: true},
		{enc: "p.int", ptr: true},
		{enc: "q(const).p.int", ptr: true, c: true},
		{enc: "r.Shape", ref: true},
		{enc: "z.Shape", ref: true},
		{enc: "a(4).char", arr: true},
		{enc: "p.f(int).void", ptr: true, fnptr: true},
		{enc: "enum Color", enum: true},
		{enc: "Shape"},
	}
	for _, tt := range tests {
		ty := MustParse(tt.enc)
		if ty.IsPointer() != tt.ptr || ty.IsReference() != tt.ref || ty.IsArray() != tt.arr ||
			ty.IsFunctionPointer() != tt.fnptr || ty.IsBuiltin() != tt.builtin ||
			ty.IsEnum() != tt.enum || ty.IsConst() != tt.c {
			t.Errorf("%q: unexpected predicates", tt.enc)
		}
	}
	if !MustParse("void").IsVoid() || !MustParse("...").IsVarargs() {
		t.Errorf("void/varargs not recognised")
	}
	if MustParse("enum Color").EnumName() != "Color" {
		t.Errorf("EnumName")
	}
}

func TestTransformations(t *testing.T) {
	tests := []struct {
		name string
		got  Type
		want string
	}{
		{"strip", MustParse("q(const).p.q(const).char").StripQualifiers(), "p.char"},
		{"strip-top", MustParse("q(const).p.q(const).char").StripTopQualifiers(), "p.q(const).char"},
		{"pop-pointer", MustParse("p.Shape").Pop(), "Shape"},
		{"pop-ref", MustParse("r.q(const).Shape").Pop(), "q(const).Shape"},
		{"pop-plain", MustParse("Shape").Pop(), "Shape"},
		{"add-pointer", MustParse("Shape").AddPointer(), "p.Shape"},
		{"ltype-ref", MustParse("r.q(const).Shape").Ltype(), "p.Shape"},
		{"ltype-array", MustParse("a(3).int").Ltype(), "p.int"},
		{"ltype-const", MustParse("q(const).int").Ltype(), "int"},
		{"array-elem", MustParse("a(2).a(3).int").ArrayElem(), "int"},
	}
	for _, tt := range tests {
		if got := tt.got.Encode(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPopDoesNotAlias(t *testing.T) {
	orig := MustParse("p.p.int")
	popped := orig.Pop()
	popped.Elems[0] = Elem{Kind: ElemReference}
	if orig.Encode() != "p.p.int" {
		t.Fatalf("Pop aliased the original: %q", orig.Encode())
	}
}

func TestMangleStr(t *testing.T) {
	tests := map[string]string{
		"p.Shape":          "_p_Shape",
		"p.p.int":          "_p_p_int",
		"r.q(const).ns::T": "_r_q_const__ns__T",
		"a(4).char":        "_a_4__char",
	}
	for enc, want := range tests {
		if got := MustParse(enc).MangleStr(); got != want {
			t.Errorf("MangleStr(%q) = %q, want %q", enc, got, want)
		}
	}
}

func TestTypedefs(t *testing.T) {
	td := Typedefs{}
	td.Add("real", Named("double"))
	td.Add("RealPtr", MustParse("p.real"))
	td.Add("Loop", Named("Loop"))

	if got := td.ResolveAll(MustParse("q(const).RealPtr")).Encode(); got != "q(const).p.double" {
		t.Errorf("ResolveAll = %q", got)
	}
	if got := td.ResolveAll(Named("Loop")).Encode(); got != "Loop" {
		t.Errorf("cyclic typedef = %q", got)
	}
	if _, ok := td.Resolve(Named("int")); ok {
		t.Errorf("int is not a typedef")
	}
}

func TestArrayLen(t *testing.T) {
	if n, ok := ArrayLen("16"); !ok || n != 16 {
		t.Errorf("ArrayLen(16) = %d,%v", n, ok)
	}
	if _, ok := ArrayLen("N"); ok {
		t.Errorf("symbolic dimension must not parse")
	}
	if _, ok := ArrayLen("-1"); ok {
		t.Errorf("negative dimension must not parse")
	}
}
