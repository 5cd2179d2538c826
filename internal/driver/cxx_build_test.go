package driver

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"cbridge/internal/decl"
)

// implHeader is the wrapped library. Heap releases of shapes are counted
// through the class operator delete, so temporaries do not count.
const implHeader = `#pragma once
#include <new>
#include <stdexcept>

extern int shape_deletes;

class Shape {
public:
  Shape() {}
  virtual ~Shape() {}
  double area() { return 1.5; }
  Shape& self_ref() { return *this; }
  Shape clone() { return Shape(); }
  static Shape* create() { return new Shape(); }
  void fail() { throw std::runtime_error("boom"); }
  static void operator delete(void* p) { ++shape_deletes; ::operator delete(p); }
};

class Circle : public Shape {
public:
  explicit Circle(double r) : r(r) {}
  ~Circle() {}
  double r;
};
`

const implSource = `#include "impl.h"

int shape_deletes = 0;
`

const ownershipMain = `#include <cstdio>
#include <cstring>
#include <utility>
#include "geo_wrap.h"

extern int shape_deletes;

static int failures = 0;

static void expect(const char* what, int want) {
  if (shape_deletes != want) {
    std::printf("%s: deletes=%d want %d\n", what, shape_deletes, want);
    failures++;
  }
  shape_deletes = 0;
}

int main() {
  geo::Shape owner;
  if (owner.area() != 1.5) {
    std::printf("area=%g\n", owner.area());
    failures++;
  }

  {
    geo::Shape borrowed = owner.self_ref();
    (void)borrowed.area();
  }
  expect("borrowed", 0);

  { geo::Shape s; }
  expect("owned", 1);

  {
    geo::Circle c(2.0);
    (void)c.area();
  }
  expect("owned derived", 1);

  {
    geo::Shape a;
    geo::Shape b(std::move(a));
  }
  expect("moved", 1);

  { geo::Shape copy = owner.clone(); }
  expect("by value", 1);

  {
    geo::Shape* p = geo::Shape::create();
    delete p;
  }
  expect("by pointer", 1);

  try {
    owner.fail();
    std::printf("no exception\n");
    failures++;
  } catch (geo::SWIG_CException const& e) {
    if (std::strcmp(e.msg(), "boom") != 0) {
      std::printf("msg=%s\n", e.msg());
      failures++;
    }
  }
  expect("exception", 0);

  if (failures == 0)
    std::printf("ok\n");
  return failures;
}
`

func ownershipTree() *decl.Tree {
	shape := decl.Class("Shape", nil,
		decl.Ctor(),
		decl.Dtor(),
		decl.Method("area", "double"),
		decl.Method("self_ref", "r.Shape"),
		decl.Method("clone", "Shape"),
		decl.StaticMethod("create", "p.Shape"),
		decl.Method("fail", "void"),
	)
	circle := decl.Class("Circle", []string{"Shape"},
		decl.Ctor(decl.P("r", "double")),
		decl.Dtor(),
	)
	return decl.NewTree("geo", true, shape, circle)
}

// TestGeneratedModuleRuns builds a module with the default options against
// a small library and runs a program counting the releases of each kind
// of façade object.
func TestGeneratedModuleRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("builds C++ code")
	}
	gxx, err := exec.LookPath("g++")
	if err != nil {
		t.Skip("g++ not found")
	}

	opts := DefaultOptions()
	opts.Includes = []string{"impl.h"}
	res, bag := generate(t, ownershipTree(), opts)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	dir := t.TempDir()
	if err := res.Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	files := map[string]string{
		"impl.h":   implHeader,
		"impl.cpp": implSource,
		"main.cpp": ownershipMain,
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	bin := filepath.Join(dir, "ownership")
	build := exec.Command(gxx, "-std=c++17", "-I", dir, "-o", bin,
		filepath.Join(dir, "main.cpp"),
		filepath.Join(dir, "impl.cpp"),
		filepath.Join(dir, res.SourceName),
	)
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("g++ failed: %v\n%s\n--- %s ---\n%s", err, out, res.HeaderName, res.Header)
	}

	out, err := exec.Command(bin).CombinedOutput()
	if err != nil {
		t.Fatalf("program failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(string(out)) != "ok" {
		t.Errorf("program output:\n%s", out)
	}
}
