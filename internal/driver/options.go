package driver

import (
	"fmt"
	"strings"

	"cbridge/internal/symbols"
)

// Language selects how the declarations are wrapped.
type Language uint8

const (
	// LangAuto follows the declaration tree.
	LangAuto Language = iota
	LangC
	LangCXX
)

func (l Language) String() string {
	switch l {
	case LangC:
		return "c"
	case LangCXX:
		return "c++"
	}
	return "auto"
}

// ParseLanguage converts a manifest or flag value to a Language.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return LangAuto, nil
	case "c":
		return LangC, nil
	case "c++", "cxx", "cplusplus":
		return LangCXX, nil
	}
	return LangAuto, fmt.Errorf("invalid language: %q (expected: auto|c|c++)", s)
}

// ExceptionMode tells how C++ exceptions cross the flat layer.
type ExceptionMode uint8

const (
	// ExceptionsDisabled lets exceptions escape the wrappers.
	ExceptionsDisabled ExceptionMode = iota
	// ExceptionsEnabled catches them and defines SWIG_CException in this
	// module.
	ExceptionsEnabled
	// ExceptionsImported catches them but reuses SWIG_CException from an
	// imported module.
	ExceptionsImported
)

func (m ExceptionMode) String() string {
	switch m {
	case ExceptionsEnabled:
		return "enabled"
	case ExceptionsImported:
		return "imported"
	}
	return "disabled"
}

// Options configure the generation of one module.
type Options struct {
	// Module overrides the module name of the tree.
	Module   string
	Language Language
	// Facade builds the C++ classes in the header (C++ only).
	Facade bool
	// Exceptions catches C++ exceptions in every wrapper (C++ only).
	Exceptions bool
	// Namespace is the C++ namespace of the façade, "a::b" for nested ones.
	// It also gives the global prefix unless Prefix is set.
	Namespace string
	// Prefix is the global symbol prefix.
	Prefix string
	// Includes are the headers declaring the wrapped API. The source
	// includes them before the wrappers.
	Includes []string
	// HeaderName and SourceName name the generated files; both default
	// to names derived from the module.
	HeaderName string
	SourceName string
}

// DefaultOptions returns the options used without a manifest.
func DefaultOptions() Options {
	return Options{Facade: true, Exceptions: true}
}

// settings are Options resolved against the tree.
type settings struct {
	module     string
	cplusplus  bool
	facade     bool
	exceptions bool
	namespace  string
	prefix     string
	includes   []string
	headerName string
	sourceName string
}

func (o Options) resolve(treeModule string, treeCXX bool) settings {
	s := settings{module: treeModule, includes: o.Includes}
	if o.Module != "" {
		s.module = o.Module
	}
	switch o.Language {
	case LangC:
		s.cplusplus = false
	case LangCXX:
		s.cplusplus = true
	default:
		s.cplusplus = treeCXX
	}
	s.facade = s.cplusplus && o.Facade
	s.exceptions = s.cplusplus && o.Exceptions

	s.prefix = o.Prefix
	if s.prefix == "" && o.Namespace != "" {
		s.prefix = symbols.MangleIdent(o.Namespace)
	}
	s.namespace = o.Namespace
	if s.namespace == "" {
		s.namespace = s.module
	}

	s.headerName = o.HeaderName
	if s.headerName == "" {
		s.headerName = s.module + "_wrap.h"
	}
	s.sourceName = o.SourceName
	if s.sourceName == "" {
		if s.cplusplus {
			s.sourceName = s.module + "_wrap.cxx"
		} else {
			s.sourceName = s.module + "_wrap.c"
		}
	}
	return s
}
