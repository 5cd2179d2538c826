package driver

import (
	"strings"

	"cbridge/internal/backend/flat"
	"cbridge/internal/decl"
)

// headerPrelude defines the import macro used by every declaration in the
// header.
const headerPrelude = `#include <stddef.h>

#ifndef SWIGIMPORT
# if defined(_WIN32) || defined(__CYGWIN__)
#  ifdef __GNUC__
#   define SWIGIMPORT __attribute__((dllimport)) extern
#  else
#   define SWIGIMPORT __declspec(dllimport)
#  endif
# else
#  define SWIGIMPORT extern
# endif
#endif

`

const runtimeCommon = `#include <stdlib.h>
#include <string.h>

#ifndef SWIGEXPORTC
# if defined(_WIN32) || defined(__CYGWIN__)
#  define SWIGEXPORTC __declspec(dllexport)
# elif defined(__GNUC__)
#  define SWIGEXPORTC __attribute__((visibility("default")))
# else
#  define SWIGEXPORTC
# endif
#endif

`

const runtimeCXX = `#include <exception>
#include <utility>

typedef struct SwigObj SwigObj;

`

// runtimeException is the C++ side of the exception class. Modules that
// import another one only declare the raise function.
const runtimeException = `extern "C" SWIGEXPORTC void SWIG_CException_Raise(int code, const char* msg);

#ifndef SWIG_CException_DEFINED
class SWIG_CException {
public:
  SWIG_CException(const SWIG_CException& ex) : code(ex.code), msg(strdup(ex.msg)) { }
  ~SWIG_CException() { free(const_cast<char*>(msg)); }

  const int code;
  const char* const msg;

  static SWIG_CException* get_pending() {
    return PendingException;
  }

  static void reset_pending() {
    if (PendingException) {
      delete PendingException;
      PendingException = 0;
    }
  }

private:
  friend void SWIG_CException_Raise(int code, const char* msg);

  static thread_local SWIG_CException* PendingException;

  SWIG_CException(int code, const char* msg) : code(code), msg(strdup(msg)) { }
  SWIG_CException& operator=(const SWIG_CException& ex);
};

thread_local SWIG_CException* SWIG_CException::PendingException = 0;

void SWIG_CException_Raise(int code, const char* msg) {
  delete SWIG_CException::PendingException;
  SWIG_CException::PendingException = new SWIG_CException(code, msg);
}
#endif

`

// runtimeSection returns the runtime section of the generated source.
func runtimeSection(s settings, mode ExceptionMode) string {
	var b strings.Builder
	if mode != ExceptionsDisabled {
		// one raise function per shared library built from several modules
		raise := s.prefix
		if raise == "" {
			raise = s.module
		}
		b.WriteString("#define SWIG_CException_Raise " + raise + "_SWIG_CException_Raise\n")
		if mode == ExceptionsImported {
			b.WriteString("#define SWIG_CException_DEFINED 1\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(runtimeCommon)
	if s.cplusplus {
		b.WriteString(runtimeCXX)
	}
	if mode != ExceptionsDisabled {
		b.WriteString(runtimeException)
	}
	return b.String()
}

// exceptionClass describes the exception class so that it is wrapped like
// any other: C code reads the pending exception through it and the façade
// rethrows copies of it.
func exceptionClass() *decl.Node {
	cls := flat.ExceptionClass
	copyCtor := decl.Ctor(decl.P("ex", "r.q(const)."+cls))
	copyCtor.CopyConstructor = true
	class := decl.Class(cls, nil,
		copyCtor,
		decl.Dtor(),
		decl.Var("code", "q(const).int"),
		decl.Var("msg", "q(const).p.q(const).char"),
		decl.StaticMethod("get_pending", "p."+cls),
		decl.StaticMethod("reset_pending", "void"),
	)
	for _, m := range class.Children {
		m.NoExcept = true
	}
	return class
}

// namedImport reports whether the module imports another one, looking at
// top-level declarations and into included files.
func namedImport(nodes []*decl.Node) bool {
	for _, n := range nodes {
		switch n.Kind {
		case decl.KindImport:
			if n.Import != "" {
				return true
			}
		case decl.KindInclude:
			if namedImport(n.Children) {
				return true
			}
		}
	}
	return false
}
