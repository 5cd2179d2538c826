package driver

import (
	"fmt"
	"strings"

	"cbridge/internal/backend/facade"
	"cbridge/internal/backend/flat"
	"cbridge/internal/version"
)

const (
	cplusplusBegin = "#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n"
	cplusplusEnd   = "#ifdef __cplusplus\n}\n#endif\n\n"
)

// parts is everything generated for one module before it is framed.
type parts struct {
	// cheader goes to the header right after the include guard.
	cheader strings.Builder
	flat    flat.Sections
	// cxx is nil when no façade is built.
	cxx     *facade.Sections
	runtime string
}

func includeGuard(module string) string {
	return fmt.Sprintf("SWIG_%s_WRAP_H_", module)
}

// frameHeader assembles the header: C types and declarations, then the
// façade in its namespace for C++ readers.
func frameHeader(s settings, p *parts) string {
	guard := includeGuard(s.module)

	var b strings.Builder
	b.WriteString(version.Banner())
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	b.WriteString(headerPrelude)
	b.WriteString(p.cheader.String())

	b.WriteString(p.flat.Types.String())
	b.WriteString(cplusplusBegin)
	b.WriteString(p.flat.Decls.String())
	b.WriteString(cplusplusEnd)

	if p.cxx != nil {
		b.WriteString("#ifdef __cplusplus\n\n")
		// nested namespace definitions need C++17
		components := strings.Split(s.namespace, "::")
		for _, ns := range components {
			fmt.Fprintf(&b, "namespace %s {\n", ns)
		}
		b.WriteString("\n")
		b.WriteString(p.cxx.Types.String())
		b.WriteString("\n")
		b.WriteString(p.cxx.Decls.String())
		b.WriteString("\n")
		b.WriteString(p.cxx.Impls.String())
		b.WriteString("\n")
		b.WriteString(strings.Repeat("}\n", len(components)))
		b.WriteString("\n#endif /* __cplusplus */\n")
	}

	fmt.Fprintf(&b, "\n#endif /* %s */\n", guard)
	return b.String()
}

// frameSource assembles the source: runtime support, the wrapped API and
// the wrapper definitions with C linkage. The generated header is not
// included: its opaque typedefs would clash with the real classes.
func frameSource(s settings, p *parts) string {
	var b strings.Builder
	b.WriteString(version.Banner())
	b.WriteString(p.runtime)
	for _, inc := range s.includes {
		fmt.Fprintf(&b, "#include %s\n", quoteInclude(inc))
	}
	if len(s.includes) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(cplusplusBegin)
	b.WriteString(p.flat.Wrappers.String())
	b.WriteString(cplusplusEnd)
	return b.String()
}

// quoteInclude keeps <system> includes and quotes everything else.
func quoteInclude(inc string) string {
	if strings.HasPrefix(inc, "<") || strings.HasPrefix(inc, "\"") {
		return inc
	}
	return "\"" + inc + "\""
}
