// Package testkit checks structural invariants of generated wrapper files.
package testkit

import (
	"errors"
	"fmt"
	"strings"
)

// CheckWrapperInvariants runs a minimal set of checks on a generated module:
// 1) the header is wrapped in the SWIG_<module>_WRAP_H_ include guard
// 2) preprocessor conditionals and braces are balanced in both files
// 3) every exported wrapper defined in the source is declared in the header
func CheckWrapperInvariants(module, header, source string) error {
	var errs []error

	guard := "SWIG_" + module + "_WRAP_H_"
	if !strings.HasPrefix(skipBanner(header), "#ifndef "+guard+"\n#define "+guard+"\n") {
		errs = append(errs, fmt.Errorf("header: missing include guard %s", guard))
	}
	if !strings.HasSuffix(header, "#endif /* "+guard+" */\n") {
		errs = append(errs, fmt.Errorf("header: include guard %s not closed at the end", guard))
	}

	for _, f := range []struct{ name, text string }{{"header", header}, {"source", source}} {
		if err := checkConditionals(f.text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
		}
		if err := checkBraces(f.text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
		}
	}

	declared := make(map[string]bool)
	for _, line := range strings.Split(header, "\n") {
		if name, ok := functionName(line, "SWIGIMPORT "); ok {
			declared[name] = true
		}
	}
	for i, line := range strings.Split(source, "\n") {
		if !strings.HasSuffix(line, "{") {
			continue
		}
		if name, ok := functionName(line, "SWIGEXPORTC "); ok && !declared[name] {
			errs = append(errs, fmt.Errorf("source:%d: wrapper %s is not declared in the header", i+1, name))
		}
	}
	return errors.Join(errs...)
}

// skipBanner drops the leading comment block.
func skipBanner(text string) string {
	if !strings.HasPrefix(text, "/*") {
		return text
	}
	end := strings.Index(text, "*/")
	if end < 0 {
		return text
	}
	return strings.TrimLeft(text[end+2:], "\n")
}

func functionName(line, marker string) (string, bool) {
	if !strings.HasPrefix(line, marker) {
		return "", false
	}
	head, _, ok := strings.Cut(line, "(")
	if !ok {
		return "", false
	}
	fields := strings.Fields(head)
	name := strings.TrimLeft(fields[len(fields)-1], "*&")
	return name, name != ""
}

func checkConditionals(text string) error {
	depth := 0
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		directive := strings.TrimSpace(trimmed[1:])
		switch {
		case strings.HasPrefix(directive, "if"):
			depth++
		case strings.HasPrefix(directive, "endif"):
			depth--
			if depth < 0 {
				return fmt.Errorf("line %d: #endif without #if", i+1)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%d unterminated #if", depth)
	}
	return nil
}

// checkBraces skips comments and string/char literals.
func checkBraces(text string) error {
	depth, line := 0, 1
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n':
			line++
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			line++
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("line %d: unterminated comment", line)
			}
			line += strings.Count(text[i:i+2+end], "\n")
			i += end + 3
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(text) && text[j] != c && text[j] != '\n' {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			i = j
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("line %d: unbalanced '}'", line)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%d unclosed '{'", depth)
	}
	return nil
}
