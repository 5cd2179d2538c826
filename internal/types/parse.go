package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ErrMalformed reports a type string that does not follow the encoding.
var ErrMalformed = errors.New("malformed type")

// Parse decodes an encoded type string. The empty string decodes to the
// zero Type.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Type{}, nil
	}
	if s == "..." || s == "v(...)" {
		return Type{Base: "..."}, nil
	}
	parts, err := splitTop(s, '.')
	if err != nil {
		return Type{}, fmt.Errorf("%w %q: %w", ErrMalformed, s, err)
	}
	var t Type
	t.Base = strings.TrimSpace(parts[len(parts)-1])
	for _, part := range parts[:len(parts)-1] {
		e, err := parseElem(part)
		if err != nil {
			return Type{}, fmt.Errorf("%w %q: %w", ErrMalformed, s, err)
		}
		t.Elems = append(t.Elems, e)
	}
	if t.Base == "" && len(t.Elems) > 0 {
		return Type{}, fmt.Errorf("%w %q: missing base type", ErrMalformed, s)
	}
	return t, nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseElem(part string) (Elem, error) {
	switch part {
	case "p":
		return Elem{Kind: ElemPointer}, nil
	case "r":
		return Elem{Kind: ElemReference}, nil
	case "z":
		return Elem{Kind: ElemRvalueRef}, nil
	}
	open := strings.IndexByte(part, '(')
	if open != 1 || !strings.HasSuffix(part, ")") {
		return Elem{}, fmt.Errorf("unknown element %q", part)
	}
	arg := part[2 : len(part)-1]
	switch part[0] {
	case 'a':
		return Elem{Kind: ElemArray, Arg: arg}, nil
	case 'q':
		if strings.TrimSpace(arg) == "" {
			return Elem{}, errors.New("empty qualifier")
		}
		return Elem{Kind: ElemQualifier, Arg: arg}, nil
	case 'm':
		return Elem{Kind: ElemMemberPointer, Arg: arg}, nil
	case 'f':
		e := Elem{Kind: ElemFunction}
		if strings.TrimSpace(arg) == "" {
			return e, nil
		}
		items, err := splitTop(arg, ',')
		if err != nil {
			return Elem{}, err
		}
		for _, item := range items {
			pt, err := Parse(item)
			if err != nil {
				return Elem{}, err
			}
			e.Parms = append(e.Parms, pt)
		}
		return e, nil
	}
	return Elem{}, fmt.Errorf("unknown element %q", part)
}

// splitTop splits s on sep outside parentheses and angle brackets.
func splitTop(s string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at %d", s[i], i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced parentheses")
	}
	return append(parts, s[start:]), nil
}

// Encode renders t back to the dotted encoding.
func (t Type) Encode() string {
	var b strings.Builder
	for _, e := range t.Elems {
		b.WriteString(e.encode())
		b.WriteByte('.')
	}
	b.WriteString(t.Base)
	return b.String()
}

func (e Elem) encode() string {
	switch e.Kind {
	case ElemPointer:
		return "p"
	case ElemReference:
		return "r"
	case ElemRvalueRef:
		return "z"
	case ElemArray:
		return "a(" + e.Arg + ")"
	case ElemQualifier:
		return "q(" + e.Arg + ")"
	case ElemMemberPointer:
		return "m(" + e.Arg + ")"
	case ElemFunction:
		parms := make([]string, len(e.Parms))
		for i, p := range e.Parms {
			parms[i] = p.Encode()
		}
		return "f(" + strings.Join(parms, ",") + ")"
	}
	return "?"
}

// ArrayLen parses a numeric array dimension. Symbolic or empty dimensions
// report ok == false.
func ArrayLen(dim string) (uint32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(dim), 0, 64)
	if err != nil {
		return 0, false
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitList splits a comma separated list of encoded types, honouring
// nested parentheses.
func SplitList(s string) ([]string, error) {
	parts, err := splitTop(s, ',')
	if err != nil {
		return nil, err
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
