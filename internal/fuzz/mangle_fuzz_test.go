package fuzztests

import (
	"strings"
	"testing"
	"unicode"

	"cbridge/internal/symbols"
)

func FuzzMangleIdent(f *testing.F) {
	for _, seed := range []string{"", "Shape", "acme::geo::Shape", " a b ", "operator<<", "café", "cafe\u0301", "日本::名前"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, name string) {
		got := symbols.MangleIdent(name)
		if strings.Contains(got, "::") {
			t.Fatalf("MangleIdent(%q) = %q keeps a scope separator", name, got)
		}
		for _, r := range got {
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				t.Fatalf("MangleIdent(%q) = %q contains %q", name, got, r)
			}
		}
	})
}
