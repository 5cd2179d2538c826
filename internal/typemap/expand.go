package typemap

import (
	"sort"
	"strings"
)

// Vars maps placeholders (with the leading '$') to replacement text.
type Vars map[string]string

// Expand substitutes placeholders in code. Longer placeholders are replaced
// first so "$1_ltype" is not mistaken for "$1".
func Expand(code string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(code, "$") {
		return code
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(code)
}

// Has reports whether code mentions the placeholder.
func Has(code, placeholder string) bool {
	return strings.Contains(code, placeholder)
}
