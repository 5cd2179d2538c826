package symbols

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"cbridge/internal/decl"
)

// ErrDuplicateSymbol reports a wrapper name assigned twice in one module.
var ErrDuplicateSymbol = errors.New("duplicate wrapper symbol")

// DuplicateError carries both declarations of a colliding name.
type DuplicateError struct {
	Name     string
	Previous *decl.Node
	Node     *decl.Node
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q", ErrDuplicateSymbol, e.Name)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateSymbol
}

// Table is the set of wrapper names assigned in one module.
type Table struct {
	names map[string]*decl.Node
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{names: make(map[string]*decl.Node)}
}

// Add records name for n. Adding the same name for the same node again is a
// no-op; any other reuse returns a *DuplicateError.
func (t *Table) Add(name string, n *decl.Node) error {
	key := norm.NFC.String(name)
	if prev, ok := t.names[key]; ok {
		if prev == n {
			return nil
		}
		return &DuplicateError{Name: name, Previous: prev, Node: n}
	}
	t.names[key] = n
	return nil
}

// Release frees name when it is held by n, so a declaration that was
// skipped after all does not reserve it.
func (t *Table) Release(name string, n *decl.Node) {
	key := norm.NFC.String(name)
	if t.names[key] == n {
		delete(t.names, key)
	}
}

// Lookup returns the node a name was assigned to.
func (t *Table) Lookup(name string) (*decl.Node, bool) {
	n, ok := t.names[norm.NFC.String(name)]
	return n, ok
}

// Len returns the number of assigned names.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns all assigned names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.names))
	for name := range t.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
