// Package typemap stores the code templates ("typemaps") that translate
// between C and C++ values in generated wrappers.
//
// Templates are plain text with $placeholders. They are looked up by kind
// and encoded type, optionally restricted to a parameter name. The package
// does not interpret templates beyond placeholder substitution.
package typemap

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"cbridge/internal/types"
)

// Kind names a template category.
type Kind string

const (
	KindCType   Kind = "ctype"
	KindIn      Kind = "in"
	KindOut     Kind = "out"
	KindCheck   Kind = "check"
	KindFreeArg Kind = "freearg"
)

var knownKinds = map[Kind]bool{
	KindCType:   true,
	KindIn:      true,
	KindOut:     true,
	KindCheck:   true,
	KindFreeArg: true,
}

// ErrBadEntry reports an invalid typemap definition.
var ErrBadEntry = errors.New("bad typemap entry")

// Template is a matched typemap.
type Template struct {
	Kind Kind
	Code string
	// Pattern is the type pattern that matched.
	Pattern string
	// NumInputs is the number of C arguments the template consumes; zero
	// means the parameter is not exposed.
	NumInputs int
	// Arity is the number of consecutive parameters the template covers.
	Arity int
}

// Entry is one typemap definition.
type Entry struct {
	Kind Kind
	// Patterns are encoded types; a pattern covering several parameters is
	// written as a comma separated list.
	Patterns []string
	// Name restricts the entry to parameters with this name.
	Name      string
	Code      string
	NumInputs int
	// Origin records the file the entry came from.
	Origin string
}

type key struct {
	kind    Kind
	pattern string
	name    string
}

type slot struct {
	entry *Entry
	arity int
	parts []string
}

// DB is a typemap database. Later definitions override earlier ones.
// A DB must not be modified while it is being used for lookups.
type DB struct {
	entries []*Entry
	index   map[key]slot
	multi   map[Kind][]slot
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{
		index: make(map[key]slot),
		multi: make(map[Kind][]slot),
	}
}

//go:embed defaults.toml
var defaultTypemaps []byte

// Defaults returns a database holding the built-in typemaps.
func Defaults() *DB {
	db := NewDB()
	if err := db.LoadBytes(defaultTypemaps, "<builtin>"); err != nil {
		panic(fmt.Errorf("builtin typemaps: %w", err))
	}
	return db
}

// Add registers an entry.
func (db *DB) Add(e *Entry) error {
	if !knownKinds[e.Kind] {
		return fmt.Errorf("%w: unknown kind %q", ErrBadEntry, e.Kind)
	}
	if len(e.Patterns) == 0 {
		return fmt.Errorf("%w: %s typemap without types", ErrBadEntry, e.Kind)
	}
	if e.NumInputs < 0 {
		return fmt.Errorf("%w: negative numinputs", ErrBadEntry)
	}
	for _, pattern := range e.Patterns {
		parts, err := types.SplitList(pattern)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadEntry, err)
		}
		for i, part := range parts {
			t, err := types.Parse(part)
			if err != nil || t.IsZero() {
				return fmt.Errorf("%w: pattern %q", ErrBadEntry, pattern)
			}
			parts[i] = t.Encode()
		}
		s := slot{entry: e, arity: len(parts), parts: parts}
		if len(parts) > 1 {
			db.multi[e.Kind] = append(db.multi[e.Kind], s)
			continue
		}
		db.index[key{kind: e.Kind, pattern: parts[0], name: e.Name}] = s
	}
	db.entries = append(db.entries, e)
	return nil
}

// Merge appends every entry of other, which then takes precedence.
func (db *DB) Merge(other *DB) error {
	for _, e := range other.entries {
		if err := db.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns the definitions in load order.
func (db *DB) Entries() []*Entry {
	return db.entries
}

type fileEntry struct {
	Kind      string   `toml:"kind"`
	Match     []string `toml:"match"`
	Name      string   `toml:"name"`
	Code      string   `toml:"code"`
	NumInputs *int     `toml:"numinputs"`
}

type fileFormat struct {
	Typemap []fileEntry `toml:"typemap"`
}

// LoadFile adds the typemaps defined in a TOML file.
func (db *DB) LoadFile(path string) error {
	var f fileFormat
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return db.addFile(f, meta, path)
}

// LoadBytes adds the typemaps defined in TOML text.
func (db *DB) LoadBytes(data []byte, origin string) error {
	var f fileFormat
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", origin, err)
	}
	return db.addFile(f, meta, origin)
}

func (db *DB) addFile(f fileFormat, meta toml.MetaData, origin string) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: %w: unknown key %q", origin, ErrBadEntry, undecoded[0].String())
	}
	for i, fe := range f.Typemap {
		e := &Entry{
			Kind:      Kind(strings.TrimSpace(fe.Kind)),
			Patterns:  fe.Match,
			Name:      strings.TrimSpace(fe.Name),
			Code:      strings.TrimRight(fe.Code, "\n"),
			NumInputs: 1,
			Origin:    origin,
		}
		if fe.NumInputs != nil {
			e.NumInputs = *fe.NumInputs
		}
		if err := db.Add(e); err != nil {
			return fmt.Errorf("%s: typemap #%d: %w", origin, i+1, err)
		}
	}
	return nil
}

func (s slot) template(pattern string) Template {
	return Template{
		Kind:      s.entry.Kind,
		Code:      s.entry.Code,
		Pattern:   pattern,
		NumInputs: s.entry.NumInputs,
		Arity:     s.arity,
	}
}
