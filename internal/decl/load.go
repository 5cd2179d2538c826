package decl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a serialisation of the declaration tree.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%s: unknown declaration tree format (want .mp, .msgpack or .json)", path)
}

// Load reads a tree from disk. The result is not linked.
func Load(path string) (*Tree, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Decode reads a tree in the given format.
func Decode(r io.Reader, format Format) (*Tree, error) {
	var tree Tree
	switch format {
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&tree); err != nil {
			return nil, fmt.Errorf("decode msgpack: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&tree); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
	if tree.Module == "" {
		return nil, fmt.Errorf("declaration tree has no module name")
	}
	return &tree, nil
}

// Encode writes a tree in the given format.
func Encode(w io.Writer, tree *Tree, format Format) error {
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetOmitEmpty(true)
		return enc.Encode(tree)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	return fmt.Errorf("unknown format %d", format)
}

// Save writes a tree to path using the format implied by its extension.
func Save(path string, tree *Tree) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, tree, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
