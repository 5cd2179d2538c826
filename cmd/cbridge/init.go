package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cbridge/internal/project"
)

var initInput string

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new cbridge project",
	Long: `Initialize a cbridge project by creating a manifest (cbridge.toml) with one
module. If [path|name] is omitted, initializes the current directory. If a
non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initInput, "input", "", "declaration tree of the module (default <name>.json)")
}

func runInit(cmd *cobra.Command, args []string) error {
	target, err := os.Getwd()
	if err != nil {
		return err
	}
	if len(args) > 0 && args[0] != "." {
		target = absFrom(target, args[0])
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := moduleNameFor(filepath.Base(target))
	input := initInput
	if input == "" {
		input = name + ".json"
	}
	if err := os.WriteFile(manifestPath, []byte(project.StarterManifest(name, input)), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (module %s)\n", manifestPath, name)
	return nil
}

// moduleNameFor turns a directory name into a module identifier.
func moduleNameFor(dir string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(dir) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	if !project.IsValidModuleIdent(name) {
		return "module"
	}
	return name
}
