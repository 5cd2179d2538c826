package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cbridge/internal/typemap"
)

var (
	typemapsKind  string
	typemapsFiles []string
	typemapsCode  bool
)

var typemapsCmd = &cobra.Command{
	Use:   "typemaps",
	Short: "List the typemaps in effect",
	Long: `List the built-in typemaps followed by the ones loaded from --typemaps files.
Later entries override earlier ones with the same kind, pattern and name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := typemap.Defaults()
		for _, path := range typemapsFiles {
			if err := db.LoadFile(path); err != nil {
				return err
			}
		}
		return listTypemaps(cmd.OutOrStdout(), db, typemap.Kind(strings.ToLower(typemapsKind)), typemapsCode)
	},
}

func init() {
	typemapsCmd.Flags().StringVar(&typemapsKind, "kind", "", "only this kind (ctype|in|out|check|freearg)")
	typemapsCmd.Flags().StringSliceVar(&typemapsFiles, "typemaps", nil, "extra typemap files")
	typemapsCmd.Flags().BoolVar(&typemapsCode, "code", false, "print the template code")
}

func listTypemaps(w io.Writer, db *typemap.DB, kind typemap.Kind, code bool) error {
	for _, e := range db.Entries() {
		if kind != "" && e.Kind != kind {
			continue
		}
		line := fmt.Sprintf("%-8s %s", e.Kind, strings.Join(e.Patterns, ", "))
		if e.Name != "" {
			line += " " + e.Name
		}
		if e.NumInputs != 1 {
			line += fmt.Sprintf(" numinputs=%d", e.NumInputs)
		}
		line += "  (" + e.Origin + ")"
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if code {
			for _, l := range strings.Split(e.Code, "\n") {
				fmt.Fprintf(w, "    %s\n", l)
			}
		}
	}
	return nil
}
