package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the cbridge CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI. It is written into the
	// banner of every generated file, so it stays plain text.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version for the terminal: major, minor and patch get
// their own colors, a pre-release suffix stays plain.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Banner is the comment put on top of generated files.
func Banner() string {
	var b strings.Builder
	b.WriteString("/* ----------------------------------------------------------------------------\n")
	b.WriteString(" * This file was automatically generated by cbridge " + Version + ".\n")
	b.WriteString(" *\n")
	b.WriteString(" * Do not make changes to this file unless you know what you are doing - modify\n")
	b.WriteString(" * the declarations it was generated from instead.\n")
	b.WriteString(" * ----------------------------------------------------------------------------- */\n\n")
	return b.String()
}
