package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b") {
		t.Errorf("Version must be plain text, got %q", Version)
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			if got := Colored(); got != tt.want {
				t.Errorf("Colored() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = false

	Version = "1.2.3-rc.1"
	got := Colored()
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Colored() = %q, want ANSI escapes", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("Colored() = %q, want plain suffix", got)
	}
}

func TestBanner(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "9.9.9"
	b := Banner()
	if !strings.HasPrefix(b, "/* ---") || !strings.HasSuffix(b, "*/\n\n") {
		t.Errorf("banner is not a closed comment:\n%s", b)
	}
	if !strings.Contains(b, "generated by cbridge 9.9.9.") {
		t.Errorf("banner does not name the version:\n%s", b)
	}
}
