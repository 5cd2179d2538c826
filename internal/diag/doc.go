// Package diag defines the diagnostic model shared by the loader, the
// generator backends and the CLI.
//
// Diagnostic is the central record: Severity, Code (numeric, rendered as
// GEN/TMP/IO/PRJ/OBS identifiers), Message, the Primary source.Pos of the
// offending declaration and optional Notes.
//
// Producers never print. They emit through a Reporter, usually via
// ReportError / ReportWarning builders, and the driver collects everything
// into a Bag. Rendering lives in internal/diagfmt.
//
// A declaration that cannot be wrapped is reported as an error and skipped;
// generation of the rest of the module continues. Callers decide whether a
// Bag with errors fails the run.
package diag
