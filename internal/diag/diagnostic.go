package diag

import (
	"cbridge/internal/source"
)

type Note struct {
	Pos source.Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Pos
	Notes    []Note
}
