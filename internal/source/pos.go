package source

import "fmt"

// Pos is a line/column location inside a file known to a FileSet.
// Declarations coming from the front end carry only file and line; Col is
// zero when unknown.
type Pos struct {
	File FileID
	Line uint32 // 1-based, 0 = unknown
	Col  uint32 // 1-based, 0 = unknown
}

// NoPos is the zero position.
var NoPos = Pos{}

// IsValid reports whether the position points somewhere.
func (p Pos) IsValid() bool {
	return p.File != NoFileID && p.Line > 0
}

func (p Pos) String() string {
	if p.Col == 0 {
		return fmt.Sprintf("%d:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%d:%d:%d", p.File, p.Line, p.Col)
}

// Before orders positions by file, then line, then column.
func (p Pos) Before(other Pos) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
