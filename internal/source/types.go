package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

// NoFileID marks a position that is not tied to any registered file.
const NoFileID FileID = 0

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
	// FileNoContent marks a file known only by path: the front end reported
	// declarations in it but its text was never loaded.
	FileNoContent
)

// File captures metadata and (optionally) content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// HasContent reports whether the file text is available for previews.
func (f *File) HasContent() bool {
	return f != nil && f.Flags&FileNoContent == 0
}
