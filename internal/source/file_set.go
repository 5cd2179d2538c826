package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages the files referenced by a declaration tree. The front end
// reports declarations by path and line; the set maps paths to stable IDs and,
// when the file is readable, keeps its text for diagnostic previews.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet. ID 0 is reserved for NoFileID.
func NewFileSet() *FileSet {
	return &FileSet{
		files: []File{{ID: NoFileID, Flags: FileVirtual | FileNoContent}},
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

func (fileSet *FileSet) nextID() FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	return FileID(n)
}

// Add stores a file from normalized bytes, computes LineIdx, and returns its FileID.
// Adding a path that is already known replaces the index entry with the new file.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	normalizedPath := normalizePath(path)
	id := fileSet.nextID()
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Register returns the ID for path, creating a content-less entry when the
// path has not been seen. Empty paths map to NoFileID.
func (fileSet *FileSet) Register(path string) FileID {
	if path == "" {
		return NoFileID
	}
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return id
	}
	return fileSet.Add(path, nil, FileNoContent)
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// LoadContent tries to attach text to every content-less file whose path
// exists on disk, relative paths being resolved against BaseDir. Unreadable
// files are left as they are.
func (fileSet *FileSet) LoadContent() {
	for i := range fileSet.files {
		f := &fileSet.files[i]
		if f.ID == NoFileID || f.HasContent() {
			continue
		}
		path := f.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(fileSet.BaseDir(), path)
		}
		if !fileExists(path) {
			continue
		}
		// #nosec G304 -- path comes from the declaration tree
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		content, _ = removeBOM(content)
		content, _ = normalizeCRLF(content)
		f.Content = content
		f.LineIdx = buildLineIndex(content)
		f.Flags &^= FileNoContent
	}
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil if the ID is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Path returns the normalized path of a file or "" for NoFileID.
func (fileSet *FileSet) Path(id FileID) string {
	if f := fileSet.Get(id); f != nil {
		return f.Path
	}
	return ""
}

// Len returns the number of registered files, excluding the reserved slot.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files) - 1
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || !f.HasContent() {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// Auto: если путь короткий или относительный - как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}
