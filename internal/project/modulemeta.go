package project

import (
	"unicode"

	"cbridge/internal/source"
)

// ImportMeta is one module imported by a declaration tree.
type ImportMeta struct {
	Name string
	Pos  source.Pos
}

// ModuleMeta describes a loaded module before generation.
type ModuleMeta struct {
	Name        string
	Input       string       // абсолютный путь к дереву объявлений
	OutDir      string       // каталог для сгенерированных файлов
	Pos         source.Pos   // позиция модуля (файл дерева)
	Imports     []ImportMeta // импорты в порядке появления
	ContentHash Digest       // хеш содержимого входного файла
	ModuleHash  Digest       // агрегированный хеш модуля с учётом зависимостей
}

// IsValidModuleIdent reports whether name can name a module: it becomes
// part of C identifiers and file names.
func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
