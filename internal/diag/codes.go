package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Генерация обёрток
	GenInfo               Code = 1000
	GenUnresolvedType     Code = 1001
	GenVarargs            Code = 1002
	GenDuplicateSymbol    Code = 1003
	GenMultipleBases      Code = 1004
	GenUnknownClass       Code = 1005
	GenAnonymousVariable  Code = 1006
	GenBadEnumValue       Code = 1007
	GenBaseNameCollision  Code = 1008
	GenStructFunction     Code = 1009
	GenUnsupportedNode    Code = 1010
	GenMalformedType      Code = 1011
	GenNamespaceConflict  Code = 1012
	GenExceptionClassSkip Code = 1013

	// Typemaps
	TmpInfo        Code = 2000
	TmpMissing     Code = 2001
	TmpBadEntry    Code = 2002
	TmpBrokenChain Code = 2003
	TmpUnknownKind Code = 2004

	// I/O
	IOLoadFileError   Code = 4001
	IOWriteFileError  Code = 4002
	IODecodeTreeError Code = 4003

	// Проект
	ProjInfo             Code = 5000
	ProjManifestNotFound Code = 5001
	ProjManifestInvalid  Code = 5002
	ProjMissingInput     Code = 5003
	ProjDuplicateModule  Code = 5004
	ProjImportCycle      Code = 5005
	ProjMissingModule    Code = 5006
	ProjSelfImport       Code = 5007
	ProjDependencyFailed Code = 5008

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		GenInfo:               "Generator information",
		GenUnresolvedType:     "Unresolvable type",
		GenVarargs:            "Variadic functions are not supported",
		GenDuplicateSymbol:    "Duplicate wrapper symbol",
		GenMultipleBases:      "Multiple inheritance is not supported by the C++ wrappers",
		GenUnknownClass:       "Reference to a class without a proxy",
		GenAnonymousVariable:  "Variable of anonymous type",
		GenBadEnumValue:       "Unsupported enumerator value",
		GenBaseNameCollision:  "Inherited member name collision",
		GenStructFunction:     "Function member in C struct ignored",
		GenUnsupportedNode:    "Unsupported declaration",
		GenMalformedType:      "Malformed type string",
		GenNamespaceConflict:  "Namespace conflict",
		GenExceptionClassSkip: "Exception class handled by imported module",
		TmpInfo:               "Typemap information",
		TmpMissing:            "No typemap defined",
		TmpBadEntry:           "Malformed typemap entry",
		TmpBrokenChain:        "Broken typemap chain",
		TmpUnknownKind:        "Unknown typemap kind",
		IOLoadFileError:       "I/O load file error",
		IOWriteFileError:      "I/O write file error",
		IODecodeTreeError:     "Declaration tree decode error",
		ProjInfo:              "Project information",
		ProjManifestNotFound:  "Project manifest not found",
		ProjManifestInvalid:   "Invalid project manifest",
		ProjMissingInput:      "Missing module input",
		ProjDuplicateModule:   "Duplicate module definition",
		ProjImportCycle:       "Import cycle between modules",
		ProjMissingModule:     "Imported module is not part of the project",
		ProjSelfImport:        "Module imports itself",
		ProjDependencyFailed:  "Imported module failed to generate",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
