package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксические
	SynInfo            Code = 2000
	SynUnexpectedInput Code = 2001
	SynInvalidLiteral  Code = 2002

	// Типы
	TypInfo                  Code = 3000
	TypIncompatibleDataTypes Code = 3001
	TypCannotMultiply        Code = 3002

	// Ввод-вывод
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Генерация кода
	GenInfo            Code = 5000
	GenEmptyShape      Code = 5001
	GenReservedName    Code = 5002
	GenMalformedOutput Code = 5003

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Зарезервировано на будущее
	FutUnsupportedOperator Code = 7001

	// Проект (tensa.toml)
	PrjInfo            Code = 8000
	PrjInvalidManifest Code = 8001
	PrjInvalidTarget   Code = 8002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		SynInfo:                  "Syntax information",
		SynUnexpectedInput:       "Unexpected input",
		SynInvalidLiteral:        "Invalid literal",
		TypInfo:                  "Type information",
		TypIncompatibleDataTypes: "Incompatible data types",
		TypCannotMultiply:        "Incompatible shapes for multiplication",
		IOLoadFileError:          "I/O load file error",
		IOWriteFileError:         "I/O write file error",
		GenInfo:                  "Code generation information",
		GenEmptyShape:            "Tensor shape must not be empty",
		GenReservedName:          "Name is reserved by the generated code",
		GenMalformedOutput:       "Generated code is not valid Go",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
		FutUnsupportedOperator:   "Operator is not supported yet",
		PrjInfo:                  "Project information",
		PrjInvalidManifest:       "Invalid tensa.toml",
		PrjInvalidTarget:         "Invalid target profile",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("FUT%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
