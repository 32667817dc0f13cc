package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Разбор документа
	SfcInfo              Code = 1000
	SfcDuplicateTemplate Code = 1001
	SfcDuplicateScript   Code = 1002
	SfcUnclosedBlock     Code = 1003
	SfcLoadFailed        Code = 1004

	// Шаблон
	TplInfo                 Code = 2000
	TplUnterminatedInterp   Code = 2001
	TplNoRoot               Code = 2002
	TplMultipleRoots        Code = 2003
	TplUnclosedElement      Code = 2004
	TplStrayEndTag          Code = 2005
	TplElseWithoutIf        Code = 2006
	TplBadFor               Code = 2007
	TplEmptyDirective       Code = 2008
	TplUnsupportedLang      Code = 2009
	TplInterpolationInAttr  Code = 2100
	TplForWithoutKey        Code = 2101
	TplCompileFailed        Code = 2200
	TplUnknownDirective     Code = 2102
	TplFunctionalFromScript Code = 2103
	TplTextOutsideRoot      Code = 2104

	// Скрипт
	ScrInfo          Code = 3000
	ScrTranspile     Code = 3001
	ScrTranspileWarn Code = 3002

	// Стили
	StyInfo        Code = 4000
	StyUnsupported Code = 4001
	StyMalformed   Code = 4002

	// Пользовательские блоки
	CusInfo      Code = 5000
	CusNoHandler Code = 5001
	CusFailed    Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	SfcInfo:                 "Document information",
	SfcDuplicateTemplate:    "Duplicate <template> block",
	SfcDuplicateScript:      "Duplicate <script> block",
	SfcUnclosedBlock:        "Unclosed top-level block",
	SfcLoadFailed:           "External source could not be loaded",
	TplInfo:                 "Template information",
	TplUnterminatedInterp:   "Unterminated interpolation",
	TplNoRoot:               "Template has no root element",
	TplMultipleRoots:        "Template has more than one root element",
	TplUnclosedElement:      "Element is not closed",
	TplStrayEndTag:          "End tag without matching start tag",
	TplElseWithoutIf:        "v-else without adjacent v-if",
	TplBadFor:               "Malformed v-for expression",
	TplEmptyDirective:       "Directive without expression",
	TplUnsupportedLang:      "Unsupported template language",
	TplInterpolationInAttr:  "Interpolation inside attribute value",
	TplForWithoutKey:        "v-for without :key",
	TplCompileFailed:        "Template compilation failed",
	TplUnknownDirective:     "Unknown directive",
	TplFunctionalFromScript: "Functional flag detected in script",
	TplTextOutsideRoot:      "Text outside root element",
	ScrInfo:                 "Script information",
	ScrTranspile:            "Script transpilation error",
	ScrTranspileWarn:        "Script transpilation warning",
	StyInfo:                 "Style information",
	StyUnsupported:          "Unsupported style language",
	StyMalformed:            "Malformed style sheet",
	CusInfo:                 "Custom block information",
	CusNoHandler:            "No handler for custom block",
	CusFailed:               "Custom block handler failed",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SFC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SCR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("STY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CUS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if s, ok := codeDescription[c]; ok {
		return s
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}
