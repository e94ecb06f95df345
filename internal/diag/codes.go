package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Detection
	DetInfo             Code = 1000
	DetUnknownLanguage  Code = 1001
	DetBinaryContent    Code = 1002
	DetUnknownHint      Code = 1003
	DetEmptyFile        Code = 1004
	DetLanguageMismatch Code = 1005

	// Structure
	StructInfo             Code = 2000
	StructUnclosedBlock    Code = 2001
	StructUnexpectedCloser Code = 2002
	StructBadIndent        Code = 2003
	StructUnclosedBracket  Code = 2004
	StructMisplacedPeriod  Code = 2005

	// Conversion
	ConvInfo              Code = 3000
	ConvUnmappedConstruct Code = 3001
	ConvMissingCapture    Code = 3002
	ConvFused             Code = 3003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		DetInfo:                "Detection information",
		DetUnknownLanguage:     "Source language could not be determined",
		DetBinaryContent:       "File content is binary",
		DetUnknownHint:         "Language hint is not a supported language",
		DetEmptyFile:           "File is empty",
		DetLanguageMismatch:    "Detected language differs from the requested source",
		StructInfo:             "Structure information",
		StructUnclosedBlock:    "Block is never closed",
		StructUnexpectedCloser: "Closing delimiter without matching opener",
		StructBadIndent:        "Dedent does not match any enclosing block",
		StructUnclosedBracket:  "Bracket is never closed",
		StructMisplacedPeriod:  "Sentence period inside an unterminated scope",
		ConvInfo:               "Conversion information",
		ConvUnmappedConstruct:  "Unmapped construct",
		ConvMissingCapture:     "Template capture missing",
		ConvFused:              "Statements fused",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DET%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CNV%04d", ic)
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
