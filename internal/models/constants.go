package models

const (
	AllCapsHeaderRegex    = `^([A-Z][A-Z\s&]+)$`
	NumberedHeaderRegex   = `^(\d+\.\s+[A-Z][^.]*)$`
	TitleCaseHeaderRegex  = `^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)$`
	ColonHeaderRegex      = `^([A-Z][^.]*:)$`
	MixedCaseHeaderRegex  = `^([A-Z][A-Za-z\s]+)$`
	NonAlphanumericRegex  = `[^a-z0-9\s]`
	WhitespaceRunRegex    = `\s+`
	SentenceBoundaryRegex = `[.!?]+`
)

// header pattern names usable from config
const (
	PatternAllCaps   = "all_caps"
	PatternNumbered  = "numbered"
	PatternTitleCase = "title_case"
	PatternColon     = "colon"
	PatternMixedCase = "mixed_case"
)

// collection layout
const (
	InputFileName    = "challenge1b_input.json"
	OutputFileName   = "challenge1b_output.json"
	PDFDirName       = "PDFs"
	CollectionPrefix = "Collection"
	DefaultBasePath  = "Challenge_1b"
	DefaultOutputDir = "output"
)

var (
	HeaderPatterns = map[string]string{
		PatternAllCaps:   AllCapsHeaderRegex,
		PatternNumbered:  NumberedHeaderRegex,
		PatternTitleCase: TitleCaseHeaderRegex,
		PatternColon:     ColonHeaderRegex,
		PatternMixedCase: MixedCaseHeaderRegex,
	}

	// DefaultHeaderOrder leaves out the mixed-case catch-all; it swallows most short prose lines.
	DefaultHeaderOrder = []string{PatternAllCaps, PatternNumbered, PatternTitleCase, PatternColon}
)
