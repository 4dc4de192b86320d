package parser

import (
	"fmt"
	"regexp"
	"strings"

	"pdf-analyzer/internal/models"
)

// HeaderPattern is one rule of the header classifier.
type HeaderPattern struct {
	Name string
	Re   *regexp.Regexp
}

// CompileHeaderPatterns resolves pattern names (or raw expressions) in order.
func CompileHeaderPatterns(names []string) ([]HeaderPattern, error) {
	patterns := make([]HeaderPattern, 0, len(names))
	for _, name := range names {
		expr, ok := models.HeaderPatterns[name]
		if !ok {
			expr = name
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile header pattern %q: %w", name, err)
		}
		patterns = append(patterns, HeaderPattern{Name: name, Re: re})
	}
	return patterns, nil
}

// DefaultHeaderPatterns returns the stock ordered rule table.
func DefaultHeaderPatterns() []HeaderPattern {
	patterns, err := CompileHeaderPatterns(models.DefaultHeaderOrder)
	if err != nil {
		panic(err)
	}
	return patterns
}

// SectionParser splits page text into (title, content) sections.
type SectionParser struct {
	patterns []HeaderPattern
}

func NewSectionParser(patterns []HeaderPattern) *SectionParser {
	return &SectionParser{patterns: patterns}
}

type sectionParserState struct {
	title   string
	content []string
	result  []models.Section
}

// Parse returns sections in source order. Lines before the first header are
// dropped and headers without content produce no section.
func (p *SectionParser) Parse(text string) []models.Section {
	var state sectionParserState
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.processLine(line, &state)
	}
	state.flush()
	return state.result
}

// MatchHeader reports the first pattern matching line.
func (p *SectionParser) MatchHeader(line string) (string, bool) {
	for _, hp := range p.patterns {
		if hp.Re.MatchString(line) {
			return hp.Name, true
		}
	}
	return "", false
}

func (p *SectionParser) processLine(line string, state *sectionParserState) {
	if _, ok := p.MatchHeader(line); ok {
		state.flush()
		state.title = line
		state.content = nil
		return
	}
	if state.title != "" {
		state.content = append(state.content, line)
	}
}

// flush stores the in-progress section if it has a title and content
func (s *sectionParserState) flush() {
	if s.title == "" || len(s.content) == 0 {
		return
	}
	s.result = append(s.result, models.Section{
		Title:   s.title,
		Content: strings.Join(s.content, "\n"),
	})
}
