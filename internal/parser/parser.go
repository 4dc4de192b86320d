package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"pdf-analyzer/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoText            = errors.New("no extractable text")
)

// Extractor turns a document file into page text.
type Extractor interface {
	Name() string
	ExtractPages(ctx context.Context, filePath string) (models.PageTexts, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc struct {
	Label string
	Fn    func(ctx context.Context, filePath string) (models.PageTexts, error)
}

func (f ExtractorFunc) Name() string { return f.Label }

func (f ExtractorFunc) ExtractPages(ctx context.Context, filePath string) (models.PageTexts, error) {
	return f.Fn(ctx, filePath)
}

// Chain tries extractors in order; the first one returning at least one page wins.
type Chain struct {
	extractors []Extractor
	logger     zerolog.Logger
}

func NewChain(logger zerolog.Logger, extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.extractors))
	for _, e := range c.extractors {
		names = append(names, e.Name())
	}
	return strings.Join(names, ">")
}

func (c *Chain) ExtractPages(ctx context.Context, filePath string) (models.PageTexts, error) {
	var errs []error
	for _, e := range c.extractors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, err := e.ExtractPages(ctx, filePath)
		if err == nil && len(pages) > 0 {
			return pages, nil
		}
		if err == nil {
			err = ErrNoText
		}
		c.logger.Warn().Err(err).Str("extractor", e.Name()).Str("file", filePath).Msg("Extractor failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
	}
	if len(errs) == 0 {
		return nil, ErrNoText
	}
	return nil, errors.Join(errs...)
}

// Parser picks an extractor by file extension.
type Parser struct {
	byExt  map[string]Extractor
	logger zerolog.Logger
}

// New returns a Parser with the default extractors. PDFs go through the
// ledongthuc reader first and fall back to pdfcpu.
func New(logger zerolog.Logger) *Parser {
	p := &Parser{byExt: map[string]Extractor{}, logger: logger}
	p.Register(".pdf", NewChain(logger, LedongthucExtractor{}, PdfcpuExtractor{}))
	p.Register(".docx", ExtractorFunc{Label: "docx", Fn: parseDOCX})
	p.Register(".xlsx", NewChain(logger,
		ExtractorFunc{Label: "xlsx", Fn: parseXLSX},
		ExtractorFunc{Label: "excelize", Fn: parseExcelize},
	))
	p.Register(".txt", ExtractorFunc{Label: "text", Fn: parseText})
	return p
}

// Register sets the extractor for a file extension such as ".pdf".
func (p *Parser) Register(ext string, e Extractor) {
	p.byExt[strings.ToLower(ext)] = e
}

// Supports reports whether the file extension has a registered extractor.
func (p *Parser) Supports(filePath string) bool {
	_, ok := p.byExt[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

func (p *Parser) Name() string { return "parser" }

func (p *Parser) ExtractPages(ctx context.Context, filePath string) (models.PageTexts, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	e, ok := p.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return e.ExtractPages(ctx, filePath)
}

// ExtractWithTimeout bounds a single extraction. Library readers do not take a
// context, so the call runs in its own goroutine and is abandoned on deadline.
func ExtractWithTimeout(ctx context.Context, e Extractor, filePath string, timeout time.Duration) (models.PageTexts, error) {
	if timeout <= 0 {
		return e.ExtractPages(ctx, filePath)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pages models.PageTexts
		err   error
	}
	done := make(chan result, 1)
	go func() {
		pages, err := e.ExtractPages(ctx, filePath)
		done <- result{pages, err}
	}()

	select {
	case r := <-done:
		return r.pages, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(filePath), ctx.Err())
	}
}

// cleanPageText normalises compatibility characters (ligatures etc.) and line
// endings while keeping the line structure the section parser relies on.
func cleanPageText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// addPage stores text for pageNum unless it is empty after cleaning
func addPage(pages models.PageTexts, pageNum int, text string) {
	if text = cleanPageText(text); text != "" {
		pages[pageNum] = text
	}
}

var (
	docxParagraphEndRe = regexp.MustCompile(`</w:p>|<w:br/>|<w:cr/>`)
	xmlTagRe           = regexp.MustCompile(`<[^>]+>`)
)

func parseDOCX(_ context.Context, filePath string) (models.PageTexts, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	content = docxParagraphEndRe.ReplaceAllString(content, "\n")
	content = xmlTagRe.ReplaceAllString(content, "")
	content = xmlUnescaper.Replace(content)

	pages := models.PageTexts{}
	addPage(pages, 1, content) // DOCX has no page numbers
	return pages, nil
}

var xmlUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func parseXLSX(_ context.Context, filePath string) (models.PageTexts, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	pages := models.PageTexts{}
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(strings.ToUpper(sheet.Name) + "\n")
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				if s := strings.TrimSpace(cell.String()); s != "" {
					cells = append(cells, s)
				}
			}
			text.WriteString(strings.Join(cells, " ") + "\n")
		}
		addPage(pages, sheetNum+1, text.String()) // one page per sheet, 1-based
	}
	return pages, nil
}

func parseExcelize(_ context.Context, filePath string) (models.PageTexts, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := models.PageTexts{}
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Debug().Err(err).Str("sheet", sheetName).Msg("Skipping unreadable sheet")
			continue
		}
		var text strings.Builder
		text.WriteString(strings.ToUpper(sheetName) + "\n")
		for _, row := range rows {
			text.WriteString(strings.Join(row, " ") + "\n")
		}
		addPage(pages, sheetNum+1, text.String())
	}
	return pages, nil
}

// parseText treats form feeds as page breaks, as pdftotext output does.
func parseText(_ context.Context, filePath string) (models.PageTexts, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	pages := models.PageTexts{}
	for i, page := range strings.Split(string(data), "\f") {
		addPage(pages, i+1, page)
	}
	return pages, nil
}
