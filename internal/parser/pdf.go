package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf-analyzer/internal/models"
)

// ErrFlatText reports that the row reader returned every page as a single
// line, which leaves no header lines for the segmenter to find.
var ErrFlatText = errors.New("page text has no line structure")

// LedongthucExtractor reads page text row by row, top to bottom.
type LedongthucExtractor struct{}

func (LedongthucExtractor) Name() string { return "ledongthuc" }

func (LedongthucExtractor) ExtractPages(ctx context.Context, filePath string) (pages models.PageTexts, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages = models.PageTexts{}
	flat := 0
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := pageRowText(page)
		if lineCount(text) < 2 {
			if plain, err := page.GetPlainText(nil); err == nil && lineCount(plain) >= 2 {
				text = plain
			}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if lineCount(text) < 2 {
			flat++
		}
		addPage(pages, i, text)
	}
	if len(pages) > 0 && flat == len(pages) {
		return nil, ErrFlatText
	}
	return pages, nil
}

// pageRowText writes one line per row, and breaks a row again where its
// words sit at different heights.
func pageRowText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		text, err := page.GetPlainText(nil)
		if err != nil {
			return ""
		}
		return text
	}
	var b strings.Builder
	for _, row := range rows {
		for k, word := range row.Content {
			if k > 0 && word.Y != row.Content[k-1].Y {
				b.WriteByte('\n')
			}
			b.WriteString(word.S)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func lineCount(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// PdfcpuExtractor decodes page content streams with pdfcpu and reads the
// text showing operators. It copes with files the row reader rejects.
type PdfcpuExtractor struct{}

func (PdfcpuExtractor) Name() string { return "pdfcpu" }

func (PdfcpuExtractor) ExtractPages(ctx context.Context, filePath string) (models.PageTexts, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := models.PageTexts{}
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := pdfcpulib.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		addPage(pages, pageNr, ContentStreamText(data))
	}
	return pages, nil
}

// ContentStreamText pulls the strings shown by Tj, TJ, ' and " out of a
// decoded content stream. Text positioning operators and ET start a new line.
func ContentStreamText(data []byte) string {
	var (
		out     strings.Builder
		line    strings.Builder
		pending []string
	)
	newLine := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '(':
			s, next := readLiteralString(data, i)
			pending = append(pending, s)
			i = next
		case c == '<' && i+1 < len(data) && data[i+1] == '<', c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, next := readHexString(data, i)
			pending = append(pending, s)
			i = next
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case isOperatorStart(c):
			start := i
			for i < len(data) && isOperatorChar(data[i]) {
				i++
			}
			switch string(data[start:i]) {
			case "Tj", "TJ":
				line.WriteString(strings.Join(pending, ""))
			case "'", `"`:
				newLine()
				line.WriteString(strings.Join(pending, ""))
			case "Td", "TD", "T*", "Tm", "ET":
				newLine()
			}
			pending = pending[:0]
		default:
			i++
		}
	}
	newLine()
	return out.String()
}

func isOperatorStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '\'' || c == '"' || c == '*'
}

func isOperatorChar(c byte) bool {
	return isOperatorStart(c) || (c >= '0' && c <= '9')
}

// readLiteralString decodes a balanced (...) string starting at data[i].
func readLiteralString(data []byte, i int) (string, int) {
	var b strings.Builder
	depth := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data):
			i++
			switch e := data[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := 0
					for k := 0; k < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7'; k++ {
						val = val*8 + int(data[i]-'0')
						i++
					}
					b.WriteByte(byte(val))
					continue
				}
				b.WriteByte(e)
			}
			i++
			continue
		case c == '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
		case c == ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		i++
	}
	return b.String(), i
}

// readHexString decodes a <...> string starting at data[i].
func readHexString(data []byte, i int) (string, int) {
	var digits []byte
	i++
	for i < len(data) && data[i] != '>' {
		if isHex(data[i]) {
			digits = append(digits, data[i])
		}
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for k := 0; k < len(digits); k += 2 {
		out = append(out, hexVal(digits[k])<<4|hexVal(digits[k+1]))
	}
	return string(out), i + 1
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
