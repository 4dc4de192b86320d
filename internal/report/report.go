// Package report renders analysis results as sanitised HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pdf-analyzer/internal/models"
)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy = bluemonday.UGCPolicy()
)

// Markdown renders the output as a Markdown document.
func Markdown(collection string, out *models.AnalysisOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(collection))
	fmt.Fprintf(&b, "- **Persona:** %s\n", escape(out.Metadata.Persona))
	fmt.Fprintf(&b, "- **Task:** %s\n", escape(out.Metadata.JobToBeDone))
	fmt.Fprintf(&b, "- **Processed:** %s\n", escape(out.Metadata.ProcessingTimestamp))
	fmt.Fprintf(&b, "- **Documents:** %d\n\n", len(out.Metadata.InputDocuments))

	b.WriteString("## Extracted sections\n\n")
	if len(out.ExtractedSections) == 0 {
		b.WriteString("No sections found.\n\n")
	} else {
		b.WriteString("| Rank | Section | Document | Page |\n|---:|---|---|---:|\n")
		for _, s := range out.ExtractedSections {
			fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", s.ImportanceRank, cell(s.SectionTitle), cell(s.Document), s.PageNumber)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Subsection analysis\n\n")
	if len(out.SubsectionAnalysis) == 0 {
		b.WriteString("No excerpts.\n")
	}
	for _, s := range out.SubsectionAnalysis {
		fmt.Fprintf(&b, "### %s, page %d\n\n%s\n\n", escape(s.Document), s.PageNumber, escape(s.RefinedText))
	}
	return b.String()
}

// HTML renders the output as a sanitised HTML page.
func HTML(collection string, out *models.AnalysisOutput) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(collection, out)), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	body := policy.SanitizeBytes(buf.Bytes())

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	page.WriteString(bluemonday.StrictPolicy().Sanitize(collection))
	page.WriteString("</title></head><body>\n")
	page.Write(body)
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`,
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}

func cell(s string) string {
	return strings.ReplaceAll(escape(s), "|", `\|`)
}
