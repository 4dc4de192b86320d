package ranking

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pdf-analyzer/internal/models"
)

var (
	whitespaceRunRe    = regexp.MustCompile(models.WhitespaceRunRegex)
	sentenceBoundaryRe = regexp.MustCompile(models.SentenceBoundaryRegex)
)

// Refine collapses whitespace and, when the text is longer than maxLength
// characters, keeps the leading sentences that fit. Sentence terminators are
// dropped and kept sentences are joined by single spaces. If not even the
// first sentence fits, the text is cut at the last space within maxLength.
func Refine(text string, maxLength int) string {
	text = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(text, " "))
	if text == "" || utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	var b strings.Builder
	length := 0
	for _, sentence := range splitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if length+n > maxLength {
			break
		}
		b.WriteString(sentence)
		b.WriteByte(' ')
		length += n + 1
	}
	if refined := strings.TrimSpace(b.String()); refined != "" {
		return refined
	}
	return cutAtSpace(text, maxLength)
}

func splitSentences(text string) []string {
	parts := sentenceBoundaryRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func cutAtSpace(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	cut := string(runes[:maxLength])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
