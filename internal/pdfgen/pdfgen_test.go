package pdfgen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "doc.pdf")
	text := "HEADER\nbody line\f\nSECOND PAGE\nmore"
	err := WriteText(text, out, Options{IsHeading: func(line string) bool {
		return strings.ToUpper(line) == line
	}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:8])
	}
	if n := bytes.Count(data, []byte("/Type /Page\n")); n != 2 {
		t.Fatalf("expected 2 pages, found %d", n)
	}
}
