package helper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateUUID()
	if a == b || len(a) != 36 {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	v := map[string]string{"text": "a < b & c"}
	if err := WriteJSON(path, v); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "a < b & c") {
		t.Fatalf("expected unescaped text, got %s", data)
	}
	if !strings.Contains(string(data), "\n    \"text\"") {
		t.Fatalf("expected 4-space indent, got %s", data)
	}
	var back map[string]string
	if err := json.Unmarshal(data, &back); err != nil || back["text"] != v["text"] {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
}
