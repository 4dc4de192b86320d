// Package collection manages the on-disk layout of analysis collections:
// a directory holding an input descriptor and a directory of PDFs.
package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/helper"
	"pdf-analyzer/internal/models"
)

var (
	ErrInputNotFound    = errors.New("input file not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoPDFs           = errors.New("no PDF files found")
	ErrPDFDirNotFound   = errors.New("PDFs directory not found")
	ErrNotFound         = errors.New("collection not found")
	ErrCollectionExists = errors.New("collection already exists")
	ErrInvalidName      = errors.New("invalid name")
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._ ()-]+`)

// Layout names the files inside a collection.
type Layout struct {
	InputFile  string
	OutputFile string
	PDFDir     string
	Prefix     string
}

func DefaultLayout() Layout {
	return Layout{
		InputFile:  models.InputFileName,
		OutputFile: models.OutputFileName,
		PDFDir:     models.PDFDirName,
		Prefix:     models.CollectionPrefix,
	}
}

func LayoutFromConfig(p config.PathsConfig) Layout {
	l := DefaultLayout()
	if p.InputFile != "" {
		l.InputFile = p.InputFile
	}
	if p.OutputFile != "" {
		l.OutputFile = p.OutputFile
	}
	if p.PDFDir != "" {
		l.PDFDir = p.PDFDir
	}
	if p.CollectionPrefix != "" {
		l.Prefix = p.CollectionPrefix
	}
	return l
}

// Summary describes a collection directory as found by List.
type Summary struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	HasInput    bool   `json:"has_input"`
	HasPDFs     bool   `json:"has_pdfs"`
	PDFCount    int    `json:"pdf_count"`
	ChallengeID string `json:"challenge_id,omitempty"`
	Persona     string `json:"persona,omitempty"`
}

// Details is the full view of one collection.
type Details struct {
	Name      string                 `json:"name"`
	Path      string                 `json:"path"`
	InputData *models.ChallengeInput `json:"input_data"`
	PDFCount  int                    `json:"pdf_count"`
	HasOutput bool                   `json:"has_output"`
}

func (l Layout) InputPath(collectionPath string) string {
	return filepath.Join(collectionPath, l.InputFile)
}

func (l Layout) PDFPath(collectionPath string) string {
	return filepath.Join(collectionPath, l.PDFDir)
}

// List returns the prefixed subdirectories of basePath sorted by name. A
// missing base path yields an empty list.
func (l Layout) List(basePath string) ([]Summary, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, err
	}

	out := []Summary{}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), l.Prefix) {
			continue
		}
		path := filepath.Join(basePath, e.Name())
		s := Summary{Name: e.Name(), Path: path}
		if input, err := l.LoadInput(path); err == nil {
			s.HasInput = true
			s.ChallengeID = input.ChallengeInfo.ChallengeID
			s.Persona = input.Persona.Role
		} else if !errors.Is(err, ErrInputNotFound) {
			s.HasInput = true
		}
		if isDir(l.PDFPath(path)) {
			s.HasPDFs = true
			s.PDFCount = len(l.PDFFiles(path))
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Ready returns the paths of collections that have both an input file and a
// PDF directory.
func (l Layout) Ready(basePath string) ([]string, error) {
	list, err := l.List(basePath)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, s := range list {
		if s.HasInput && s.HasPDFs {
			paths = append(paths, s.Path)
		}
	}
	return paths, nil
}

// Validate checks the structure of a collection: input file, PDF directory and
// at least one PDF. It returns the number of PDFs found.
func (l Layout) Validate(collectionPath string) (int, error) {
	if !isDir(collectionPath) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, collectionPath)
	}
	if !fileExists(l.InputPath(collectionPath)) {
		return 0, fmt.Errorf("%w: %s", ErrInputNotFound, l.InputPath(collectionPath))
	}
	if !isDir(l.PDFPath(collectionPath)) {
		return 0, fmt.Errorf("%w: %s", ErrPDFDirNotFound, l.PDFPath(collectionPath))
	}
	n := len(l.PDFFiles(collectionPath))
	if n == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoPDFs, l.PDFPath(collectionPath))
	}
	return n, nil
}

// Info loads the details of a named collection under basePath.
func (l Layout) Info(basePath, name string) (*Details, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(basePath, name)
	if !isDir(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	d := &Details{Name: name, Path: path, PDFCount: len(l.PDFFiles(path))}
	input, err := l.LoadInput(path)
	switch {
	case err == nil:
		d.InputData = input
	case !errors.Is(err, ErrInputNotFound):
		return nil, err
	}
	d.HasOutput = fileExists(filepath.Join(path, l.OutputFile))
	return d, nil
}

// Create scaffolds a new collection directory with an empty PDF directory and
// the given input descriptor.
func (l Layout) Create(basePath, name string, input *models.ChallengeInput) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ValidateInput(input); err != nil {
		return "", err
	}
	path := filepath.Join(basePath, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	if err := helper.CreateFolder(l.PDFPath(path)); err != nil {
		return "", err
	}
	if err := helper.WriteJSON(l.InputPath(path), input); err != nil {
		return "", err
	}
	return path, nil
}

// SavePDF stores an uploaded PDF in the collection and adds it to the input
// document list when it is not listed yet. It returns the stored file name.
func (l Layout) SavePDF(collectionPath, filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", fmt.Errorf("%w: only .pdf files are accepted, got %q", ErrInvalidName, filename)
	}
	if !isDir(collectionPath) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, collectionPath)
	}
	if err := helper.CreateFolder(l.PDFPath(collectionPath)); err != nil {
		return "", err
	}

	dst := filepath.Join(l.PDFPath(collectionPath), name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	input, err := l.LoadInput(collectionPath)
	if err != nil {
		if errors.Is(err, ErrInputNotFound) {
			return name, nil
		}
		return "", err
	}
	for _, d := range input.Documents {
		if d.Filename == name {
			return name, nil
		}
	}
	input.Documents = append(input.Documents, models.InputDocument{
		Filename: name,
		Title:    strings.TrimSuffix(name, filepath.Ext(name)),
	})
	return name, helper.WriteJSON(l.InputPath(collectionPath), input)
}

// PDFFiles lists the .pdf file names in the collection's PDF directory.
func (l Layout) PDFFiles(collectionPath string) []string {
	entries, err := os.ReadDir(l.PDFPath(collectionPath))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".pdf") {
			names = append(names, e.Name())
		}
	}
	return names
}

// LoadInput reads and validates the collection's input descriptor.
func (l Layout) LoadInput(collectionPath string) (*models.ChallengeInput, error) {
	return LoadInput(l.InputPath(collectionPath))
}

// LoadInput reads and validates an input descriptor file.
func LoadInput(path string) (*models.ChallengeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	var input models.ChallengeInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, path, err)
	}
	if err := ValidateInput(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

// NewInput builds a descriptor for a new, empty collection. A blank challenge
// id is replaced by a generated one and the test case name defaults to the
// collection name.
func NewInput(name string, info models.ChallengeInfo, role, task string) (*models.ChallengeInput, error) {
	if strings.TrimSpace(info.ChallengeID) == "" {
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		info.ChallengeID = id
	}
	if strings.TrimSpace(info.TestCaseName) == "" {
		info.TestCaseName = name
	}
	return &models.ChallengeInput{
		ChallengeInfo: info,
		Documents:     []models.InputDocument{},
		Persona:       models.Persona{Role: role},
		JobToBeDone:   models.JobToBeDone{Task: task},
	}, nil
}

// ValidateInput requires the challenge id and test case name, a document
// list whose entries carry a filename and title, a persona role and a task.
func ValidateInput(input *models.ChallengeInput) error {
	if input == nil {
		return fmt.Errorf("%w: empty descriptor", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ChallengeInfo.ChallengeID) == "" {
		return fmt.Errorf("%w: missing challenge_info.challenge_id", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ChallengeInfo.TestCaseName) == "" {
		return fmt.Errorf("%w: missing challenge_info.test_case_name", ErrInvalidInput)
	}
	if input.Documents == nil {
		return fmt.Errorf("%w: missing documents", ErrInvalidInput)
	}
	for i, d := range input.Documents {
		if strings.TrimSpace(d.Filename) == "" {
			return fmt.Errorf("%w: document %d has no filename", ErrInvalidInput, i)
		}
		if strings.TrimSpace(d.Title) == "" {
			return fmt.Errorf("%w: document %d has no title", ErrInvalidInput, i)
		}
	}
	if strings.TrimSpace(input.Persona.Role) == "" {
		return fmt.Errorf("%w: missing persona.role", ErrInvalidInput)
	}
	if strings.TrimSpace(input.JobToBeDone.Task) == "" {
		return fmt.Errorf("%w: missing job_to_be_done.task", ErrInvalidInput)
	}
	return nil
}

// SanitizeFilename strips directories and unusual characters from an
// uploaded file name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	return strings.TrimLeft(strings.TrimSpace(name), ".")
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
