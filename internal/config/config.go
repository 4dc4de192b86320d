package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"pdf-analyzer/internal/models"
)

const (
	defaultMaxSectionsPerPage    = 3
	defaultMaxTotalSections      = 10
	defaultMaxSubsectionAnalyses = 5
	defaultMaxTextLength         = 500
	defaultLengthBonusMax        = 0.5
	defaultLengthBonusDivisor    = 100
	defaultExtractionTimeout     = 30 * time.Second
	defaultServerAddr            = ":8000"
	defaultBoltPath              = "./data/runs.db"
	defaultIndexPath             = "./data/chromemdb"
)

type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Paths    PathsConfig    `yaml:"paths"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	Index    IndexConfig    `yaml:"index"`
}

// KeywordCategory is a named topic word list. A task mentioning any of the
// words pulls in the whole list.
type KeywordCategory struct {
	Name  string   `yaml:"name"`
	Words []string `yaml:"words"`
}

// AnalysisConfig is the immutable configuration of the ranking core.
type AnalysisConfig struct {
	MaxSectionsPerPage    int               `yaml:"max_sections_per_page"`
	MaxTotalSections      int               `yaml:"max_total_sections"`
	MaxSubsectionAnalyses int               `yaml:"max_subsection_analyses"`
	MaxTextLength         int               `yaml:"max_text_length"`
	LengthBonusMax        float64           `yaml:"length_bonus_max"`
	LengthBonusDivisor    float64           `yaml:"length_bonus_divisor"`
	ExtractionTimeout     time.Duration     `yaml:"extraction_timeout"`
	Categories            []KeywordCategory `yaml:"categories"`
	GeneralKeywords       []string          `yaml:"general_keywords"`
	HeaderPatterns        []string          `yaml:"header_patterns"`
}

type PathsConfig struct {
	BasePath         string `yaml:"base_path"`
	OutputDir        string `yaml:"output_dir"`
	InputFile        string `yaml:"input_file"`
	OutputFile       string `yaml:"output_file"`
	PDFDir           string `yaml:"pdf_dir"`
	CollectionPrefix string `yaml:"collection_prefix"`
}

// OutputBesideInput as output_dir writes every result into its own
// collection directory instead of a shared output tree.
const OutputBesideInput = "-"

// ResultDir returns the output directory, empty when results are written
// next to each collection's input.
func (p PathsConfig) ResultDir() string {
	if p.OutputDir == OutputBesideInput {
		return ""
	}
	return p.OutputDir
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Schedule is a cron spec for periodic analysis of all collections, empty disables
	Schedule string `yaml:"schedule"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type StoreConfig struct {
	BoltPath string `yaml:"bolt_path"`
	Disabled bool   `yaml:"disabled"`
}

type IndexConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
	Compress bool   `yaml:"compress"`
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Analysis.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.Analysis.ApplyDefaults()

	if c.Paths.BasePath == "" {
		c.Paths.BasePath = models.DefaultBasePath
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = models.DefaultOutputDir
	}
	if c.Paths.InputFile == "" {
		c.Paths.InputFile = models.InputFileName
	}
	if c.Paths.OutputFile == "" {
		c.Paths.OutputFile = models.OutputFileName
	}
	if c.Paths.PDFDir == "" {
		c.Paths.PDFDir = models.PDFDirName
	}
	if c.Paths.CollectionPrefix == "" {
		c.Paths.CollectionPrefix = models.CollectionPrefix
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Store.BoltPath == "" {
		c.Store.BoltPath = defaultBoltPath
	}
	if c.Index.Path == "" {
		c.Index.Path = defaultIndexPath
	}
}

// DefaultAnalysis returns the stock ranking configuration.
func DefaultAnalysis() AnalysisConfig {
	var a AnalysisConfig
	a.ApplyDefaults()
	return a
}

// ApplyDefaults fills zero-valued analysis settings.
func (a *AnalysisConfig) ApplyDefaults() {
	if a.MaxSectionsPerPage == 0 {
		a.MaxSectionsPerPage = defaultMaxSectionsPerPage
	}
	if a.MaxTotalSections == 0 {
		a.MaxTotalSections = defaultMaxTotalSections
	}
	if a.MaxSubsectionAnalyses == 0 {
		a.MaxSubsectionAnalyses = defaultMaxSubsectionAnalyses
	}
	if a.MaxTextLength == 0 {
		a.MaxTextLength = defaultMaxTextLength
	}
	if a.LengthBonusMax == 0 {
		a.LengthBonusMax = defaultLengthBonusMax
	}
	if a.LengthBonusDivisor == 0 {
		a.LengthBonusDivisor = defaultLengthBonusDivisor
	}
	if a.ExtractionTimeout == 0 {
		a.ExtractionTimeout = defaultExtractionTimeout
	}
	if len(a.Categories) == 0 {
		a.Categories = DefaultCategories()
	}
	if len(a.GeneralKeywords) == 0 {
		a.GeneralKeywords = DefaultGeneralKeywords()
	}
	if len(a.HeaderPatterns) == 0 {
		a.HeaderPatterns = append([]string(nil), models.DefaultHeaderOrder...)
	}
}

// Validate rejects unusable caps and unknown or invalid header patterns.
func (a AnalysisConfig) Validate() error {
	if a.MaxSectionsPerPage <= 0 || a.MaxTotalSections <= 0 || a.MaxSubsectionAnalyses <= 0 {
		return errors.New("config: section caps must be positive")
	}
	if a.MaxTextLength <= 0 {
		return errors.New("config: max_text_length must be positive")
	}
	if a.LengthBonusMax < 0 || a.LengthBonusDivisor <= 0 {
		return errors.New("config: invalid length bonus settings")
	}
	for _, p := range a.HeaderPatterns {
		expr, ok := models.HeaderPatterns[p]
		if !ok {
			expr = p
		}
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("config: header pattern %q: %w", p, err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can tune a run without aliasing slices.
func (a AnalysisConfig) Clone() AnalysisConfig {
	out := a
	out.Categories = make([]KeywordCategory, len(a.Categories))
	for i, c := range a.Categories {
		out.Categories[i] = KeywordCategory{Name: c.Name, Words: append([]string(nil), c.Words...)}
	}
	out.GeneralKeywords = append([]string(nil), a.GeneralKeywords...)
	out.HeaderPatterns = append([]string(nil), a.HeaderPatterns...)
	return out
}

func DefaultCategories() []KeywordCategory {
	return []KeywordCategory{
		{Name: "travel", Words: []string{
			"travel", "trip", "visit", "explore", "tour", "vacation", "holiday",
			"city", "restaurant", "hotel", "activity", "attraction", "culture",
			"beach", "coast", "adventure", "nightlife", "entertainment",
		}},
		{Name: "hr", Words: []string{
			"form", "fillable", "onboarding", "compliance", "document", "signature",
			"pdf", "acrobat", "create", "manage", "workflow", "hr", "human resources",
			"employee", "process", "automation",
		}},
		{Name: "food", Words: []string{
			"menu", "recipe", "cooking", "food", "meal", "dinner", "buffet",
			"vegetarian", "gluten-free", "corporate", "gathering", "ingredient",
			"preparation", "serving", "nutrition",
		}},
	}
}

func DefaultGeneralKeywords() []string {
	return []string{"plan", "prepare", "create", "manage", "organize", "arrange"}
}
