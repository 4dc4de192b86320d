// Package analyzer runs the collection pipeline: extract page text, split it
// into sections, score and rank them against the task, and write the result.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-analyzer/internal/collection"
	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/helper"
	"pdf-analyzer/internal/models"
	"pdf-analyzer/internal/parser"
	"pdf-analyzer/internal/ranking"
)

// TimestampLayout formats processing_timestamp as a local ISO 8601 time with
// microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// RunRecorder persists completed runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, run models.Run) error
}

// SectionIndexer stores scored sections for later search.
type SectionIndexer interface {
	IndexSections(ctx context.Context, collectionName string, sections []models.Section) error
}

// DocumentPages is the extracted text of one input document.
type DocumentPages struct {
	Name  string
	Pages models.PageTexts
}

// Analyzer holds configuration and collaborators only, so one instance can
// serve concurrent analyses.
type Analyzer struct {
	cfg       config.AnalysisConfig
	layout    collection.Layout
	outputDir string
	extractor parser.Extractor
	keywords  *ranking.KeywordExtractor
	scorer    *ranking.Scorer
	segmenter *parser.SectionParser
	store     RunRecorder
	index     SectionIndexer
	now       func() time.Time
	logger    zerolog.Logger
}

type Option func(*Analyzer)

func WithStore(s RunRecorder) Option { return func(a *Analyzer) { a.store = s } }

func WithIndex(i SectionIndexer) Option { return func(a *Analyzer) { a.index = i } }

func WithClock(now func() time.Time) Option { return func(a *Analyzer) { a.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(a *Analyzer) { a.logger = l } }

// WithExtractor replaces the default extension-dispatching parser.
func WithExtractor(e parser.Extractor) Option { return func(a *Analyzer) { a.extractor = e } }

func WithLayout(l collection.Layout) Option { return func(a *Analyzer) { a.layout = l } }

// WithOutputDir sets where outputs are written. Empty writes next to the input.
func WithOutputDir(dir string) Option { return func(a *Analyzer) { a.outputDir = dir } }

// New builds an Analyzer. Zero fields of cfg take their defaults.
func New(cfg config.AnalysisConfig, opts ...Option) (*Analyzer, error) {
	cfg = cfg.Clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	patterns, err := parser.CompileHeaderPatterns(cfg.HeaderPatterns)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:       cfg,
		layout:    collection.DefaultLayout(),
		outputDir: models.DefaultOutputDir,
		keywords:  ranking.NewKeywordExtractor(cfg.Categories, cfg.GeneralKeywords),
		scorer:    ranking.NewScorer(cfg.LengthBonusMax, cfg.LengthBonusDivisor),
		segmenter: parser.NewSectionParser(patterns),
		now:       time.Now,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = parser.New(a.logger)
	}
	return a, nil
}

// Keywords exposes the keyword set a task expands to.
func (a *Analyzer) Keywords(task string) models.KeywordSet {
	return a.keywords.Extract(task)
}

type analysis struct {
	output   *models.AnalysisOutput
	sections []models.Section
	keywords models.KeywordSet
}

// Analyze extracts every input document from pdfDir and ranks its sections.
// Missing or unreadable documents are logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, input *models.ChallengeInput, pdfDir string) (*models.AnalysisOutput, error) {
	res, err := a.analyze(ctx, input, pdfDir)
	if err != nil {
		return nil, err
	}
	return res.output, nil
}

func (a *Analyzer) analyze(ctx context.Context, input *models.ChallengeInput, pdfDir string) (*analysis, error) {
	docs := make([]DocumentPages, 0, len(input.Documents))
	for _, d := range input.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, err := a.extract(ctx, filepath.Join(pdfDir, d.Filename))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn().Err(err).Str("document", d.Filename).Msg("Skipping document")
			continue
		}
		docs = append(docs, DocumentPages{Name: d.Filename, Pages: pages})
	}
	return a.rank(input, docs), nil
}

func (a *Analyzer) extract(ctx context.Context, path string) (models.PageTexts, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	pages, err := parser.ExtractWithTimeout(ctx, a.extractor, path, a.cfg.ExtractionTimeout)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, parser.ErrNoText
	}
	return pages, nil
}

// AnalyzeDocuments ranks already extracted documents. It does no I/O.
func (a *Analyzer) AnalyzeDocuments(input *models.ChallengeInput, docs []DocumentPages) *models.AnalysisOutput {
	return a.rank(input, docs).output
}

func (a *Analyzer) rank(input *models.ChallengeInput, docs []DocumentPages) *analysis {
	keywords := a.keywords.Extract(input.JobToBeDone.Task)
	a.logger.Debug().Strs("keywords", keywords.Sorted()).Msg("Extracted task keywords")

	all := []models.Section{}
	subsections := []models.SubsectionAnalysis{}
	for _, doc := range docs {
		for _, pageNum := range doc.Pages.Pages() {
			sections := a.segmenter.Parse(doc.Pages[pageNum])
			for i := range sections {
				sections[i].Document = doc.Name
				sections[i].PageNumber = pageNum
			}
			ranking.ScoreSections(sections, a.scorer, keywords)
			ranked := ranking.RankPage(sections)

			for _, s := range ranking.SelectCandidates(ranked, a.cfg.MaxSectionsPerPage) {
				subsections = append(subsections, models.SubsectionAnalysis{
					Document:    doc.Name,
					RefinedText: ranking.Refine(s.Content, a.cfg.MaxTextLength),
					PageNumber:  pageNum,
				})
			}
			all = append(all, ranked...)
		}
		a.logger.Debug().Str("document", doc.Name).Int("pages", len(doc.Pages)).Msg("Processed document")
	}

	top := ranking.RankGlobal(all, a.cfg.MaxTotalSections)
	if len(subsections) > a.cfg.MaxSubsectionAnalyses {
		subsections = subsections[:a.cfg.MaxSubsectionAnalyses]
	}

	return &analysis{
		output: &models.AnalysisOutput{
			Metadata: models.Metadata{
				InputDocuments:      input.Filenames(),
				Persona:             input.Persona.Role,
				JobToBeDone:         input.JobToBeDone.Task,
				ProcessingTimestamp: a.now().Format(TimestampLayout),
			},
			ExtractedSections:  ranking.ToExtracted(top),
			SubsectionAnalysis: subsections,
		},
		sections: all,
		keywords: keywords,
	}
}

// ProcessCollection loads and validates the collection's input descriptor and
// analyses its PDFs without writing anything.
func (a *Analyzer) ProcessCollection(ctx context.Context, collectionPath string) (*models.AnalysisOutput, error) {
	input, err := a.layout.LoadInput(collectionPath)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, input, a.layout.PDFPath(collectionPath))
}

// OutputPath is where AnalyzeCollection writes the collection's result.
func (a *Analyzer) OutputPath(collectionPath string) string {
	if a.outputDir == "" {
		return filepath.Join(collectionPath, a.layout.OutputFile)
	}
	return filepath.Join(a.outputDir, filepath.Base(collectionPath), a.layout.OutputFile)
}

// AnalyzeCollection analyses a collection, writes the JSON result and returns
// its path. The run is recorded and its sections indexed when a store or
// index is configured; failures there are logged only.
func (a *Analyzer) AnalyzeCollection(ctx context.Context, collectionPath string) (string, error) {
	name := filepath.Base(collectionPath)
	a.logger.Info().Str("collection", name).Msg("Starting analysis")

	input, err := a.layout.LoadInput(collectionPath)
	if err != nil {
		return "", err
	}
	res, err := a.analyze(ctx, input, a.layout.PDFPath(collectionPath))
	if err != nil {
		return "", err
	}

	outPath := a.OutputPath(collectionPath)
	if err := helper.WriteJSON(outPath, res.output); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	a.logger.Info().
		Str("collection", name).
		Int("sections", len(res.output.ExtractedSections)).
		Int("subsections", len(res.output.SubsectionAnalysis)).
		Str("output", outPath).
		Msg("Analysis completed")

	a.record(ctx, name, outPath, res)
	return outPath, nil
}

func (a *Analyzer) record(ctx context.Context, name, outPath string, res *analysis) {
	if a.store != nil {
		id, err := helper.GenerateUUID()
		if err == nil {
			err = a.store.SaveRun(ctx, models.Run{
				ID:           id,
				Collection:   name,
				OutputPath:   outPath,
				Keywords:     res.keywords.Sorted(),
				SectionCount: len(res.sections),
				Output:       res.output,
				CreatedAt:    a.now(),
			})
		}
		if err != nil {
			a.logger.Warn().Err(err).Str("collection", name).Msg("Failed to record run")
		}
	}
	if a.index != nil {
		if err := a.index.IndexSections(ctx, name, res.sections); err != nil {
			a.logger.Warn().Err(err).Str("collection", name).Msg("Failed to index sections")
		}
	}
}

// AnalyzeBatch analyses each collection in turn. A failing collection is
// recorded in the result and does not stop the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, collectionPaths []string) *models.BatchResult {
	result := &models.BatchResult{
		TotalCollections: len(collectionPaths),
		Results:          []models.CollectionResult{},
	}
	for _, path := range collectionPaths {
		name := filepath.Base(path)
		outPath, err := a.AnalyzeCollection(ctx, path)
		if err != nil {
			a.logger.Error().Err(err).Str("collection", path).Msg("Collection analysis failed")
			result.Failed++
			result.Results = append(result.Results, models.CollectionResult{Collection: name, Error: err.Error()})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, models.CollectionResult{Collection: name, Success: true, OutputPath: outPath})
	}
	return result
}

var ErrNoCollections = errors.New("no collections found")

// AnalyzeAll analyses every ready collection under basePath.
func (a *Analyzer) AnalyzeAll(ctx context.Context, basePath string) (*models.BatchResult, error) {
	paths, err := a.layout.Ready(basePath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCollections, basePath)
	}
	a.logger.Info().Int("collections", len(paths)).Str("base_path", basePath).Msg("Analyzing all collections")
	return a.AnalyzeBatch(ctx, paths), nil
}
