package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-analyzer/internal/analyzer"
	"pdf-analyzer/internal/api"
	"pdf-analyzer/internal/chromemdb"
	"pdf-analyzer/internal/collection"
	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/db"
	"pdf-analyzer/internal/embedding"
	"pdf-analyzer/internal/helper"
	"pdf-analyzer/internal/models"
)

const (
	configFilePath      = "./configs/config.yaml"
	sectionIndexName    = "sections"
	shutdownGracePeriod = 10 * time.Second
)

type flags struct {
	configPath  string
	list        bool
	validate    string
	collection  string
	all         bool
	basePath    string
	outputDir   string
	serve       bool
	addr        string
	schedule    string
	create      string
	challengeID string
	persona     string
	task        string
	makeSamples string
	resetRuns   bool
	verbose     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var f flags
	flag.StringVar(&f.configPath, "config", configFilePath, "Path to the YAML config file")
	flag.BoolVar(&f.list, "list", false, "List available collections")
	flag.StringVar(&f.validate, "validate", "", "Validate the structure of a collection")
	flag.StringVar(&f.collection, "collection", "", "Analyze a single collection")
	flag.BoolVar(&f.all, "all", false, "Analyze all collections under the base path")
	flag.StringVar(&f.basePath, "base-path", "", "Directory holding the collections")
	flag.StringVar(&f.outputDir, "output-dir", "", `Directory the results are written to, "-" writes them into each collection`)
	flag.BoolVar(&f.serve, "serve", false, "Start the HTTP API")
	flag.StringVar(&f.addr, "addr", "", "HTTP listen address")
	flag.StringVar(&f.schedule, "schedule", "", "Cron spec for periodic analysis of all collections in serve mode")
	flag.StringVar(&f.create, "create", "", "Create a new collection with this name")
	flag.StringVar(&f.challengeID, "challenge-id", "", "Challenge id for -create, generated when empty")
	flag.StringVar(&f.persona, "persona", "", "Persona role for -create")
	flag.StringVar(&f.task, "task", "", "Job to be done for -create")
	flag.StringVar(&f.makeSamples, "make-samples", "", "Write the sample collections with generated PDFs to this directory")
	flag.BoolVar(&f.resetRuns, "reset-runs", false, "Delete every stored analysis run")
	flag.BoolVar(&f.verbose, "v", false, "Verbose logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if f.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		log.Error().Err(err).Msg("Error loading config")
		return 1
	}
	applyFlags(cfg, &f)
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	layout := collection.LayoutFromConfig(cfg.Paths)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case f.makeSamples != "":
		return makeSamples(layout, f.makeSamples)
	case f.list:
		return listCollections(layout, cfg.Paths.BasePath)
	case f.validate != "":
		return validateCollection(layout, f.validate)
	case f.create != "":
		return createCollection(layout, cfg.Paths.BasePath, &f)
	case f.resetRuns:
		return resetRuns(ctx, cfg)
	case f.collection != "", f.all, f.serve:
	default:
		flag.Usage()
		return 1
	}

	svc, err := openServices(ctx, cfg, layout)
	if err != nil {
		log.Error().Err(err).Msg("Error initializing analyzer")
		return 1
	}
	defer svc.close()

	switch {
	case f.serve:
		return serve(ctx, cfg, layout, svc)
	case f.collection != "":
		if _, err := layout.Validate(f.collection); err != nil {
			log.Error().Err(err).Msg("Invalid collection structure")
			return 1
		}
		outPath, err := svc.analyzer.AnalyzeCollection(ctx, f.collection)
		if err != nil {
			log.Error().Err(err).Str("collection", f.collection).Msg("Analysis failed")
			return 1
		}
		fmt.Println(outPath)
		return 0
	default:
		result, err := svc.analyzer.AnalyzeAll(ctx, cfg.Paths.BasePath)
		if err != nil {
			log.Error().Err(err).Msg("Batch analysis failed")
			return 1
		}
		helper.PrettyPrint(result)
		if result.Failed > 0 {
			return 1
		}
		return 0
	}
}

func applyFlags(cfg *config.Config, f *flags) {
	if f.basePath != "" {
		cfg.Paths.BasePath = f.basePath
	}
	if f.outputDir != "" {
		cfg.Paths.OutputDir = f.outputDir
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.schedule != "" {
		cfg.Server.Schedule = f.schedule
	}
}

type services struct {
	analyzer *analyzer.Analyzer
	store    db.ResultStore
	index    *chromemdb.VectorDBManager
}

func (s *services) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing result store")
		}
	}
}

// openServices wires the analyzer with the optional run store and section index.
func openServices(ctx context.Context, cfg *config.Config, layout collection.Layout) (*services, error) {
	s := &services{}
	opts := []analyzer.Option{
		analyzer.WithLogger(log.Logger),
		analyzer.WithLayout(layout),
		analyzer.WithOutputDir(cfg.Paths.ResultDir()),
	}

	if cfg.Database.DSN != "" || !cfg.Store.Disabled {
		store, err := db.Open(ctx, &cfg.Database, &cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open result store: %w", err)
		}
		s.store = store
		opts = append(opts, analyzer.WithStore(store))
	}

	if cfg.Index.Enabled {
		profiler := embedding.NewProfiler(cfg.Analysis.Categories, cfg.Analysis.GeneralKeywords)
		index, err := chromemdb.NewVectorDBManager(cfg.Index.Path, sectionIndexName, cfg.Index.InMemory, cfg.Index.Compress, profiler.EmbeddingFunc())
		if err != nil {
			s.close()
			return nil, fmt.Errorf("open section index: %w", err)
		}
		s.index = index
		opts = append(opts, analyzer.WithIndex(index))
	}

	a, err := analyzer.New(cfg.Analysis, opts...)
	if err != nil {
		s.close()
		return nil, err
	}
	s.analyzer = a
	return s, nil
}

func serve(ctx context.Context, cfg *config.Config, layout collection.Layout, s *services) int {
	opts := api.Options{
		BasePath:  cfg.Paths.BasePath,
		OutputDir: cfg.Paths.ResultDir(),
		Layout:    layout,
		Logger:    log.Logger,
	}
	if s.store != nil {
		opts.Runs = s.store
	}
	if s.index != nil {
		opts.Sections = s.index
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(s.analyzer, opts).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.Schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Server.Schedule, func() {
			result, err := s.analyzer.AnalyzeAll(ctx, cfg.Paths.BasePath)
			if err != nil {
				log.Error().Err(err).Msg("Scheduled analysis failed")
				return
			}
			log.Info().Int("successful", result.Successful).Int("failed", result.Failed).Msg("Scheduled analysis finished")
		})
		if err != nil {
			log.Error().Err(err).Str("schedule", cfg.Server.Schedule).Msg("Invalid schedule")
			return 1
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		log.Info().Str("schedule", cfg.Server.Schedule).Msg("Scheduled batch analysis")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			return 1
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down HTTP server")
			return 1
		}
	}
	return 0
}

func listCollections(layout collection.Layout, basePath string) int {
	list, err := layout.List(basePath)
	if err != nil {
		log.Error().Err(err).Msg("Error listing collections")
		return 1
	}
	if len(list) == 0 {
		fmt.Println("No collections found.")
		return 0
	}
	fmt.Printf("Available collections in %s:\n\n", basePath)
	for _, s := range list {
		fmt.Printf("  %s\n", s.Name)
		if s.ChallengeID != "" {
			fmt.Printf("    Challenge ID: %s\n", s.ChallengeID)
		}
		if s.Persona != "" {
			fmt.Printf("    Persona: %s\n", s.Persona)
		}
		fmt.Printf("    Input: %t  PDFs: %d files\n\n", s.HasInput, s.PDFCount)
	}
	return 0
}

func validateCollection(layout collection.Layout, path string) int {
	n, err := layout.Validate(path)
	if err != nil {
		log.Error().Err(err).Str("collection", path).Msg("Collection is invalid")
		return 1
	}
	log.Info().
		Str("input", layout.InputPath(path)).
		Str("pdfs", layout.PDFPath(path)).
		Int("pdf_count", n).
		Msg("Collection validated successfully")
	return 0
}

func createCollection(layout collection.Layout, basePath string, f *flags) int {
	input, err := collection.NewInput(f.create, models.ChallengeInfo{ChallengeID: f.challengeID}, f.persona, f.task)
	if err != nil {
		log.Error().Err(err).Msg("Error creating collection")
		return 1
	}
	path, err := layout.Create(basePath, f.create, input)
	if err != nil {
		log.Error().Err(err).Msg("Error creating collection")
		return 1
	}
	log.Info().
		Str("path", path).
		Str("challenge_id", input.ChallengeInfo.ChallengeID).
		Msg("Collection created, add PDFs to its PDF directory")
	return 0
}

func resetRuns(ctx context.Context, cfg *config.Config) int {
	store, err := db.Open(ctx, &cfg.Database, &cfg.Store)
	if err != nil {
		log.Error().Err(err).Msg("Error opening result store")
		return 1
	}
	defer store.Close()
	if err := store.Reset(ctx); err != nil {
		log.Error().Err(err).Msg("Error resetting result store")
		return 1
	}
	log.Info().Msg("Stored analysis runs deleted")
	return 0
}

func makeSamples(layout collection.Layout, dir string) int {
	created, err := layout.WriteSamples(dir)
	if err != nil {
		log.Error().Err(err).Msg("Error writing sample collections")
		return 1
	}
	for _, path := range created {
		log.Info().Str("path", path).Msg("Sample collection written")
	}
	return 0
}
