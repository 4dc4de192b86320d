package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/models"
)

// ResultStore persists analysis runs.
type ResultStore interface {
	SaveRun(ctx context.Context, run models.Run) error
	ListRuns(ctx context.Context, collection string, limit int) ([]models.Run, error)
	// Reset discards every stored run and leaves an empty store behind.
	Reset(ctx context.Context) error
	Close() error
}

type RunRecord struct {
	bun.BaseModel `bun:"table:analysis_runs,alias:r"`
	ID            string                 `bun:"id,pk"`
	Collection    string                 `bun:"collection,notnull"`
	OutputPath    string                 `bun:"output_path"`
	Keywords      []string               `bun:"keywords,array"`
	SectionCount  int                    `bun:"section_count"`
	Output        *models.AnalysisOutput `bun:"output,type:jsonb"`
	CreatedAt     time.Time              `bun:"created_at,notnull"`
}

func newRunRecord(run models.Run) *RunRecord {
	return &RunRecord{
		ID:           run.ID,
		Collection:   run.Collection,
		OutputPath:   run.OutputPath,
		Keywords:     run.Keywords,
		SectionCount: run.SectionCount,
		Output:       run.Output,
		CreatedAt:    run.CreatedAt,
	}
}

func (r RunRecord) toRun() models.Run {
	return models.Run{
		ID:           r.ID,
		Collection:   r.Collection,
		OutputPath:   r.OutputPath,
		Keywords:     r.Keywords,
		SectionCount: r.SectionCount,
		Output:       r.Output,
		CreatedAt:    r.CreatedAt,
	}
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*RunRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	_, err = db.NewCreateIndex().
		Model((*RunRecord)(nil)).
		Index("analysis_runs_collection_idx").
		IfNotExists().
		Column("collection", "created_at").
		Exec(ctx)
	return err
}

func DropRuns(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*RunRecord)(nil)).IfExists().Exec(ctx)
	return err
}

// PostgresStore keeps runs in an analysis_runs table.
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore connects and makes sure the schema exists.
func NewPostgresStore(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresStore, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, cfg.Debug)
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run models.Run) error {
	_, err := s.db.NewInsert().Model(newRunRecord(run)).Exec(ctx)
	return err
}

func (s *PostgresStore) ListRuns(ctx context.Context, collection string, limit int) ([]models.Run, error) {
	var records []RunRecord
	q := s.db.NewSelect().
		Model(&records).
		Where("collection = ?", collection).
		OrderExpr("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	runs := make([]models.Run, 0, len(records))
	for _, r := range records {
		runs = append(runs, r.toRun())
	}
	return runs, nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if err := DropRuns(ctx, s.db); err != nil {
		return err
	}
	return InitDB(ctx, s.db)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Open returns the Postgres store when a DSN is configured and the local
// bolt store otherwise.
func Open(ctx context.Context, dbCfg *config.DatabaseConfig, storeCfg *config.StoreConfig) (ResultStore, error) {
	if dbCfg.DSN != "" {
		return NewPostgresStore(ctx, dbCfg)
	}
	return NewBoltStore(storeCfg.BoltPath)
}
