package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-analyzer/internal/models"
)

// metadata keys
const (
	metaCollection = "collection"
	metaDocument   = "document"
	metaPage       = "page_number"
	metaTitle      = "section_title"
	metaScore      = "importance_score"
)

// VectorDBManager keeps scored sections of every analysed collection in a
// chromem-go collection so they can be searched across runs.
type VectorDBManager struct {
	db         *chromem.DB
	collection *chromem.Collection
	dbPath     string
}

// NewVectorDBManager opens (or creates) the section index.
func NewVectorDBManager(dbPath, collectionName string, inMemory, compress bool, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	c, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &VectorDBManager{
		db:         db,
		collection: c,
		dbPath:     dbPath,
	}, nil
}

// IndexSections replaces the indexed sections of an analysis collection.
func (m *VectorDBManager) IndexSections(ctx context.Context, collectionName string, sections []models.Section) error {
	if err := m.RemoveCollection(ctx, collectionName); err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(sections))
	for i, s := range sections {
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("%s:%s:%d:%d", collectionName, s.Document, s.PageNumber, i),
			Content: s.Title + "\n" + s.Content,
			Metadata: map[string]string{
				metaCollection: collectionName,
				metaDocument:   s.Document,
				metaPage:       strconv.Itoa(s.PageNumber),
				metaTitle:      s.Title,
				metaScore:      strconv.FormatFloat(s.ImportanceScore, 'f', 4, 64),
			},
		})
	}

	log.Debug().Str("collection", collectionName).Int("sections", len(docs)).Msg("Indexing sections")
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add sections: %v", err)
	}
	return nil
}

// RemoveCollection drops every indexed section of an analysis collection.
func (m *VectorDBManager) RemoveCollection(ctx context.Context, collectionName string) error {
	if m.collection.Count() == 0 {
		return nil
	}
	if err := m.collection.Delete(ctx, map[string]string{metaCollection: collectionName}, nil); err != nil {
		return fmt.Errorf("failed to remove sections of %s: %v", collectionName, err)
	}
	return nil
}

// Search returns up to n sections most similar to the query's keyword profile.
func (m *VectorDBManager) Search(ctx context.Context, query string, n int) ([]models.SectionHit, error) {
	if query == "" {
		return nil, fmt.Errorf("query must be provided")
	}
	if count := m.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return []models.SectionHit{}, nil
	}

	results, err := m.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	hits := make([]models.SectionHit, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata[metaPage])
		hits = append(hits, models.SectionHit{
			Collection: r.Metadata[metaCollection],
			Document:   r.Metadata[metaDocument],
			PageNumber: page,
			Title:      r.Metadata[metaTitle],
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}
