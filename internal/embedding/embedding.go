package embedding

import (
	"context"

	"github.com/philippgille/chromem-go"

	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/models"
	"pdf-analyzer/internal/ranking"
)

// biasWeight keeps every vector non-zero so it can be normalised
const biasWeight = 0.1

// Profiler embeds text as its keyword match density per category. The
// vector has one dimension per category, one for the general keywords and a
// constant bias dimension.
type Profiler struct {
	names []string
	sets  []models.KeywordSet
}

func NewProfiler(categories []config.KeywordCategory, general []string) *Profiler {
	p := &Profiler{}
	for _, c := range categories {
		p.names = append(p.names, c.Name)
		p.sets = append(p.sets, models.NewKeywordSet(c.Words...))
	}
	p.names = append(p.names, "general")
	p.sets = append(p.sets, models.NewKeywordSet(general...))
	return p
}

// Dimensions names each vector component except the trailing bias.
func (p *Profiler) Dimensions() []string {
	return append([]string(nil), p.names...)
}

func (p *Profiler) Embed(text string) []float32 {
	vec := make([]float32, len(p.sets)+1)
	words := ranking.Words(text)
	if len(words) > 0 {
		for i, set := range p.sets {
			vec[i] = float32(ranking.CountMatches(words, set)) / float32(len(words))
		}
	}
	vec[len(p.sets)] = biasWeight
	return vec
}

// EmbeddingFunc adapts the profiler for chromem collections.
func (p *Profiler) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		return p.Embed(text), nil
	}
}
