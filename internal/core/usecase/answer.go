package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

const contextSeparator = "\n\n---\n\n"

// Answer runs the fused search and generates a grounded answer. The prompt
// context is assembled from whole chunks in fused order under the character
// budget; when nothing fuses the generator is still invoked with an empty
// context so the caller always gets a conversational response.
func (uc *QueryUseCase) Answer(ctx context.Context, query string, topK int) (*domain.Answer, error) {
	results, err := uc.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	promptContext, included := assembleContext(results, uc.opts.ContextBudget)

	text, err := uc.generator.Generate(ctx, promptContext, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]domain.Source, 0, len(included))
	for _, r := range included {
		sources = append(sources, domain.Source{
			Filename:   r.Filename,
			ChunkIndex: r.ChunkIndex,
			Preview:    preview(r.Content, uc.opts.PreviewChars),
			Rank:       r.Rank,
			Score:      r.Score,
		})
	}

	return &domain.Answer{Text: text, Sources: sources}, nil
}

// assembleContext concatenates chunk texts in fused order until the budget
// would be exceeded. Chunks are never truncated mid-text; once one does not
// fit, it and everything ranked below it are dropped.
func assembleContext(results []domain.FusedResult, budget int) (string, []domain.FusedResult) {
	var b strings.Builder
	included := make([]domain.FusedResult, 0, len(results))

	for _, r := range results {
		need := len(r.Content)
		if b.Len() > 0 {
			need += len(contextSeparator)
		}
		if b.Len()+need > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString(contextSeparator)
		}
		b.WriteString(r.Content)
		included = append(included, r)
	}

	return b.String(), included
}

func preview(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
