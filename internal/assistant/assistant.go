// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant turns a natural-language research question into a ranked
// list of PubMed papers. The pipeline has three steps: an AI backend converts
// the question to a PubMed query, the retriever fetches candidate articles,
// and the AI backend scores each candidate's relevance to the question.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/internal/pubmed"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultMaxPapers          = 5
	defaultFetchLimit         = 20
	defaultScoringConcurrency = 4
)

// Retriever fetches candidate articles for a query string. *pubmed.Client
// implements it; tests supply a stub.
type Retriever interface {
	Search(ctx context.Context, term string, limit int) ([]pubmed.Article, error)
}

// Assessment is the AI backend's relevance judgment for one article.
type Assessment struct {
	// Score is a 0-10 relevance rating.
	Score float64 `json:"score" yaml:"score"`

	// Reason is a short explanation of the score.
	Reason string `json:"reason" yaml:"reason"`
}

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Per the Strategy pattern; ClaudeBackend is the production implementation.
type AIBackend interface {
	// BuildQuery converts a natural-language question into a PubMed query string.
	BuildQuery(ctx context.Context, question string) (string, error)

	// ScorePaper rates an article's relevance to the question.
	ScorePaper(ctx context.Context, question string, article pubmed.Article) (Assessment, error)
}

// Assistant runs the research pipeline. It holds no per-request state and is
// safe for concurrent use; construct one and share it across sessions.
type Assistant struct {
	retriever Retriever
	ai        AIBackend
	cfg       types.AssistantConfig
	log       *slog.Logger
}

// New builds an Assistant. A nil logger selects slog.Default().
func New(retriever Retriever, ai AIBackend, cfg types.AssistantConfig, log *slog.Logger) *Assistant {
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{
		retriever: retriever,
		ai:        ai,
		cfg:       cfg,
		log:       log,
	}
}

// ProcessResearchQuestion answers a research question with up to maxPapers
// relevance-ranked PubMed papers. An empty result (nil, nil) means the query
// matched nothing. A scoring failure for a single paper does not fail the
// request; the paper is kept with a zero score and a reason noting the failure.
func (a *Assistant) ProcessResearchQuestion(ctx context.Context, question string, maxPapers int) ([]types.PaperResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if maxPapers <= 0 {
		maxPapers = defaultMaxPapers
	}

	term, err := a.ai.BuildQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("converting question to search terms: %w", err)
	}
	a.log.Info("built PubMed query", "question", question, "term", term)

	fetchLimit := a.cfg.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = defaultFetchLimit
	}
	if fetchLimit < maxPapers {
		fetchLimit = maxPapers
	}

	articles, err := a.retriever.Search(ctx, term, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching PubMed: %w", err)
	}
	if len(articles) == 0 {
		return nil, nil
	}

	results, err := a.scoreAll(ctx, question, articles)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > maxPapers {
		results = results[:maxPapers]
	}
	return results, nil
}

// scoreAll rates every article concurrently, bounded by ScoringConcurrency.
// Only context cancellation aborts the group; individual scoring errors
// degrade that one paper.
func (a *Assistant) scoreAll(ctx context.Context, question string, articles []pubmed.Article) ([]types.PaperResult, error) {
	concurrency := a.cfg.ScoringConcurrency
	if concurrency <= 0 {
		concurrency = defaultScoringConcurrency
	}

	results := make([]types.PaperResult, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, art := range articles {
		g.Go(func() error {
			assessment, err := a.ai.ScorePaper(gctx, question, art)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.log.Warn("relevance scoring failed", "pmid", art.PMID, "error", err)
				assessment = Assessment{Score: 0, Reason: fmt.Sprintf("relevance scoring failed: %v", err)}
			}
			results[i] = types.PaperResult{
				Title:           art.Title,
				Authors:         art.Authors,
				Journal:         art.Journal,
				Year:            art.Year,
				RelevanceScore:  assessment.Score,
				RelevanceReason: assessment.Reason,
				Abstract:        art.Abstract,
				PubMedURL:       art.URL(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring papers: %w", err)
	}
	return results, nil
}
