// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant:
// the PaperResult record produced by the assistant pipeline, the relevance
// tier classification, and the configuration structs for each component.
package types

import "fmt"

// PaperResult is a single PubMed paper annotated with a relevance score and
// reason relative to the user's research question.
type PaperResult struct {
	// Title is the article title as returned by PubMed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the article authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year. PubMed publication dates are not
	// uniformly numeric ("2020", "2020 Jan-Feb", "Winter 2019"), so the
	// raw string is kept.
	Year string `json:"year" yaml:"year"`

	// RelevanceScore is a 0-10 rating of how relevant the paper is to the
	// research question.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// RelevanceReason is a short explanation of the score.
	RelevanceReason string `json:"relevance_reason" yaml:"relevance_reason"`

	// Abstract is the article abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PubMedURL links to the article page on pubmed.ncbi.nlm.nih.gov.
	PubMedURL string `json:"pubmed_url" yaml:"pubmed_url"`
}

// FirstAuthors returns at most n authors.
func (p PaperResult) FirstAuthors(n int) []string {
	if len(p.Authors) <= n {
		return p.Authors
	}
	return p.Authors[:n]
}

// Tier is the display category derived from a relevance score.
type Tier string

const (
	TierHigh   Tier = "success"
	TierMedium Tier = "warning"
	TierLow    Tier = "info"
)

// TierFor classifies a relevance score into a display tier: scores of 8 and
// above are high, 6 up to 8 are medium, everything else (including values
// outside the expected 0-10 range) is low.
func TierFor(score float64) Tier {
	switch {
	case score >= 8:
		return TierHigh
	case score >= 6:
		return TierMedium
	default:
		return TierLow
	}
}

// FormatScore renders a score as shown to the user (e.g. "8.5/10").
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f/10", score)
}
