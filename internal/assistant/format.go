// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.PaperResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-7s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Journal")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, p := range results {
		title := truncate(p.Title, 60)
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-7s  %s\n",
			i+1, title, formatAuthors(p.Authors), p.Year,
			types.FormatScore(p.RelevanceScore), p.Journal)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(results))

	for i, p := range results {
		fmt.Fprintf(w, "\n%d. %s\n   %s\n   %s\n", i+1, p.Title, p.RelevanceReason, p.PubMedURL)
	}
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.PaperResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
