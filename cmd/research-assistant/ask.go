// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a research question on the terminal",
	Long: `Ask runs the research pipeline once: the question is converted to PubMed
search terms, candidate papers are retrieved, and each is scored for
relevance. Results print as a table, or as JSON with --json.

A finished search can be saved to a YAML file with --save and reprinted
later with --load, without re-querying PubMed or the AI API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		savePath, _ := cmd.Flags().GetString("save")
		loadPath, _ := cmd.Flags().GetString("load")
		maxPapers, _ := cmd.Flags().GetInt("max-papers")

		if loadPath != "" {
			qf, err := assistant.ReadQueryFile(loadPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Loaded %q (%d papers, saved %s)\n",
				qf.Question, qf.Summary.Total, qf.Summary.Timestamp.Format(time.RFC3339))
			if jsonOut {
				return assistant.FormatJSON(qf.Results, os.Stdout)
			}
			assistant.FormatTable(qf.Results, os.Stdout)
			return nil
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is empty: provide a research question or --load a saved one")
		}

		cfg := loadConfig()
		if cfg.Assistant.APIKey == "" {
			return fmt.Errorf("no Anthropic API key configured: put one in .secrets/anthropic-api-key or set assistant.api_key")
		}

		a := newAssistant(cfg, newLogger())

		fmt.Fprintln(os.Stderr, "Searching PubMed and analyzing papers...")
		start := time.Now()
		results, err := a.ProcessResearchQuestion(cmd.Context(), question, maxPapers)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		fmt.Fprintf(os.Stderr, "Found %d relevant papers in %.1f seconds\n", len(results), elapsed.Seconds())

		if savePath != "" {
			if err := assistant.WriteQueryFile(savePath, question, maxPapers, results, elapsed); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved to %s\n", savePath)
		}

		if jsonOut {
			return assistant.FormatJSON(results, os.Stdout)
		}
		assistant.FormatTable(results, os.Stdout)
		return nil
	},
}

func init() {
	askCmd.Flags().Int("max-papers", 5, "number of papers to return (3, 5, 10, or 15 in the web UI)")
	askCmd.Flags().Bool("json", false, "output results as JSON")
	askCmd.Flags().String("save", "", "save the question and results to a YAML file")
	askCmd.Flags().String("load", "", "print a previously saved query file instead of searching")

	rootCmd.AddCommand(askCmd)
}
