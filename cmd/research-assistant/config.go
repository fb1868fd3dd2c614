// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/pubmed"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

func init() {
	viper.SetDefault("server.addr", ":8501")
	viper.SetDefault("server.search_timeout", 2*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("pubmed.timeout", 30*time.Second)
	viper.SetDefault("assistant.timeout", 60*time.Second)
	viper.SetDefault("assistant.model", defaultModel)
	viper.SetDefault("assistant.max_retries", 3)
	viper.SetDefault("assistant.fetch_limit", 20)
	viper.SetDefault("assistant.scoring_concurrency", 4)
}

// loadConfig assembles the component configs from viper, with API keys
// falling back to the .secrets/ directory.
func loadConfig() types.Config {
	return types.Config{
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("pubmed.timeout"),
				UserAgent: "research-assistant/" + version,
			},
			APIKey:            secretDefault("ncbi-api-key", viper.GetString("pubmed.api_key")),
			RequestsPerSecond: viper.GetFloat64("pubmed.requests_per_second"),
		},
		Assistant: types.AssistantConfig{
			AIConfig: types.AIConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   viper.GetDuration("assistant.timeout"),
					UserAgent: "research-assistant/" + version,
				},
				Model:      viper.GetString("assistant.model"),
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("assistant.api_key")),
				MaxRetries: viper.GetInt("assistant.max_retries"),
			},
			FetchLimit:         viper.GetInt("assistant.fetch_limit"),
			ScoringConcurrency: viper.GetInt("assistant.scoring_concurrency"),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			SearchTimeout:   viper.GetDuration("server.search_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
	}
}

// newAssistant wires the PubMed client and Claude backend into an Assistant.
func newAssistant(cfg types.Config, log *slog.Logger) *assistant.Assistant {
	httpClient := &http.Client{Timeout: cfg.PubMed.Timeout}
	retriever := pubmed.NewClient(cfg.PubMed, httpClient)
	ai := &assistant.ClaudeBackend{
		Client: &http.Client{Timeout: cfg.Assistant.Timeout},
		Cfg:    cfg.Assistant.AIConfig,
	}
	return assistant.New(retriever, ai, cfg.Assistant, log)
}

// newLogger builds the JSON logger shared by serve and ask.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
