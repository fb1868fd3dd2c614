package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the PubMed E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key. Without a key NCBI allows
	// 3 requests per second; with one, 10.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond overrides the client-side rate limit. Zero selects
	// the NCBI default for the key configuration.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// AIConfig holds settings for components that call a Generative AI API.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AssistantConfig holds settings for the research assistant pipeline.
type AssistantConfig struct {
	AIConfig `yaml:",inline"`

	// ScoringConcurrency bounds the number of concurrent relevance-scoring
	// API calls (default 4).
	ScoringConcurrency int `json:"scoring_concurrency" yaml:"scoring_concurrency"`

	// FetchLimit is the number of candidate articles retrieved from PubMed
	// before relevance ranking (default 20). Ranking needs more candidates
	// than the caller's max-papers cap so that low scorers can be dropped.
	FetchLimit int `json:"fetch_limit" yaml:"fetch_limit"`
}

// ServerConfig holds settings for the web frontend.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8501").
	Addr string `json:"addr" yaml:"addr"`

	// SearchTimeout bounds a single research request end to end. The UI
	// blocks on the pipeline, so this is the longest a submission can spin.
	SearchTimeout time.Duration `json:"search_timeout" yaml:"search_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Config groups all component configurations.
type Config struct {
	PubMed    PubMedConfig    `json:"pubmed" yaml:"pubmed"`
	Assistant AssistantConfig `json:"assistant" yaml:"assistant"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
