// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/pubmed"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// queryPromptTmpl converts a natural-language question into a PubMed query.
var queryPromptTmpl = template.Must(template.New("query").Parse(`You are a medical literature search specialist. Convert the following research question into a PubMed search query.

Use MeSH-style terms and boolean operators where helpful. Keep the query focused: 2-5 concepts joined with AND, synonyms joined with OR. Do not add date or language filters.

Respond with a JSON object of the form {"query": "..."}. Do not include any text outside the JSON object.

Example response:
{"query": "(exercise OR physical activity) AND depression AND adult"}

Research question:
{{.Question}}
`))

// scorePromptTmpl rates one article's relevance to the question.
var scorePromptTmpl = template.Must(template.New("score").Parse(`You are a research relevance assessor. Rate how relevant the following PubMed article is to the research question on a 0-10 scale, where 10 means the article directly answers the question and 0 means it is unrelated.

Respond with a JSON object of the form {"score": <number>, "reason": "<one sentence>"}. Do not include any text outside the JSON object.

Research question:
{{.Question}}

Article title: {{.Title}}
Journal: {{.Journal}} ({{.Year}})
Abstract:
{{.Abstract}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend implements AIBackend over the Claude Messages API.
// It is stateless and safe for concurrent use.
type ClaudeBackend struct {
	Client *http.Client
	Cfg    types.AIConfig
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BuildQuery converts the question into a PubMed query string.
func (c *ClaudeBackend) BuildQuery(ctx context.Context, question string) (string, error) {
	var buf bytes.Buffer
	if err := queryPromptTmpl.Execute(&buf, struct{ Question string }{Question: question}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := c.complete(ctx, buf.String())
	if err != nil {
		return "", err
	}

	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", fmt.Errorf("parsing query response JSON: %w", err)
	}
	if parsed.Query == "" {
		return "", fmt.Errorf("AI returned an empty query")
	}
	return parsed.Query, nil
}

// ScorePaper rates the article's relevance to the question.
func (c *ClaudeBackend) ScorePaper(ctx context.Context, question string, article pubmed.Article) (Assessment, error) {
	var buf bytes.Buffer
	err := scorePromptTmpl.Execute(&buf, struct {
		Question, Title, Journal, Year, Abstract string
	}{
		Question: question,
		Title:    article.Title,
		Journal:  article.Journal,
		Year:     article.Year,
		Abstract: article.Abstract,
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := c.complete(ctx, buf.String())
	if err != nil {
		return Assessment{}, err
	}

	var a Assessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return Assessment{}, fmt.Errorf("parsing score response JSON: %w", err)
	}
	return a, nil
}

// complete sends one user message and returns the text of the first text
// content block.
func (c *ClaudeBackend) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Cfg.Model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.Cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	if c.Cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.Cfg.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.Cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
