// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities API for PubMed articles.
// Searches run in two steps: esearch resolves a query string to PMIDs,
// efetch resolves PMIDs to article metadata.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchAPIBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// articleBaseURL is the public article page prefix.
const articleBaseURL = "https://pubmed.ncbi.nlm.nih.gov/"

// NCBI rate limits: 3 requests/second without an API key, 10 with one.
const (
	keylessRPS = 3
	keyedRPS   = 10
)

// Article holds the PubMed metadata for a single article.
type Article struct {
	PMID     string
	Title    string
	Authors  []string
	Journal  string
	Year     string
	Abstract string
}

// URL returns the public PubMed page for the article.
func (a Article) URL() string {
	return articleBaseURL + a.PMID + "/"
}

// Client queries the PubMed E-utilities API with client-side rate limiting.
// A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        types.PubMedConfig
	limiter    *rate.Limiter
}

// NewClient builds a Client from config. A nil httpClient selects
// http.DefaultClient.
func NewClient(cfg types.PubMedConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		if cfg.APIKey != "" {
			rps = keyedRPS
		} else {
			rps = keylessRPS
		}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Search runs an esearch for term and fetches metadata for up to limit
// articles. Articles are returned in PubMed's relevance order.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Article, error) {
	if term == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}
	if limit <= 0 {
		limit = 20
	}

	ids, err := c.search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.fetch(ctx, ids)
}

// esearchResponse mirrors the esearch retmode=json envelope.
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// search resolves a query string to a list of PMIDs.
func (c *Client) search(ctx context.Context, term string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	body, err := c.get(ctx, esearchAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}
	defer body.Close()

	var resp esearchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return resp.ESearchResult.IDList, nil
}

// get performs a rate-limited GET with 429 retry and returns the response
// body. The caller closes it.
func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}
