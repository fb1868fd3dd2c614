// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the research assistant's single-page form: a question
// input, a paper-count selector, and the rendered result list.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/research-assistant/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// ResearchService answers a research question with ranked papers. The
// assistant package provides the production implementation; it must be safe
// for concurrent use, since each HTTP request calls it directly.
type ResearchService interface {
	ProcessResearchQuestion(ctx context.Context, question string, maxPapers int) ([]types.PaperResult, error)
}

// paperCountOptions is the fixed set of selectable result counts.
var paperCountOptions = []int{3, 5, 10, 15}

const defaultPaperCount = 5

// expandedCount is how many leading results render expanded.
const expandedCount = 3

// Static sidebar content.
var (
	instructions = []string{
		"Enter your research question in natural language",
		"Choose how many papers you want to see",
		"Click 'Search Papers' and wait for results",
		"Click on each paper to see full details",
		"Visit PubMed links for complete articles",
	}

	exampleQuestions = []string{
		"How does exercise affect depression?",
		"What are the benefits of meditation?",
		"Does caffeine improve athletic performance?",
		"How does screen time affect children?",
		"What causes burnout in nurses?",
	}
)

// User-facing message texts.
const (
	emptyQuestionWarning = "Please enter a research question!"
	badCountWarning      = "Please choose 3, 5, 10, or 15 papers."
	noResultsWarning     = "No papers found. Try rephrasing your question or using different keywords."
	credentialHint       = "Please check your API keys and try again."
)

// Server renders the form and results over echo.
type Server struct {
	echo    *echo.Echo
	service ResearchService
	cfg     types.ServerConfig
	log     *slog.Logger
}

// templateRenderer adapts html/template to echo's Renderer interface.
type templateRenderer struct {
	tmpl *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// New builds the Server. A nil logger selects slog.Default().
func New(service ResearchService, cfg types.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Renderer = &templateRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	s := &Server{
		echo:    e,
		service: service,
		cfg:     cfg,
		log:     log,
	}

	e.GET("/", s.handleIndex)
	e.POST("/search", s.handleSearch)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// ServeHTTP lets tests drive the server through httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	return s.echo.Start(s.cfg.Addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// pageData is the template model for the single page.
type pageData struct {
	Question  string
	MaxPapers int
	Options   []int

	Instructions []string
	Examples     []string

	Success string
	Warning string
	Error   string
	Hint    string
	Papers  []paperView
}

// paperView is one rendered result section.
type paperView struct {
	types.PaperResult

	Index    int
	Expanded bool
	Tier     types.Tier
	Score    string
	Authors  string
}

func basePage() pageData {
	return pageData{
		MaxPapers:    defaultPaperCount,
		Options:      paperCountOptions,
		Instructions: instructions,
		Examples:     exampleQuestions,
	}
}

// handleIndex renders the empty form. An example-question link prefills the
// input via the q parameter.
func (s *Server) handleIndex(c echo.Context) error {
	data := basePage()
	data.Question = c.QueryParam("q")
	return c.Render(http.StatusOK, "index.html", data)
}

// handleSearch validates the form, runs the pipeline, and renders the result
// list, a warning, or an error. Failures are terminal for the submission;
// there are no retries.
func (s *Server) handleSearch(c echo.Context) error {
	data := basePage()
	data.Question = c.FormValue("question")

	maxPapers, err := strconv.Atoi(c.FormValue("max_papers"))
	if err != nil || !allowedCount(maxPapers) {
		data.Warning = badCountWarning
		return c.Render(http.StatusBadRequest, "index.html", data)
	}
	data.MaxPapers = maxPapers

	if data.Question == "" {
		data.Warning = emptyQuestionWarning
		return c.Render(http.StatusBadRequest, "index.html", data)
	}

	ctx := c.Request().Context()
	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}

	start := time.Now()
	results, err := s.service.ProcessResearchQuestion(ctx, data.Question, maxPapers)
	elapsed := time.Since(start)

	if err != nil {
		s.log.Error("research request failed", "question", data.Question, "error", err)
		data.Error = fmt.Sprintf("Error: %s", err)
		data.Hint = credentialHint
		return c.Render(http.StatusOK, "index.html", data)
	}

	if len(results) == 0 {
		data.Warning = noResultsWarning
		return c.Render(http.StatusOK, "index.html", data)
	}

	data.Success = fmt.Sprintf("Found %d relevant papers in %.1f seconds", len(results), elapsed.Seconds())
	for i, p := range results {
		data.Papers = append(data.Papers, paperView{
			PaperResult: p,
			Index:       i + 1,
			Expanded:    i < expandedCount,
			Tier:        types.TierFor(p.RelevanceScore),
			Score:       types.FormatScore(p.RelevanceScore),
			Authors:     joinAuthors(p.FirstAuthors(5)),
		})
	}
	return c.Render(http.StatusOK, "index.html", data)
}

func allowedCount(n int) bool {
	for _, opt := range paperCountOptions {
		if n == opt {
			return true
		}
	}
	return false
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}
