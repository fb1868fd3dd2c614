// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func testCfg() types.PubMedConfig {
	return types.PubMedConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		RequestsPerSecond: 1000, // no throttling in tests
	}
}

const sampleESearchJSON = `{
  "esearchresult": {
    "count": "2",
    "idlist": ["33301246", "29897562"]
  }
}`

const sampleEFetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">33301246</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2020</Year></PubDate>
          </JournalIssue>
          <Title>JAMA Psychiatry</Title>
        </Journal>
        <ArticleTitle>Exercise as a treatment for depression in adults.</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Depression is common.</AbstractText>
          <AbstractText Label="RESULTS">Exercise helped.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Schuch</LastName>
            <ForeName>Felipe</ForeName>
          </Author>
          <Author>
            <LastName>Stubbs</LastName>
            <Initials>B</Initials>
          </Author>
          <Author>
            <CollectiveName>DEPRO Study Group</CollectiveName>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">29897562</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><MedlineDate>1998 Dec-1999 Jan</MedlineDate></PubDate>
          </JournalIssue>
          <Title>Sports Medicine</Title>
        </Journal>
        <ArticleTitle>Physical activity and mood: a review.</ArticleTitle>
        <Abstract>
          <AbstractText>A single unlabeled abstract.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Craft</LastName>
            <ForeName>Lynette</ForeName>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

// eutilsTestServer serves canned esearch and efetch responses and records
// the query parameters of each request.
func eutilsTestServer(t *testing.T, esearchBody, efetchBody string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var seen []url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query())
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, esearchBody)
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, efetchBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return ts, &seen
}

func substituteBases(t *testing.T, base string) {
	t.Helper()
	oldSearch, oldFetch := esearchAPIBase, efetchAPIBase
	esearchAPIBase = base + "/esearch.fcgi"
	efetchAPIBase = base + "/efetch.fcgi"
	t.Cleanup(func() {
		esearchAPIBase = oldSearch
		efetchAPIBase = oldFetch
	})
}

func TestClientSearch(t *testing.T) {
	ts, seen := eutilsTestServer(t, sampleESearchJSON, sampleEFetchXML)
	defer ts.Close()
	substituteBases(t, ts.URL)

	c := NewClient(testCfg(), ts.Client())
	articles, err := c.Search(context.Background(), "exercise depression", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}

	a0 := articles[0]
	if a0.PMID != "33301246" {
		t.Errorf("PMID = %q, want 33301246", a0.PMID)
	}
	if a0.Title != "Exercise as a treatment for depression in adults." {
		t.Errorf("Title = %q", a0.Title)
	}
	if a0.Journal != "JAMA Psychiatry" {
		t.Errorf("Journal = %q", a0.Journal)
	}
	if a0.Year != "2020" {
		t.Errorf("Year = %q, want 2020", a0.Year)
	}
	wantAuthors := []string{"Felipe Schuch", "B Stubbs", "DEPRO Study Group"}
	if len(a0.Authors) != len(wantAuthors) {
		t.Fatalf("Authors = %v, want %v", a0.Authors, wantAuthors)
	}
	for i := range wantAuthors {
		if a0.Authors[i] != wantAuthors[i] {
			t.Errorf("Authors[%d] = %q, want %q", i, a0.Authors[i], wantAuthors[i])
		}
	}
	// Labeled sections are joined with their labels.
	if a0.Abstract != "BACKGROUND: Depression is common. RESULTS: Exercise helped." {
		t.Errorf("Abstract = %q", a0.Abstract)
	}
	if a0.URL() != "https://pubmed.ncbi.nlm.nih.gov/33301246/" {
		t.Errorf("URL = %q", a0.URL())
	}

	// Second article: year from MedlineDate, unlabeled abstract.
	a1 := articles[1]
	if a1.Year != "1998" {
		t.Errorf("Year = %q, want 1998", a1.Year)
	}
	if a1.Abstract != "A single unlabeled abstract." {
		t.Errorf("Abstract = %q", a1.Abstract)
	}

	// esearch then efetch, with the esearch carrying the query parameters.
	if len(*seen) != 2 {
		t.Fatalf("requests = %d, want 2", len(*seen))
	}
	q := (*seen)[0]
	if q.Get("term") != "exercise depression" {
		t.Errorf("term = %q", q.Get("term"))
	}
	if q.Get("retmax") != "10" {
		t.Errorf("retmax = %q, want 10", q.Get("retmax"))
	}
	if q.Get("sort") != "relevance" {
		t.Errorf("sort = %q, want relevance", q.Get("sort"))
	}
	if (*seen)[1].Get("id") != "33301246,29897562" {
		t.Errorf("efetch id = %q", (*seen)[1].Get("id"))
	}
}

func TestClientSearchEmptyQuery(t *testing.T) {
	c := NewClient(testCfg(), nil)
	if _, err := c.Search(context.Background(), "", 10); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestClientSearchNoResults(t *testing.T) {
	ts, seen := eutilsTestServer(t, `{"esearchresult":{"count":"0","idlist":[]}}`, "")
	defer ts.Close()
	substituteBases(t, ts.URL)

	c := NewClient(testCfg(), ts.Client())
	articles, err := c.Search(context.Background(), "zzzz nonsense", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("len(articles) = %d, want 0", len(articles))
	}
	// efetch must not run when esearch returns no IDs.
	if len(*seen) != 1 {
		t.Errorf("requests = %d, want 1", len(*seen))
	}
}

func TestClientSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	substituteBases(t, ts.URL)

	c := NewClient(testCfg(), ts.Client())
	_, err := c.Search(context.Background(), "exercise", 10)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want mention of HTTP 500", err)
	}
}

func TestClientSendsAPIKey(t *testing.T) {
	ts, seen := eutilsTestServer(t, sampleESearchJSON, sampleEFetchXML)
	defer ts.Close()
	substituteBases(t, ts.URL)

	cfg := testCfg()
	cfg.APIKey = "ncbi-key"
	c := NewClient(cfg, ts.Client())
	if _, err := c.Search(context.Background(), "exercise", 5); err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, q := range *seen {
		if q.Get("api_key") != "ncbi-key" {
			t.Errorf("request %d missing api_key", i)
		}
	}
}

func TestPubDateYear(t *testing.T) {
	tests := []struct {
		name string
		d    pubDateElement
		want string
	}{
		{"structured year", pubDateElement{Year: "2021"}, "2021"},
		{"medline date", pubDateElement{MedlineDate: "1998 Dec-1999 Jan"}, "1998"},
		{"year wins over medline", pubDateElement{Year: "2001", MedlineDate: "2000 Jan"}, "2001"},
		{"empty", pubDateElement{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.year(); got != tt.want {
				t.Errorf("year() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientRateDefaults(t *testing.T) {
	keyless := NewClient(types.PubMedConfig{}, nil)
	if got := float64(keyless.limiter.Limit()); got != keylessRPS {
		t.Errorf("keyless limit = %v, want %d", got, keylessRPS)
	}
	keyed := NewClient(types.PubMedConfig{APIKey: "k"}, nil)
	if got := float64(keyed.limiter.Limit()); got != keyedRPS {
		t.Errorf("keyed limit = %v, want %d", got, keyedRPS)
	}
}
