// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// fetch resolves PMIDs to article metadata via efetch retmode=xml.
func (c *Client) fetch(ctx context.Context, ids []string) ([]Article, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	body, err := c.get(ctx, efetchAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}
	defer body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var articles []Article
	for _, entry := range set.Articles {
		a := entry.toArticle()
		if a.PMID == "" || a.Title == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// PubMed efetch XML structures. Only the fields the assistant displays are
// mapped; the efetch payload carries far more.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string         `xml:"PMID"`
	Article articleElement `xml:"Article"`
}

type articleElement struct {
	Title    string          `xml:"ArticleTitle"`
	Journal  journalElement  `xml:"Journal"`
	Abstract abstractElement `xml:"Abstract"`
	Authors  []authorElement `xml:"AuthorList>Author"`
}

type journalElement struct {
	Title   string         `xml:"Title"`
	PubDate pubDateElement `xml:"JournalIssue>PubDate"`
}

type pubDateElement struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type abstractElement struct {
	Sections []abstractSection `xml:"AbstractText"`
}

type abstractSection struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type authorElement struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	Initials       string `xml:"Initials"`
	CollectiveName string `xml:"CollectiveName"`
}

func (p pubmedArticle) toArticle() Article {
	art := p.Citation.Article
	a := Article{
		PMID:     strings.TrimSpace(p.Citation.PMID),
		Title:    strings.TrimSpace(art.Title),
		Journal:  strings.TrimSpace(art.Journal.Title),
		Year:     art.Journal.PubDate.year(),
		Abstract: art.Abstract.text(),
	}
	for _, au := range art.Authors {
		if name := au.displayName(); name != "" {
			a.Authors = append(a.Authors, name)
		}
	}
	return a
}

// year prefers the structured Year element; older records only carry a
// MedlineDate like "1998 Dec-1999 Jan", whose leading token is the year.
func (d pubDateElement) year() string {
	if d.Year != "" {
		return d.Year
	}
	fields := strings.Fields(d.MedlineDate)
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// text joins structured abstract sections, prefixing labels when present
// (e.g. "BACKGROUND: ... METHODS: ...").
func (a abstractElement) text() string {
	var parts []string
	for _, s := range a.Sections {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if s.Label != "" {
			text = s.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func (au authorElement) displayName() string {
	if au.CollectiveName != "" {
		return strings.TrimSpace(au.CollectiveName)
	}
	given := au.ForeName
	if given == "" {
		given = au.Initials
	}
	return strings.TrimSpace(strings.TrimSpace(given) + " " + strings.TrimSpace(au.LastName))
}
