package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	indeedBaseURL  = "https://www.indeed.com"
	indeedSource   = "Indeed (Public Scraping)"
	indeedMaxLimit = 50
	notAvailable   = "N/A"
)

// IndeedAdapter scrapes the public Indeed search results page.
type IndeedAdapter struct {
	client *http.Client
}

// NewIndeedAdapter creates a new adapter for Indeed search results.
func NewIndeedAdapter(client *http.Client) *IndeedAdapter {
	return &IndeedAdapter{client: client}
}

func (a *IndeedAdapter) Name() string { return indeedSource }

func (a *IndeedAdapter) Ready() error { return nil }

// Fetch requests one results page and parses each job card. Fields missing
// from a card are reported as "N/A".
func (a *IndeedAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}
	limit = min(limit, indeedMaxLimit)

	params := url.Values{}
	params.Set("q", keywords)
	params.Set("l", location)
	params.Set("limit", strconv.Itoa(limit))

	resp, err := get(ctx, a.client, indeedBaseURL+"/jobs?"+params.Encode())
	if err != nil {
		return nil, model.Unavailable(indeedSource, err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, model.Unavailable(indeedSource, fmt.Errorf("parse results page: %w", err))
	}

	var postings []model.Posting
	for _, card := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "job_seen_beacon")
	}) {
		if len(postings) >= limit {
			break
		}
		postings = append(postings, parseIndeedCard(card))
	}

	return postings, nil
}

func parseIndeedCard(card *html.Node) model.Posting {
	p := model.Posting{
		Title:       notAvailable,
		Company:     notAvailable,
		Location:    notAvailable,
		Description: notAvailable,
		Source:      indeedSource,
	}

	if link := findFirst(card, func(n *html.Node) bool {
		_, ok := attr(n, "data-jk")
		return n.Data == "a" && ok
	}); link != nil {
		if title := nodeText(link); title != "" {
			p.Title = title
		}
		href, _ := attr(link, "href")
		p.URL = absoluteURL(indeedBaseURL, href)
	}
	if n := findFirst(card, func(n *html.Node) bool { return n.Data == "span" && hasClass(n, "companyName") }); n != nil {
		p.Company = orNA(nodeText(n))
	}
	if n := findFirst(card, func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "companyLocation") }); n != nil {
		p.Location = orNA(nodeText(n))
	}
	if n := findFirst(card, func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "summary") }); n != nil {
		p.Description = orNA(nodeText(n))
	}
	return p
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// --- html helpers ---

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// hasClass reports whether any class token of n contains substr.
func hasClass(n *html.Node, substr string) bool {
	class, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if strings.Contains(token, substr) {
			return true
		}
	}
	return false
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if n := findFirst(c, match); n != nil {
			return n
		}
	}
	return nil
}

// nodeText returns the whitespace-collapsed text content of n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
