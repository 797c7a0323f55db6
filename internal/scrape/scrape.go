// Package scrape fetches a single web page and extracts its visible text
// for knowledge ingestion.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"golang.org/x/net/html"
)

var ErrNoContent = errors.NewSentinel("page has no extractable text")

// textTags are the elements whose text nodes count as visible content.
var textTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "span": true, "li": true,
	"strong": true, "b": true, "em": true, "i": true,
	"a": true, "button": true,
}

// Page is the extracted content of one URL.
type Page struct {
	URL             string
	Title           string
	MetaDescription string
	Text            string
}

type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

func NewScraper(timeout time.Duration, logger *slog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("source", "scrape.Scraper"),
	}
}

// Fetch downloads url and extracts its title, meta description and visible
// text. It returns ErrNoContent when the page yields no usable text.
func (s *Scraper) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, errors.Wrap(err, "build request", slog.String("url", url))
	}
	req.Header.Set("User-Agent", "rag-chatbot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return Page{}, errors.Wrap(err, "fetch page", slog.String("url", url))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Page{}, errors.New(fmt.Sprintf("fetch page: unexpected status %d", resp.StatusCode),
			slog.String("url", url))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, errors.Wrap(err, "parse page", slog.String("url", url))
	}

	page := Page{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.MetaDescription = strings.TrimSpace(desc)
	}

	page.Text = visibleText(doc)
	if page.Text == "" {
		return Page{}, ErrNoContent
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "scraped page",
		slog.String("url", url),
		slog.Int("textLength", len(page.Text)))
	return page, nil
}

// visibleText walks the parsed tree and collects text nodes whose nearest
// element ancestor is a content tag, deduplicating nodes that goquery
// matches through multiple selectors.
func visibleText(doc *goquery.Document) string {
	var parts []string
	seen := map[*html.Node]bool{}

	doc.Find("script,style,noscript").Remove()
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, node := range body.Nodes {
			collectText(node, seen, &parts)
		}
	})
	return strings.TrimSpace(strings.Join(parts, " "))
}

func collectText(node *html.Node, seen map[*html.Node]bool, parts *[]string) {
	if node.Type == html.TextNode && !seen[node] {
		if ancestorIsContent(node) {
			if text := strings.TrimSpace(node.Data); text != "" {
				seen[node] = true
				*parts = append(*parts, text)
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, seen, parts)
	}
}

func ancestorIsContent(node *html.Node) bool {
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent.Type == html.ElementNode && textTags[parent.Data] {
			return true
		}
	}
	return false
}
