package scrape

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Release is a scraped press release ready for extraction.
type Release struct {
	URL       string     `json:"url"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	Published *time.Time `json:"published,omitempty"`
	Body      string     `json:"body"`
}

// Source describes a newsroom index page and the selectors that locate
// release links on it. Selectors vary per investor-relations platform,
// so each source carries its own.
type Source struct {
	Name         string `yaml:"name" mapstructure:"name"`
	Company      string `yaml:"company" mapstructure:"company"`
	IndexURL     string `yaml:"index_url" mapstructure:"index_url"`
	ItemSelector string `yaml:"item_selector" mapstructure:"item_selector"`
	LinkSelector string `yaml:"link_selector" mapstructure:"link_selector"`
	MaxItems     int    `yaml:"max_items" mapstructure:"max_items"`
}

// Scraper turns newsroom sources into Release documents.
type Scraper struct {
	fetcher *Fetcher
}

// NewScraper creates a Scraper over the given fetcher.
func NewScraper(fetcher *Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// ListReleases fetches a source's index page and returns the absolute
// URLs of the releases it links to, newest first as listed.
func (s *Scraper) ListReleases(ctx context.Context, src Source) ([]string, error) {
	body, err := s.fetcher.Fetch(ctx, src.IndexURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: index %s", src.Name)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse index %s", src.Name)
	}

	base, err := url.Parse(src.IndexURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse index url %s", src.IndexURL)
	}

	itemSel := src.ItemSelector
	if itemSel == "" {
		itemSel = "article, .press-release, .news-item"
	}
	linkSel := src.LinkSelector
	if linkSel == "" {
		linkSel = "a"
	}
	maxItems := src.MaxItems
	if maxItems == 0 {
		maxItems = 20
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find(itemSel).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		href, ok := item.Find(linkSel).First().Attr("href")
		if !ok {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref).String()
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
		return len(links) < maxItems
	})

	zap.L().Debug("listed releases",
		zap.String("source", src.Name),
		zap.Int("count", len(links)),
	)
	return links, nil
}

// FetchRelease downloads and parses a single press release page.
func (s *Scraper) FetchRelease(ctx context.Context, src Source, releaseURL string) (*Release, error) {
	body, err := s.fetcher.Fetch(ctx, releaseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: release %s", releaseURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse release %s", releaseURL)
	}

	rel := &Release{
		URL:       releaseURL,
		Company:   src.Company,
		Title:     extractTitle(doc),
		Published: extractPublished(doc),
		Body:      extractBody(doc),
	}
	if rel.Body == "" {
		return nil, eris.Errorf("scrape: empty release body at %s", releaseURL)
	}
	return rel, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// dateFormats covers the publication date formats seen across IR
// platforms, tried in order.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

func extractPublished(doc *goquery.Document) *time.Time {
	candidates := []string{}
	if meta, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, meta)
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, dt)
	}
	candidates = append(candidates,
		doc.Find("time").First().Text(),
		doc.Find(".date, .press-release-date, .news-date").First().Text(),
	)

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, raw); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

func extractBody(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside").Remove()

	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find(".press-release-body, .news-body, .release-content").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if len(text) >= 40 {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.Join(strings.Fields(container.Text()), " ")
	}
	return strings.Join(paragraphs, "\n\n")
}
