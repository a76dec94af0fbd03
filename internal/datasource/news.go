package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/futureskit/pkg/models"
)

// NewsSource is one commodity news RSS feed.
type NewsSource struct {
	Name    string
	RSSURL  string
	BaseURL string
}

// DefaultNewsSources lists the configured commodity and energy news feeds.
var DefaultNewsSources = []NewsSource{
	{
		Name:    "Investing.com Commodities",
		RSSURL:  "https://www.investing.com/rss/news_11.rss",
		BaseURL: "https://www.investing.com",
	},
	{
		Name:    "OilPrice.com",
		RSSURL:  "https://oilprice.com/rss/main",
		BaseURL: "https://oilprice.com",
	},
	{
		Name:    "Kitco Commodities",
		RSSURL:  "https://www.kitco.com/rss/category/commodities",
		BaseURL: "https://www.kitco.com",
	},
}

// News fetches commodity market headlines from RSS feeds.
type News struct {
	sources []NewsSource
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news source with the default feeds.
func NewNews() *News {
	return NewNewsWithSources(DefaultNewsSources)
}

// NewNewsWithSources creates a news source with custom feeds.
func NewNewsWithSources(sources []NewsSource) *News {
	return &News{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Commodity News" }

// --- Public methods ---

// MarketNews returns recent headlines from all configured feeds, newest
// first. Failed feeds are skipped.
func (n *News) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range n.sources {
		articles, err := n.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, articles...)
	}

	sortArticlesByDate(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// CommodityNews returns headlines mentioning one commodity root.
func (n *News) CommodityNews(ctx context.Context, root string, limit int) ([]models.NewsArticle, error) {
	root = strings.ToUpper(root)

	cacheKey := fmt.Sprintf("news:root:%s:%d", root, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	all, err := n.MarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	keywords := rootKeywords(root)
	var filtered []models.NewsArticle
	for _, a := range all {
		if matchesAny(a.Title+" "+a.Summary, keywords) {
			filtered = append(filtered, a)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// --- FuturesDataSource interface (partial) ---

// ContractChain is not supported by the news source.
func (n *News) ContractChain(_ context.Context, _ string) ([]models.Contract, error) {
	return nil, ErrNotSupported
}

// ContractData is not supported by the news source.
func (n *News) ContractData(_ context.Context, _ models.Contract) (*models.PriceTable, error) {
	return nil, ErrNotSupported
}

// --- Internal helpers ---

// fetchRSS parses one RSS feed into articles.
func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// rootKeywords returns search keywords for a commodity root.
// For example, "CL" matches "wti" and "crude oil" headlines.
func rootKeywords(root string) []string {
	keywords := []string{strings.ToLower(root)}

	nameMap := map[string][]string{
		"CL":  {"wti", "crude oil", "west texas"},
		"BRN": {"brent", "crude oil", "north sea"},
		"NG":  {"natural gas", "henry hub"},
		"HO":  {"heating oil", "distillate"},
		"RB":  {"gasoline", "rbob"},
		"GC":  {"gold"},
		"SI":  {"silver"},
		"HG":  {"copper"},
		"ZC":  {"corn"},
		"ZW":  {"wheat"},
		"ZS":  {"soybean"},
		"KC":  {"coffee", "arabica"},
		"SB":  {"sugar"},
		"CC":  {"cocoa"},
		"CT":  {"cotton"},
	}

	if extra, ok := nameMap[root]; ok {
		keywords = append(keywords, extra...)
	}
	return keywords
}

// matchesAny checks if text contains any of the keywords (case-insensitive).
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// sortArticlesByDate sorts articles by published date (newest first).
// Simple insertion sort — fine for small slices.
func sortArticlesByDate(articles []models.NewsArticle) {
	for i := 1; i < len(articles); i++ {
		key := articles[i]
		j := i - 1
		for j >= 0 && articles[j].PublishedAt.Before(key.PublishedAt) {
			articles[j+1] = articles[j]
			j--
		}
		articles[j+1] = key
	}
}
