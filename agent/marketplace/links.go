package marketplace

import (
	"regexp"
	"strings"
)

const (
	DefaultOrigin      = "https://www.amazon.com"
	DefaultProductPath = "/dp/"
	searchPath         = "/s?k="
)

// Extractor turns page markup into absolute product URLs.
type Extractor struct {
	origin  string
	pattern *regexp.Regexp
}

var defaultExtractor = NewExtractor(DefaultOrigin, DefaultProductPath)

// NewExtractor matches markdown links `[label](path)` whose path starts
// with productPath and resolves them against origin.
func NewExtractor(origin, productPath string) *Extractor {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		origin = DefaultOrigin
	}
	if strings.TrimSpace(productPath) == "" {
		productPath = DefaultProductPath
	}
	return &Extractor{
		origin:  origin,
		pattern: regexp.MustCompile(`\[([^\]]+)\]\((` + regexp.QuoteMeta(productPath) + `[^)]+)\)`),
	}
}

// Extract keeps first-seen order, drops exact duplicates and stops at max.
func (e *Extractor) Extract(content string, max int) []string {
	if max <= 0 || content == "" {
		return []string{}
	}

	urls := make([]string, 0, max)
	seen := make(map[string]struct{}, max)
	for _, m := range e.pattern.FindAllStringSubmatch(content, -1) {
		full := e.origin + m[2]
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		urls = append(urls, full)
		if len(urls) >= max {
			break
		}
	}
	return urls
}

// SearchURL is the marketplace search page for query.
func (e *Extractor) SearchURL(query string) string {
	return e.origin + searchPath + strings.ReplaceAll(query, " ", "+")
}

func Extract(content string, max int) []string {
	return defaultExtractor.Extract(content, max)
}

func SearchURL(query string) string {
	return defaultExtractor.SearchURL(query)
}
