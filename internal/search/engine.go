// Package search ranks cached catalog products against a free-text query.
//
// Scoring tiers, highest first:
//
//	100  the whole query is a substring of the product's search text
//	 80  every query word is a substring
//	 60  scaled by the share of query words found
//	 40  scaled by the share of query characters found as an ordered subsequence
//
// Products scoring 20 or less are dropped.
package search

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"catalogsearch/internal/models"
	"catalogsearch/internal/textnorm"
)

const (
	DefaultPerPage = 6
	MinPerPage     = 1
	MaxPerPage     = 20

	// MinScore is exclusive: a product must score strictly above it.
	MinScore = 20.0

	MaxCategories = 8
	MaxPages      = 6
)

// DefaultPages are the static site sections offered alongside products.
var DefaultPages = []models.PageLink{
	{Name: "Inicio", Href: "/"},
	{Name: "Tienda", Href: "/productos"},
	{Name: "Blog", Href: "/blog"},
	{Name: "Contacto", Href: "/contacto"},
}

// Match is a scored product.
type Match struct {
	Product models.CachedProduct
	Score   float64
}

// Result is the outcome of ranking a snapshot against one query.
type Result struct {
	Matches    []Match
	Categories []models.CategoryFacet
	Pages      []models.PageLink
}

// Hits projects the matches into the endpoint's product shape.
func (r Result) Hits() []models.ProductHit {
	hits := make([]models.ProductHit, 0, len(r.Matches))
	for _, m := range r.Matches {
		hits = append(hits, models.ProductHit{
			ID:    m.Product.ID,
			Name:  m.Product.Name,
			Slug:  m.Product.Slug,
			Price: m.Product.Price,
			Image: m.Product.Image,
		})
	}
	return hits
}

// Engine ranks products. The zero value is not usable; use New.
type Engine struct {
	pages []models.PageLink
}

// New returns an engine offering the given static pages. A nil slice selects
// DefaultPages.
func New(pages []models.PageLink) *Engine {
	if pages == nil {
		pages = DefaultPages
	}
	return &Engine{pages: pages}
}

// ClampPerPage parses a per_page parameter the way JavaScript's parseInt
// does: leading whitespace and sign, then the leading digits ("3abc" is 3,
// "2.5" is 2). Values without leading digits give DefaultPerPage; numbers
// are clamped to [MinPerPage, MaxPerPage].
func ClampPerPage(raw string) int {
	s := strings.TrimSpace(raw)
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return DefaultPerPage
	}
	n, err := strconv.Atoi(sign + s[:end])
	if err != nil {
		// Out of int range; only the sign matters after clamping.
		if sign == "-" {
			return MinPerPage
		}
		return MaxPerPage
	}
	return clamp(n)
}

func clamp(n int) int {
	if n < MinPerPage {
		return MinPerPage
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// NormalizeQuery lowercases and strips diacritics from a trimmed query.
func NormalizeQuery(q string) string {
	return textnorm.Fold(strings.TrimSpace(q))
}

// Score computes the relevance of text for an already normalized query.
func Score(text, query string) float64 {
	if query == "" {
		return 0
	}
	if strings.Contains(text, query) {
		return 100
	}

	words := strings.Fields(query)
	matched := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			matched++
		}
	}
	if matched == len(words) {
		return 80
	}
	if matched > 0 {
		return 60 * float64(matched) / float64(len(words))
	}

	return 40 * float64(subsequenceLength(text, query)) / float64(utf8.RuneCountInString(query))
}

// subsequenceLength walks text once, greedily consuming query runes in order.
func subsequenceLength(text, query string) int {
	q := []rune(query)
	i := 0
	for _, r := range text {
		if i == len(q) {
			break
		}
		if r == q[i] {
			i++
		}
	}
	return i
}

// Search ranks products against q and returns at most perPage matches.
// An empty or whitespace-only query returns an empty result without
// looking at products.
func (e *Engine) Search(products []models.CachedProduct, q string, perPage int) Result {
	result := Result{
		Matches:    []Match{},
		Categories: []models.CategoryFacet{},
		Pages:      []models.PageLink{},
	}
	raw := strings.TrimSpace(q)
	if raw == "" {
		return result
	}
	query := NormalizeQuery(raw)

	for _, p := range products {
		if s := Score(p.SearchText, query); s > MinScore {
			result.Matches = append(result.Matches, Match{Product: p, Score: s})
		}
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Score > result.Matches[j].Score
	})
	if limit := clamp(perPage); len(result.Matches) > limit {
		result.Matches = result.Matches[:limit]
	}

	result.Categories = categoryFacet(result.Matches)
	result.Pages = e.matchPages(raw)
	return result
}

// categoryFacet collects categories of the returned matches, unique by slug,
// in order of first appearance.
func categoryFacet(matches []Match) []models.CategoryFacet {
	facets := []models.CategoryFacet{}
	seen := make(map[string]struct{})
	for _, m := range matches {
		for _, c := range m.Product.Categories {
			if _, ok := seen[c.Slug]; ok {
				continue
			}
			seen[c.Slug] = struct{}{}
			facets = append(facets, models.CategoryFacet{Name: c.Name, Slug: c.Slug})
			if len(facets) == MaxCategories {
				return facets
			}
		}
	}
	return facets
}

func (e *Engine) matchPages(raw string) []models.PageLink {
	needle := strings.ToLower(raw)
	pages := []models.PageLink{}
	for _, p := range e.pages {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			pages = append(pages, p)
			if len(pages) == MaxPages {
				break
			}
		}
	}
	return pages
}
