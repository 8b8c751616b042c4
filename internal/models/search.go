package models

import "time"

// ProductHit is a product as returned by the search endpoint.
type ProductHit struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Price string `json:"price"`
	Image string `json:"image"`
}

// CategoryFacet is one entry of the category facet. Count is always zero.
type CategoryFacet struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// PageLink is a named static site section.
type PageLink struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// CacheInfo describes the snapshot a response was served from.
type CacheInfo struct {
	LastSyncedAt  time.Time `json:"lastSyncedAt"`
	TotalProducts int       `json:"totalProducts"`
}

// SearchResponse is the JSON body of the search endpoint. Errors are carried
// in the Error field; the endpoint always answers 200.
type SearchResponse struct {
	Products     []ProductHit    `json:"products"`
	Categories   []CategoryFacet `json:"categories"`
	Pages        []PageLink      `json:"pages"`
	TotalResults int             `json:"totalResults"`
	CacheInfo    *CacheInfo      `json:"cacheInfo,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// EmptySearchResponse returns a response with empty, non-nil arrays.
func EmptySearchResponse() SearchResponse {
	return SearchResponse{
		Products:   []ProductHit{},
		Categories: []CategoryFacet{},
		Pages:      []PageLink{},
	}
}
