package models

import (
	"encoding/json"
	"strings"

	"catalogsearch/internal/textnorm"
)

// Category is the compact category reference carried by a cached product.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CachedProduct is the search-optimized projection of one catalog item.
// SearchText is derived from the other fields and is rebuilt on every decode.
type CachedProduct struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Price            string     `json:"price"`
	RegularPrice     string     `json:"regularPrice"`
	SalePrice        string     `json:"salePrice"`
	Image            string     `json:"image"`
	Categories       []Category `json:"categories"`
	ShortDescription string     `json:"shortDescription"`
	Description      string     `json:"description"`
	InStock          bool       `json:"inStock"`
	StockQuantity    *int       `json:"stockQuantity"`
	SearchText       string     `json:"searchText"`
}

// RefreshSearchText regenerates SearchText from name, descriptions and
// category names. Call it after changing any of those fields.
func (p *CachedProduct) RefreshSearchText() {
	parts := make([]string, 0, 3+len(p.Categories))
	parts = append(parts, p.Name, p.ShortDescription, p.Description)
	for _, c := range p.Categories {
		parts = append(parts, c.Name)
	}
	p.SearchText = textnorm.Fold(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

// UnmarshalJSON decodes a persisted product and recomputes SearchText, so a
// stored value is never trusted as input.
func (p *CachedProduct) UnmarshalJSON(data []byte) error {
	type plain CachedProduct
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = CachedProduct(decoded)
	if p.Categories == nil {
		p.Categories = []Category{}
	}
	p.RefreshSearchText()
	return nil
}
