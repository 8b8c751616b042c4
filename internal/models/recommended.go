package models

// RecommendedProduct is the card shape of the recommended products list.
type RecommendedProduct struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Price        string `json:"price"`
	RegularPrice string `json:"regularPrice"`
	Image        string `json:"image"`
}

// NewRecommendedProduct projects a cached product into its card.
func NewRecommendedProduct(p CachedProduct) RecommendedProduct {
	return RecommendedProduct{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Price:        p.Price,
		RegularPrice: p.RegularPrice,
		Image:        p.Image,
	}
}
