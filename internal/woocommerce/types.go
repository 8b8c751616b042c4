package woocommerce

// Image is a product image as returned by wc/v3.
type Image struct {
	ID  int    `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// CategoryRef is the category stub embedded in a product.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is the subset of the wc/v3 product resource the service reads.
// Every field other than ID and Name is optional.
type Product struct {
	ID               int           `json:"id" validate:"gt=0"`
	Name             string        `json:"name" validate:"required"`
	Slug             string        `json:"slug"`
	Status           string        `json:"status"`
	Type             string        `json:"type"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	ShortDescription string        `json:"short_description"`
	Description      string        `json:"description"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
	StockStatus      string        `json:"stock_status"`
	StockQuantity    *int          `json:"stock_quantity"`
	ManageStock      bool          `json:"manage_stock"`
}

// Category is a wc/v3 product category.
type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent"`
	Count  int    `json:"count"`
}

// ListProductsParams filters the products listing.
type ListProductsParams struct {
	Page        int
	PerPage     int
	Status      string // e.g. "publish"
	StockStatus string // e.g. "instock"; empty for all
}
