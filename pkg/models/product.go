package models

// Product is a catalog entry. The recommendation core only reads products;
// writes go through the admin surface.
type Product struct {
	ID        string   `json:"id" db:"id" validate:"required"`
	Name      string   `json:"name" db:"name" validate:"required,min=1,max=255"`
	Price     float64  `json:"price" db:"price" validate:"gte=0"`
	Category  string   `json:"category" db:"category"`
	ImageURLs []string `json:"imageUrls" db:"image_urls"`
	Tags      []string `json:"tags" db:"tags"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Products []Product `json:"products"`
}

type BulkImportResult struct {
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}
