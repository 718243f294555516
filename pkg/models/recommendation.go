package models

type RecommendationRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Count       int    `json:"count" validate:"omitempty,min=1,max=100"`
	SearchQuery string `json:"search_query"`
}

type RecommendationItem struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

type RecommendationResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
	UserID          string               `json:"user_id"`
}
