package reviews

// ReviewListResponse wraps a page of reviews for a space
type ReviewListResponse struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}
