package spaces

// CreateSpaceRequest represents the payload for creating a listing
type CreateSpaceRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Category    string `json:"category" binding:"required"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
}

// CreateRoomRequest represents the payload for adding a room to a space
type CreateRoomRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=100"`
	Capacity   int      `json:"capacity" binding:"required,min=1"`
	HourlyRate float64  `json:"hourly_rate" binding:"required,gt=0"`
	Equipment  []string `json:"equipment"`
}

// SpaceListQuery captures listing filters and pagination
type SpaceListQuery struct {
	Category string `form:"category"`
	City     string `form:"city"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// IsDefault reports whether the query is the unfiltered first page, which is
// the only listing variant served from cache.
func (q SpaceListQuery) IsDefault() bool {
	return q.Category == "" && q.City == "" && (q.Page == 0 || q.Page == 1) && (q.Limit == 0 || q.Limit == 10)
}
