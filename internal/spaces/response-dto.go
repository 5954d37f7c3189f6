package spaces

import "time"

// AvailabilitySlot represents one cell of a room's availability grid
type AvailabilitySlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// CachedSpaceList is the cache envelope for the default listing page
type CachedSpaceList struct {
	Spaces []Space `json:"spaces"`
	Total  int64   `json:"total"`
}

// SpaceListResponse wraps paginated listings
type SpaceListResponse struct {
	Spaces     []Space `json:"spaces"`
	TotalCount int64   `json:"total_count"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}
