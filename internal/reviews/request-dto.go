package reviews

import "github.com/google/uuid"

// CreateReviewRequest represents the payload for reviewing a space
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment" binding:"max=1000"`
}

// ReviewListQuery captures pagination for a space's reviews
type ReviewListQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
