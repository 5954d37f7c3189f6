package reviews

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacehub/internal/shared/utils/response"
	"spacehub/internal/spaces"
)

type Controller interface {
	AddReview(c *gin.Context)
	ListReviews(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) AddReview(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid space ID", nil, err.Error())
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	raw, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return
	}

	review, err := ctrl.service.AddReview(c.Request.Context(), userID, spaceID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyReviewed):
			response.RespondJSON(c, "error", http.StatusConflict, "Booking already reviewed", nil, nil)
		case errors.Is(err, ErrBookingNotReviewable):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Only completed bookings can be reviewed", nil, nil)
		case errors.Is(err, ErrBookingMismatch):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Booking does not match this space", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create review", nil, err.Error())
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Review added successfully", review, nil)
}

func (ctrl *controller) ListReviews(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid space ID", nil, err.Error())
		return
	}

	var query ReviewListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 10
	}

	list, total, err := ctrl.service.ListReviews(c.Request.Context(), spaceID, query)
	if err != nil {
		if errors.Is(err, spaces.ErrSpaceNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Space not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list reviews", nil, err.Error())
		return
	}

	resp := ReviewListResponse{
		Reviews:    list,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	response.RespondJSON(c, "success", http.StatusOK, "Reviews retrieved successfully", resp, nil)
}
