package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"spacehub/internal/availability"
	"spacehub/internal/spaces"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// currentUserID pulls the authenticated user ID set by the JWT middleware.
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(str)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}
	return userID, true
}

func isAdmin(ctx *gin.Context) bool {
	role, _ := ctx.Get("user_role")
	str, ok := role.(string)
	return ok && str == "ADMIN"
}

// respondServiceError maps the booking error taxonomy onto HTTP statuses.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, availability.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Room is not available during the selected time", "details": err.Error()})
	case errors.Is(err, ErrInvalidStateTransition):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Booking is not in a state that allows this operation", "details": err.Error()})
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, spaces.ErrRoomNotFound), errors.Is(err, spaces.ErrSpaceNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, availability.ErrInvalidInterval):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking interval", "details": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

// Reserve handles POST /api/v1/bookings
func (c *Controller) Reserve(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req ReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := c.service.Reserve(ctx.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Booking created. Complete payment to confirm.",
		"data":    booking,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID, isAdmin(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := parseListQuery(ctx)
	bookingsList, total, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": BookingListResponse{
		Bookings:   bookingsList,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}})
}

// GetAllBookings handles GET /api/v1/admin/bookings
func (c *Controller) GetAllBookings(ctx *gin.Context) {
	query := parseListQuery(ctx)
	bookingsList, total, err := c.service.GetAllBookings(ctx.Request.Context(), query)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": BookingListResponse{
		Bookings:   bookingsList,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}})
}

// ProcessPayment handles POST /api/v1/bookings/:id/payment
func (c *Controller) ProcessPayment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := c.service.ProcessPayment(ctx.Request.Context(), bookingID, userID, req.CardToken)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Payment processed successfully. Booking confirmed.",
		"data":    booking,
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CancelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := c.service.Cancel(ctx.Request.Context(), bookingID, userID, req.Reason, isAdmin(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully",
		"data":    booking,
	})
}

func parseListQuery(ctx *gin.Context) BookingListQuery {
	query := BookingListQuery{
		Status: ctx.Query("status"),
	}
	if page, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil {
		query.Limit = limit
	}
	if roomID, err := uuid.Parse(ctx.Query("room_id")); err == nil {
		query.RoomID = roomID
	}
	return query
}
