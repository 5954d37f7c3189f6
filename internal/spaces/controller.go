package spaces

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacehub/internal/shared/utils/response"
)

type Controller interface {
	CreateSpace(c *gin.Context)
	GetSpace(c *gin.Context)
	ListSpaces(c *gin.Context)
	ApproveSpace(c *gin.Context)
	CreateRoom(c *gin.Context)
	GetRoom(c *gin.Context)
	GetRoomAvailability(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// ownerID extracts the authenticated user from context (set by auth middleware).
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (ctrl *controller) CreateSpace(c *gin.Context) {
	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	owner, ok := ownerID(c)
	if !ok {
		return
	}

	space, err := ctrl.service.CreateSpace(c.Request.Context(), owner, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Space created successfully", space, nil)
}

func (ctrl *controller) GetSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid space ID", nil, err.Error())
		return
	}

	space, err := ctrl.service.GetSpace(c.Request.Context(), spaceID)
	if err != nil {
		if errors.Is(err, ErrSpaceNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Space not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get space", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Space retrieved successfully", space, nil)
}

func (ctrl *controller) ListSpaces(c *gin.Context) {
	var query SpaceListQuery
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

	spaces, total, err := ctrl.service.ListSpaces(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list spaces", nil, err.Error())
		return
	}

	resp := SpaceListResponse{
		Spaces:     spaces,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	response.RespondJSON(c, "success", http.StatusOK, "Spaces retrieved successfully", resp, nil)
}

func (ctrl *controller) ApproveSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid space ID", nil, err.Error())
		return
	}

	space, err := ctrl.service.ApproveSpace(c.Request.Context(), spaceID)
	if err != nil {
		if errors.Is(err, ErrSpaceNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Space not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to approve space", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Space approved successfully", space, nil)
}

func (ctrl *controller) CreateRoom(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid space ID", nil, err.Error())
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	owner, ok := ownerID(c)
	if !ok {
		return
	}

	room, err := ctrl.service.CreateRoom(c.Request.Context(), owner, spaceID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSpaceNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Space not found", nil, nil)
		case errors.Is(err, ErrNotSpaceOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, "Only the space owner can add rooms", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Room created successfully", room, nil)
}

func (ctrl *controller) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid room ID", nil, err.Error())
		return
	}

	room, err := ctrl.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Room not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get room", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Room retrieved successfully", room, nil)
}

func (ctrl *controller) GetRoomAvailability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid room ID", nil, err.Error())
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", nil, err.Error())
			return
		}
	}

	days := 1
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > 31 {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid days, expected 1-31", nil, nil)
			return
		}
	}

	slots := make([]AvailabilitySlot, 0)
	for d := 0; d < days; d++ {
		daySlots, err := ctrl.service.GetRoomAvailability(c.Request.Context(), roomID, date.AddDate(0, 0, d))
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				response.RespondJSON(c, "error", http.StatusNotFound, "Room not found", nil, nil)
				return
			}
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to compute availability", nil, err.Error())
			return
		}
		slots = append(slots, daySlots...)
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability retrieved successfully", gin.H{
		"room_id": roomID,
		"slots":   slots,
	}, nil)
}
