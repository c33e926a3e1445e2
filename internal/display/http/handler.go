package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/display"
	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booker/internal/pkg/response"
)

type Handler struct {
	service display.Service
	logger  *zap.Logger
}

func NewHandler(service display.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("display_api"),
	}
}

// Snapshot returns the current booking and the rest of today's upcoming
// bookings for one room, as seen from the display's timezone.
func (h *Handler) Snapshot(c *gin.Context) {
	var req SnapshotRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}

	snap, err := h.service.Snapshot(c.Request.Context(), req.RoomID, req.TimezoneID)
	if err != nil {
		h.logFailure("failed to build snapshot", err, zap.Int64("room_id", req.RoomID))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSnapshotResponse(snap))
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.Rooms(c.Request.Context())
	if err != nil {
		h.logFailure("failed to list rooms", err)
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, NewRoomResponse(r))
	}
	c.JSON(http.StatusOK, items)
}

// logFailure only logs errors that end up as 5xx; user errors are expected traffic.
func (h *Handler) logFailure(msg string, err error, fields ...zap.Field) {
	if apperror.StatusCode(err) < http.StatusInternalServerError {
		return
	}
	h.logger.Error(msg, append(fields, zap.Error(err))...)
}
