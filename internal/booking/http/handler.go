package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booker/internal/pkg/request"
	"github.com/nekogravitycat/room-booker/internal/pkg/response"
	"github.com/nekogravitycat/room-booker/internal/room"
)

var ErrConflictingFilters = apperror.New(http.StatusBadRequest, "room_id and user_id cannot be combined")

type Handler struct {
	service     booking.Service
	roomService room.Service
	logger      *zap.Logger
	now         func() time.Time
}

func NewHandler(service booking.Service, roomService room.Service, logger *zap.Logger, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		service:     service,
		roomService: roomService,
		logger:      logger.Named("booking_api"),
		now:         now,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	now := h.now()

	var (
		bookings []*booking.Booking
		err      error
	)
	switch {
	case req.RoomID != 0:
		// An unknown room is a 404, like every other lookup by id.
		if _, err := h.roomService.GetByID(ctx, req.RoomID); err != nil {
			if apperror.StatusCode(err) >= http.StatusInternalServerError {
				h.logger.Error("failed to get room", zap.Int64("room_id", req.RoomID), zap.Error(err))
			}
			response.Error(c, err)
			return
		}
		bookings, err = h.service.ComingWeekForRoom(ctx, req.RoomID, now)
	case req.UserID != "":
		bookings, err = h.service.CurrentAndUpcomingForUser(ctx, req.UserID, now, req.RecentlyEnded)
	default:
		bookings, err = h.service.AllCurrentAndUpcoming(ctx, now)
	}
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		if apperror.StatusCode(err) >= http.StatusInternalServerError {
			h.logger.Error("failed to get booking", zap.Int64("booking_id", req.ID), zap.Error(err))
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
