package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/rooms")
	{
		group.GET("", h.ListRooms)
		group.GET("/:room_id/:timezone_id", h.Snapshot)
	}
}
