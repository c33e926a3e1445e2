package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes exposes bookings read-only. Mutations go through the chat bot,
// which carries the user identity.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/bookings")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}
}
