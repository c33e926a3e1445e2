package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/booking"
	bookingHttp "github.com/nekogravitycat/room-booker/internal/booking/http"
	"github.com/nekogravitycat/room-booker/internal/display"
	displayHttp "github.com/nekogravitycat/room-booker/internal/display/http"
	"github.com/nekogravitycat/room-booker/internal/room"
)

// Config holds the dependencies required to build the router.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	Logger         *zap.Logger
	DisplayService display.Service
	BookingService booking.Service
	RoomService    room.Service
	Now            func() time.Time
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request logging, recovery, CORS) and registers the
// display and booking read routes.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one zap entry per request, tagged with a request id.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(logger.Named("http")), gin.Recovery())

	// Displays are usually plain kiosks, but browser based ones need CORS.
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = parseOrigins(cfg.ProdOrigins)
		if len(config.AllowOrigins) == 0 {
			config.AllowAllOrigins = true
		}
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	displayHandler := displayHttp.NewHandler(cfg.DisplayService, logger)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.RoomService, logger, cfg.Now)

	root := r.Group("")
	{
		displayHttp.RegisterRoutes(root, displayHandler)
		bookingHttp.RegisterRoutes(root, bookingHandler)
	}

	return r
}

func parseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
