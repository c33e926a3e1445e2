package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/api"
	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/chatbot"
	"github.com/nekogravitycat/room-booker/internal/db"
	"github.com/nekogravitycat/room-booker/internal/display"
	"github.com/nekogravitycat/room-booker/internal/room"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DB           *db.DB
	Logger       *zap.Logger

	// Chat bot is only built when TelegramToken is set.
	TelegramToken string
	BotAdminIDs   []int64
	BotTimezone   *time.Location

	UpcomingCount int
	Now           func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	Bot            *chatbot.Controller // nil when the chat bot is disabled
	RoomService    room.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Room Module
	roomRepo := room.NewSQLRepository(cfg.DB)
	roomService := room.NewService(roomRepo, cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewSQLRepository(cfg.DB)
	bookingService := booking.NewService(bookingRepo, cfg.Logger)

	// Display Module
	displayService := display.NewService(roomService, bookingService, cfg.UpcomingCount, now)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		DisplayService: displayService,
		BookingService: bookingService,
		RoomService:    roomService,
		Now:            now,
	})

	c := &Container{
		Router:         router,
		RoomService:    roomService,
		BookingService: bookingService,
	}

	// Chat Bot
	if cfg.TelegramToken != "" {
		commands := chatbot.NewCommands(roomService, bookingService, cfg.BotTimezone, now, cfg.Logger)
		bot, err := chatbot.NewController(cfg.TelegramToken, commands, cfg.BotAdminIDs, cfg.Logger)
		if err != nil {
			return nil, err
		}
		c.Bot = bot
	}

	return c, nil
}
