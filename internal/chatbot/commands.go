package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booker/internal/room"
)

const genericFailure = "Something went wrong, please try again later."

// Sender identifies who issued a command. Identity comes from the chat platform.
type Sender struct {
	UserID   string
	UserName string
	IsAdmin  bool
}

const helpText = "Room Booker\n\n" +
	"/rooms - List rooms\n" +
	"/book <room_id> <YYYY-MM-DD> <HH:MM> <minutes> <name> - Book a room\n" +
	"/week <room_id> - Bookings for the coming week\n" +
	"/mybookings - Your current and upcoming bookings\n" +
	"/unbook <booking_id> - Cancel a booking\n" +
	"/extend <booking_id> <minutes> - Make a booking end later\n" +
	"/prepend <booking_id> <minutes> - Make a booking start earlier\n" +
	"/move <booking_id> <HH:MM> <HH:MM> - Change start and end on the same day\n" +
	"/help - Show this help\n\n" +
	"Admins:\n" +
	"/createroom <name> - Create a room\n" +
	"/deleteroom <room_id> - Delete a room and its bookings\n" +
	"/allbookings - Every current and upcoming booking"

// Commands implements the chat commands on top of the booking store. Every
// command returns the reply text; transport concerns live in Controller.
type Commands struct {
	rooms    room.Service
	bookings booking.Service
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewCommands(rooms room.Service, bookings booking.Service, loc *time.Location, now func() time.Time, logger *zap.Logger) *Commands {
	if now == nil {
		now = time.Now
	}
	return &Commands{
		rooms:    rooms,
		bookings: bookings,
		loc:      loc,
		now:      now,
		logger:   logger.Named("chat_bot"),
	}
}

// Handle dispatches a "/command args..." message.
func (c *Commands) Handle(ctx context.Context, s Sender, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address commands as /cmd@BotName.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/rooms":
		return c.listRooms(ctx)
	case "/book":
		return c.book(ctx, s, args)
	case "/week":
		return c.week(ctx, args)
	case "/mybookings":
		return c.myBookings(ctx, s)
	case "/unbook":
		return c.unbook(ctx, s, args)
	case "/extend":
		return c.extend(ctx, s, args)
	case "/prepend":
		return c.prepend(ctx, s, args)
	case "/move":
		return c.move(ctx, s, args)
	case "/createroom":
		return c.adminOnly(s, func() string { return c.createRoom(ctx, args) })
	case "/deleteroom":
		return c.adminOnly(s, func() string { return c.deleteRoom(ctx, args) })
	case "/allbookings":
		return c.adminOnly(s, func() string { return c.allBookings(ctx) })
	default:
		return "Unknown command. Send /help for the list of commands."
	}
}

func (c *Commands) adminOnly(s Sender, fn func() string) string {
	if !s.IsAdmin {
		return "This command is only available to admins."
	}
	return fn()
}

func (c *Commands) listRooms(ctx context.Context) string {
	rooms, err := c.rooms.List(ctx)
	if err != nil {
		return c.fail("list rooms", err)
	}
	return formatRooms(rooms)
}

func (c *Commands) book(ctx context.Context, s Sender, args []string) string {
	const usage = "Usage: /book <room_id> <YYYY-MM-DD> <HH:MM> <minutes> <name>"
	if len(args) < 5 {
		return usage
	}
	roomID, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	start, err := parseStart(args[1], args[2], c.loc)
	if err != nil {
		return err.Error()
	}
	minutes, err := parseMinutes(args[3])
	if err != nil {
		return err.Error()
	}
	name := strings.Join(args[4:], " ")

	rm, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return c.fail("book", err)
	}

	b, err := c.bookings.Create(ctx, booking.CreateRequest{
		RoomID:    rm.ID,
		StartTime: start.Unix(),
		EndTime:   start.Add(time.Duration(minutes) * time.Minute).Unix(),
		Name:      name,
		UserID:    s.UserID,
		UserName:  s.UserName,
	})
	if err != nil {
		return c.fail("book", err)
	}

	msg := fmt.Sprintf("You've successfully booked %s from %s! (booking #%d)", rm.Name, timeRange(b, c.loc), b.ID)
	if isVeryLate(b.Start().In(c.loc)) {
		msg = "Your booking time is very late, are you okay?! " + msg
	}
	return msg
}

func (c *Commands) week(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /week <room_id>"
	}
	roomID, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	rm, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return c.fail("week", err)
	}

	bookings, err := c.bookings.ComingWeekForRoom(ctx, rm.ID, c.now().In(c.loc))
	if err != nil {
		return c.fail("week", err)
	}
	return rm.Name + " this week:\n\n" + formatDays(bookings, c.loc, nil)
}

func (c *Commands) myBookings(ctx context.Context, s Sender) string {
	bookings, err := c.bookings.CurrentAndUpcomingForUser(ctx, s.UserID, c.now(), false)
	if err != nil {
		return c.fail("my bookings", err)
	}
	names, err := c.roomNames(ctx)
	if err != nil {
		return c.fail("my bookings", err)
	}
	return "Your bookings:\n\n" + formatDays(bookings, c.loc, names)
}

func (c *Commands) allBookings(ctx context.Context) string {
	bookings, err := c.bookings.AllCurrentAndUpcoming(ctx, c.now())
	if err != nil {
		return c.fail("all bookings", err)
	}
	names, err := c.roomNames(ctx)
	if err != nil {
		return c.fail("all bookings", err)
	}
	return "All upcoming bookings:\n\n" + formatDays(bookings, c.loc, names)
}

func (c *Commands) unbook(ctx context.Context, s Sender, args []string) string {
	if len(args) != 1 {
		return "Usage: /unbook <booking_id>"
	}
	b, msg := c.ownedBooking(ctx, s, args[0])
	if b == nil {
		return msg
	}
	if err := c.bookings.Delete(ctx, b.ID); err != nil {
		return c.fail("unbook", err)
	}
	return fmt.Sprintf("Booking '%s' (%s) has been removed.", b.Name, timeRange(b, c.loc))
}

func (c *Commands) extend(ctx context.Context, s Sender, args []string) string {
	if len(args) != 2 {
		return "Usage: /extend <booking_id> <minutes>"
	}
	return c.resize(ctx, s, args, c.bookings.Extend)
}

func (c *Commands) prepend(ctx context.Context, s Sender, args []string) string {
	if len(args) != 2 {
		return "Usage: /prepend <booking_id> <minutes>"
	}
	return c.resize(ctx, s, args, c.bookings.Prepend)
}

func (c *Commands) resize(ctx context.Context, s Sender, args []string, op func(context.Context, int64, int64) (*booking.Booking, error)) string {
	b, msg := c.ownedBooking(ctx, s, args[0])
	if b == nil {
		return msg
	}
	minutes, err := parseMinutes(args[1])
	if err != nil {
		return err.Error()
	}

	updated, err := op(ctx, b.ID, minutes*60)
	if err != nil {
		return c.fail("resize", err)
	}
	return fmt.Sprintf("Booking '%s' now runs %s.", updated.Name, timeRange(updated, c.loc))
}

func (c *Commands) move(ctx context.Context, s Sender, args []string) string {
	if len(args) != 3 {
		return "Usage: /move <booking_id> <HH:MM> <HH:MM>"
	}
	b, msg := c.ownedBooking(ctx, s, args[0])
	if b == nil {
		return msg
	}
	if b.EndTime <= c.now().Add(-booking.RecentlyEndedWindow).Unix() {
		return "That booking ended too long ago to be changed."
	}

	day := b.Start().In(c.loc)
	start, err := onDate(day, args[1])
	if err != nil {
		return err.Error()
	}
	end, err := onDate(day, args[2])
	if err != nil {
		return err.Error()
	}

	updated, err := c.bookings.ChangeTime(ctx, b.ID, start.Unix(), end.Unix())
	if err != nil {
		return c.fail("move", err)
	}
	return fmt.Sprintf("Your booking '%s' has been changed from %s to %s.", b.Name, timeRange(b, c.loc), timeRange(updated, c.loc))
}

func (c *Commands) createRoom(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /createroom <name>"
	}
	rm, err := c.rooms.Create(ctx, strings.Join(args, " "))
	if err != nil {
		return c.fail("create room", err)
	}
	return fmt.Sprintf("Room '%s' created with id %d.", rm.Name, rm.ID)
}

func (c *Commands) deleteRoom(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /deleteroom <room_id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	rm, err := c.rooms.GetByID(ctx, id)
	if err != nil {
		return c.fail("delete room", err)
	}
	if err := c.rooms.Delete(ctx, rm.ID); err != nil {
		return c.fail("delete room", err)
	}
	return fmt.Sprintf("Room '%s' and all its bookings have been deleted.", rm.Name)
}

// ownedBooking loads a booking the sender may modify. On failure it returns
// nil and the reply to send.
func (c *Commands) ownedBooking(ctx context.Context, s Sender, rawID string) (*booking.Booking, string) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err.Error()
	}
	b, err := c.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, c.fail("load booking", err)
	}
	if b.UserID != s.UserID && !s.IsAdmin {
		c.logger.Info("command rejected",
			zap.Int64("booking_id", b.ID),
			zap.String("user_id", s.UserID),
			zap.String("reason", "not the owner"),
		)
		return nil, "You can only change your own bookings."
	}
	return b, ""
}

func (c *Commands) roomNames(ctx context.Context) (map[int64]string, error) {
	rooms, err := c.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return names, nil
}

// fail turns err into a reply. User errors are shown as is, anything else is
// logged and hidden behind a generic message.
func (c *Commands) fail(action string, err error) string {
	if apperror.StatusCode(err) < http.StatusInternalServerError {
		return apperror.Message(err, genericFailure)
	}
	c.logger.Error("command failed", zap.String("action", action), zap.Error(err))
	return genericFailure
}
