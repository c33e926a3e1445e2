package chatbot

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/room"
	"github.com/nekogravitycat/room-booker/internal/testutil"
)

var (
	alice = Sender{UserID: "1", UserName: "Alice"}
	bob   = Sender{UserID: "2", UserName: "Bob"}
	admin = Sender{UserID: "99", UserName: "Root", IsAdmin: true}
)

type fixture struct {
	cmds     *Commands
	rooms    room.Service
	bookings booking.Service
	room     *room.Room
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	handle := testutil.NewDB(t)
	logger := zap.NewNop()
	rooms := room.NewService(room.NewSQLRepository(handle), logger)
	bookings := booking.NewService(booking.NewSQLRepository(handle), logger)

	rm, err := rooms.Create(context.Background(), "Aquarium")
	require.NoError(t, err)

	f := &fixture{
		rooms:    rooms,
		bookings: bookings,
		room:     rm,
		now:      time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC),
	}
	f.cmds = NewCommands(rooms, bookings, time.UTC, func() time.Time { return f.now }, logger)
	return f
}

func (f *fixture) run(s Sender, text string) string {
	return f.cmds.Handle(context.Background(), s, text)
}

func (f *fixture) roomID() string {
	return strconv.FormatInt(f.room.ID, 10)
}

func (f *fixture) onlyBooking(t *testing.T, userID string) *booking.Booking {
	t.Helper()
	list, err := f.bookings.CurrentAndUpcomingForUser(context.Background(), userID, f.now, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func TestHelpAndUnknown(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, helpText, f.run(alice, "/help"))
	assert.Equal(t, helpText, f.run(alice, "/start@RoomBookerBot"))
	assert.Contains(t, f.run(alice, "/dance"), "Unknown command")
}

func TestBook(t *testing.T) {
	f := newFixture(t)

	reply := f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Sprint planning")
	assert.Contains(t, reply, "You've successfully booked Aquarium from 10:00 - 11:00!")
	assert.NotContains(t, reply, "very late")

	b := f.onlyBooking(t, alice.UserID)
	assert.Equal(t, "Sprint planning", b.Name)
	assert.Equal(t, "Alice", b.UserName)
	assert.Equal(t, time.Date(2024, 3, 12, 11, 0, 0, 0, time.UTC).Unix(), b.EndTime)

	// Touching is fine, overlapping reports the conflict.
	assert.Contains(t, f.run(bob, "/book "+f.roomID()+" 2024-03-12 11:00 30 Sync"), "successfully booked")
	assert.Equal(t,
		"A booking called 'Sprint planning' by Alice already exists during that time slot!",
		f.run(bob, "/book "+f.roomID()+" 2024-03-12 10:30 15 Clash"))
}

func TestBookLateWarning(t *testing.T) {
	f := newFixture(t)

	reply := f.run(alice, "/book "+f.roomID()+" 2024-03-12 23:00 30 Night owls")
	assert.Contains(t, reply, "very late")
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00"), "Usage: /book")
	assert.Contains(t, f.run(alice, "/book x 2024-03-12 10:00 30 A"), "not a valid id")
	assert.Contains(t, f.run(alice, "/book "+f.roomID()+" 12/03/2024 10:00 30 A"), "not a valid start")
	assert.Contains(t, f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 0 A"), "positive number of minutes")
	assert.Equal(t, "room not found", f.run(alice, "/book 999 2024-03-12 10:00 30 A"))
}

func TestRoomsAndAdminCommands(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "This command is only available to admins.", f.run(alice, "/createroom Attic"))
	assert.Contains(t, f.run(admin, "/createroom The Attic"), "Room 'The Attic' created")
	assert.Equal(t, "room name is already taken", f.run(admin, "/createroom Aquarium"))

	rooms := f.run(alice, "/rooms")
	assert.Contains(t, rooms, "#"+f.roomID()+" Aquarium")
	assert.Contains(t, rooms, "The Attic")

	f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Standup")
	assert.Contains(t, f.run(admin, "/allbookings"), "[Aquarium] #")
	assert.Equal(t, "This command is only available to admins.", f.run(alice, "/deleteroom "+f.roomID()))
	assert.Equal(t, "Room 'Aquarium' and all its bookings have been deleted.", f.run(admin, "/deleteroom "+f.roomID()))

	list, err := f.bookings.AllCurrentAndUpcoming(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWeekAndMyBookings(t *testing.T) {
	f := newFixture(t)

	f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Standup")
	f.run(bob, "/book "+f.roomID()+" 2024-03-14 09:00 30 Review")
	f.run(bob, "/book "+f.roomID()+" 2024-03-25 09:00 30 Far away")

	week := f.run(alice, "/week "+f.roomID())
	assert.Contains(t, week, "Aquarium this week:")
	assert.Contains(t, week, "Tuesday 12-03-2024")
	assert.Contains(t, week, "Thursday 14-03-2024")
	assert.NotContains(t, week, "Far away")

	mine := f.run(bob, "/mybookings")
	assert.Contains(t, mine, "Review")
	assert.Contains(t, mine, "Far away")
	assert.NotContains(t, mine, "Standup")
}

func TestUnbookOwnership(t *testing.T) {
	f := newFixture(t)
	f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Standup")
	id := strconv.FormatInt(f.onlyBooking(t, alice.UserID).ID, 10)

	assert.Equal(t, "You can only change your own bookings.", f.run(bob, "/unbook "+id))
	assert.Equal(t, "Booking 'Standup' (10:00 - 11:00) has been removed.", f.run(alice, "/unbook "+id))
	assert.Equal(t, "booking not found", f.run(alice, "/unbook "+id))
}

func TestExtendAndPrepend(t *testing.T) {
	f := newFixture(t)
	f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Standup")
	f.run(bob, "/book "+f.roomID()+" 2024-03-12 12:00 60 Lunch")
	id := strconv.FormatInt(f.onlyBooking(t, alice.UserID).ID, 10)

	assert.Equal(t, "Booking 'Standup' now runs 10:00 - 12:00.", f.run(alice, "/extend "+id+" 60"))
	assert.Equal(t,
		"Extending the booking would overlap with another booking called 'Lunch' by Bob!",
		f.run(alice, "/extend "+id+" 1"))
	assert.Equal(t, "Booking 'Standup' now runs 09:30 - 12:00.", f.run(alice, "/prepend "+id+" 30"))
	assert.Equal(t, "You can only change your own bookings.", f.run(bob, "/prepend "+id+" 30"))
	assert.Contains(t, f.run(admin, "/prepend "+id+" 30"), "now runs 09:00 - 12:00")

	// Huge amounts would wrap minutes*60; they are refused before reaching the store.
	assert.Contains(t, f.run(alice, "/extend "+id+" 153722867280912930"), "more than a week")
	assert.Contains(t, f.run(alice, "/prepend "+id+" 153722867280912930"), "more than a week")
	b := f.onlyBooking(t, alice.UserID)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC).Unix(), b.StartTime)
	assert.Equal(t, time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC).Unix(), b.EndTime)
}

func TestMove(t *testing.T) {
	f := newFixture(t)
	f.run(alice, "/book "+f.roomID()+" 2024-03-12 10:00 60 Standup")
	f.run(bob, "/book "+f.roomID()+" 2024-03-12 13:00 60 Lunch")
	id := strconv.FormatInt(f.onlyBooking(t, alice.UserID).ID, 10)

	assert.Equal(t,
		"Your booking 'Standup' has been changed from 10:00 - 11:00 to 14:00 - 15:00.",
		f.run(alice, "/move "+id+" 14:00 15:00"))
	// Moving onto its own old slot must not conflict with itself.
	assert.Contains(t, f.run(alice, "/move "+id+" 14:30 15:30"), "has been changed")
	assert.Equal(t,
		"Changing the booking time would overlap with another booking called 'Lunch' by Bob!",
		f.run(alice, "/move "+id+" 12:30 13:30"))
	assert.Equal(t, "start time must be before end time", f.run(alice, "/move "+id+" 15:00 15:00"))

	// Half an hour after it ended it can still be moved, two hours later it cannot.
	f.now = time.Date(2024, 3, 12, 16, 0, 0, 0, time.UTC)
	assert.Contains(t, f.run(alice, "/move "+id+" 14:30 16:30"), "has been changed")
	f.now = time.Date(2024, 3, 12, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "That booking ended too long ago to be changed.", f.run(alice, "/move "+id+" 14:30 15:00"))
}
