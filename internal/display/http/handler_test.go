package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-booker/internal/booking"
	"github.com/nekogravitycat/room-booker/internal/display"
	displayHttp "github.com/nekogravitycat/room-booker/internal/display/http"
	"github.com/nekogravitycat/room-booker/internal/room"
	"github.com/nekogravitycat/room-booker/internal/testutil"
)

var now = time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	rooms    room.Service
	bookings booking.Service
}

func setup(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handle := testutil.NewDB(t)
	logger := zap.NewNop()
	rooms := room.NewService(room.NewSQLRepository(handle), logger)
	bookings := booking.NewService(booking.NewSQLRepository(handle), logger)
	svc := display.NewService(rooms, bookings, 3, func() time.Time { return now })

	r := gin.New()
	displayHttp.RegisterRoutes(r.Group(""), displayHttp.NewHandler(svc, logger))

	return &testServer{router: r, rooms: rooms, bookings: bookings}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSnapshotEndpoint(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rm, err := s.rooms.Create(ctx, "Boardroom")
	require.NoError(t, err)
	cur, err := s.bookings.Create(ctx, booking.CreateRequest{
		RoomID:    rm.ID,
		StartTime: now.Add(-time.Hour).Unix(),
		EndTime:   now.Add(time.Hour).Unix(),
		Name:      "Retro",
		UserID:    "U1",
		UserName:  "alice",
	})
	require.NoError(t, err)

	w := s.get(t, "/rooms/"+strconv.FormatInt(rm.ID, 10)+"/Europe&Amsterdam")
	require.Equal(t, http.StatusOK, w.Code)

	var resp displayHttp.SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, displayHttp.BookingTag{
		ID:        strconv.FormatInt(cur.ID, 10),
		Name:      "Retro",
		User:      "alice",
		StartTime: now.Add(-time.Hour).Unix(),
		EndTime:   now.Add(time.Hour).Unix(),
	}, resp.CurrentBooking)
	assert.Equal(t, displayHttp.BookingTag{}, resp.FirstUpcomingBooking)
	assert.Equal(t, displayHttp.BookingTag{}, resp.ThirdUpcomingBooking)
	assert.Len(t, resp.UpcomingBookings, 3)
}

func TestSnapshotEndpointEmptySlotShape(t *testing.T) {
	s := setup(t)
	rm, err := s.rooms.Create(context.Background(), "Boardroom")
	require.NoError(t, err)

	w := s.get(t, "/rooms/"+strconv.FormatInt(rm.ID, 10)+"/UTC")
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"current_booking", "first_upcoming_booking", "second_upcoming_booking", "third_upcoming_booking"} {
		assert.JSONEq(t, `{"id":"","name":"","user":"","start_time":0,"end_time":0}`, string(raw[key]), key)
	}
}

func TestSnapshotEndpointErrors(t *testing.T) {
	s := setup(t)
	rm, err := s.rooms.Create(context.Background(), "Boardroom")
	require.NoError(t, err)
	id := strconv.FormatInt(rm.ID, 10)

	cases := []struct {
		name string
		path string
		code int
		msg  string
	}{
		{"unknown room", "/rooms/999/UTC", http.StatusNotFound, "ERROR: Room ID not found."},
		{"bad timezone", "/rooms/" + id + "/Mars&Olympus", http.StatusBadRequest, "ERROR: Invalid system timezone ID."},
		{"non numeric room", "/rooms/abc/UTC", http.StatusBadRequest, "invalid room id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.get(t, tc.path)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, `{"error":"`+tc.msg+`"}`, w.Body.String())
		})
	}
}

func TestListRoomsEndpoint(t *testing.T) {
	s := setup(t)

	w := s.get(t, "/rooms")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	rm, err := s.rooms.Create(context.Background(), "Boardroom")
	require.NoError(t, err)

	w = s.get(t, "/rooms")
	require.Equal(t, http.StatusOK, w.Code)
	var items []displayHttp.RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Equal(t, []displayHttp.RoomResponse{{ID: rm.ID, Name: "Boardroom"}}, items)
}
