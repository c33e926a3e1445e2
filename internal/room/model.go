package room

import (
	"net/http"

	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "room not found")
	ErrNameTaken = apperror.New(http.StatusConflict, "room name is already taken")
	ErrEmptyName = apperror.New(http.StatusBadRequest, "room name cannot be empty")
)

// Room is a bookable meeting room.
type Room struct {
	ID   int64
	Name string
}
