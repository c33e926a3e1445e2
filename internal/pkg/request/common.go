package request

// RoomIDRequest binds the room id path parameter shared by room scoped endpoints.
type RoomIDRequest struct {
	RoomID int64 `uri:"room_id" binding:"required,min=1"`
}

// ByIDRequest is a common struct for endpoints that require a numeric ID path parameter.
type ByIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}
