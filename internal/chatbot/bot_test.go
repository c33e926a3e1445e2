package chatbot

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSender(t *testing.T) {
	c := &Controller{admins: map[int64]bool{7: true}, logger: zap.NewNop()}

	s := c.sender(&models.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Username: "ada"})
	assert.Equal(t, Sender{UserID: "7", UserName: "Ada Lovelace", IsAdmin: true}, s)

	s = c.sender(&models.User{ID: 8, Username: "grace"})
	assert.Equal(t, Sender{UserID: "8", UserName: "@grace"}, s)
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	assert.Equal(t, "12345", displayName(&models.User{ID: 12345}))
	assert.Equal(t, "Linus", displayName(&models.User{ID: 1, FirstName: "Linus"}))
}
