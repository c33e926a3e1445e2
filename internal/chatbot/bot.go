package chatbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Controller connects Commands to Telegram.
type Controller struct {
	bot      *bot.Bot
	commands *Commands
	admins   map[int64]bool
	logger   *zap.Logger
}

func NewController(token string, commands *Commands, adminIDs []int64, logger *zap.Logger) (*Controller, error) {
	c := &Controller{
		commands: commands,
		admins:   make(map[int64]bool, len(adminIDs)),
		logger:   logger.Named("chat_bot"),
	}
	for _, id := range adminIDs {
		c.admins[id] = true
	}

	b, err := bot.New(token, bot.WithDefaultHandler(c.handleOther))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	c.bot = b
	return c, nil
}

// RegisterHandlers registers the command handler and publishes the command menu.
func (c *Controller) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, c.handleCommand)
	return c.setCommands(ctx)
}

func (c *Controller) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "help", Description: "Show available commands"},
		{Command: "rooms", Description: "List rooms"},
		{Command: "book", Description: "Book a room"},
		{Command: "week", Description: "Bookings for the coming week"},
		{Command: "mybookings", Description: "Your current and upcoming bookings"},
		{Command: "unbook", Description: "Cancel a booking"},
		{Command: "extend", Description: "Make a booking end later"},
		{Command: "prepend", Description: "Make a booking start earlier"},
		{Command: "move", Description: "Change the time of a booking"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("bot commands menu set")
	return nil
}

// Start runs long polling until ctx is cancelled.
func (c *Controller) Start(ctx context.Context) {
	c.logger.Info("starting chat bot")
	c.bot.Start(ctx)
	c.logger.Info("chat bot stopped")
}

func (c *Controller) handleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	sender := c.sender(update.Message.From)
	c.logger.Debug("command received",
		zap.String("user_id", sender.UserID),
		zap.String("text", update.Message.Text),
	)

	reply := c.commands.Handle(ctx, sender, update.Message.Text)
	c.sendMessage(ctx, b, update.Message.Chat.ID, reply)
}

func (c *Controller) handleOther(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	c.sendMessage(ctx, b, update.Message.Chat.ID, "Send /help to see what I can do.")
}

func (c *Controller) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.Error("failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func (c *Controller) sender(u *models.User) Sender {
	return Sender{
		UserID:   strconv.FormatInt(u.ID, 10),
		UserName: displayName(u),
		IsAdmin:  c.admins[u.ID],
	}
}

// displayName prefers the real name over the handle.
func displayName(u *models.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}
