package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/handlers"
	"github.com/Kerhoff/wedding/internal/service"
)

// Bot wraps the Telegram bot API. It only talks to the couple's admin chat.
type Bot struct {
	api         *tgbotapi.BotAPI
	logger      *logrus.Logger
	router      *Router
	adminChatID int64
}

var _ service.Notifier = (*Bot)(nil)

// NewBot creates a new Telegram bot instance
func NewBot(token string, adminChatID int64, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		logger:      logger,
		router:      NewRouter(logger, adminChatID),
		adminChatID: adminChatID,
	}, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	// Delete webhook if exists and use polling
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate processes incoming updates
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	if update.Message != nil {
		b.router.HandleMessage(b.api, update.Message)
	}
}

// SendMessage sends a markdown message to the admin chat
func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// NotifyResponse posts a completed RSVP to the admin chat.
func (b *Bot) NotifyResponse(ctx context.Context, response service.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.SendMessage(handlers.FormatResponse(response))
}

// SendDigest posts the response summary; it fits service.DigestCallback.
func (b *Bot) SendDigest(summary *service.Summary) {
	if err := b.SendMessage(handlers.FormatSummary(summary)); err != nil {
		b.logger.Errorf("Failed to send digest: %v", err)
	}
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}
