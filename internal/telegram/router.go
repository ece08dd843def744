package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Router handles message routing and command parsing
type Router struct {
	logger      *logrus.Logger
	handlers    map[string]CommandHandler
	adminChatID int64
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router that only serves adminChatID
func NewRouter(logger *logrus.Logger, adminChatID int64) *Router {
	return &Router{
		logger:      logger,
		handlers:    make(map[string]CommandHandler),
		adminChatID: adminChatID,
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// route picks the handler for a message. ok is false for anything that is not
// a command from the admin chat.
func (r *Router) route(message *tgbotapi.Message) (handler CommandHandler, args []string, known, ok bool) {
	if message.Chat == nil || message.Chat.ID != r.adminChatID {
		return nil, nil, false, false
	}
	if message.Text == "" || !message.IsCommand() {
		return nil, nil, false, false
	}
	handler, known = r.handlers[message.Command()]
	return handler, strings.Fields(message.CommandArguments()), known, true
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	fields := logrus.Fields{"message_id": message.MessageID}
	if message.Chat != nil {
		fields["chat_id"] = message.Chat.ID
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.UserName
	}

	handler, args, known, ok := r.route(message)
	if !ok {
		if message.Chat != nil && message.Chat.ID != r.adminChatID {
			r.logger.WithFields(fields).Warn("Ignoring message from a chat other than the admin chat")
		}
		return
	}

	command := message.Command()
	fields["command"] = command
	r.logger.WithFields(fields).Info("Received command")

	if !known {
		r.logger.WithFields(fields).Warn("Unknown command")
		bot.Send(tgbotapi.NewMessage(message.Chat.ID, "❓ Unknown command. Use /help to see available commands."))
		return
	}

	if err := handler.Handle(bot, message, args); err != nil {
		fields["error"] = err
		r.logger.WithFields(fields).Error("Command handler failed")

		// Send error message to user
		bot.Send(tgbotapi.NewMessage(message.Chat.ID, "❌ An error occurred while processing your command. Please try again."))
	}
}
