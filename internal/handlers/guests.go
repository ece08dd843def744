package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/service"
)

// maxFindResults caps the /find reply so it stays under Telegram's message limit.
const maxFindResults = 30

func send(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// StatsHandler – /stats
// ---------------------------------------------------------------------------

// StatsHandler handles the /stats command.
type StatsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewStatsHandler(svc *service.Service, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

func (h *StatsHandler) Reply(ctx context.Context, args []string) (string, error) {
	sum, err := h.svc.Summary(ctx)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	return FormatSummary(sum), nil
}

func (h *StatsHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text, err := h.Reply(context.Background(), args)
	if err != nil {
		return err
	}
	return send(bot, message.Chat.ID, text)
}

// ---------------------------------------------------------------------------
// FindHandler – /find <name>
// ---------------------------------------------------------------------------

// FindHandler handles the /find command.
type FindHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewFindHandler(svc *service.Service, logger *logrus.Logger) *FindHandler {
	return &FindHandler{svc: svc, logger: logger}
}

func (h *FindHandler) Reply(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "❌ Please provide a name.\nUsage: `/find Rogers`", nil
	}
	query := strings.Join(args, " ")

	guests, err := h.svc.FindGuests(ctx, query)
	if err != nil {
		return "", fmt.Errorf("find guests: %w", err)
	}
	if len(guests) == 0 {
		return fmt.Sprintf("🔍 No guests matching \"%s\".", esc(query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *%d guest(s) matching* \"%s\"\n\n", len(guests), esc(query))
	for i, g := range guests {
		if i == maxFindResults {
			fmt.Fprintf(&b, "_…and %d more_\n", len(guests)-maxFindResults)
			break
		}
		b.WriteString(FormatGuestLine(g))
		b.WriteString("\n")
	}
	b.WriteString("\nUse /party <id> to see a whole party.")
	return b.String(), nil
}

func (h *FindHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text, err := h.Reply(context.Background(), args)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"query":   strings.Join(args, " "),
	}).Debug("Guest search")

	return send(bot, message.Chat.ID, text)
}

// ---------------------------------------------------------------------------
// PartyHandler – /party <guest id | group id>
// ---------------------------------------------------------------------------

// PartyHandler handles the /party command.
type PartyHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewPartyHandler(svc *service.Service, logger *logrus.Logger) *PartyHandler {
	return &PartyHandler{svc: svc, logger: logger}
}

func (h *PartyHandler) Reply(ctx context.Context, args []string) (string, error) {
	usage := "❌ Please provide a guest id or group id.\nUsage: `/party 12`"
	if len(args) != 1 {
		return usage, nil
	}

	var subject service.Subject
	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		subject = service.GuestSubject(id)
	} else if group, err := uuid.Parse(args[0]); err == nil {
		subject = service.GroupSubject(group)
	} else {
		return usage, nil
	}

	party, err := h.svc.PartyOf(ctx, subject)
	if service.IsNotFound(err) {
		return fmt.Sprintf("❓ No party found for %s.", esc(subject.String())), nil
	}
	if err != nil {
		return "", fmt.Errorf("party: %w", err)
	}
	return FormatParty(party), nil
}

func (h *PartyHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text, err := h.Reply(context.Background(), args)
	if err != nil {
		return err
	}
	return send(bot, message.Chat.ID, text)
}
