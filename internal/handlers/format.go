package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/rsvp"
	"github.com/Kerhoff/wedding/internal/service"
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// decisionEmoji returns an emoji for a guest's attendance decision.
func decisionEmoji(g *models.Guest) string {
	switch rsvp.DecisionOf(g) {
	case rsvp.DecisionAttending:
		return "✅"
	case rsvp.DecisionDeclined:
		return "❌"
	default:
		return "⏳"
	}
}

func statusLabel(status rsvp.GroupStatus) string {
	switch status {
	case rsvp.StatusAllAttending:
		return "all attending"
	case rsvp.StatusAllDeclined:
		return "all declined"
	case rsvp.StatusMixed:
		return "mixed"
	default:
		return "undecided"
	}
}

// FormatGuestLine renders one guest as a single list line.
func FormatGuestLine(g *models.Guest) string {
	line := fmt.Sprintf("%s `%d` %s", decisionEmoji(g), g.ID, esc(g.FullName()))
	if g.DietaryRestrictions != "" {
		line += " 🍽 " + esc(g.DietaryRestrictions)
	}
	return line
}

// FormatSummary renders the response counts.
func FormatSummary(sum *service.Summary) string {
	var b strings.Builder
	b.WriteString("📊 *RSVP summary*\n\n")
	fmt.Fprintf(&b, "Guests: %d in %d groups\n", sum.Guests, sum.Groups)
	fmt.Fprintf(&b, "✅ Attending: %d\n", sum.Attending)
	fmt.Fprintf(&b, "❌ Declined: %d\n", sum.Declined)
	fmt.Fprintf(&b, "⏳ Pending: %d\n", sum.Pending)
	fmt.Fprintf(&b, "📝 Details collected: %d\n", sum.Responded)
	if len(sum.Dietary) > 0 {
		b.WriteString("\n*Dietary restrictions:*\n")
		for _, d := range sum.Dietary {
			fmt.Fprintf(&b, "• %s: %s\n", esc(d.Name), esc(d.Restrictions))
		}
	}
	return b.String()
}

// FormatParty renders a group and its members.
func FormatParty(p *service.Party) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👪 *Party* `%s`\nStatus: %s (%s)\n\n", p.GroupID, statusLabel(p.Status), p.State)
	for _, g := range p.Guests {
		b.WriteString(FormatGuestLine(g))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatResponse renders the notification sent when a party finished.
func FormatResponse(r service.Response) string {
	var b strings.Builder
	names := make([]string, len(r.Guests))
	for i, g := range r.Guests {
		names[i] = g.FullName()
	}
	fmt.Fprintf(&b, "💌 *New RSVP* from %s (%s)\n\n", esc(strings.Join(names, ", ")), statusLabel(r.Status))
	for _, g := range r.Guests {
		b.WriteString(FormatGuestLine(g))
		b.WriteString("\n")
		if g.MessageForCouple != "" {
			fmt.Fprintf(&b, "    💬 _%s_\n", esc(g.MessageForCouple))
		}
	}
	return b.String()
}
