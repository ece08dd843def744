package rsvp

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/Kerhoff/wedding/internal/models"
)

// PlaceholderDomain marks addresses filled in by the guest list tooling.
// They never count as a guest's own email.
const PlaceholderDomain = "placeholder.com"

var (
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("enter a valid email address")
)

// Details is what a member submits on the details forms. DietaryRestrictions
// is ignored for members who declined.
type Details struct {
	Email               string `json:"email"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
	MessageForCouple    string `json:"message_for_couple,omitempty"`
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized address. Display names and
// anything else net/mail would accept around the bare address are rejected,
// as are placeholder addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrEmailInvalid
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrEmailInvalid
	}
	if domain == PlaceholderDomain {
		return ErrEmailRequired
	}
	return nil
}

// apply validates d for a member and writes the accepted values onto g.
// Free text is stored verbatim. A declining member who leaves the email
// blank keeps the stored one.
func (d Details) apply(g *models.Guest) error {
	email := NormalizeEmail(d.Email)
	if g.IsAttending() {
		if err := ValidateEmail(email); err != nil {
			return err
		}
		g.Email = email
		g.DietaryRestrictions = d.DietaryRestrictions
		g.MessageForCouple = d.MessageForCouple
		return nil
	}

	if email != "" {
		g.Email = email
	}
	g.MessageForCouple = d.MessageForCouple
	return nil
}
