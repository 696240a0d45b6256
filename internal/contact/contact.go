// Package contact holds the validated contact value objects shared by
// leads and users.
package contact

import (
	"regexp"
	"strings"

	"github.com/akozyrev/leadwell/internal/domain"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email is a normalized, validated email address. The zero value is not
// valid; construct through NewEmail.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailRe.MatchString(normalized) {
		return Email{}, &domain.InvalidValueError{Field: "email", Value: raw, Reason: "malformed address"}
	}

	return Email{value: normalized}, nil
}

func (e Email) String() string { return e.value }

func (e Email) Domain() string {
	return e.value[strings.IndexByte(e.value, '@')+1:]
}

func (e Email) Equal(other Email) bool { return e.value == other.value }

func (e Email) IsZero() bool { return e.value == "" }

// Phone is a digit-only phone number with a country code. The default
// country code matches the original RU deployment.
type Phone struct {
	digits      string
	countryCode string
}

const DefaultCountryCode = "7"

func NewPhone(raw string) (Phone, error) {
	return NewPhoneWithCountry(raw, DefaultCountryCode)
}

func NewPhoneWithCountry(raw, countryCode string) (Phone, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < 10 {
		return Phone{}, &domain.InvalidValueError{Field: "phone", Value: raw, Reason: "fewer than 10 digits"}
	}

	return Phone{digits: digits, countryCode: countryCode}, nil
}

// E164 returns the canonical +<country><digits> representation.
func (p Phone) E164() string {
	return "+" + p.countryCode + p.digits
}

// Formatted returns the localized display form, e.g. +7 (916) 123-45-67.
// It formats the last 10 digits so numbers entered with a leading country
// digit render the same way.
func (p Phone) Formatted() string {
	n := p.digits
	if len(n) > 10 {
		n = n[len(n)-10:]
	}

	return "+" + p.countryCode + " (" + n[0:3] + ") " + n[3:6] + "-" + n[6:8] + "-" + n[8:10]
}

func (p Phone) String() string { return p.E164() }

func (p Phone) IsZero() bool { return p.digits == "" }
