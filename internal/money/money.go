package money

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/akozyrev/leadwell/internal/domain"
)

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Money is an immutable amount in integer minor units (cents, kopecks)
// paired with an ISO currency code. Arithmetic never produces a negative
// amount and never mixes currencies.
type Money struct {
	amount   int64
	currency string
}

func New(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, &domain.InvalidValueError{
			Field:  "amount",
			Value:  strconv.FormatInt(amount, 10),
			Reason: "amount cannot be negative",
		}
	}

	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	return Money{amount: amount, currency: cur}, nil
}

// FromFloat builds Money from a display value by minor-unit scaling.
// Scaling goes through decimal so 150000.00 round-trips exactly.
func FromFloat(amount float64, currency string) (Money, error) {
	minor := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0)
	return New(minor.IntPart(), currency)
}

// Parse builds Money from a decimal string such as "150000" or
// "150000.50".
func Parse(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &domain.InvalidValueError{
			Field:  "amount",
			Value:  s,
			Reason: "not a decimal number",
		}
	}

	minor := d.Mul(decimal.NewFromInt(100)).Round(0)

	return New(minor.IntPart(), currency)
}

// Zero returns a zero amount in the given currency. It panics on an
// invalid currency code, so it is only for compile-time constants.
func Zero(currency string) Money {
	m, err := New(0, currency)
	if err != nil {
		panic(err)
	}

	return m
}

func (m Money) Amount() int64 { return m.amount }

func (m Money) Currency() string { return m.currency }

// Float returns the display value. Exact, because the amount is stored in
// integer minor units.
func (m Money) Float() float64 {
	f, _ := decimal.New(m.amount, -2).Float64()
	return f
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	if other.amount > m.amount {
		return Money{}, &domain.InvalidValueError{
			Field:  "amount",
			Value:  m.String(),
			Reason: "result cannot be negative",
		}
	}

	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Mul scales the amount by a non-negative integer factor (line totals).
func (m Money) Mul(factor int64) (Money, error) {
	return New(m.amount*factor, m.currency)
}

func (m Money) Equal(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) IsZero() bool { return m.amount == 0 }

func (m Money) String() string {
	return decimal.New(m.amount, -2).StringFixed(2) + " " + m.currency
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return &domain.InvalidValueError{
			Field:  "currency",
			Value:  other.currency,
			Reason: "currencies must match, have " + m.currency,
		}
	}

	return nil
}

func normalizeCurrency(currency string) (string, error) {
	if !currencyRe.MatchString(currency) {
		return "", &domain.InvalidValueError{
			Field:  "currency",
			Value:  currency,
			Reason: "must be a 3-letter code",
		}
	}

	out := make([]byte, 3)
	for i := 0; i < 3; i++ {
		c := currency[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}

		out[i] = c
	}

	return string(out), nil
}
