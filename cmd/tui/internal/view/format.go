package view

import (
	"context"
	"time"

	"github.com/akozyrev/leadwell/internal/money"
)

const opTimeout = 5 * time.Second

// FormatMoney renders an amount like "150000.00 RUB".
func FormatMoney(m money.Money) string {
	return m.String()
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// OpCtx returns a context with a standard timeout for store operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
