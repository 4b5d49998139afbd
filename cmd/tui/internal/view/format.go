package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders minor units with two decimals.
func FormatAmount(a money.Amount) string {
	return a.String()
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
