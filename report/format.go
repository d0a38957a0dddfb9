package report

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

// Formatter renders amounts and dates for documents. Amounts get the
// currency symbol, two decimals and thousands grouping.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a British English formatter using symbol.
func NewFormatter(symbol string) Formatter {
	return Formatter{symbol: symbol, printer: message.NewPrinter(language.BritishEnglish)}
}

// Money formats v as "£1,150.00"; negatives carry a leading minus.
func (f Formatter) Money(v float64) string {
	v = money.Round2(money.Sanitize(v))
	sign := ""
	switch {
	case v < 0:
		sign = "-"
		v = -v
	case v == 0:
		v = 0
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Date formats t as "02 Jan 2006"; the zero time renders empty.
func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}
