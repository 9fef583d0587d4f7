package review

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/joseph-ayodele/invoice-intake/constants"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders amount in the en-US style, e.g. "$1,234.50".
// An empty code means USD; a code x/text does not know renders as "1,234.50 XYZ".
func FormatCurrency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = constants.DefaultCurrency
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + printer.Sprint(number.Decimal(amount, number.Scale(2))) + " " + code
	}
	scale, _ := currency.Standard.Rounding(unit)
	digits := printer.Sprint(number.Decimal(amount, number.Scale(scale)))
	if isZeroDigits(digits) {
		sign = ""
	}
	return sign + printer.Sprint(currency.Symbol(unit)) + digits
}

func isZeroDigits(s string) bool {
	return strings.Trim(s, "0.,") == ""
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDisplayDate renders an ISO date as "March 1, 2024". The calendar date
// is taken as written, with no time zone shift. Unparseable input is returned unchanged.
func FormatDisplayDate(iso string) string {
	t, ok := parseDate(iso)
	if !ok {
		return iso
	}
	return t.Format("January 2, 2006")
}

// FormatInputDate renders an ISO date as YYYY-MM-DD for editing.
func FormatInputDate(iso string) string {
	t, ok := parseDate(iso)
	if !ok {
		return iso
	}
	return t.Format("2006-01-02")
}

// StatusTone is the visual category of a status.
func StatusTone(status string) constants.InvoiceStatus {
	s, _ := constants.CanonicalizeStatus(status)
	return s
}
