package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders cents as US dollars, e.g. 123456 -> "$1,234.56".
func FormatCurrency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := float64(cents) / 100
	return sign + "$" + printer.Sprint(number.Decimal(dollars, number.Scale(2)))
}
