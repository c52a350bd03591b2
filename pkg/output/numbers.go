package output

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Grouped digits, e.g. 1,234,567.
var numbers = message.NewPrinter(language.English)

func formatCount[T int | int64](v T) string {
	return numbers.Sprintf("%d", v)
}

// formatValue prints counts without decimals and measures with four.
func formatValue(v float64, integral bool) string {
	if integral {
		return numbers.Sprintf("%d", int64(v))
	}
	return numbers.Sprintf("%.4f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
