package ui

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Volume formats a training volume with thousands separators, e.g.
// "12,450 kg".
func Volume(v float64, unit string) string {
	return printer.Sprintf("%.0f %s", v, unit)
}

// Weight formats a load, keeping one decimal place only when needed.
func Weight(v float64, unit string) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d %s", int64(v), unit)
	}

	return printer.Sprintf("%.1f %s", v, unit)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Clock formats d as m:ss, or h:mm:ss from one hour up.
func Clock(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if h > 0 {
		return printer.Sprintf("%d:%02d:%02d", h, m, s)
	}

	return printer.Sprintf("%d:%02d", m, s)
}
