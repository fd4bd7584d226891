package ui

import (
	"github.com/pterm/pterm"
)

// DarkTheme switches every colour to its light variant.
var DarkTheme bool

func themed(normal, light func(a ...any) string, a any) string {
	if DarkTheme {
		return light(a)
	}

	return normal(a)
}

func Green(a any) string {
	return themed(pterm.Green, pterm.LightGreen, a)
}

func Cyan(a any) string {
	return themed(pterm.Cyan, pterm.LightCyan, a)
}

func Magenta(a any) string {
	return themed(pterm.Magenta, pterm.LightMagenta, a)
}

func Blue(a any) string {
	return themed(pterm.Blue, pterm.LightBlue, a)
}

func Red(a any) string {
	return themed(pterm.Red, pterm.LightRed, a)
}

// Highlight renders a in the strongest foreground colour of the theme.
func Highlight(a any) string {
	return themed(pterm.Black, pterm.LightWhite, a)
}
