package ui

import "fmt"

// ANSI 256-color codes. The palette stays muted so issue listings read
// well on both dark and light terminals.
const (
	colorAccent  = 74  // blue
	colorCommand = 250 // light gray
	colorMuted   = 245 // medium gray
)

var noColor bool

// ForceNoColor disables all styling for the rest of the process.
func ForceNoColor() { noColor = true }

func colorize(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent styles headings and issue ids.
func RenderAccent(s string) string { return colorize(colorAccent, s) }

// RenderCommand styles subcommand names in help output.
func RenderCommand(s string) string { return colorize(colorCommand, s) }

// RenderMuted styles secondary text such as flag descriptions.
func RenderMuted(s string) string { return colorize(colorMuted, s) }
