// Package ui colors the CLI's help and listing output.
package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout should get ANSI styling.
// Precedence: NO_COLOR, then CLICOLOR_FORCE, then CLICOLOR, then TTY
// detection.
func ShouldUseColor() bool {
	// https://no-color.org: any non-empty value disables.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
