package poster

import (
	"os"
	"strings"
)

// EnvProtocol overrides protocol detection: "kitty", "sixel" or "none".
const EnvProtocol = "MARQUEE_IMAGE_PROTOCOL"

// Detect returns the best image protocol for the current terminal, or nil
// when images cannot be shown.
func Detect() Protocol {
	switch os.Getenv(EnvProtocol) {
	case "kitty":
		return Kitty{}
	case "sixel":
		return NewSixel()
	case "none":
		return nil
	}

	if IsKittySupported() {
		return Kitty{}
	}
	if IsSixelSupported() {
		return NewSixel()
	}
	return nil
}

// IsKittySupported checks the environment for terminals that speak the
// Kitty graphics protocol.
func IsKittySupported() bool {
	// Contour does not, but may inherit a parent terminal's variables.
	if os.Getenv("CONTOUR_PROFILE") != "" {
		return false
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	if os.Getenv("TERM_PROGRAM") == "WezTerm" {
		return true
	}
	if os.Getenv("GHOSTTY_RESOURCES_DIR") != "" {
		return true
	}
	// KONSOLE_VERSION is like "220401"; support starts at 22.04.
	if version := os.Getenv("KONSOLE_VERSION"); len(version) >= 4 && version[:4] >= "2204" {
		return true
	}
	return strings.Contains(os.Getenv("TERM"), "kitty")
}

// IsSixelSupported checks the environment for Sixel-capable terminals.
func IsSixelSupported() bool {
	term := os.Getenv("TERM")
	switch os.Getenv("TERM_PROGRAM") {
	case "vscode", "mintty", "iTerm.app", "contour":
		return true
	}
	if os.Getenv("CONTOUR_PROFILE") != "" {
		return true
	}
	if term == "foot" || term == "foot-extra" {
		return true
	}
	// xterm only draws sixels when built for it, but it is the best hint
	// left once Kitty has been ruled out.
	return term == "xterm" || strings.HasPrefix(term, "xterm-")
}
