package lib

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Palette maps report roles to colours. The zero value prints plain text.
type Palette struct {
	Enabled bool
	colors  map[string]*color.Color
}

// Palette roles
const (
	RoleTitle     = "title"
	RoleConfirmed = "confirmed"
	RoleTentative = "tentative"
	RoleSuccess   = "success"
	RoleInfo      = "info"
	RoleMuted     = "muted"
)

// DefaultPaletteColors is used for any role missing from the configured mapping
var DefaultPaletteColors = map[string]string{
	RoleTitle:     "cyan",
	RoleConfirmed: "red",
	RoleTentative: "yellow",
	RoleSuccess:   "green",
	RoleInfo:      "blue",
	RoleMuted:     "white",
}

var colorNames = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"purple":  color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// NewPalette builds a palette from role -> colour name pairs. Unknown colour names fall back to the default
// for that role.
func NewPalette(enabled bool, mapping map[string]string) Palette {
	p := Palette{Enabled: enabled, colors: make(map[string]*color.Color)}
	for role, name := range DefaultPaletteColors {
		if configured, ok := mapping[role]; ok {
			if _, known := colorNames[strings.ToLower(configured)]; known {
				name = configured
			}
		}
		c := color.New(colorNames[strings.ToLower(name)])
		if role == RoleTitle || role == RoleConfirmed {
			c.Add(color.Bold)
		}
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		p.colors[role] = c
	}
	return p
}

// Paint returns text coloured for role, or text unchanged when the palette is disabled
func (p Palette) Paint(role, text string) string {
	if !p.Enabled {
		return text
	}
	c, ok := p.colors[role]
	if !ok {
		return text
	}
	return c.Sprint(text)
}

// ColorEnabled decides whether output written to out should be coloured
func ColorEnabled(configured bool, noColor bool, out *os.File) bool {
	if !configured || noColor {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return out != nil && term.IsTerminal(int(out.Fd()))
}
