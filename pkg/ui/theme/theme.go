// Package theme provides the visual language of the buffer manager: status
// lines, the minibuffer region, prompts and completion lists.
package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvard/screenstack/pkg/ui/backend"
)

// Theme holds one style per paintable surface.
type Theme struct {
	// Buffer content
	Text backend.Style

	// Per-buffer status rows
	StatusLine        backend.Style
	StatusLineFocused backend.Style

	// Minibuffer region
	Minibuffer backend.Style
	Flash      backend.Style
	Prompt     backend.Style

	// Completion list
	Completion         backend.Style
	CompletionSelected backend.Style
}

// DefaultTheme returns the stock look: white-on-blue status rows, plain
// minibuffer, reverse-video completion selection.
func DefaultTheme() *Theme {
	return &Theme{
		Text: backend.DefaultStyle(),
		StatusLine: backend.DefaultStyle().
			Foreground(backend.ColorWhite).
			Background(backend.ColorBlue),
		StatusLineFocused: backend.DefaultStyle().
			Foreground(backend.ColorBrightWhite).
			Background(backend.ColorBlue).
			Bold(true),
		Minibuffer: backend.DefaultStyle(),
		Flash:      backend.DefaultStyle().Bold(true),
		Prompt:     backend.DefaultStyle(),
		Completion: backend.DefaultStyle(),
		CompletionSelected: backend.DefaultStyle().
			Reverse(true),
	}
}

// Colors is the parsed color configuration applied over the default theme.
// Empty fields keep the default. Values are named colors or "#rrggbb".
type Colors struct {
	StatusFG        string
	StatusBG        string
	FocusedStatusFG string
	FocusedStatusBG string
	FlashFG         string
	FlashBG         string
}

// FromColors builds a theme from the default look plus configured overrides.
func FromColors(c Colors) (*Theme, error) {
	th := DefaultTheme()

	apply := func(style backend.Style, fg, bg string) (backend.Style, error) {
		if fg != "" {
			color, err := ParseColor(fg)
			if err != nil {
				return style, err
			}
			style = style.Foreground(color)
		}
		if bg != "" {
			color, err := ParseColor(bg)
			if err != nil {
				return style, err
			}
			style = style.Background(color)
		}
		return style, nil
	}

	var err error
	if th.StatusLine, err = apply(th.StatusLine, c.StatusFG, c.StatusBG); err != nil {
		return nil, err
	}
	if th.StatusLineFocused, err = apply(th.StatusLineFocused, c.FocusedStatusFG, c.FocusedStatusBG); err != nil {
		return nil, err
	}
	if th.Flash, err = apply(th.Flash, c.FlashFG, c.FlashBG); err != nil {
		return nil, err
	}
	return th, nil
}

var namedColors = map[string]backend.Color{
	"default": backend.ColorDefault,
	"black":   backend.ColorBlack,
	"red":     backend.ColorRed,
	"green":   backend.ColorGreen,
	"yellow":  backend.ColorYellow,
	"blue":    backend.ColorBlue,
	"magenta": backend.ColorMagenta,
	"cyan":    backend.ColorCyan,
	"white":   backend.ColorWhite,
}

// ParseColor resolves a color name or "#rrggbb" literal.
func ParseColor(name string) (backend.Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := namedColors[key]; ok {
		return c, nil
	}
	if bright, ok := strings.CutPrefix(key, "bright"); ok {
		if c, found := namedColors[strings.TrimSpace(bright)]; found && c >= backend.ColorBlack {
			return c + 8, nil
		}
	}
	if hex, ok := strings.CutPrefix(key, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return backend.ColorDefault, fmt.Errorf("bad hex color %q: %w", name, err)
		}
		return backend.ColorRGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	return backend.ColorDefault, fmt.Errorf("unknown color %q", name)
}
