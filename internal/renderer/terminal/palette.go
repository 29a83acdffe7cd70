package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/findstorm/internal/config"
)

// Background is the color match highlights are blended over.
const Background = "#1e1e1e"

// Palette holds the styles used to draw a View.
type Palette struct {
	Text         tcell.Style
	Selection    tcell.Style
	AllMatch     tcell.Style
	CurrentMatch tcell.Style
	Overlay      tcell.Style
	Status       tcell.Style
	Error        tcell.Style
}

// NewPalette derives the match styles by blending the find color over the
// background at the configured opacities.
func NewPalette(ui config.UIConfig) (Palette, error) {
	find, err := colorful.Hex(ui.FindColor)
	if err != nil {
		return Palette{}, fmt.Errorf("find color: %w", err)
	}
	bg, _ := colorful.Hex(Background)

	all := bg.BlendRgb(find, ui.AllMatchOpacity).Clamped()
	current := bg.BlendRgb(find, ui.CurrentMatchOpacity).Clamped()

	text := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(toTcell(bg))
	return Palette{
		Text:         text,
		Selection:    text.Reverse(true),
		AllMatch:     text.Background(toTcell(all)).Foreground(contrast(all)),
		CurrentMatch: text.Background(toTcell(current)).Foreground(contrast(current)).Bold(true),
		Overlay:      tcell.StyleDefault.Background(toTcell(find)).Foreground(contrast(find)),
		Status:       tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite),
		Error:        tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite),
	}, nil
}

// DefaultPalette returns the palette for the default configuration.
func DefaultPalette() Palette {
	p, _ := NewPalette(config.Default().UI)
	return p
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// contrast picks black or white text for background c.
func contrast(c colorful.Color) tcell.Color {
	if l, _, _ := c.Lab(); l > 0.6 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}
