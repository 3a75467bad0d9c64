package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickloop/internal/core"
)

// Escape sequences written around and between frames.
const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	enterAlt    = "\x1b[?1049h\x1b[?25l"
	leaveAlt    = "\x1b[?25h\x1b[?1049l"
)

// Palette maps core.Color to lipgloss styles for one renderer.
type Palette map[core.Color]lipgloss.Style

// NewPalette builds the color styles for r. A nil renderer uses the
// default lipgloss renderer.
func NewPalette(r *lipgloss.Renderer) Palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Palette{
		core.ColorDefault: r.NewStyle(),
		core.ColorRed:     fg("1"),
		core.ColorGreen:   fg("2"),
		core.ColorYellow:  fg("3"),
		core.ColorBlue:    fg("4"),
		core.ColorMagenta: fg("5"),
		core.ColorCyan:    fg("6"),
		core.ColorWhite:   fg("7"),
		core.ColorOrange:  fg("208"),
		core.ColorGray:    fg("245"),
	}
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
// Rows are separated by CRLF since raw mode disables output translation.
func (p Palette) RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + 2*s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteString("\r\n")
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			// Collect consecutive cells with same color
			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := p[startColor]
			if !ok {
				style = p[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}
