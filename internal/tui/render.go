package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastkit/internal/surface"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	kindColors = map[string]lipgloss.Color{
		"success": lipgloss.Color("10"),
		"error":   lipgloss.Color("9"),
		"loading": lipgloss.Color("11"),
		"none":    lipgloss.Color("8"),
	}

	kindGlyphs = map[string]string{
		"success": "✓",
		"error":   "✗",
		"loading": "◌",
		"none":    "•",
	}
)

// iconGlyph returns the icon drawn for v. A spinning icon uses frame when
// one is given.
func iconGlyph(v view, frame string) string {
	if v.has(surface.ClassIconSpin) && frame != "" {
		return frame
	}
	if g, ok := kindGlyphs[v.content.Kind]; ok {
		return g
	}
	return kindGlyphs["none"]
}

// renderBox draws one toast width cells wide.
func renderBox(v view, width int, icon string) string {
	color, ok := kindColors[v.content.Kind]
	if !ok {
		color = kindColors["none"]
	}

	style := boxStyle.
		BorderForeground(color).
		Width(width - 2)
	if v.has(surface.ClassEntering) || v.has(surface.ClassExiting) {
		style = style.Faint(true)
	}

	iconStyle := lipgloss.NewStyle().Foreground(color)
	body := iconStyle.Render(icon) + " " + headingStyle.Render(v.content.Heading)
	if v.content.Message != "" {
		body += "\n" + messageStyle.Render(v.content.Message)
	}
	return style.Render(body)
}

// compose draws every toast onto a cols x rows canvas.
func compose(views []view, cols, rows int, frame string) string {
	if rows <= 0 {
		return ""
	}

	canvas := make([]string, rows)
	w := boxWidth(cols)
	for _, v := range views {
		box := renderBox(v, w, iconGlyph(v, frame))
		lines := strings.Split(box, "\n")
		r := place(v.position, cols, w, len(lines))
		for i, line := range lines {
			row := r.y + i
			if row < 0 || row >= rows {
				continue
			}
			canvas[row] = strings.Repeat(" ", r.x) + line
		}
	}
	return strings.Join(canvas, "\n")
}
