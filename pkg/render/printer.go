package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

var palette = map[Color]lipgloss.Color{
	ColorSuccess: lipgloss.Color("#2e7d32"),
	ColorInfo:    lipgloss.Color("#0288d1"),
	ColorWarning: lipgloss.Color("#ed6c02"),
	ColorError:   lipgloss.Color("#d32f2f"),
	ColorPrimary: lipgloss.Color("#1976d2"),
}

// Printer writes cards to a terminal
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewPrinter creates a Printer. Colors are enabled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
	}
}

// Print writes the header and every card. Nothing is written for zero cards.
func (p *Printer) Print(cards []Card) {
	if len(cards) == 0 {
		return
	}

	header := p.renderer.NewStyle().Bold(true).Render(fmt.Sprintf("Detected Actions (%d)", len(cards)))
	fmt.Fprintf(p.w, "%s\n\n", header)
	for _, card := range cards {
		fmt.Fprintf(p.w, "%s\n\n", p.card(card))
	}
}

// PrintRaw writes the unparsed response under a heading
func (p *Printer) PrintRaw(raw string) {
	if raw == "" {
		return
	}
	title := p.renderer.NewStyle().Bold(true).Render("Raw Response:")
	body := p.renderer.NewStyle().Faint(true).Render(raw)
	fmt.Fprintf(p.w, "%s\n%s\n\n", title, body)
}

func (p *Printer) card(c Card) string {
	color := palette[c.Color]
	chip := p.renderer.NewStyle().Bold(true).Foreground(color).Render("[" + c.Label + "]")
	title := p.renderer.NewStyle().Bold(true).Render(c.Title)

	lines := []string{chip + " " + title}
	if c.Quote != "" {
		lines = append(lines, p.renderer.NewStyle().Italic(true).Render(`"`+c.Quote+`"`))
	}

	if len(c.Fields) > 0 {
		width := 0
		for _, f := range c.Fields {
			width = max(width, len(f.Label))
		}
		label := p.renderer.NewStyle().Faint(true).Width(width + 2)
		for _, f := range c.Fields {
			lines = append(lines, label.Render(f.Label)+f.Value)
		}
	}

	for _, b := range c.Bars {
		lines = append(lines, p.bar(b))
	}

	lines = append(lines, p.renderer.NewStyle().Faint(true).Render(c.Time))

	box := p.renderer.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(color).
		PaddingLeft(1)
	return box.Render(strings.Join(lines, "\n"))
}

func (p *Printer) bar(b Bar) string {
	filled := int(math.Round(b.Percent / 100 * barWidth))
	fill := p.renderer.NewStyle().Foreground(palette[b.Color]).Render(strings.Repeat("█", filled))
	rest := p.renderer.NewStyle().Faint(true).Render(strings.Repeat("░", barWidth-filled))
	label := p.renderer.NewStyle().Width(11).Render(b.Label)
	return fmt.Sprintf("%s%s%s %s", label, fill, rest, b.Value)
}
