package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/pipeline"
)

// Summary rendering constants.
const (
	summaryBoxWidth = 44
	summaryBarWidth = 20
	percentScale    = 100
)

// boxBorderColor returns the Lip Gloss color used for box borders.
func boxBorderColor() lipgloss.Color { return lipgloss.Color("240") }

// boxTitleColor returns the Lip Gloss color used for box titles.
func boxTitleColor() lipgloss.Color { return lipgloss.Color("39") }

// labelColor maps a sentiment label to its bar color.
func labelColor(l nlp.Label) lipgloss.Color {
	switch l {
	case nlp.Positive:
		return lipgloss.Color("42")
	case nlp.Negative:
		return lipgloss.Color("196")
	default:
		return lipgloss.Color("245")
	}
}

// isWriterTerminal reports whether w is a terminal file.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// RenderSummary writes the sentiment distribution of a run to w: a styled
// box on a terminal, plain aligned text otherwise.
func RenderSummary(w io.Writer, res *pipeline.Result) error {
	if res == nil {
		return nil
	}
	if isWriterTerminal(w) {
		return renderStyledSummary(w, res)
	}
	return renderPlainSummary(w, res)
}

func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * percentScale / float64(total)
}

func renderPlainSummary(w io.Writer, res *pipeline.Result) error {
	p := message.NewPrinter(language.English)
	s := res.Stats

	var b strings.Builder
	b.WriteString("SENTIMENT SUMMARY\n")
	b.WriteString("=================\n")
	b.WriteString(p.Sprintf("%-14s %10d\n", "Rows read", s.Input))
	b.WriteString(p.Sprintf("%-14s %10d\n", "Rows dropped", s.Dropped))
	b.WriteString(p.Sprintf("%-14s %10d\n", "Rows labelled", s.Output))
	b.WriteString(p.Sprintf("%-14s %10d\n", "Batches", res.Batches))
	b.WriteString("\n")
	for _, l := range nlp.Labels() {
		n := s.Count(l)
		b.WriteString(p.Sprintf("%-14s %10d %6.1f%%\n", l, n, percentOf(n, s.Output)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderStyledSummary(w io.Writer, res *pipeline.Result) error {
	p := message.NewPrinter(language.English)
	s := res.Stats

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(boxTitleColor())

	labelStyle := lipgloss.NewStyle().Bold(true).Width(10)

	borderStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(boxBorderColor()).
		Padding(0, 1).
		Width(summaryBoxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render("SENTIMENT SUMMARY"))
	content.WriteString("\n\n")
	content.WriteString(p.Sprintf("Rows: %d read, %d dropped, %d labelled\n\n", s.Input, s.Dropped, s.Output))

	for _, l := range nlp.Labels() {
		n := s.Count(l)
		pct := percentOf(n, s.Output)
		filled := int(pct * summaryBarWidth / percentScale)
		bar := lipgloss.NewStyle().Foreground(labelColor(l)).Render(strings.Repeat("█", filled)) +
			strings.Repeat("░", summaryBarWidth-filled)
		content.WriteString(labelStyle.Render(l.String()))
		content.WriteString(bar)
		content.WriteString(p.Sprintf(" %5.1f%%\n", pct))
	}

	_, err := fmt.Fprintln(w, borderStyle.Render(strings.TrimRight(content.String(), "\n")))
	return err
}

// redactTarget hides the password of a DSN-style export target.
func redactTarget(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.User == nil {
		return target
	}
	return u.Redacted()
}
