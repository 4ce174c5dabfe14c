package present

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1).
			Width(80)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// RenderTerminal renders a view for the CLI.
func RenderTerminal(v View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("STX Trader Crew"))
	b.WriteString("\n")
	b.WriteString(successStyle.Render("Analysis complete!"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(usageLine(v)))
	b.WriteString("\n")

	for _, n := range v.Notices {
		b.WriteString(noticeStyle.Render(n))
		b.WriteString("\n")
	}

	for _, w := range v.Widgets {
		b.WriteString(panelStyle.Render(widgetText(w, labelStyle.Render)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPlain renders a view without styling, for chat messages.
func RenderPlain(v View) string {
	var b strings.Builder
	b.WriteString("Analysis complete!\n")
	b.WriteString(usageLine(v))
	b.WriteString("\n")
	for _, n := range v.Notices {
		b.WriteString(n)
		b.WriteString("\n")
	}
	for _, w := range v.Widgets {
		b.WriteString("\n")
		b.WriteString(widgetText(w, func(s ...string) string { return strings.Join(s, " ") }))
		b.WriteString("\n")
	}
	return b.String()
}

func usageLine(v View) string {
	return fmt.Sprintf("Token usage: %s total (%s prompt, %s completion, %s requests)",
		humanize.Comma(int64(v.Usage.TotalTokens)),
		humanize.Comma(int64(v.Usage.PromptTokens)),
		humanize.Comma(int64(v.Usage.CompletionTokens)),
		humanize.Comma(int64(v.Usage.SuccessfulRequests)),
	)
}

func widgetText(w Widget, label func(...string) string) string {
	var b strings.Builder
	switch w.Kind {
	case WidgetRecommendation:
		fmt.Fprintf(&b, "%s: %s", label("Market Recommendation"), w.Text)
	case WidgetBalance:
		fmt.Fprintf(&b, "STX Balance: %s STX", w.STXBalance)
		if len(w.NFTs) > 0 {
			b.WriteString("\n\n")
			b.WriteString(label("NFT Holdings"))
			for _, h := range w.NFTs {
				fmt.Fprintf(&b, "\n%s: %s owned", h.Name, h.Value)
			}
		}
		if len(w.Fungibles) > 0 {
			b.WriteString("\n\n")
			b.WriteString(label("Fungible Token Holdings"))
			for _, h := range w.Fungibles {
				fmt.Fprintf(&b, "\n%s: %s", h.Name, h.Value)
			}
		}
	default:
		fmt.Fprintf(&b, "%s: %s", label(w.Role), w.Text)
	}
	return b.String()
}
