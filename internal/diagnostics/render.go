package diagnostics

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	nameStyle  = lipgloss.NewStyle().Width(18)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(9)
)

var statusLabels = map[Status]string{
	StatusPass: passStyle.Render("[ OK ]"),
	StatusWarn: warnStyle.Render("[WARN]"),
	StatusFail: failStyle.Render("[FAIL]"),
}

// Render formats the report for a terminal.
func Render(r Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("transcribe-latest doctor"))
	b.WriteString("\n\n")
	for _, it := range r.Items {
		b.WriteString(statusLabels[it.Status])
		b.WriteString("  ")
		b.WriteString(nameStyle.Render(it.Name))
		b.WriteString(it.Message)
		b.WriteString("\n")
		if it.Hint != "" && it.Status != StatusPass {
			b.WriteString(hintStyle.Render(it.Hint))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	if r.HasFailures {
		b.WriteString(failStyle.Render("Some checks failed."))
	} else {
		b.WriteString(passStyle.Render("All checks passed."))
	}
	b.WriteString("\n")
	return b.String()
}
