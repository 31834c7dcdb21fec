package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anatolykoptev/go_connect/internal/connections"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
)

// renderText formats a run for the terminal.
func renderText(res *connections.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%d connection(s)", len(res.Connections))))
	fmt.Fprintf(&b, "%s\n\n", labelStyle.Render(fmt.Sprintf("run %s · %d pass(es) · broaden level %d · %d candidates seen",
		res.RunID, res.Iterations, res.BroadenLevel, res.PoolSize)))
	for i, c := range res.Connections {
		b.WriteString(cardStyle.Render(renderConnection(i+1, c)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderConnection(n int, c connections.Connection) string {
	var lines []string
	head := fmt.Sprintf("%d. %s", n, c.Name())
	switch {
	case c.Person != nil && c.Person.CurrentRole != "":
		head += " (" + c.Person.CurrentRole
		if c.Person.Company != "" {
			head += ", " + c.Person.Company
		}
		head += ")"
	case c.Program != nil && c.Program.Organization != "":
		head += " (" + c.Program.Organization + ")"
	}
	lines = append(lines, titleStyle.Render(head))
	lines = append(lines, labelStyle.Render(string(c.Type)+" · "+c.URL()))
	if len(c.DirectMatches) > 0 {
		lines = append(lines, matchStyle.Render("shared: "+strings.Join(c.DirectMatches, ", ")))
	}
	if c.GoalAlignment != "" {
		lines = append(lines, "alignment: "+c.GoalAlignment)
	}
	if c.AIConnectionReason != "" {
		lines = append(lines, "", c.AIConnectionReason)
	}
	if c.AIOutreachMessage != nil && *c.AIOutreachMessage != "" {
		lines = append(lines, "", labelStyle.Render("outreach:"), *c.AIOutreachMessage)
	}
	return strings.Join(lines, "\n")
}
