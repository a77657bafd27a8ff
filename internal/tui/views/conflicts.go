package views

import (
	"fmt"

	"penumbra/internal/core"

	"github.com/charmbracelet/lipgloss"
)

// maxPanePaths caps the paths listed per conflicting mod
const maxPanePaths = 5

// RenderConflicts draws the conflict pane for one mod
func RenderConflicts(mod string, conflicts []core.ModConflicts, width int) string {
	paneStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1).
		Width(width)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69"))

	wonStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	lostStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tieStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	output := titleStyle.Render("Conflicts") + "\n"
	if mod == "" {
		return paneStyle.Render(output)
	}
	if len(conflicts) == 0 {
		output += pathStyle.Render("None") + "\n"
		return paneStyle.Render(output)
	}

	for _, c := range conflicts {
		var status string
		switch {
		case !c.Solved:
			status = tieStyle.Render("tie")
		case c.HasPriority:
			status = wonStyle.Render("wins")
		default:
			status = lostStyle.Render("loses")
		}
		output += fmt.Sprintf("%s %s\n", status, c.Other)

		for i, p := range c.Paths {
			if i == maxPanePaths {
				output += pathStyle.Render(fmt.Sprintf("  … %d more", len(c.Paths)-maxPanePaths)) + "\n"
				break
			}
			output += pathStyle.Render("  "+p.String()) + "\n"
		}
		if n := len(c.Manipulations); n > 0 {
			output += pathStyle.Render(fmt.Sprintf("  %d manipulations", n)) + "\n"
		}
	}
	return paneStyle.Render(output)
}
