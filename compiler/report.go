package compiler

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	reportPassStyle  = lipgloss.NewStyle().Bold(true)
	reportWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	reportErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	reportOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// Report renders a Manager run's outcome for the terminal: the pass list in
// registration order, any warnings ctx accumulated, and the failing pass
// (if any) highlighted in red.
func Report(mgr *Manager, failedPass string, ctx *Context) string {
	var b strings.Builder
	for _, p := range mgr.Passes() {
		switch {
		case p.Name() == failedPass:
			fmt.Fprintln(&b, reportErrorStyle.Render(fmt.Sprintf("✗ %s", p.Name())))
		default:
			fmt.Fprintln(&b, reportPassStyle.Render(fmt.Sprintf("✓ %s", p.Name())))
		}
	}
	for _, w := range ctx.Warnings {
		fmt.Fprintln(&b, reportWarnStyle.Render("warning: "+w))
	}
	if failedPass != "" {
		fmt.Fprintln(&b, reportErrorStyle.Render(fmt.Sprintf("compilation aborted at %q: %v", failedPass, ctx.Errors)))
	} else {
		fmt.Fprintln(&b, reportOKStyle.Render("compilation succeeded"))
	}
	return b.String()
}
