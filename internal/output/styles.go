package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vburojevic/azsam/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Update status styles
	Updated     lipgloss.Style
	WouldUpdate lipgloss.Style
	Failed      lipgloss.Style
	Skipped     lipgloss.Style

	// Component styles
	Tenant       lipgloss.Style
	Subscription lipgloss.Style
	Resource     lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// Picker styles
	Title    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}{
	// Statuses - distinctive colors
	Updated:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green bold
	WouldUpdate: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),             // Cyan
	Failed:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red bold
	Skipped:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),            // Gray

	// Components
	Tenant:       lipgloss.NewStyle().Foreground(lipgloss.Color("142")), // Yellow-green
	Subscription: lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	Resource:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),

	// Summary
	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red

	// Picker
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	Selected: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("39")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// StatusStyle returns the appropriate style for an update status
func StatusStyle(status domain.UpdateStatus) lipgloss.Style {
	switch status {
	case domain.UpdateStatusUpdated:
		return Styles.Updated
	case domain.UpdateStatusWouldUpdate:
		return Styles.WouldUpdate
	case domain.UpdateStatusFailed:
		return Styles.Failed
	case domain.UpdateStatusSkipped:
		return Styles.Skipped
	default:
		return Styles.Value
	}
}

// StatusIndicator returns a styled short status marker
func StatusIndicator(status domain.UpdateStatus) string {
	style := StatusStyle(status)
	switch status {
	case domain.UpdateStatusUpdated:
		return style.Render("OK")
	case domain.UpdateStatusWouldUpdate:
		return style.Render("DRY")
	case domain.UpdateStatusFailed:
		return style.Render("ERR")
	case domain.UpdateStatusSkipped:
		return style.Render("SKP")
	default:
		return style.Render("???")
	}
}

// RunStatusText returns styled status text for a finished run
func RunStatusText(hasFailures bool) string {
	if hasFailures {
		return Styles.Warning.Render("COMPLETED WITH FAILURES")
	}
	return Styles.Success.Render("OK")
}
