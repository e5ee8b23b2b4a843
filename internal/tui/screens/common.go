package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/waypoint/internal/models"
)

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen      string
	ProjectID   string
	MilestoneID string
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateWithProject(screen, projectID string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, ProjectID: projectID}
	}
}

func NavigateWithMilestone(screen, projectID, milestoneID string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, ProjectID: projectID, MilestoneID: milestoneID}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// StatusStyle colors a task status the same way on every screen.
func StatusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.StatusCompleted:
		return SuccessStyle
	case models.StatusInProgress:
		return WarningStyle
	default:
		return DimStyle
	}
}

// StatusMark is the one-character marker shown before a task title.
func StatusMark(s models.TaskStatus) string {
	switch s {
	case models.StatusCompleted:
		return "[x]"
	case models.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// cycle returns the value after cur in values, wrapping around. An unknown
// or empty cur yields the first value.
func cycle[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

var (
	milestonePriorities = []models.MilestonePriority{"", models.MilestoneLow, models.MilestoneMedium, models.MilestoneHigh}
	taskPriorities      = []models.TaskPriority{"", models.TaskLow, models.TaskMedium, models.TaskHigh, models.TaskUrgent}
	effortLevels        = []models.EffortLevel{"", models.EffortSmall, models.EffortMedium, models.EffortLarge, models.EffortXLarge}
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
