package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/waypoint/internal/planner"
	"github.com/emilianohg/waypoint/internal/tui/screens"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenProjects
	ScreenMilestones
	ScreenTasks
)

type App struct {
	store         *planner.Store
	currentScreen Screen
	width         int
	height        int

	// Screen models
	dashboard  *screens.Dashboard
	projects   *screens.Projects
	milestones *screens.Milestones
	tasks      *screens.Tasks
}

func NewApp(store *planner.Store) *App {
	return &App{
		store:         store,
		currentScreen: ScreenDashboard,
	}
}

func (a *App) Init() tea.Cmd {
	a.dashboard = screens.NewDashboard(a.store)
	a.projects = screens.NewProjects(a.store)
	a.milestones = screens.NewMilestones(a.store)
	a.tasks = screens.NewTasks(a.store)

	return a.dashboard.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenDashboard {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.projects.SetSize(msg.Width, msg.Height)
		a.milestones.SetSize(msg.Width, msg.Height)
		a.tasks.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	// Update current screen
	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenProjects:
		cmd = a.projects.Update(msg)
	case ScreenMilestones:
		cmd = a.milestones.Update(msg)
	case ScreenTasks:
		cmd = a.tasks.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "dashboard":
		a.currentScreen = ScreenDashboard
		return a, a.dashboard.Init()
	case "projects":
		a.currentScreen = ScreenProjects
		return a, a.projects.Init()
	case "milestones":
		a.currentScreen = ScreenMilestones
		a.milestones.SetProject(msg.ProjectID)
		return a, a.milestones.Init()
	case "tasks":
		a.currentScreen = ScreenTasks
		a.tasks.SetMilestone(msg.ProjectID, msg.MilestoneID)
		return a, a.tasks.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenProjects:
		content = a.projects.View()
	case ScreenMilestones:
		content = a.milestones.View()
	case ScreenTasks:
		content = a.tasks.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(store *planner.Store) error {
	app := NewApp(store)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
