package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/planner"
)

type Dashboard struct {
	store  *planner.Store
	width  int
	height int

	summary  models.Summary
	projects []models.Project
	loading  bool
	err      error
}

func NewDashboard(store *planner.Store) *Dashboard {
	return &Dashboard{
		store:   store,
		loading: true,
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

type dashboardDataMsg struct {
	summary  models.Summary
	projects []models.Project
	err      error
}

func (d *Dashboard) Init() tea.Cmd {
	d.loading = true
	return d.loadData
}

func (d *Dashboard) loadData() tea.Msg {
	ctx := context.Background()

	summary, err := d.store.Summary(ctx)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	projects, err := d.store.ListProjects(ctx)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	return dashboardDataMsg{summary: summary, projects: projects}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.loading = false
		d.err = msg.err
		d.summary = msg.summary
		d.projects = msg.projects
		return nil

	case RefreshMsg:
		return d.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "p", "enter":
			return Navigate("projects")
		case "r":
			return d.Init()
		}
	}

	return nil
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("WAYPOINT"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Projects, milestones and tasks"))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", d.err)))
		b.WriteString("\n")
		return b.String()
	}

	s := d.summary
	statsContent := fmt.Sprintf(
		"Projects: %d   Milestones: %d   Tasks: %d\n%s  %s  %s",
		s.Projects, s.Milestones, s.Tasks,
		DimStyle.Render(fmt.Sprintf("not started %d", s.ByStatus[models.StatusNotStarted])),
		WarningStyle.Render(fmt.Sprintf("in progress %d", s.ByStatus[models.StatusInProgress])),
		SuccessStyle.Render(fmt.Sprintf("completed %d", s.ByStatus[models.StatusCompleted])),
	)
	b.WriteString(BoxStyle.Render(statsContent))
	b.WriteString("\n\n")

	if len(d.projects) > 0 {
		b.WriteString(SubtitleStyle.Render("Projects"))
		b.WriteString("\n")
		for _, p := range d.projects {
			done, total := projectProgress(p)
			b.WriteString(fmt.Sprintf("  %s - %d milestones, %d/%d tasks done\n",
				NormalStyle.Render(p.Title),
				len(p.Milestones),
				done,
				total,
			))
		}
	} else {
		b.WriteString(DimStyle.Render("No projects yet. Press 'p' to create one."))
	}

	b.WriteString("\n")

	help := "[p] Projects  [r] Reload  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func projectProgress(p models.Project) (done, total int) {
	for _, m := range p.Milestones {
		for _, t := range m.Tasks {
			total++
			if t.Status == models.StatusCompleted {
				done++
			}
		}
	}
	return done, total
}
