package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/planner"
)

type projectsMode int

const (
	projectsModeList projectsMode = iota
	projectsModeAdd
	projectsModeEdit
	projectsModeDescribe
	projectsModeDelete
)

type Projects struct {
	store  *planner.Store
	width  int
	height int

	projects []models.Project
	cursor   int
	mode     projectsMode
	input    textinput.Model
	loading  bool
	err      error
	message  string
}

func NewProjects(store *planner.Store) *Projects {
	ti := textinput.New()
	ti.Placeholder = "Project title"
	ti.CharLimit = 100
	ti.Width = 40

	return &Projects{
		store: store,
		input: ti,
	}
}

func (p *Projects) SetSize(width, height int) {
	p.width = width
	p.height = height
}

type projectsDataMsg struct {
	projects []models.Project
	err      error
}

func (p *Projects) Init() tea.Cmd {
	p.loading = true
	p.mode = projectsModeList
	p.message = ""
	return p.loadData
}

func (p *Projects) loadData() tea.Msg {
	projects, err := p.store.ListProjects(context.Background())
	return projectsDataMsg{projects: projects, err: err}
}

func (p *Projects) inputMode() bool {
	return p.mode == projectsModeAdd || p.mode == projectsModeEdit || p.mode == projectsModeDescribe
}

func (p *Projects) Update(msg tea.Msg) tea.Cmd {
	// In input mode, pass messages to text input first
	if p.inputMode() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter":
				return p.handleInputKey()
			case "esc":
				p.mode = projectsModeList
				p.input.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.loading = false
		p.err = msg.err
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return nil

	case RefreshMsg:
		return p.Init()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return nil
}

func (p *Projects) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch p.mode {
	case projectsModeList:
		return p.handleListKey(msg)
	case projectsModeDelete:
		return p.handleDeleteKey(msg)
	}
	return nil
}

func (p *Projects) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case "a":
		p.startInput(projectsModeAdd, "")
	case "e":
		if len(p.projects) > 0 {
			p.startInput(projectsModeEdit, p.projects[p.cursor].Title)
		}
	case "D":
		if len(p.projects) > 0 {
			p.startInput(projectsModeDescribe, p.projects[p.cursor].Description)
		}
	case "d":
		if len(p.projects) > 0 {
			p.mode = projectsModeDelete
		}
	case "enter":
		if len(p.projects) > 0 {
			return NavigateWithProject("milestones", p.projects[p.cursor].ID)
		}
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (p *Projects) startInput(mode projectsMode, value string) {
	p.mode = mode
	p.input.SetValue(value)
	p.input.Focus()
}

func (p *Projects) handleInputKey() tea.Cmd {
	ctx := context.Background()
	value := strings.TrimSpace(p.input.Value())
	mode := p.mode
	p.mode = projectsModeList
	p.input.Blur()

	if value == "" && mode != projectsModeDescribe {
		return nil
	}

	switch mode {
	case projectsModeAdd:
		if _, err := p.store.CreateProject(ctx, planner.ProjectInput{Title: value}); err != nil {
			p.err = err
		} else {
			p.message = fmt.Sprintf("Created project: %s", value)
		}
	case projectsModeEdit:
		if _, err := p.store.UpdateProject(ctx, p.projects[p.cursor].ID, planner.ProjectPatch{Title: &value}); err != nil {
			p.err = err
		} else {
			p.message = fmt.Sprintf("Updated project: %s", value)
		}
	case projectsModeDescribe:
		if _, err := p.store.UpdateProject(ctx, p.projects[p.cursor].ID, planner.ProjectPatch{Description: &value}); err != nil {
			p.err = err
		} else {
			p.message = "Updated description"
		}
	}
	return p.loadData
}

func (p *Projects) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		title := p.projects[p.cursor].Title
		if _, err := p.store.DeleteProject(context.Background(), p.projects[p.cursor].ID); err != nil {
			p.err = err
		} else {
			p.message = fmt.Sprintf("Deleted project: %s", title)
		}
		p.mode = projectsModeList
		return p.loadData

	case "n", "N", "esc":
		p.mode = projectsModeList
	}
	return nil
}

func (p *Projects) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("PROJECTS"))
	b.WriteString("\n\n")

	if p.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if p.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", p.err)))
		b.WriteString("\n\n")
		p.err = nil
	}

	if p.message != "" {
		b.WriteString(SuccessStyle.Render(p.message))
		b.WriteString("\n\n")
	}

	// Input modes
	if p.inputMode() {
		switch p.mode {
		case projectsModeAdd:
			b.WriteString("New project title:\n")
		case projectsModeEdit:
			b.WriteString("Edit project title:\n")
		case projectsModeDescribe:
			b.WriteString("Project description (empty clears it):\n")
		}
		b.WriteString(p.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	if p.mode == projectsModeDelete && len(p.projects) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete project '%s' with all its milestones and tasks? (y/n)",
			p.projects[p.cursor].Title,
		)))
		b.WriteString("\n")
		return b.String()
	}

	// List mode
	if len(p.projects) == 0 {
		b.WriteString(DimStyle.Render("No projects yet."))
		b.WriteString("\n\n")
	} else {
		for i, proj := range p.projects {
			cursor := "  "
			style := NormalStyle
			if i == p.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			done, total := projectProgress(proj)
			line := fmt.Sprintf("%s%s %s",
				cursor,
				proj.Title,
				DimStyle.Render(fmt.Sprintf("(%d milestones, %d/%d tasks)", len(proj.Milestones), done, total)),
			)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		if desc := p.projects[p.cursor].Description; desc != "" {
			b.WriteString("\n")
			b.WriteString(DimStyle.Render(desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[a] Add  [e] Edit  [D] Describe  [d] Delete  [enter] Milestones  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
