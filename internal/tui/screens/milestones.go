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

type milestonesMode int

const (
	milestonesModeList milestonesMode = iota
	milestonesModeAdd
	milestonesModeEdit
	milestonesModeDue
	milestonesModeStakeholders
	milestonesModeDelete
)

var milestonePrompts = map[milestonesMode]string{
	milestonesModeAdd:          "New milestone title:",
	milestonesModeEdit:         "Edit milestone title:",
	milestonesModeDue:          "Due date (empty clears it):",
	milestonesModeStakeholders: "Stakeholders, comma separated:",
}

type Milestones struct {
	store  *planner.Store
	width  int
	height int

	projectID string
	project   *models.Project
	cursor    int
	mode      milestonesMode
	input     textinput.Model
	loading   bool
	err       error
	message   string
}

func NewMilestones(store *planner.Store) *Milestones {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return &Milestones{
		store: store,
		input: ti,
	}
}

func (m *Milestones) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Milestones) SetProject(projectID string) {
	if projectID != m.projectID {
		m.cursor = 0
	}
	m.projectID = projectID
}

type milestonesDataMsg struct {
	project *models.Project
	err     error
}

func (m *Milestones) Init() tea.Cmd {
	m.loading = true
	m.mode = milestonesModeList
	m.message = ""
	return m.loadData
}

func (m *Milestones) loadData() tea.Msg {
	project, err := m.store.GetProject(context.Background(), m.projectID)
	return milestonesDataMsg{project: project, err: err}
}

func (m *Milestones) milestones() []models.Milestone {
	if m.project == nil {
		return nil
	}
	return m.project.Milestones
}

func (m *Milestones) Update(msg tea.Msg) tea.Cmd {
	if _, ok := milestonePrompts[m.mode]; ok {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter":
				return m.handleInputKey()
			case "esc":
				m.mode = milestonesModeList
				m.input.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch msg := msg.(type) {
	case milestonesDataMsg:
		m.loading = false
		m.err = msg.err
		m.project = msg.project
		if n := len(m.milestones()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return nil

	case RefreshMsg:
		return m.Init()

	case tea.KeyMsg:
		switch m.mode {
		case milestonesModeList:
			return m.handleListKey(msg)
		case milestonesModeDelete:
			return m.handleDeleteKey(msg)
		}
	}

	return nil
}

func (m *Milestones) handleListKey(msg tea.KeyMsg) tea.Cmd {
	items := m.milestones()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "a":
		if m.project != nil {
			m.startInput(milestonesModeAdd, "")
		}
	case "e":
		if len(items) > 0 {
			m.startInput(milestonesModeEdit, items[m.cursor].Title)
		}
	case "u":
		if len(items) > 0 {
			m.startInput(milestonesModeDue, items[m.cursor].DueDate)
		}
	case "s":
		if len(items) > 0 {
			m.startInput(milestonesModeStakeholders, strings.Join(items[m.cursor].Stakeholders, ", "))
		}
	case "p":
		if len(items) > 0 {
			next := cycle(milestonePriorities, items[m.cursor].Priority)
			m.update(planner.MilestonePatch{Priority: &next}, fmt.Sprintf("Priority: %s", orDash(string(next))))
			return m.loadData
		}
	case "d":
		if len(items) > 0 {
			m.mode = milestonesModeDelete
		}
	case "enter":
		if len(items) > 0 {
			return NavigateWithMilestone("tasks", m.projectID, items[m.cursor].ID)
		}
	case "q", "esc":
		return Navigate("projects")
	}
	return nil
}

func (m *Milestones) startInput(mode milestonesMode, value string) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Focus()
}

func (m *Milestones) update(patch planner.MilestonePatch, message string) {
	id := m.milestones()[m.cursor].ID
	if _, err := m.store.UpdateMilestone(context.Background(), m.projectID, id, patch); err != nil {
		m.err = err
		return
	}
	m.message = message
}

func (m *Milestones) handleInputKey() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	mode := m.mode
	m.mode = milestonesModeList
	m.input.Blur()

	switch mode {
	case milestonesModeAdd:
		if value == "" {
			return nil
		}
		in := planner.MilestoneInput{Title: value, Priority: models.MilestoneMedium}
		if _, err := m.store.CreateMilestone(context.Background(), m.projectID, in); err != nil {
			m.err = err
		} else {
			m.message = fmt.Sprintf("Created milestone: %s", value)
		}
	case milestonesModeEdit:
		if value == "" {
			return nil
		}
		m.update(planner.MilestonePatch{Title: &value}, fmt.Sprintf("Updated milestone: %s", value))
	case milestonesModeDue:
		m.update(planner.MilestonePatch{DueDate: &value}, "Updated due date")
	case milestonesModeStakeholders:
		people := strings.Split(value, ",")
		m.update(planner.MilestonePatch{Stakeholders: &people}, "Updated stakeholders")
	}
	return m.loadData
}

func (m *Milestones) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		ms := m.milestones()[m.cursor]
		if _, err := m.store.DeleteMilestone(context.Background(), m.projectID, ms.ID); err != nil {
			m.err = err
		} else {
			m.message = fmt.Sprintf("Deleted milestone: %s", ms.Title)
		}
		m.mode = milestonesModeList
		return m.loadData

	case "n", "N", "esc":
		m.mode = milestonesModeList
	}
	return nil
}

func (m *Milestones) View() string {
	var b strings.Builder

	title := "MILESTONES"
	if m.project != nil {
		title = fmt.Sprintf("MILESTONES - %s", m.project.Title)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		m.err = nil
	}

	if m.message != "" {
		b.WriteString(SuccessStyle.Render(m.message))
		b.WriteString("\n\n")
	}

	if prompt, ok := milestonePrompts[m.mode]; ok {
		b.WriteString(prompt + "\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	items := m.milestones()
	if m.mode == milestonesModeDelete && len(items) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete milestone '%s' and its tasks? (y/n)",
			items[m.cursor].Title,
		)))
		b.WriteString("\n")
		return b.String()
	}

	if len(items) == 0 {
		b.WriteString(DimStyle.Render("No milestones yet."))
		b.WriteString("\n\n")
	} else {
		for i, ms := range items {
			cursor := "  "
			style := NormalStyle
			if i == m.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			done := 0
			for _, t := range ms.Tasks {
				if t.Status == models.StatusCompleted {
					done++
				}
			}
			line := fmt.Sprintf("%s%s %s",
				cursor,
				ms.Title,
				DimStyle.Render(fmt.Sprintf("(priority %s, due %s, %d/%d tasks)",
					orDash(string(ms.Priority)), orDash(ms.DueDate), done, len(ms.Tasks))),
			)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		if people := items[m.cursor].Stakeholders; len(people) > 0 {
			b.WriteString("\n")
			b.WriteString(DimStyle.Render("Stakeholders: " + strings.Join(people, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[a] Add  [e] Edit  [p] Priority  [u] Due  [s] Stakeholders  [d] Delete  [enter] Tasks  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
