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

type tasksMode int

const (
	tasksModeList tasksMode = iota
	tasksModeAdd
	tasksModeEdit
	tasksModeAssign
	tasksModeDelete
)

var taskPrompts = map[tasksMode]string{
	tasksModeAdd:    "New task title:",
	tasksModeEdit:   "Edit task title:",
	tasksModeAssign: "Assigned to (empty clears it):",
}

type Tasks struct {
	store  *planner.Store
	width  int
	height int

	projectID   string
	milestoneID string
	project     *models.Project
	milestone   *models.Milestone
	cursor      int
	mode        tasksMode
	input       textinput.Model
	loading     bool
	err         error
	message     string
}

func NewTasks(store *planner.Store) *Tasks {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return &Tasks{
		store: store,
		input: ti,
	}
}

func (t *Tasks) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *Tasks) SetMilestone(projectID, milestoneID string) {
	if milestoneID != t.milestoneID {
		t.cursor = 0
	}
	t.projectID = projectID
	t.milestoneID = milestoneID
}

type tasksDataMsg struct {
	project   *models.Project
	milestone *models.Milestone
	err       error
}

func (t *Tasks) Init() tea.Cmd {
	t.loading = true
	t.mode = tasksModeList
	t.message = ""
	return t.loadData
}

func (t *Tasks) loadData() tea.Msg {
	project, err := t.store.GetProject(context.Background(), t.projectID)
	if err != nil {
		return tasksDataMsg{err: err}
	}
	for i := range project.Milestones {
		if project.Milestones[i].ID == t.milestoneID {
			return tasksDataMsg{project: project, milestone: &project.Milestones[i]}
		}
	}
	return tasksDataMsg{project: project, err: &planner.NotFoundError{Kind: planner.KindMilestone, ID: t.milestoneID}}
}

func (t *Tasks) tasks() []models.Task {
	if t.milestone == nil {
		return nil
	}
	return t.milestone.Tasks
}

func (t *Tasks) Update(msg tea.Msg) tea.Cmd {
	if _, ok := taskPrompts[t.mode]; ok {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter":
				return t.handleInputKey()
			case "esc":
				t.mode = tasksModeList
				t.input.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return cmd
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.loading = false
		t.err = msg.err
		t.project = msg.project
		t.milestone = msg.milestone
		if n := len(t.tasks()); t.cursor >= n {
			t.cursor = max(0, n-1)
		}
		return nil

	case RefreshMsg:
		return t.Init()

	case tea.KeyMsg:
		switch t.mode {
		case tasksModeList:
			return t.handleListKey(msg)
		case tasksModeDelete:
			return t.handleDeleteKey(msg)
		}
	}

	return nil
}

func (t *Tasks) handleListKey(msg tea.KeyMsg) tea.Cmd {
	items := t.tasks()
	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(items)-1 {
			t.cursor++
		}
	case "a":
		if t.milestone != nil {
			t.startInput(tasksModeAdd, "")
		}
	case "e":
		if len(items) > 0 {
			t.startInput(tasksModeEdit, items[t.cursor].Title)
		}
	case "r":
		if len(items) > 0 {
			t.startInput(tasksModeAssign, items[t.cursor].AssignedResource)
		}
	case "s", " ":
		if len(items) > 0 {
			next := items[t.cursor].Status.Next()
			t.update(planner.TaskPatch{Status: &next}, fmt.Sprintf("Status: %s", next))
			return t.loadData
		}
	case "p":
		if len(items) > 0 {
			next := cycle(taskPriorities, items[t.cursor].Priority)
			t.update(planner.TaskPatch{Priority: &next}, fmt.Sprintf("Priority: %s", orDash(string(next))))
			return t.loadData
		}
	case "f":
		if len(items) > 0 {
			next := cycle(effortLevels, items[t.cursor].EffortLevel)
			t.update(planner.TaskPatch{EffortLevel: &next}, fmt.Sprintf("Effort: %s", orDash(string(next))))
			return t.loadData
		}
	case "d":
		if len(items) > 0 {
			t.mode = tasksModeDelete
		}
	case "q", "esc":
		return NavigateWithProject("milestones", t.projectID)
	}
	return nil
}

func (t *Tasks) startInput(mode tasksMode, value string) {
	t.mode = mode
	t.input.SetValue(value)
	t.input.Focus()
}

func (t *Tasks) update(patch planner.TaskPatch, message string) {
	id := t.tasks()[t.cursor].ID
	if _, err := t.store.UpdateTask(context.Background(), t.projectID, t.milestoneID, id, patch); err != nil {
		t.err = err
		return
	}
	t.message = message
}

func (t *Tasks) handleInputKey() tea.Cmd {
	value := strings.TrimSpace(t.input.Value())
	mode := t.mode
	t.mode = tasksModeList
	t.input.Blur()

	switch mode {
	case tasksModeAdd:
		if value == "" {
			return nil
		}
		if _, err := t.store.CreateTask(context.Background(), t.projectID, t.milestoneID, planner.TaskInput{Title: value}); err != nil {
			t.err = err
		} else {
			t.message = fmt.Sprintf("Created task: %s", value)
		}
	case tasksModeEdit:
		if value == "" {
			return nil
		}
		t.update(planner.TaskPatch{Title: &value}, fmt.Sprintf("Updated task: %s", value))
	case tasksModeAssign:
		t.update(planner.TaskPatch{AssignedResource: &value}, "Updated assignment")
	}
	return t.loadData
}

func (t *Tasks) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		task := t.tasks()[t.cursor]
		if _, err := t.store.DeleteTask(context.Background(), t.projectID, t.milestoneID, task.ID); err != nil {
			t.err = err
		} else {
			t.message = fmt.Sprintf("Deleted task: %s", task.Title)
		}
		t.mode = tasksModeList
		return t.loadData

	case "n", "N", "esc":
		t.mode = tasksModeList
	}
	return nil
}

func (t *Tasks) View() string {
	var b strings.Builder

	title := "TASKS"
	if t.project != nil && t.milestone != nil {
		title = fmt.Sprintf("TASKS - %s / %s", t.project.Title, t.milestone.Title)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if t.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if t.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", t.err)))
		b.WriteString("\n\n")
		t.err = nil
	}

	if t.message != "" {
		b.WriteString(SuccessStyle.Render(t.message))
		b.WriteString("\n\n")
	}

	if prompt, ok := taskPrompts[t.mode]; ok {
		b.WriteString(prompt + "\n")
		b.WriteString(t.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	items := t.tasks()
	if t.mode == tasksModeDelete && len(items) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete task '%s'? (y/n)", items[t.cursor].Title)))
		b.WriteString("\n")
		return b.String()
	}

	if len(items) == 0 {
		b.WriteString(DimStyle.Render("No tasks yet."))
		b.WriteString("\n\n")
	} else {
		for i, task := range items {
			cursor := "  "
			style := NormalStyle
			if i == t.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			line := fmt.Sprintf("%s%s %s %s",
				cursor,
				StatusStyle(task.Status).Render(StatusMark(task.Status)),
				style.Render(task.Title),
				DimStyle.Render(fmt.Sprintf("(%s, %s, %s)",
					orDash(string(task.Priority)), orDash(string(task.EffortLevel)), orDash(task.AssignedResource))),
			)
			b.WriteString(line)
			b.WriteString("\n")
		}

		sel := items[t.cursor]
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(taskDates(sel)))
		b.WriteString("\n")
	}

	help := "[a] Add  [e] Edit  [s] Status  [p] Priority  [f] Effort  [r] Assign  [d] Delete  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func taskDates(t models.Task) string {
	const layout = "Jan 02, 2006 15:04"
	parts := []string{string(t.Status)}
	if t.StartDate != nil {
		parts = append(parts, "started "+t.StartDate.Local().Format(layout))
	}
	if t.CompletedDate != nil {
		parts = append(parts, "completed "+t.CompletedDate.Local().Format(layout))
	}
	return strings.Join(parts, ", ")
}
