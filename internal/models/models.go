package models

import "time"

// CurrentSchemaVersion is the document layout written by this build.
const CurrentSchemaVersion = 2

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not-started"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists the states in the order the TUI cycles through them.
var TaskStatuses = []TaskStatus{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s in TaskStatuses, wrapping around.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return StatusNotStarted
}

type MilestonePriority string

const (
	MilestoneLow    MilestonePriority = "low"
	MilestoneMedium MilestonePriority = "medium"
	MilestoneHigh   MilestonePriority = "high"
)

type TaskPriority string

const (
	TaskLow    TaskPriority = "low"
	TaskMedium TaskPriority = "medium"
	TaskHigh   TaskPriority = "high"
	TaskUrgent TaskPriority = "urgent"
)

type EffortLevel string

const (
	EffortSmall  EffortLevel = "small"
	EffortMedium EffortLevel = "medium"
	EffortLarge  EffortLevel = "large"
	EffortXLarge EffortLevel = "x-large"
)

type Document struct {
	SchemaVersion int       `json:"schemaVersion" yaml:"schemaVersion"`
	Projects      []Project `json:"projects" yaml:"projects"`
}

// NewDocument returns an empty current-schema document.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		Projects:      []Project{},
	}
}

type Project struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" yaml:"updatedAt"`
	Milestones  []Milestone `json:"milestones" yaml:"milestones"`
}

type Milestone struct {
	ID           string            `json:"id" yaml:"id"`
	ProjectID    string            `json:"projectId" yaml:"projectId"`
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Priority     MilestonePriority `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate      string            `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Stakeholders []string          `json:"stakeholders,omitempty" yaml:"stakeholders,omitempty"`
	CreatedAt    time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" yaml:"updatedAt"`
	Tasks        []Task            `json:"tasks" yaml:"tasks"`
}

type Task struct {
	ID               string       `json:"id" yaml:"id"`
	MilestoneID      string       `json:"milestoneId" yaml:"milestoneId"`
	ProjectID        string       `json:"projectId" yaml:"projectId"`
	Title            string       `json:"title" yaml:"title"`
	Description      string       `json:"description,omitempty" yaml:"description,omitempty"`
	Status           TaskStatus   `json:"status" yaml:"status"`
	Priority         TaskPriority `json:"priority,omitempty" yaml:"priority,omitempty"`
	EffortLevel      EffortLevel  `json:"effortLevel,omitempty" yaml:"effortLevel,omitempty"`
	AssignedResource string       `json:"assignedResource,omitempty" yaml:"assignedResource,omitempty"`
	StartDate        *time.Time   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	CompletedDate    *time.Time   `json:"completedDate,omitempty" yaml:"completedDate,omitempty"`
	CreatedAt        time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt" yaml:"updatedAt"`
}

// ProjectRef is a project snapshot without its milestones.
type ProjectRef struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func (p Project) Ref() ProjectRef {
	return ProjectRef{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MilestoneRef is a milestone snapshot without its tasks.
type MilestoneRef struct {
	ID           string            `json:"id" yaml:"id"`
	ProjectID    string            `json:"projectId" yaml:"projectId"`
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Priority     MilestonePriority `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate      string            `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Stakeholders []string          `json:"stakeholders,omitempty" yaml:"stakeholders,omitempty"`
	CreatedAt    time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

func (m Milestone) Ref() MilestoneRef {
	return MilestoneRef{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		Title:        m.Title,
		Description:  m.Description,
		Priority:     m.Priority,
		DueDate:      m.DueDate,
		Stakeholders: append([]string(nil), m.Stakeholders...),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// MilestoneView is a milestone without its tasks, joined with its owning
// project. TaskCount is the number of tasks left out.
type MilestoneView struct {
	MilestoneRef `yaml:",inline"`
	TaskCount    int        `json:"taskCount" yaml:"taskCount"`
	Project      ProjectRef `json:"project" yaml:"project"`
}

// TaskView is a task joined with its owning milestone and project.
type TaskView struct {
	Task      `yaml:",inline"`
	Milestone MilestoneRef `json:"milestone" yaml:"milestone"`
	Project   ProjectRef   `json:"project" yaml:"project"`
}

type Summary struct {
	Projects   int                `json:"projects"`
	Milestones int                `json:"milestones"`
	Tasks      int                `json:"tasks"`
	ByStatus   map[TaskStatus]int `json:"byStatus"`
}
