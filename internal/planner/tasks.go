package planner

import (
	"context"
	"fmt"

	"github.com/emilianohg/waypoint/internal/models"
)

// TaskInput has no status: new tasks always start as not-started.
type TaskInput struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Priority         models.TaskPriority `json:"priority"`
	EffortLevel      models.EffortLevel  `json:"effortLevel"`
	AssignedResource string              `json:"assignedResource"`
}

type TaskPatch struct {
	Title            *string              `json:"title"`
	Description      *string              `json:"description"`
	Status           *models.TaskStatus   `json:"status"`
	Priority         *models.TaskPriority `json:"priority"`
	EffortLevel      *models.EffortLevel  `json:"effortLevel"`
	AssignedResource *string              `json:"assignedResource"`
}

func (s *Store) CreateTask(ctx context.Context, projectID, milestoneID string, in TaskInput) (*models.Task, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, m, err := findMilestone(doc, projectID, milestoneID)
	if err != nil {
		return nil, err
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := models.Task{
		ID:               s.newID(),
		MilestoneID:      m.ID,
		ProjectID:        p.ID,
		Title:            title,
		Description:      in.Description,
		Status:           models.StatusNotStarted,
		Priority:         in.Priority,
		EffortLevel:      in.EffortLevel,
		AssignedResource: in.AssignedResource,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.Tasks = append(m.Tasks, t)
	m.UpdatedAt = now
	p.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("created task", "id", t.ID, "milestone", m.ID, "project", p.ID)
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, projectID, milestoneID, taskID string, patch TaskPatch) (*models.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, &ValidationError{Field: "status", Err: fmt.Errorf("unknown status %q", *patch.Status)}
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, m, t, err := findTask(doc, projectID, milestoneID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.EffortLevel != nil {
		t.EffortLevel = *patch.EffortLevel
	}
	if patch.AssignedResource != nil {
		t.AssignedResource = *patch.AssignedResource
	}

	now := s.now()
	if patch.Status != nil {
		ApplyStatus(t, *patch.Status, now)
	}
	t.UpdatedAt = now
	m.UpdatedAt = now
	p.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("updated task", "id", t.ID, "status", t.Status)
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, projectID, milestoneID, taskID string) (bool, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	p, m, err := findMilestone(doc, projectID, milestoneID)
	if err != nil {
		return false, err
	}

	removed := false
	if i := taskIndex(m, taskID); i >= 0 {
		m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
		now := s.now()
		m.UpdatedAt = now
		p.UpdatedAt = now
		removed = true
	}

	if err := s.save(ctx, doc); err != nil {
		return false, err
	}
	s.logger.Debug("deleted task", "id", taskID, "milestone", milestoneID, "removed", removed)
	return removed, nil
}
