package planner

import (
	"context"
	"strings"

	"github.com/emilianohg/waypoint/internal/models"
)

type MilestoneInput struct {
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	Priority     models.MilestonePriority `json:"priority"`
	DueDate      string                   `json:"dueDate"`
	Stakeholders []string                 `json:"stakeholders"`
}

type MilestonePatch struct {
	Title        *string                   `json:"title"`
	Description  *string                   `json:"description"`
	Priority     *models.MilestonePriority `json:"priority"`
	DueDate      *string                   `json:"dueDate"`
	Stakeholders *[]string                 `json:"stakeholders"`
}

func (s *Store) CreateMilestone(ctx context.Context, projectID string, in MilestoneInput) (*models.Milestone, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := findProject(doc, projectID)
	if err != nil {
		return nil, err
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	m := models.Milestone{
		ID:           s.newID(),
		ProjectID:    p.ID,
		Title:        title,
		Description:  in.Description,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		Stakeholders: cleanList(in.Stakeholders),
		CreatedAt:    now,
		UpdatedAt:    now,
		Tasks:        []models.Task{},
	}
	p.Milestones = append(p.Milestones, m)
	p.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("created milestone", "id", m.ID, "project", p.ID)
	return &m, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, projectID, milestoneID string, patch MilestonePatch) (*models.Milestone, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, m, err := findMilestone(doc, projectID, milestoneID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		m.Title = title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Priority != nil {
		m.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		m.DueDate = *patch.DueDate
	}
	if patch.Stakeholders != nil {
		m.Stakeholders = cleanList(*patch.Stakeholders)
	}

	now := s.now()
	m.UpdatedAt = now
	p.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("updated milestone", "id", m.ID, "project", p.ID)
	return m, nil
}

// DeleteMilestone removes the milestone and its tasks. A missing project is
// a NotFoundError; a missing milestone under an existing project returns
// false and still saves.
func (s *Store) DeleteMilestone(ctx context.Context, projectID, milestoneID string) (bool, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	p, err := findProject(doc, projectID)
	if err != nil {
		return false, err
	}

	removed := false
	if i := milestoneIndex(p, milestoneID); i >= 0 {
		p.Milestones = append(p.Milestones[:i], p.Milestones[i+1:]...)
		p.UpdatedAt = s.now()
		removed = true
	}

	if err := s.save(ctx, doc); err != nil {
		return false, err
	}
	s.logger.Debug("deleted milestone", "id", milestoneID, "project", projectID, "removed", removed)
	return removed, nil
}

// cleanList trims entries and drops blanks. It returns nil for an empty
// result so the field is omitted from the document.
func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
