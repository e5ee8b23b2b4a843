package planner

import (
	"context"

	"github.com/emilianohg/waypoint/internal/models"
)

type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectPatch holds the fields an update may change. Nil fields are left
// as they are; an empty description clears it.
type ProjectPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := findProject(doc, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := models.Project{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Milestones:  []models.Milestone{},
	}
	doc.Projects = append(doc.Projects, p)

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("created project", "id", p.ID, "title", p.Title)
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*models.Project, error) {
	var title string
	if patch.Title != nil {
		t, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := findProject(doc, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		p.Title = title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	p.UpdatedAt = s.now()

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("updated project", "id", p.ID)
	return p, nil
}

// DeleteProject removes the project and everything under it. The document
// is saved whether or not the id matched.
func (s *Store) DeleteProject(ctx context.Context, id string) (bool, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	removed := false
	if i := projectIndex(doc, id); i >= 0 {
		doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
		removed = true
	}

	if err := s.save(ctx, doc); err != nil {
		return false, err
	}
	s.logger.Debug("deleted project", "id", id, "removed", removed)
	return removed, nil
}
