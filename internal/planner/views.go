package planner

import (
	"context"

	"github.com/emilianohg/waypoint/internal/models"
)

// ListMilestonesFlat returns every milestone in project order, then
// milestone order, each joined with a snapshot of its project.
func (s *Store) ListMilestonesFlat(ctx context.Context) ([]models.MilestoneView, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	views := []models.MilestoneView{}
	for _, p := range doc.Projects {
		ref := p.Ref()
		for _, m := range p.Milestones {
			views = append(views, models.MilestoneView{
				MilestoneRef: m.Ref(),
				TaskCount:    len(m.Tasks),
				Project:      ref,
			})
		}
	}
	return views, nil
}

// ListTasksFlat is ListMilestonesFlat one level deeper.
func (s *Store) ListTasksFlat(ctx context.Context) ([]models.TaskView, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	views := []models.TaskView{}
	for _, p := range doc.Projects {
		pref := p.Ref()
		for _, m := range p.Milestones {
			mref := m.Ref()
			for _, t := range m.Tasks {
				views = append(views, models.TaskView{Task: t, Milestone: mref, Project: pref})
			}
		}
	}
	return views, nil
}

func (s *Store) Summary(ctx context.Context) (models.Summary, error) {
	sum := models.Summary{ByStatus: make(map[models.TaskStatus]int, len(models.TaskStatuses))}
	for _, st := range models.TaskStatuses {
		sum.ByStatus[st] = 0
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return sum, err
	}

	sum.Projects = len(doc.Projects)
	for _, p := range doc.Projects {
		sum.Milestones += len(p.Milestones)
		for _, m := range p.Milestones {
			sum.Tasks += len(m.Tasks)
			for _, t := range m.Tasks {
				sum.ByStatus[t.Status]++
			}
		}
	}
	return sum, nil
}
