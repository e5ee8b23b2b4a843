package planner

import (
	"time"

	"github.com/emilianohg/waypoint/internal/models"
)

// ApplyStatus moves t to next and derives its start and completion dates.
// The first move into progress records startDate and later moves never
// overwrite it; completion is recorded once and cleared again when the
// task regresses. Going back to not-started resets both dates. Setting the
// status the task already has changes nothing.
func ApplyStatus(t *models.Task, next models.TaskStatus, now time.Time) {
	prev := t.Status
	if next == prev {
		return
	}

	switch next {
	case models.StatusInProgress:
		if t.StartDate == nil {
			t.StartDate = timePtr(now)
		}
		if prev == models.StatusCompleted {
			t.CompletedDate = nil
		}
	case models.StatusCompleted:
		if t.CompletedDate == nil {
			t.CompletedDate = timePtr(now)
		}
	case models.StatusNotStarted:
		t.StartDate = nil
		t.CompletedDate = nil
	}
	t.Status = next
}

func timePtr(t time.Time) *time.Time {
	return &t
}
