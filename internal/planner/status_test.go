package planner

import (
	"testing"
	"time"

	"github.com/emilianohg/waypoint/internal/models"
)

func TestApplyStatus(t *testing.T) {
	earlier := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		from          models.TaskStatus
		start, done   *time.Time
		to            models.TaskStatus
		wantStart     *time.Time
		wantCompleted *time.Time
	}{
		{"start fresh task", models.StatusNotStarted, nil, nil, models.StatusInProgress, &now, nil},
		{"restart keeps first start", models.StatusNotStarted, &earlier, nil, models.StatusInProgress, &earlier, nil},
		{"complete from progress", models.StatusInProgress, &earlier, nil, models.StatusCompleted, &earlier, &now},
		{"complete directly", models.StatusNotStarted, nil, nil, models.StatusCompleted, nil, &now},
		{"complete keeps existing date", models.StatusInProgress, nil, &earlier, models.StatusCompleted, nil, &earlier},
		{"reopen clears completion", models.StatusCompleted, &earlier, &earlier, models.StatusInProgress, &earlier, nil},
		{"reopen without start sets it", models.StatusCompleted, nil, &earlier, models.StatusInProgress, &now, nil},
		{"reset clears both", models.StatusCompleted, &earlier, &earlier, models.StatusNotStarted, nil, nil},
		{"same status changes nothing", models.StatusCompleted, nil, nil, models.StatusCompleted, nil, nil},
		{"same in-progress keeps dates", models.StatusInProgress, &earlier, nil, models.StatusInProgress, &earlier, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{Status: tt.from, StartDate: tt.start, CompletedDate: tt.done}
			ApplyStatus(task, tt.to, now)

			if task.Status != tt.to {
				t.Errorf("Status: got %q, want %q", task.Status, tt.to)
			}
			if !sameTime(task.StartDate, tt.wantStart) {
				t.Errorf("StartDate: got %v, want %v", task.StartDate, tt.wantStart)
			}
			if !sameTime(task.CompletedDate, tt.wantCompleted) {
				t.Errorf("CompletedDate: got %v, want %v", task.CompletedDate, tt.wantCompleted)
			}
		})
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func TestStatusNext(t *testing.T) {
	tests := []struct {
		from, want models.TaskStatus
	}{
		{models.StatusNotStarted, models.StatusInProgress},
		{models.StatusInProgress, models.StatusCompleted},
		{models.StatusCompleted, models.StatusNotStarted},
		{"bogus", models.StatusNotStarted},
	}
	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("%q.Next(): got %q, want %q", tt.from, got, tt.want)
		}
	}
}
