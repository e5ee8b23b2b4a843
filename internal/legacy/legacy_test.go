package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/emilianohg/waypoint/internal/models"
)

func newTestMigrator() *Migrator {
	m := New()
	n := 0
	m.NewID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return m
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func firstTask(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()
	p := doc["projects"].([]any)[0].(map[string]any)
	ms := p["milestones"].([]any)[0].(map[string]any)
	return ms["tasks"].([]any)[0].(map[string]any)
}

const legacyDoc = `{
  "projects": [
    {
      "id": "p1",
      "title": "Launch",
      "createdAt": "2024-01-01T00:00:00Z",
      "updatedAt": "2024-01-02T00:00:00Z",
      "milestones": [
        {
          "id": "m1",
          "title": "Beta",
          "createdAt": "2024-01-01T00:00:00Z",
          "updatedAt": "2024-01-02T00:00:00Z",
          "tasks": [
            {
              "id": "t1",
              "milestoneId": "m1",
              "title": "Write docs",
              "completed": true,
              "createdAt": "2024-01-01T00:00:00Z",
              "updatedAt": "2024-01-03T10:00:00Z"
            },
            {
              "id": "t2",
              "milestoneId": "m1",
              "title": "Ship",
              "createdAt": "2024-01-01T00:00:00Z",
              "updatedAt": "2024-01-01T00:00:00Z"
            }
          ]
        }
      ]
    },
    {
      "id": "p2",
      "title": "Empty"
    }
  ]
}`

func TestMigrateLegacyTasks(t *testing.T) {
	m := newTestMigrator()

	out, changed, err := m.MigrateJSON([]byte(legacyDoc))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}
	if !changed {
		t.Fatal("legacy document should be reported as changed")
	}

	doc := decode(t, out)
	if v := Version(doc); v != 2 {
		t.Errorf("schemaVersion: got %d, want 2", v)
	}

	projects := doc["projects"].([]any)
	ms := projects[0].(map[string]any)["milestones"].([]any)[0].(map[string]any)
	if ms["projectId"] != "p1" {
		t.Errorf("milestone projectId: got %v, want p1", ms["projectId"])
	}

	tasks := ms["tasks"].([]any)
	done := tasks[0].(map[string]any)
	if done["status"] != "completed" {
		t.Errorf("status: got %v, want completed", done["status"])
	}
	if done["projectId"] != "p1" {
		t.Errorf("projectId: got %v, want p1", done["projectId"])
	}
	if done["completedDate"] != "2024-01-03T10:00:00Z" {
		t.Errorf("completedDate: got %v, want legacy updatedAt", done["completedDate"])
	}
	if _, ok := done["completed"]; ok {
		t.Error("legacy completed flag should be dropped")
	}

	open := tasks[1].(map[string]any)
	if open["status"] != "not-started" {
		t.Errorf("status: got %v, want not-started", open["status"])
	}
	if _, ok := open["completedDate"]; ok {
		t.Error("incomplete task should not get a completedDate")
	}

	empty := projects[1].(map[string]any)
	if list, ok := empty["milestones"].([]any); !ok || len(list) != 0 {
		t.Errorf("milestones should default to an empty list, got %v", empty["milestones"])
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	m := newTestMigrator()

	once, _, err := m.MigrateJSON([]byte(legacyDoc))
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, changed, err := m.MigrateJSON(once)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if changed {
		t.Error("second pass should report no change")
	}
	if string(once) != string(twice) {
		t.Errorf("second pass altered the document:\n%s\n%s", once, twice)
	}
}

func TestMigrateCurrentDocumentUnchanged(t *testing.T) {
	current := `{"projects":[{"createdAt":"2024-01-01T00:00:00Z","id":"p1","milestones":[{"createdAt":"2024-01-01T00:00:00Z","id":"m1","projectId":"p1","tasks":[{"createdAt":"2024-01-01T00:00:00Z","id":"t1","milestoneId":"m1","projectId":"p1","startDate":"2024-01-02T00:00:00Z","status":"in-progress","title":"Write docs","updatedAt":"2024-01-02T00:00:00Z"}],"title":"Beta","updatedAt":"2024-01-02T00:00:00Z"}],"title":"Launch","updatedAt":"2024-01-02T00:00:00Z"}],"schemaVersion":2}`

	out, changed, err := New().MigrateJSON([]byte(current))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}
	if changed {
		t.Error("current document reported as changed")
	}
	if string(out) != current {
		t.Errorf("current document altered:\ngot  %s\nwant %s", out, current)
	}
}

func TestUpgradeTaskKeepsCurrentTasks(t *testing.T) {
	// status and projectId present: the task is treated as current even
	// though it still carries the legacy flag.
	task := map[string]any{
		"status":    "in-progress",
		"projectId": "p1",
		"completed": true,
	}
	upgradeTask(task, "other", "m1")

	if task["status"] != "in-progress" {
		t.Errorf("status changed to %v", task["status"])
	}
	if task["projectId"] != "p1" {
		t.Errorf("projectId changed to %v", task["projectId"])
	}
	if _, ok := task["milestoneId"]; ok {
		t.Error("current task should not be backfilled")
	}
}

func TestUpgradeTaskWithStatusButNoProject(t *testing.T) {
	task := map[string]any{
		"status":        "completed",
		"completed":     true,
		"completedDate": "2024-02-01T00:00:00Z",
		"updatedAt":     "2024-03-01T00:00:00Z",
	}
	upgradeTask(task, "p9", "m9")

	if task["status"] != "completed" {
		t.Errorf("existing status overwritten: %v", task["status"])
	}
	if task["projectId"] != "p9" || task["milestoneId"] != "m9" {
		t.Errorf("back-references not filled: %v %v", task["projectId"], task["milestoneId"])
	}
	if task["completedDate"] != "2024-02-01T00:00:00Z" {
		t.Errorf("existing completedDate overwritten: %v", task["completedDate"])
	}
}

func TestMigrateMalformedShapes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
	}{
		{name: "empty input", input: "", wantCount: 0},
		{name: "null", input: "null", wantCount: 0},
		{name: "projects not a list", input: `{"projects": "oops"}`, wantCount: 0},
		{name: "non-object entries dropped", input: `{"projects": [1, {"title": "Kept"}, "x"]}`, wantCount: 1},
		{name: "bare array of projects", input: `[{"id": "p1", "title": "Old"}]`, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := newTestMigrator().MigrateJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("MigrateJSON failed: %v", err)
			}
			doc := decode(t, out)
			projects, ok := doc["projects"].([]any)
			if !ok {
				t.Fatalf("projects is %T, want list", doc["projects"])
			}
			if len(projects) != tt.wantCount {
				t.Errorf("projects: got %d, want %d", len(projects), tt.wantCount)
			}
		})
	}
}

func TestMigrateFillsMissingIdentity(t *testing.T) {
	out, _, err := newTestMigrator().MigrateJSON([]byte(`{"projects":[{"milestones":[{"tasks":[{"completed":false}]}]}]}`))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}
	doc := decode(t, out)
	p := doc["projects"].([]any)[0].(map[string]any)
	if p["id"] != "gen-1" || p["title"] != "Untitled" {
		t.Errorf("project identity: %v %v", p["id"], p["title"])
	}
	task := firstTask(t, doc)
	if task["projectId"] != "gen-1" || task["milestoneId"] != "gen-2" {
		t.Errorf("task back-references: %v %v", task["projectId"], task["milestoneId"])
	}
}

func TestMigrateNormalizesTimestamps(t *testing.T) {
	input := `{"projects":[{"id":"p1","title":"P","createdAt":1704067200000,"updatedAt":"yesterday","milestones":[
		{"id":"m1","title":"M","createdAt":"2024-01-15","updatedAt":"2024-01-16 08:30:00","tasks":[
			{"id":"t1","title":"T","status":"in-progress","startDate":"soon","completedDate":1e15}
		]}
	]}]}`
	out, _, err := newTestMigrator().MigrateJSON([]byte(input))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}
	p := decode(t, out)["projects"].([]any)[0].(map[string]any)
	if p["createdAt"] != "2024-01-01T00:00:00Z" {
		t.Errorf("createdAt: got %v", p["createdAt"])
	}
	if p["updatedAt"] != "2024-01-01T00:00:00Z" {
		t.Errorf("unreadable updatedAt should fall back to createdAt, got %v", p["updatedAt"])
	}

	ms := p["milestones"].([]any)[0].(map[string]any)
	if ms["createdAt"] != "2024-01-15T00:00:00Z" {
		t.Errorf("date-only createdAt: got %v", ms["createdAt"])
	}
	if ms["updatedAt"] != "2024-01-16T08:30:00Z" {
		t.Errorf("space-separated updatedAt: got %v", ms["updatedAt"])
	}

	task := ms["tasks"].([]any)[0].(map[string]any)
	if task["createdAt"] != "2024-01-15T00:00:00Z" || task["updatedAt"] != "2024-01-15T00:00:00Z" {
		t.Errorf("task timestamps should come from the milestone: %v %v", task["createdAt"], task["updatedAt"])
	}
	if _, ok := task["startDate"]; ok {
		t.Errorf("unreadable startDate should be dropped, got %v", task["startDate"])
	}
	if _, ok := task["completedDate"]; ok {
		t.Errorf("out of range completedDate should be dropped, got %v", task["completedDate"])
	}
}

func TestMigrateStampsUndatedProjects(t *testing.T) {
	m := newTestMigrator()
	m.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	out, _, err := m.MigrateJSON([]byte(`{"projects":[{"id":"p1","title":"P"}]}`))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}
	p := decode(t, out)["projects"].([]any)[0].(map[string]any)
	if p["createdAt"] != "2024-06-01T12:00:00Z" || p["updatedAt"] != "2024-06-01T12:00:00Z" {
		t.Errorf("timestamps: %v %v", p["createdAt"], p["updatedAt"])
	}
}

func TestMigrateCoercesFieldTypes(t *testing.T) {
	input := `{"projects":[{"id":1700000000000,"title":42,"description":{"x":1},"createdAt":"2024-01-01T00:00:00Z","milestones":[
		{"id":7,"projectId":1700000000000,"title":"Beta","priority":3,"dueDate":20240301,"stakeholders":"Ann, Bob ,,","tasks":[
			{"id":"t1","projectId":["bad"],"milestoneId":7,"title":"","status":"not-started","effortLevel":false,"assignedResource":12}
		]}
	]}]}`
	out, _, err := newTestMigrator().MigrateJSON([]byte(input))
	if err != nil {
		t.Fatalf("MigrateJSON failed: %v", err)
	}

	doc := decode(t, out)
	p := doc["projects"].([]any)[0].(map[string]any)
	if p["id"] != "1700000000000" || p["title"] != "42" {
		t.Errorf("project identity: %v %v", p["id"], p["title"])
	}
	if _, ok := p["description"]; ok {
		t.Errorf("object description should be dropped, got %v", p["description"])
	}

	ms := p["milestones"].([]any)[0].(map[string]any)
	if ms["id"] != "7" || ms["projectId"] != "1700000000000" {
		t.Errorf("milestone refs: %v %v", ms["id"], ms["projectId"])
	}
	if _, ok := ms["priority"]; ok {
		t.Errorf("numeric priority should be dropped, got %v", ms["priority"])
	}
	if ms["dueDate"] != "20240301" {
		t.Errorf("dueDate: got %v", ms["dueDate"])
	}
	stakeholders, _ := ms["stakeholders"].([]any)
	if len(stakeholders) != 2 || stakeholders[0] != "Ann" || stakeholders[1] != "Bob" {
		t.Errorf("stakeholders: got %v", ms["stakeholders"])
	}

	task := firstTask(t, doc)
	if task["projectId"] != "1700000000000" || task["milestoneId"] != "7" {
		t.Errorf("task refs: %v %v", task["projectId"], task["milestoneId"])
	}
	if task["title"] != "Untitled" {
		t.Errorf("blank title: got %v", task["title"])
	}
	if _, ok := task["effortLevel"]; ok {
		t.Errorf("bool effortLevel should be dropped, got %v", task["effortLevel"])
	}
	if task["assignedResource"] != "12" {
		t.Errorf("assignedResource: got %v", task["assignedResource"])
	}

	var typed models.Document
	if err := json.Unmarshal(out, &typed); err != nil {
		t.Fatalf("migrated document does not decode: %v", err)
	}
	if typed.Projects[0].Milestones[0].Tasks[0].ID != "t1" {
		t.Errorf("typed decode: %+v", typed.Projects[0])
	}
}

func TestMigrateMapsStatuses(t *testing.T) {
	tests := []struct {
		status        string
		want          string
		wantCompleted bool
	}{
		{status: `"done"`, want: "completed", wantCompleted: true},
		{status: `"Complete"`, want: "completed", wantCompleted: true},
		{status: `"todo"`, want: "not-started"},
		{status: `"doing"`, want: "in-progress"},
		{status: `"In Progress"`, want: "in-progress"},
		{status: `"not_started"`, want: "not-started"},
		{status: `"blocked"`, want: "not-started"},
		{status: `true`, want: "not-started"},
		{status: `"completed"`, want: "completed"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			input := `{"projects":[{"id":"p1","title":"P","milestones":[{"id":"m1","title":"M","tasks":[
				{"id":"t1","title":"T","status":` + tt.status + `,"updatedAt":"2024-02-01T00:00:00Z"}
			]}]}]}`
			out, _, err := newTestMigrator().MigrateJSON([]byte(input))
			if err != nil {
				t.Fatalf("MigrateJSON failed: %v", err)
			}
			task := firstTask(t, decode(t, out))
			if task["status"] != tt.want {
				t.Errorf("status: got %v, want %s", task["status"], tt.want)
			}
			_, hasCompleted := task["completedDate"]
			if hasCompleted != tt.wantCompleted {
				t.Errorf("completedDate present = %v, want %v", hasCompleted, tt.wantCompleted)
			}
			if tt.wantCompleted && task["completedDate"] != "2024-02-01T00:00:00Z" {
				t.Errorf("completedDate: got %v", task["completedDate"])
			}
		})
	}
}

func TestMigrateRejectsNewerVersion(t *testing.T) {
	_, _, err := New().MigrateJSON([]byte(`{"schemaVersion": 99, "projects": []}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestMigrateJSONParseError(t *testing.T) {
	if _, _, err := New().MigrateJSON([]byte(`{"projects": [`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		doc  map[string]any
		want int
	}{
		{map[string]any{}, 1},
		{map[string]any{"schemaVersion": float64(2)}, 2},
		{map[string]any{"schemaVersion": 0.0}, 1},
		{map[string]any{"schemaVersion": "2"}, 1},
		{map[string]any{"schemaVersion": 3}, 3},
	}
	for _, tt := range tests {
		if got := Version(tt.doc); got != tt.want {
			t.Errorf("Version(%v) = %d, want %d", tt.doc, got, tt.want)
		}
	}
}
