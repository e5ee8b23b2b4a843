// Package legacy upgrades stored planning documents to the current layout.
//
// Documents carry a schemaVersion field. A document without one predates
// versioning and is treated as version 1. Each registered upgrader moves a
// document from version N to N+1; Migrate applies them in order and then
// fills in empty lists so every document leaving this package decodes into
// models.Document without nil slices.
//
// Version 1 documents were written by the first releases of the tool, where a
// task only had a boolean "completed" flag and no projectId. Those tasks are
// recognised by sniffing for the status and projectId fields; a task carrying
// both is considered current and left alone.
//
// After upgrading, every record is normalized so it decodes into the typed
// model: scalar ids and titles become strings, wrongly typed optional fields
// are dropped, unknown statuses are mapped and timestamps are filled in.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emilianohg/waypoint/internal/models"
)

// ErrUnsupportedVersion is returned for documents written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported document schema version")

// Upgrader mutates a raw document in place from one version to the next.
type Upgrader func(m *Migrator, doc map[string]any)

type Migrator struct {
	// NewID supplies ids for records that were stored without one.
	NewID func() string
	// Now stamps records that carry no readable timestamp at any level.
	Now func() time.Time

	current   int
	upgraders map[int]Upgrader
}

func New() *Migrator {
	return &Migrator{
		NewID:   uuid.NewString,
		Now:     time.Now,
		current: models.CurrentSchemaVersion,
		upgraders: map[int]Upgrader{
			1: upgradeV1,
		},
	}
}

// Version reports the schema version a document declares.
func Version(doc map[string]any) int {
	switch v := doc["schemaVersion"].(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	}
	return 1
}

// Migrate upgrades doc in place and reports whether its canonical encoding
// changed.
func (m *Migrator) Migrate(doc map[string]any) (bool, error) {
	before, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode document: %w", err)
	}

	version := Version(doc)
	if version > m.current {
		return false, fmt.Errorf("%w: %d (this build supports up to %d)", ErrUnsupportedVersion, version, m.current)
	}

	for v := version; v < m.current; v++ {
		up, ok := m.upgraders[v]
		if !ok {
			return false, fmt.Errorf("no upgrader from schema version %d", v)
		}
		up(m, doc)
		doc["schemaVersion"] = v + 1
	}
	m.normalize(doc)

	after, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode document: %w", err)
	}
	return !bytes.Equal(before, after), nil
}

// MigrateJSON decodes data, migrates it and returns the canonical encoding.
// Empty input yields an empty current document. A top-level array is taken
// to be a bare list of projects.
func (m *Migrator) MigrateJSON(data []byte) ([]byte, bool, error) {
	var raw any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, false, fmt.Errorf("parse document: %w", err)
		}
	}

	doc, reshaped := asDocument(raw)
	changed, err := m.Migrate(doc)
	if err != nil {
		return nil, false, err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("encode document: %w", err)
	}
	return out, changed || reshaped, nil
}

func asDocument(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, false
	case []any:
		return map[string]any{"projects": v}, true
	default:
		return map[string]any{"projects": []any{}}, raw != nil
	}
}

func upgradeV1(m *Migrator, doc map[string]any) {
	for _, p := range objects(doc, "projects") {
		m.ensureIdentity(p)
		projectID, _ := p["id"].(string)

		for _, ms := range objects(p, "milestones") {
			m.ensureIdentity(ms)
			if !present(ms, "projectId") {
				ms["projectId"] = projectID
			}
			milestoneID, _ := ms["id"].(string)

			for _, t := range objects(ms, "tasks") {
				m.ensureIdentity(t)
				upgradeTask(t, projectID, milestoneID)
			}
		}
	}
}

func upgradeTask(t map[string]any, projectID, milestoneID string) {
	if present(t, "status") && present(t, "projectId") {
		return
	}

	completed, _ := t["completed"].(bool)
	if !present(t, "status") {
		if completed {
			t["status"] = string(models.StatusCompleted)
		} else {
			t["status"] = string(models.StatusNotStarted)
		}
	}
	if !present(t, "projectId") {
		t["projectId"] = projectID
	}
	if !present(t, "milestoneId") {
		t["milestoneId"] = milestoneID
	}
	if completed && !present(t, "completedDate") && present(t, "updatedAt") {
		t["completedDate"] = t["updatedAt"]
	}
	delete(t, "completed")
}

// ensureIdentity gives rec a string id and a non-blank string title.
func (m *Migrator) ensureIdentity(rec map[string]any) {
	if id, ok := text(rec["id"]); ok && strings.TrimSpace(id) != "" {
		rec["id"] = id
	} else if m.NewID != nil {
		rec["id"] = m.NewID()
	}
	if title, ok := text(rec["title"]); ok && strings.TrimSpace(title) != "" {
		rec["title"] = title
	} else {
		rec["title"] = "Untitled"
	}
}

// normalize replaces missing or malformed lists with empty ones at every
// level of the tree and coerces each record's fields into the types the
// model decodes.
func (m *Migrator) normalize(doc map[string]any) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	stamp := now().UTC().Format(time.RFC3339Nano)

	for _, p := range objects(doc, "projects") {
		m.ensureIdentity(p)
		normalizeTimes(p, stamp)
		optionalText(p, "description")
		projectID, _ := p["id"].(string)
		projectCreated, _ := p["createdAt"].(string)

		for _, ms := range objects(p, "milestones") {
			m.ensureIdentity(ms)
			backReference(ms, "projectId", projectID)
			normalizeTimes(ms, projectCreated)
			optionalText(ms, "description")
			optionalText(ms, "dueDate")
			optionalEnum(ms, "priority")
			normalizeStakeholders(ms)
			milestoneID, _ := ms["id"].(string)
			milestoneCreated, _ := ms["createdAt"].(string)

			for _, t := range objects(ms, "tasks") {
				m.ensureIdentity(t)
				backReference(t, "projectId", projectID)
				backReference(t, "milestoneId", milestoneID)
				normalizeTimes(t, milestoneCreated)
				optionalText(t, "description")
				optionalText(t, "assignedResource")
				optionalEnum(t, "priority")
				optionalEnum(t, "effortLevel")
				normalizeStatus(t)
			}
		}
	}
}

// Epoch milliseconds of 0001-01-01 and 9999-12-31T23:59:59.999Z, the range
// RFC 3339 can express.
const (
	minEpochMilli = -62135596800000
	maxEpochMilli = 253402300799999
)

var timeFields = []string{"createdAt", "updatedAt", "startDate", "completedDate"}

// Layouts accepted for string timestamps besides RFC 3339. Values without a
// zone are read as UTC.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// normalizeTimes converts epoch-millisecond numbers and other common layouts
// to RFC 3339 and drops values that cannot be read as a timestamp. A record
// without createdAt takes its updatedAt, then fallback; a record without
// updatedAt takes its createdAt.
func normalizeTimes(rec map[string]any, fallback string) {
	for _, key := range timeFields {
		switch v := rec[key].(type) {
		case nil:
		case string:
			if _, err := time.Parse(time.RFC3339Nano, v); err == nil {
				continue
			}
			if ts, ok := parseTime(v); ok {
				rec[key] = ts
			} else {
				delete(rec, key)
			}
		case float64:
			if v >= minEpochMilli && v <= maxEpochMilli {
				rec[key] = time.UnixMilli(int64(v)).UTC().Format(time.RFC3339Nano)
			} else {
				delete(rec, key)
			}
		default:
			delete(rec, key)
		}
	}

	if _, ok := rec["createdAt"].(string); !ok {
		if updated, ok := rec["updatedAt"].(string); ok {
			rec["createdAt"] = updated
		} else if fallback != "" {
			rec["createdAt"] = fallback
		}
	}
	if _, ok := rec["updatedAt"].(string); !ok {
		if created, ok := rec["createdAt"].(string); ok {
			rec["updatedAt"] = created
		}
	}
}

func parseTime(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format(time.RFC3339Nano), true
		}
	}
	return "", false
}

var legacyStatuses = map[string]models.TaskStatus{
	"todo":     models.StatusNotStarted,
	"to-do":    models.StatusNotStarted,
	"pending":  models.StatusNotStarted,
	"open":     models.StatusNotStarted,
	"doing":    models.StatusInProgress,
	"started":  models.StatusInProgress,
	"active":   models.StatusInProgress,
	"done":     models.StatusCompleted,
	"complete": models.StatusCompleted,
	"finished": models.StatusCompleted,
	"closed":   models.StatusCompleted,
}

// normalizeStatus maps a status outside the known set. Spelling variants
// such as "In Progress" map to their canonical form, known legacy words map
// through legacyStatuses and anything else becomes not-started. A task
// mapped to completed without a completedDate takes its updatedAt.
func normalizeStatus(t map[string]any) {
	raw, _ := text(t["status"])
	if models.TaskStatus(raw).Valid() {
		return
	}

	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	status := models.TaskStatus(key)
	if !status.Valid() {
		status = legacyStatuses[key]
		if status == "" {
			status = models.StatusNotStarted
		}
	}
	t["status"] = string(status)

	if status == models.StatusCompleted && !present(t, "completedDate") {
		if updated, ok := t["updatedAt"].(string); ok {
			t["completedDate"] = updated
		}
	}
}

// backReference sets rec[key] to a string, taking parentID when the stored
// value is missing or unusable.
func backReference(rec map[string]any, key, parentID string) {
	if ref, ok := text(rec[key]); ok && strings.TrimSpace(ref) != "" {
		rec[key] = ref
		return
	}
	rec[key] = parentID
}

// optionalText keeps a scalar value as a string and drops anything else.
func optionalText(rec map[string]any, key string) {
	if _, ok := rec[key]; !ok {
		return
	}
	if s, ok := text(rec[key]); ok {
		rec[key] = s
	} else {
		delete(rec, key)
	}
}

// optionalEnum keeps string values and drops anything else.
func optionalEnum(rec map[string]any, key string) {
	if _, ok := rec[key]; !ok {
		return
	}
	if _, ok := rec[key].(string); !ok {
		delete(rec, key)
	}
}

// normalizeStakeholders turns the stakeholders field into a list of
// non-blank strings. A single string is split on commas.
func normalizeStakeholders(ms map[string]any) {
	var items []any
	switch v := ms["stakeholders"].(type) {
	case nil:
		return
	case []any:
		items = v
	case string:
		for _, part := range strings.Split(v, ",") {
			items = append(items, part)
		}
	}

	names := make([]any, 0, len(items))
	for _, item := range items {
		if name, ok := text(item); ok && strings.TrimSpace(name) != "" {
			names = append(names, strings.TrimSpace(name))
		}
	}
	if len(names) == 0 {
		delete(ms, "stakeholders")
		return
	}
	ms["stakeholders"] = names
}

// text renders a JSON scalar as a string. Whole numbers print without an
// exponent so numeric ids keep their digits.
func text(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// objects returns the object elements of the list stored at key, replacing
// the list with only those elements. A missing or non-list value becomes an
// empty list.
func objects(parent map[string]any, key string) []map[string]any {
	list, _ := parent[key].([]any)
	out := make([]map[string]any, 0, len(list))
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
			kept = append(kept, obj)
		}
	}
	parent[key] = kept
	return out
}

func present(rec map[string]any, key string) bool {
	switch v := rec[key].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}
