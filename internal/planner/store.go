// Package planner implements create, read, update and delete operations over
// the project -> milestone -> task tree.
//
// Every operation loads the whole document from the backend, upgrades it if
// it was written in an older layout, changes it in memory and saves the
// whole document back. There is no locking: two callers working on the same
// backend at the same time race, and the last save wins. A lookup that fails
// at any level returns a NotFoundError before anything is saved.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/emilianohg/waypoint/internal/legacy"
	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/storage"
)

type Store struct {
	backend  storage.Backend
	migrator *legacy.Migrator
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	tolerant bool
}

type Option func(*Store)

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the id source for new entities.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithMigrator(m *legacy.Migrator) Option {
	return func(s *Store) { s.migrator = m }
}

// WithTolerantDecode controls whether an unreadable stored document is
// treated as empty. It defaults to true for key/value backends.
func WithTolerantDecode(tolerant bool) Option {
	return func(s *Store) { s.tolerant = tolerant }
}

func New(backend storage.Backend, opts ...Option) *Store {
	migrator := legacy.New()
	s := &Store{
		backend:  backend,
		migrator: migrator,
		logger:   log.New(io.Discard),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		tolerant: storage.IsKeyValue(backend),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.migrator == migrator {
		migrator.Now = s.now
	}
	return s
}

// Document returns the full current document.
func (s *Store) Document(ctx context.Context) (*models.Document, error) {
	doc, _, err := s.load(ctx)
	return doc, err
}

// Migrate loads the document, upgrading and saving it if it was stored in
// an older layout, and reports whether anything was rewritten.
func (s *Store) Migrate(ctx context.Context) (bool, error) {
	_, migrated, err := s.load(ctx)
	return migrated, err
}

func (s *Store) load(ctx context.Context) (*models.Document, bool, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("load failed", "backend", storage.Describe(s.backend), "err", err)
		return nil, false, &PersistenceError{Op: "load", Err: err}
	}
	if data == nil {
		return models.NewDocument(), false, nil
	}

	upgraded, changed, err := s.migrator.MigrateJSON(data)
	if err != nil {
		return s.unreadable(err)
	}

	var doc models.Document
	if err := json.Unmarshal(upgraded, &doc); err != nil {
		return s.unreadable(err)
	}

	if changed {
		s.logger.Info("upgraded stored document", "backend", storage.Describe(s.backend), "schemaVersion", doc.SchemaVersion)
		if err := s.save(ctx, &doc); err != nil {
			return nil, false, err
		}
	}
	return &doc, changed, nil
}

func (s *Store) unreadable(err error) (*models.Document, bool, error) {
	if s.tolerant && !errors.Is(err, legacy.ErrUnsupportedVersion) {
		s.logger.Warn("stored document unreadable, starting empty", "backend", storage.Describe(s.backend), "err", err)
		return models.NewDocument(), false, nil
	}
	return nil, false, &PersistenceError{Op: "decode", Err: err}
}

func (s *Store) save(ctx context.Context, doc *models.Document) error {
	doc.SchemaVersion = models.CurrentSchemaVersion

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	data = append(data, '\n')

	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Error("save failed", "backend", storage.Describe(s.backend), "err", err)
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Err: errors.New("must not be empty")}
	}
	return title, nil
}

func projectIndex(doc *models.Document, id string) int {
	for i := range doc.Projects {
		if doc.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

func milestoneIndex(p *models.Project, id string) int {
	for i := range p.Milestones {
		if p.Milestones[i].ID == id {
			return i
		}
	}
	return -1
}

func taskIndex(m *models.Milestone, id string) int {
	for i := range m.Tasks {
		if m.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func findProject(doc *models.Document, projectID string) (*models.Project, error) {
	i := projectIndex(doc, projectID)
	if i < 0 {
		return nil, notFound(KindProject, projectID)
	}
	return &doc.Projects[i], nil
}

func findMilestone(doc *models.Document, projectID, milestoneID string) (*models.Project, *models.Milestone, error) {
	p, err := findProject(doc, projectID)
	if err != nil {
		return nil, nil, err
	}
	i := milestoneIndex(p, milestoneID)
	if i < 0 {
		return nil, nil, notFound(KindMilestone, milestoneID)
	}
	return p, &p.Milestones[i], nil
}

func findTask(doc *models.Document, projectID, milestoneID, taskID string) (*models.Project, *models.Milestone, *models.Task, error) {
	p, m, err := findMilestone(doc, projectID, milestoneID)
	if err != nil {
		return nil, nil, nil, err
	}
	i := taskIndex(m, taskID)
	if i < 0 {
		return nil, nil, nil, notFound(KindTask, taskID)
	}
	return p, m, &m.Tasks[i], nil
}
