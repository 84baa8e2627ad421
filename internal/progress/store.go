package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/certprep/backend/internal/attempt"
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("saved test not found")
	ErrTitleConflict = errors.New("a saved test with this title already exists")
	ErrTitleRequired = errors.New("title is required")
)

// TitleConflictError reports a save whose title matches a different record.
type TitleConflictError struct {
	Title      string
	ExistingID string
}

func (e *TitleConflictError) Error() string {
	return fmt.Sprintf("saved test %q already exists as %s", e.Title, e.ExistingID)
}

func (e *TitleConflictError) Unwrap() error { return ErrTitleConflict }

// SaveOptions controls Save.
type SaveOptions struct {
	// Overwrite confirms replacing a different record that has the same title.
	Overwrite bool
}

// Store is one user's view of saved tests on a backend. Writes are
// last-write-wins; there is no locking between sessions.
type Store struct {
	backend Backend
	userID  int64
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(backend Backend, userID int64, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		userID:  userID,
		now:     time.Now,
		newID:   newRecordID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newRecordID returns a time-ordered UUID.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) UserID() int64 { return s.userID }

// List returns every saved test of the user in no particular order.
func (s *Store) List(ctx context.Context) ([]models.SavedTest, error) {
	recs, err := s.backend.Load(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list saved tests: %w", err)
	}
	for i := range recs {
		s.repair(ctx, &recs[i])
	}
	return recs, nil
}

// Get returns one saved test or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.SavedTest, error) {
	if g, ok := s.backend.(recordGetter); ok {
		rec, err := g.Get(ctx, s.userID, id)
		if err != nil {
			return nil, err
		}
		s.repair(ctx, rec)
		return rec, nil
	}

	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if rec := findByID(recs, id); rec != nil {
		return rec, nil
	}
	return nil, ErrNotFound
}

// Save inserts or replaces rec. A record with a known id is replaced. When
// the title matches a different record case-insensitively, Save fails with a
// *TitleConflictError unless opts.Overwrite is set. With Overwrite a new
// record replaces the other one in place, and a renamed record replaces it
// and the other one is removed.
func (s *Store) Save(ctx context.Context, rec models.SavedTest, opts SaveOptions) (*models.SavedTest, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return nil, ErrTitleRequired
	}

	existing, err := s.backend.Load(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("load saved tests: %w", err)
	}

	var target *models.SavedTest
	if rec.ID != "" {
		target = findByID(existing, rec.ID)
	}

	// displaced is another record holding the title; an overwrite removes it.
	var displaced *models.SavedTest
	exclude := ""
	if target != nil {
		exclude = target.ID
	}
	if dup := findByTitle(existing, rec.Title, exclude); dup != nil {
		if !opts.Overwrite {
			return nil, &TitleConflictError{Title: rec.Title, ExistingID: dup.ID}
		}
		if target == nil {
			target = dup
		} else {
			displaced = dup
		}
	}

	now := s.now().UTC()
	if target != nil {
		rec.ID = target.ID
		rec.DateCreated = target.DateCreated
		if rec.OriginalTest == nil {
			rec.OriginalTest = target.OriginalTest
		}
	} else {
		if rec.ID == "" {
			rec.ID = s.newID()
		}
		rec.DateCreated = now
	}
	rec.DateModified = now
	rec.Synced = s.backend.Synced()
	s.repair(ctx, &rec)
	stampCompletion(&rec, target, now)
	if err := attempt.ValidateQuestions(rec.Questions); err != nil {
		// Ungradable questions score 0; the record is still worth keeping.
		config.WithContext(ctx).WithError(err).WithField("saved_test_id", rec.ID).Warn("Saved test has invalid questions")
	}

	if err := s.backend.Put(ctx, s.userID, rec); err != nil {
		return nil, fmt.Errorf("persist saved test %s: %w", rec.ID, err)
	}
	if displaced != nil {
		if err := s.backend.Remove(ctx, s.userID, displaced.ID); err != nil {
			return nil, fmt.Errorf("remove overwritten saved test %s: %w", displaced.ID, err)
		}
	}
	return &rec, nil
}

// Delete removes a saved test. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes every listed saved test that exists.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	if err := s.backend.Remove(ctx, s.userID, ids...); err != nil {
		return fmt.Errorf("delete saved tests: %w", err)
	}
	return nil
}

// ClearAll removes all of the user's saved tests.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.Clear(ctx, s.userID); err != nil {
		return fmt.Errorf("clear saved tests: %w", err)
	}
	return nil
}

func (s *Store) repair(ctx context.Context, rec *models.SavedTest) {
	if warnings := normalize(rec); len(warnings) > 0 {
		config.WithContext(ctx).
			WithField("saved_test_id", rec.ID).
			WithField("repairs", warnings).
			Warn("Saved test was malformed, substituted defaults")
	}
}

// stampCompletion sets DateCompleted the first time a record is finished and
// keeps the earlier stamp on later saves. Unfinished records carry none.
func stampCompletion(rec, prev *models.SavedTest, now time.Time) {
	if !rec.Progress.Completed() {
		rec.DateCompleted = nil
		return
	}
	switch {
	case prev != nil && prev.DateCompleted != nil:
		rec.DateCompleted = prev.DateCompleted
	case rec.DateCompleted == nil:
		rec.DateCompleted = &now
	}
}

func findByID(recs []models.SavedTest, id string) *models.SavedTest {
	for i := range recs {
		if recs[i].ID == id {
			return &recs[i]
		}
	}
	return nil
}

// findByTitle returns the first record other than excludeID whose title
// matches case-insensitively.
func findByTitle(recs []models.SavedTest, title, excludeID string) *models.SavedTest {
	for i := range recs {
		if excludeID != "" && recs[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(recs[i].Title), title) {
			return &recs[i]
		}
	}
	return nil
}
