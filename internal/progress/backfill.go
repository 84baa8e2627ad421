package progress

import (
	"context"
	"fmt"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/certprep/backend/internal/titles"
)

// BackfillTitles stamps an inferred original title on every record that has
// none. Records keep their modification time so the migration does not look
// like study activity. It returns the number of records updated.
func (s *Store) BackfillTitles(ctx context.Context) (int, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, rec := range recs {
		if rec.OriginalTest != nil && rec.OriginalTest.Title != "" {
			continue
		}

		inf := titles.Infer(rec)
		if inf.Source == titles.SourceSavedTitle {
			continue
		}

		ot := models.OriginalTest{Title: inf.Title, ExamCode: inf.ExamCode, Inferred: true}
		if rec.OriginalTest != nil {
			ot.SourceURL = rec.OriginalTest.SourceURL
			if ot.ExamCode == "" {
				ot.ExamCode = rec.OriginalTest.ExamCode
			}
		}
		rec.OriginalTest = &ot

		if err := s.backend.Put(ctx, s.userID, rec); err != nil {
			return updated, fmt.Errorf("backfill saved test %s: %w", rec.ID, err)
		}
		updated++

		config.WithContext(ctx).
			WithField("saved_test_id", rec.ID).
			WithField("source", inf.Source).
			Debug("Backfilled original title")
	}
	return updated, nil
}
