package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/lib/pq"
)

// RemoteBackend stores each saved test as a JSONB document row in Postgres.
type RemoteBackend struct {
	db *sql.DB
}

func NewRemoteBackend(db *sql.DB) *RemoteBackend {
	return &RemoteBackend{db: db}
}

func (b *RemoteBackend) Synced() bool { return true }

func (b *RemoteBackend) Load(ctx context.Context, userID int64) ([]models.SavedTest, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, document FROM saved_tests WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list saved tests: %w", err)
	}
	defer rows.Close()

	recs := []models.SavedTest{}
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan saved test: %w", err)
		}
		rec, err := decodeDocument(id, doc)
		if err != nil {
			config.WithContext(ctx).WithError(err).WithField("saved_test_id", id).Warn("Skipping undecodable saved test")
			continue
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (b *RemoteBackend) Get(ctx context.Context, userID int64, id string) (*models.SavedTest, error) {
	var doc []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT document FROM saved_tests WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get saved test: %w", err)
	}
	return decodeDocument(id, doc)
}

func (b *RemoteBackend) Put(ctx context.Context, userID int64, rec models.SavedTest) error {
	rec.Synced = true
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode saved test: %w", err)
	}

	res, err := b.db.ExecContext(ctx,
		`INSERT INTO saved_tests (id, user_id, title, test_type, document,
		                          total_questions, completed_questions, date_created, date_modified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     title = EXCLUDED.title,
		     test_type = EXCLUDED.test_type,
		     document = EXCLUDED.document,
		     total_questions = EXCLUDED.total_questions,
		     completed_questions = EXCLUDED.completed_questions,
		     date_modified = EXCLUDED.date_modified
		 WHERE saved_tests.user_id = EXCLUDED.user_id`,
		rec.ID, userID, rec.Title, string(rec.Type), doc,
		rec.Progress.TotalQuestions, rec.Progress.CompletedQuestions,
		rec.DateCreated, rec.DateModified,
	)
	if err != nil {
		return fmt.Errorf("upsert saved test: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("upsert saved test %s: id owned by another user", rec.ID)
	}
	return nil
}

func (b *RemoteBackend) Remove(ctx context.Context, userID int64, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM saved_tests WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("delete saved tests: %w", err)
	}
	return nil
}

func (b *RemoteBackend) Clear(ctx context.Context, userID int64) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM saved_tests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear saved tests: %w", err)
	}
	return nil
}

// UserIDs lists every user that has at least one saved test.
func (b *RemoteBackend) UserIDs(ctx context.Context) ([]int64, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM saved_tests ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list saved test owners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func decodeDocument(id string, doc []byte) (*models.SavedTest, error) {
	var rec models.SavedTest
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("decode saved test %s: %w", id, err)
	}
	rec.ID = id
	rec.Synced = true
	return &rec, nil
}
