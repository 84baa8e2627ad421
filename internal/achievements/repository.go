package achievements

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/certprep/backend/internal/models"
	"github.com/certprep/backend/internal/progress"
)

// Repository persists earned achievements and created tests.
type Repository interface {
	Earned(ctx context.Context, userID int64) ([]models.EarnedAchievement, error)
	// Award records ids as earned at the given time. Ids already earned are
	// left untouched.
	Award(ctx context.Context, userID int64, ids []string, at time.Time) error
	CreatedTests(ctx context.Context, userID int64) ([]models.CreatedTest, error)
	AddCreatedTest(ctx context.Context, userID int64, t models.CreatedTest) error
}

// ── Postgres ──────────────────────────────────────────────

type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) Earned(ctx context.Context, userID int64) ([]models.EarnedAchievement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT achievement_id, earned_at FROM user_achievements WHERE user_id = $1 ORDER BY earned_at, achievement_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	defer rows.Close()

	earned := []models.EarnedAchievement{}
	for rows.Next() {
		var e models.EarnedAchievement
		if err := rows.Scan(&e.ID, &e.EarnedAt); err != nil {
			return nil, err
		}
		earned = append(earned, e)
	}
	return earned, rows.Err()
}

func (r *PGRepository) Award(ctx context.Context, userID int64, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin award: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_achievements (user_id, achievement_id, earned_at) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, achievement_id) DO NOTHING`,
			userID, id, at,
		); err != nil {
			return fmt.Errorf("award %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *PGRepository) CreatedTests(ctx context.Context, userID int64) ([]models.CreatedTest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, question_count, date_created FROM created_tests WHERE user_id = $1 ORDER BY date_created DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get created tests: %w", err)
	}
	defer rows.Close()

	tests := []models.CreatedTest{}
	for rows.Next() {
		var t models.CreatedTest
		if err := rows.Scan(&t.ID, &t.Title, &t.QuestionCount, &t.DateCreated); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (r *PGRepository) AddCreatedTest(ctx context.Context, userID int64, t models.CreatedTest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO created_tests (id, user_id, title, question_count, date_created) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, userID, t.Title, t.QuestionCount, t.DateCreated,
	)
	if err != nil {
		return fmt.Errorf("insert created test: %w", err)
	}
	return nil
}

// ── Key-value ─────────────────────────────────────────────

const (
	achievementsKey = "achievements"
	createdTestsKey = "createdTests"
)

// KVRepository keeps achievements and created tests as JSON arrays next to
// the saved test collection.
type KVRepository struct {
	kv progress.KeyValue
}

func NewKVRepository(kv progress.KeyValue) *KVRepository {
	return &KVRepository{kv: kv}
}

func userKey(prefix string, userID int64) string {
	return fmt.Sprintf("%s:%d", prefix, userID)
}

func (r *KVRepository) Earned(ctx context.Context, userID int64) ([]models.EarnedAchievement, error) {
	earned := []models.EarnedAchievement{}
	if err := r.load(ctx, userKey(achievementsKey, userID), &earned); err != nil {
		return nil, err
	}
	return earned, nil
}

func (r *KVRepository) Award(ctx context.Context, userID int64, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	earned, err := r.Earned(ctx, userID)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(earned))
	for _, e := range earned {
		have[e.ID] = true
	}
	added := false
	for _, id := range ids {
		if !have[id] {
			have[id] = true
			earned = append(earned, models.EarnedAchievement{ID: id, EarnedAt: at})
			added = true
		}
	}
	if !added {
		return nil
	}
	return r.store(ctx, userKey(achievementsKey, userID), earned)
}

func (r *KVRepository) CreatedTests(ctx context.Context, userID int64) ([]models.CreatedTest, error) {
	tests := []models.CreatedTest{}
	if err := r.load(ctx, userKey(createdTestsKey, userID), &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *KVRepository) AddCreatedTest(ctx context.Context, userID int64, t models.CreatedTest) error {
	tests, err := r.CreatedTests(ctx, userID)
	if err != nil {
		return err
	}
	tests = append(tests, t)
	return r.store(ctx, userKey(createdTestsKey, userID), tests)
}

func (r *KVRepository) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
