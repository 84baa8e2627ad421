package achievements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/certprep/backend/internal/attempt"
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/certprep/backend/internal/progress"
	"github.com/google/uuid"
)

var ErrCreatedTitleRequired = errors.New("created test title is required")

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService builds a service. loc is the zone completion hours and streak
// days are judged in; nil means UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// AwardForSave evaluates the user's history after rec was saved and persists
// any newly earned achievements. It returns their ids.
func (s *Service) AwardForSave(ctx context.Context, store *progress.Store, rec models.SavedTest) ([]string, error) {
	userID := store.UserID()

	history, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return s.award(ctx, userID, Input{Record: rec, History: history})
}

func (s *Service) award(ctx context.Context, userID int64, in Input) ([]string, error) {
	created, err := s.repo.CreatedTests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load created tests: %w", err)
	}
	earned, err := s.repo.Earned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	in.Created = created
	in.Earned = earnedIDs(earned)
	in.Location = s.loc

	ids := Evaluate(in)
	if len(ids) == 0 {
		return ids, nil
	}
	if err := s.repo.Award(ctx, userID, ids, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("award achievements: %w", err)
	}

	config.WithContext(ctx).WithField("achievements", ids).Info("Achievements unlocked")
	return ids, nil
}

// Status returns the full catalog with the user's earned flags.
func (s *Service) Status(ctx context.Context, userID int64) (*models.AchievementsResponse, error) {
	earned, err := s.repo.Earned(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := make(map[string]time.Time, len(earned))
	for _, e := range earned {
		at[e.ID] = e.EarnedAt
	}

	resp := &models.AchievementsResponse{Achievements: make([]models.AchievementStatus, 0, len(Catalog))}
	for _, def := range Catalog {
		st := models.AchievementStatus{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Points:      def.Points,
		}
		if t, ok := at[def.ID]; ok {
			st.Earned = true
			st.EarnedAt = &t
			resp.EarnedCount++
			resp.TotalPoints += def.Points
		}
		resp.Achievements = append(resp.Achievements, st)
	}
	return resp, nil
}

func (s *Service) CreatedTests(ctx context.Context, userID int64) ([]models.CreatedTest, error) {
	return s.repo.CreatedTests(ctx, userID)
}

// AddCreatedTest records a test authored by the user and awards any creator
// badges it unlocks.
func (s *Service) AddCreatedTest(ctx context.Context, userID int64, req models.CreateTestRequest) (*models.CreateTestResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrCreatedTitleRequired
	}

	count := max(req.QuestionCount, 0)
	if len(req.Questions) > 0 {
		if err := attempt.ValidateQuestions(req.Questions); err != nil {
			return nil, err
		}
		count = len(req.Questions)
	}

	t := models.CreatedTest{
		ID:            uuid.NewString(),
		Title:         title,
		QuestionCount: count,
		DateCreated:   s.now().UTC(),
	}
	if err := s.repo.AddCreatedTest(ctx, userID, t); err != nil {
		return nil, err
	}

	unlocked, err := s.award(ctx, userID, Input{})
	if err != nil {
		// The test is stored; badges catch up on the next save.
		config.WithContext(ctx).WithError(err).Warn("Achievement evaluation failed")
		unlocked = []string{}
	}
	return &models.CreateTestResponse{CreatedTest: &t, AchievementsUnlocked: unlocked}, nil
}

func earnedIDs(earned []models.EarnedAchievement) []string {
	ids := make([]string, len(earned))
	for i, e := range earned {
		ids[i] = e.ID
	}
	return ids
}
