package models

import "time"

type TestType string

const (
	TestPractice  TestType = "practice"
	TestCaseStudy TestType = "case_study"
	TestRegular   TestType = "regular"
)

// SavedTest is a persisted snapshot of one user's progress through one quiz
// attempt. Questions are copied in so the record replays without its source.
// DateCompleted is stamped by the first save that finishes the attempt and
// kept by later saves.
type SavedTest struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Type          TestType      `json:"type"`
	DateCreated   time.Time     `json:"date_created"`
	DateModified  time.Time     `json:"date_modified"`
	DateCompleted *time.Time    `json:"date_completed,omitempty"`
	Progress      Progress      `json:"progress"`
	Questions     []Question    `json:"questions"`
	OriginalTest  *OriginalTest `json:"original_test,omitempty"`
	Synced        bool          `json:"synced"`
}

// CompletedAt is when the attempt was finished. Records saved before
// DateCompleted existed fall back to DateCreated, so re-saving an old record
// never moves its completion day.
func (t SavedTest) CompletedAt() time.Time {
	if t.DateCompleted != nil && !t.DateCompleted.IsZero() {
		return *t.DateCompleted
	}
	if t.DateCreated.IsZero() {
		return t.DateModified
	}
	return t.DateCreated
}

type Progress struct {
	Current            int        `json:"current"`
	UserAnswers        []Answer   `json:"user_answers"`
	QuestionScore      []*float64 `json:"question_score"`
	QuestionSubmitted  []bool     `json:"question_submitted"`
	TotalQuestions     int        `json:"total_questions"`
	CompletedQuestions int        `json:"completed_questions"`
	ElapsedSeconds     int        `json:"elapsed_seconds"`
}

// SubmittedCount counts submitted questions.
func (p Progress) SubmittedCount() int {
	n := 0
	for _, s := range p.QuestionSubmitted {
		if s {
			n++
		}
	}
	return n
}

// Completed reports whether every question has been submitted.
func (p Progress) Completed() bool {
	return p.TotalQuestions > 0 && p.CompletedQuestions == p.TotalQuestions
}

// Perfect reports a completed attempt with every question answered correctly.
func (p Progress) Perfect() bool {
	if !p.Completed() || len(p.QuestionScore) != p.TotalQuestions {
		return false
	}
	for _, s := range p.QuestionScore {
		if s == nil || *s <= 0 {
			return false
		}
	}
	return true
}

// OriginalTest points back at the test a record was taken from.
type OriginalTest struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url,omitempty"`
	ExamCode  string `json:"exam_code,omitempty"`
	Inferred  bool   `json:"inferred,omitempty"`
}

// CreatedTest is a test the user authored in the builder.
type CreatedTest struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	DateCreated   time.Time `json:"date_created"`
}

// ── Request Types ─────────────────────────────────────────

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type CreateTestRequest struct {
	Title         string     `json:"title"`
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions,omitempty"`
}

// ── Response Types ────────────────────────────────────────

type SaveTestResponse struct {
	SavedTest            *SavedTest `json:"saved_test"`
	PercentComplete      int        `json:"percent_complete"`
	AchievementsUnlocked []string   `json:"achievements_unlocked"`
}

type SavedTestSummary struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Type            TestType      `json:"type"`
	DateCreated     time.Time     `json:"date_created"`
	DateModified    time.Time     `json:"date_modified"`
	DateCompleted   *time.Time    `json:"date_completed,omitempty"`
	TotalQuestions  int           `json:"total_questions"`
	Completed       int           `json:"completed_questions"`
	PercentComplete int           `json:"percent_complete"`
	OriginalTest    *OriginalTest `json:"original_test,omitempty"`
	Synced          bool          `json:"synced"`
}

type TitleConflictResponse struct {
	Error      string `json:"error"`
	ExistingID string `json:"existing_id"`
}

type OriginalTitleResponse struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

type CreateTestResponse struct {
	CreatedTest          *CreatedTest `json:"created_test"`
	AchievementsUnlocked []string     `json:"achievements_unlocked"`
}
