package progress

import (
	"fmt"
	"math"
	"sort"

	"github.com/certprep/backend/internal/models"
)

// normalize repairs a record in place so its progress block lines up with
// its questions. It returns a description of every repair made.
func normalize(rec *models.SavedTest) []string {
	var warnings []string

	if rec.Questions == nil {
		warnings = append(warnings, "missing questions")
		rec.Questions = []models.Question{}
	}
	if rec.Type == "" {
		rec.Type = models.TestRegular
	}

	p := &rec.Progress
	if p.UserAnswers == nil && p.QuestionScore == nil && p.QuestionSubmitted == nil && len(rec.Questions) > 0 {
		warnings = append(warnings, "missing progress")
	}

	n := len(rec.Questions)
	if n == 0 {
		// Without questions the progress block is the only size we have.
		n = max(p.TotalQuestions, len(p.QuestionSubmitted))
	}
	if p.TotalQuestions != n {
		if p.TotalQuestions != 0 {
			warnings = append(warnings, "total_questions did not match question count")
		}
		p.TotalQuestions = n
	}

	if len(p.UserAnswers) != n {
		p.UserAnswers = resize(p.UserAnswers, n)
	}
	for i := range p.UserAnswers {
		if p.UserAnswers[i].Malformed {
			warnings = append(warnings, fmt.Sprintf("answer %d was unreadable and was cleared", i+1))
			p.UserAnswers[i] = models.Answer{}
		}
	}
	if len(p.QuestionScore) != n {
		p.QuestionScore = resize(p.QuestionScore, n)
	}
	if len(p.QuestionSubmitted) != n {
		if p.QuestionSubmitted != nil {
			warnings = append(warnings, "question_submitted length did not match question count")
		}
		p.QuestionSubmitted = resize(p.QuestionSubmitted, n)
	}

	if p.Current < 0 || (n > 0 && p.Current >= n) || n == 0 {
		p.Current = 0
	}
	if p.ElapsedSeconds < 0 {
		p.ElapsedSeconds = 0
	}

	completed := p.SubmittedCount()
	if p.CompletedQuestions != completed {
		if p.CompletedQuestions != 0 {
			warnings = append(warnings, "completed_questions did not match submitted flags")
		}
		p.CompletedQuestions = completed
	}

	return warnings
}

func resize[T any](in []T, n int) []T {
	out := make([]T, n)
	copy(out, in)
	return out
}

// CalculateProgress returns the share of submitted questions as a whole
// percentage.
func CalculateProgress(p models.Progress) int {
	total := p.TotalQuestions
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.SubmittedCount()) * 100 / float64(total)))
}

// SortByModified orders records newest first.
func SortByModified(recs []models.SavedTest) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].DateModified.Equal(recs[j].DateModified) {
			return recs[i].DateModified.After(recs[j].DateModified)
		}
		return recs[i].ID < recs[j].ID
	})
}

// Summarize strips a record down to its list view.
func Summarize(rec models.SavedTest) models.SavedTestSummary {
	return models.SavedTestSummary{
		ID:              rec.ID,
		Title:           rec.Title,
		Type:            rec.Type,
		DateCreated:     rec.DateCreated,
		DateModified:    rec.DateModified,
		DateCompleted:   rec.DateCompleted,
		TotalQuestions:  rec.Progress.TotalQuestions,
		Completed:       rec.Progress.CompletedQuestions,
		PercentComplete: CalculateProgress(rec.Progress),
		OriginalTest:    rec.OriginalTest,
		Synced:          rec.Synced,
	}
}
