package achievements

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/certprep/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func score(v float64) *float64 { return &v }

// completed builds a finished record of n questions. correct of them score 1.
func completed(id string, at time.Time, n, correct int) models.SavedTest {
	p := models.Progress{
		UserAnswers:        make([]models.Answer, n),
		QuestionScore:      make([]*float64, n),
		QuestionSubmitted:  make([]bool, n),
		TotalQuestions:     n,
		CompletedQuestions: n,
		ElapsedSeconds:     600,
	}
	for i := 0; i < n; i++ {
		p.QuestionSubmitted[i] = true
		if i < correct {
			p.QuestionScore[i] = score(1)
		} else {
			p.QuestionScore[i] = score(0)
		}
	}
	return models.SavedTest{
		ID:           id,
		Title:        "Practice " + id,
		DateCreated:  at,
		DateModified: at,
		Progress:     p,
	}
}

func TestEvaluateFirstTestAndPerfectScore(t *testing.T) {
	rec := completed("r1", base, 3, 3)

	got := Evaluate(Input{Record: rec})

	assert.Contains(t, got, "first_test")
	assert.Contains(t, got, "perfect_score")
	assert.NotContains(t, got, "perfectionist")
}

func TestEvaluateIncompleteRecordEarnsNothing(t *testing.T) {
	rec := completed("r1", base, 3, 3)
	rec.Progress.QuestionSubmitted[2] = false
	rec.Progress.CompletedQuestions = 2

	assert.Empty(t, Evaluate(Input{Record: rec}))
}

func TestEvaluateSkipsEarned(t *testing.T) {
	rec := completed("r1", base, 3, 3)

	got := Evaluate(Input{Record: rec, Earned: []string{"first_test"}})

	assert.Equal(t, []string{"perfect_score"}, got)
}

func TestEvaluateThirtyDayStreak(t *testing.T) {
	build := func(gapAt int) []models.SavedTest {
		var recs []models.SavedTest
		day := base
		for i := 0; i < 30; i++ {
			if i == gapAt {
				day = day.AddDate(0, 0, 1)
			}
			recs = append(recs, completed(fmt.Sprintf("r%02d", i), day, 2, 1))
			day = day.AddDate(0, 0, 1)
		}
		return recs
	}

	recs := build(-1)
	got := Evaluate(Input{Record: recs[len(recs)-1], History: recs})
	assert.Contains(t, got, "unstoppable")
	assert.Contains(t, got, "consistent_learner")

	gapped := build(15)
	got = Evaluate(Input{Record: gapped[len(gapped)-1], History: gapped})
	assert.NotContains(t, got, "unstoppable")
	assert.Contains(t, got, "consistent_learner")
}

func TestEvaluateStreakIgnoresLaterResaves(t *testing.T) {
	resaved := base.AddDate(0, 2, 0)

	var recs []models.SavedTest
	for i := 0; i < 30; i++ {
		rec := completed(fmt.Sprintf("r%02d", i), base.AddDate(0, 0, i), 2, 1)
		rec.DateModified = resaved
		recs = append(recs, rec)
	}

	got := Evaluate(Input{Record: recs[0], History: recs})
	assert.Contains(t, got, "consistent_learner")
	assert.Contains(t, got, "unstoppable")
}

func TestEvaluateUsesDateCompleted(t *testing.T) {
	rec := completed("r1", base, 2, 2)
	finished := time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)
	rec.DateCompleted = &finished
	rec.DateModified = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	got := Evaluate(Input{Record: rec})
	assert.Contains(t, got, "night_owl")
	assert.NotContains(t, got, "early_bird")

	assert.True(t, rec.CompletedAt().Equal(finished))
	rec.DateCompleted = nil
	assert.True(t, rec.CompletedAt().Equal(base))
}

func TestEvaluateOrderIndependentAndIdempotent(t *testing.T) {
	var history []models.SavedTest
	for i := 0; i < 12; i++ {
		rec := completed(fmt.Sprintf("r%02d", i), base.AddDate(0, 0, i%4).Add(time.Duration(i)*7*time.Hour), 4, 4-i%2)
		history = append(history, rec)
	}
	history[3].Title = "Azure basics"
	history[4].Title = "Python loops"
	history[5].Title = "Algebra quiz"
	history[6].Title = "Biology cells"
	history[7].Title = "World history"
	history[8].Progress.ElapsedSeconds = 45
	rec := history[11]

	want := Evaluate(Input{Record: rec, History: history})
	assert.Equal(t, want, Evaluate(Input{Record: rec, History: history}))

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]models.SavedTest(nil), history...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Evaluate(Input{Record: rec, History: shuffled}))
	}

	assert.Contains(t, want, "dedicated_learner")
	assert.Contains(t, want, "explorer")
	assert.Contains(t, want, "lightning_fast")
}

func TestEvaluateNoDuplicatesAndCatalogOrder(t *testing.T) {
	rec := completed("r1", base, 2, 2)
	history := []models.SavedTest{rec, rec, rec}

	got := Evaluate(Input{Record: rec, History: history})

	seen := map[string]bool{}
	last := -1
	for _, id := range got {
		require.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
		idx := catalogIndex(id)
		require.Greater(t, idx, last, "%s out of catalog order", id)
		last = idx
	}
}

func TestEvaluateRecordReplacesHistoryEntry(t *testing.T) {
	stale := completed("r1", base, 3, 3)
	stale.Progress.CompletedQuestions = 1
	stale.Progress.QuestionSubmitted = []bool{true, false, false}

	rec := completed("r1", base.Add(time.Hour), 3, 3)

	got := Evaluate(Input{Record: rec, History: []models.SavedTest{stale}})
	assert.Contains(t, got, "first_test")
}

func TestEvaluateCounts(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		perfect   int
		want      []string
		notWant   []string
	}{
		{"nine completed", 9, 0, []string{"first_test"}, []string{"dedicated_learner", "perfect_score"}},
		{"ten completed", 10, 0, []string{"dedicated_learner"}, []string{"test_master"}},
		{"fifty completed", 50, 0, []string{"test_master"}, nil},
		{"ten perfect", 10, 10, []string{"perfect_score", "perfectionist"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var history []models.SavedTest
			for i := 0; i < tt.completed; i++ {
				correct := 1
				if i < tt.perfect {
					correct = 2
				}
				// same day, so no streak badges
				history = append(history, completed(fmt.Sprintf("r%02d", i), base.Add(time.Duration(i)*time.Minute), 2, correct))
			}

			got := Evaluate(Input{Record: history[0], History: history})
			for _, id := range tt.want {
				assert.Contains(t, got, id)
			}
			for _, id := range tt.notWant {
				assert.NotContains(t, got, id)
			}
		})
	}
}

func TestEvaluateSpeed(t *testing.T) {
	tests := []struct {
		elapsed   int
		speed     bool
		lightning bool
	}{
		{0, false, false},
		{30, true, true},
		{59, true, true},
		{60, true, false},
		{119, true, false},
		{120, false, false},
	}

	for _, tt := range tests {
		rec := completed("r1", base, 2, 1)
		rec.Progress.ElapsedSeconds = tt.elapsed
		got := Evaluate(Input{Record: rec})

		if has(got, "speed_demon") != tt.speed {
			t.Errorf("elapsed %d: speed_demon = %v, want %v", tt.elapsed, has(got, "speed_demon"), tt.speed)
		}
		if has(got, "lightning_fast") != tt.lightning {
			t.Errorf("elapsed %d: lightning_fast = %v, want %v", tt.elapsed, has(got, "lightning_fast"), tt.lightning)
		}
	}
}

func TestEvaluateHourOfDay(t *testing.T) {
	tests := []struct {
		hour  int
		owl   bool
		early bool
	}{
		{3, true, true},
		{5, true, true},
		{6, false, true},
		{7, false, false},
		{12, false, false},
		{21, false, false},
		{22, true, false},
		{23, true, false},
	}

	for _, tt := range tests {
		at := time.Date(2026, 3, 2, tt.hour, 30, 0, 0, time.UTC)
		got := Evaluate(Input{Record: completed("r1", at, 2, 1)})

		if has(got, "night_owl") != tt.owl {
			t.Errorf("hour %d: night_owl = %v, want %v", tt.hour, has(got, "night_owl"), tt.owl)
		}
		if has(got, "early_bird") != tt.early {
			t.Errorf("hour %d: early_bird = %v, want %v", tt.hour, has(got, "early_bird"), tt.early)
		}
	}
}

func TestEvaluateHourUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 14:00 UTC is 23:00 at +9.
	rec := completed("r1", time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), 2, 1)

	assert.NotContains(t, Evaluate(Input{Record: rec}), "night_owl")
	assert.Contains(t, Evaluate(Input{Record: rec, Location: loc}), "night_owl")
}

func TestEvaluateCreatedTests(t *testing.T) {
	created := func(n int) []models.CreatedTest {
		out := make([]models.CreatedTest, n)
		for i := range out {
			out[i] = models.CreatedTest{ID: fmt.Sprintf("c%d", i)}
		}
		return out
	}

	assert.Empty(t, Evaluate(Input{}))
	assert.Equal(t, []string{"test_creator"}, Evaluate(Input{Created: created(1)}))
	assert.Equal(t, []string{"test_creator", "prolific_creator"}, Evaluate(Input{Created: created(10)}))
}

func TestLongestStreak(t *testing.T) {
	d := func(day, hour int) time.Time { return time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{"empty", nil, 0},
		{"single", []time.Time{d(1, 9)}, 1},
		{"same day twice", []time.Time{d(1, 9), d(1, 23)}, 1},
		{"three consecutive", []time.Time{d(3, 1), d(1, 9), d(2, 23)}, 3},
		{"gap of two days", []time.Time{d(1, 9), d(3, 9), d(4, 9)}, 2},
		{"longest run wins", []time.Time{d(1, 9), d(2, 9), d(5, 9), d(6, 9), d(7, 9), d(10, 9)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongestStreak(tt.times, time.UTC); got != tt.want {
				t.Errorf("LongestStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubjects(t *testing.T) {
	recs := []models.SavedTest{
		{Title: "Algebra Quiz"},
		{Title: "AZ-900: Azure networking"},
		{Title: "Untitled"},
		{Title: "algebra 2"},
	}

	assert.Equal(t, []string{"cloud", "math", "networking"}, Subjects(recs))
}

func catalogIndex(id string) int {
	for i, def := range Catalog {
		if def.ID == id {
			return i
		}
	}
	return -1
}

func has(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
