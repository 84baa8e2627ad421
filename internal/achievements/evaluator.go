package achievements

import (
	"time"

	"github.com/certprep/backend/internal/models"
)

// Input is everything Evaluate looks at. Record is the test that was just
// saved; History is the user's full record collection and may or may not
// already contain it.
type Input struct {
	Record   models.SavedTest
	History  []models.SavedTest
	Created  []models.CreatedTest
	Earned   []string
	Location *time.Location
}

// Evaluate returns the ids of achievements the user now qualifies for and
// has not earned yet, in catalog order. It performs no I/O and reads no
// clock, so the same input always yields the same result regardless of the
// order of History.
func Evaluate(in Input) []string {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	qualified := qualify(merge(in.Record, in.History), len(in.Created), loc)

	earned := make(map[string]bool, len(in.Earned))
	for _, id := range in.Earned {
		earned[id] = true
	}

	out := []string{}
	for _, def := range Catalog {
		if qualified[def.ID] && !earned[def.ID] {
			out = append(out, def.ID)
		}
	}
	return out
}

func qualify(recs []models.SavedTest, createdCount int, loc *time.Location) map[string]bool {
	q := make(map[string]bool)

	var completed, perfect int
	var completions []time.Time
	for _, rec := range recs {
		p := rec.Progress
		if !p.Completed() {
			continue
		}
		completed++
		at := rec.CompletedAt()
		completions = append(completions, at)

		if p.Perfect() {
			perfect++
		}
		if p.ElapsedSeconds > 0 {
			if p.ElapsedSeconds < speedDemonSeconds {
				q["speed_demon"] = true
			}
			if p.ElapsedSeconds < lightningFastSeconds {
				q["lightning_fast"] = true
			}
		}

		hour := at.In(loc).Hour()
		if hour >= nightOwlFromHour || hour < nightOwlUntilHour {
			q["night_owl"] = true
		}
		if hour < earlyBirdUntil {
			q["early_bird"] = true
		}
	}

	q["first_test"] = completed >= 1
	q["dedicated_learner"] = completed >= dedicatedCount
	q["test_master"] = completed >= masterCount
	q["perfect_score"] = perfect >= 1
	q["perfectionist"] = perfect >= perfectionistCount

	streak := LongestStreak(completions, loc)
	q["consistent_learner"] = streak >= consistentStreakDays
	q["unstoppable"] = streak >= unstoppableStreakDays

	q["test_creator"] = createdCount >= creatorCount
	q["prolific_creator"] = createdCount >= prolificCount

	q["explorer"] = len(Subjects(recs)) >= explorerSubjects

	return q
}

// merge combines the record with history, keyed by id. The record replaces
// any history entry with its id. Duplicate history ids keep the entry
// modified last so the outcome does not depend on slice order.
func merge(rec models.SavedTest, history []models.SavedTest) []models.SavedTest {
	out := make([]models.SavedTest, 0, len(history)+1)
	index := make(map[string]int, len(history)+1)

	add := func(r models.SavedTest, force bool) {
		if r.ID == "" {
			out = append(out, r)
			return
		}
		i, seen := index[r.ID]
		if !seen {
			index[r.ID] = len(out)
			out = append(out, r)
			return
		}
		if force || newer(r, out[i]) {
			out[i] = r
		}
	}

	for _, h := range history {
		add(h, false)
	}
	if rec.ID != "" || !isZeroRecord(rec) {
		add(rec, true)
	}
	return out
}

func newer(a, b models.SavedTest) bool {
	if !a.DateModified.Equal(b.DateModified) {
		return a.DateModified.After(b.DateModified)
	}
	return a.Progress.CompletedQuestions > b.Progress.CompletedQuestions
}

func isZeroRecord(rec models.SavedTest) bool {
	return rec.Title == "" && rec.Progress.TotalQuestions == 0 && len(rec.Questions) == 0
}
