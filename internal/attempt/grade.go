package attempt

import "github.com/certprep/backend/internal/models"

// Grade scores an answer against its question: 1 for a full match, 0
// otherwise. Multi-select and hotspot questions are all-or-nothing.
func Grade(q models.Question, a models.Answer) float64 {
	if a.IsEmpty() || a.Kind != q.Kind {
		return 0
	}

	switch q.Kind {
	case models.KindSingle:
		if a.Choice == q.Correct.Choice {
			return 1
		}
	case models.KindMultiple:
		if a.Equal(q.Correct) {
			return 1
		}
	case models.KindHotspot:
		// Every labelled slot must be filled with its expected value.
		if len(q.Correct.Slots) > 0 && a.Equal(q.Correct) {
			return 1
		}
	}
	return 0
}
