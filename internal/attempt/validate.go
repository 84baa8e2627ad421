package attempt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/certprep/backend/internal/models"
)

// ValidationError lists every problem found in a question set.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ValidateQuestions checks that every question can be graded. It returns a
// *ValidationError or nil.
func ValidateQuestions(questions []models.Question) error {
	var errs []string
	seen := make(map[string]int, len(questions))

	for i, q := range questions {
		qNum := i + 1

		if q.ID != "" {
			if prev, ok := seen[q.ID]; ok {
				errs = append(errs, fmt.Sprintf("question %d: id %q already used by question %d", qNum, q.ID, prev))
			}
			seen[q.ID] = qNum
		}

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty text", qNum))
		}

		if !q.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("question %d: unknown kind %q", qNum, q.Kind))
			continue
		}
		if q.Correct.Kind != q.Kind {
			errs = append(errs, fmt.Sprintf("question %d: correct answer is %q, question is %q", qNum, q.Correct.Kind, q.Kind))
			continue
		}

		switch q.Kind {
		case models.KindSingle:
			errs = append(errs, checkOptions(qNum, q.Options, q.Correct.Choice)...)
		case models.KindMultiple:
			if len(q.Correct.Choices) == 0 {
				errs = append(errs, fmt.Sprintf("question %d: no correct choices", qNum))
			}
			errs = append(errs, checkOptions(qNum, q.Options, q.Correct.Choices...)...)
		case models.KindHotspot:
			errs = append(errs, checkSlots(qNum, q.Slots, q.Correct.Slots)...)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func checkOptions(qNum int, options []string, choices ...string) []string {
	if len(options) < 2 {
		return []string{fmt.Sprintf("question %d: expected at least 2 options, got %d", qNum, len(options))}
	}

	var errs []string
	for _, c := range choices {
		if !isOption(options, c) {
			errs = append(errs, fmt.Sprintf("question %d: correct choice %q is not an option", qNum, c))
		}
	}
	return errs
}

// isOption accepts an option's text or, for older records, its index.
func isOption(options []string, choice string) bool {
	for _, o := range options {
		if o == choice {
			return true
		}
	}
	idx, err := strconv.Atoi(choice)
	return err == nil && idx >= 0 && idx < len(options)
}

func checkSlots(qNum int, slots []models.HotspotSlot, correct map[string]string) []string {
	if len(slots) == 0 {
		return []string{fmt.Sprintf("question %d: hotspot has no slots", qNum)}
	}

	var errs []string
	for _, slot := range slots {
		want, ok := correct[slot.Label]
		if !ok {
			errs = append(errs, fmt.Sprintf("question %d: slot %q has no correct value", qNum, slot.Label))
			continue
		}
		if len(slot.Options) > 0 && !isOption(slot.Options, want) {
			errs = append(errs, fmt.Sprintf("question %d: slot %q value %q is not an option", qNum, slot.Label, want))
		}
	}
	if len(correct) > len(slots) {
		errs = append(errs, fmt.Sprintf("question %d: %d correct values for %d slots", qNum, len(correct), len(slots)))
	}
	return errs
}
