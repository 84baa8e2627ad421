package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ── Question Types ───────────────────────────────────────

type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
	KindHotspot  QuestionKind = "hotspot"
)

func (k QuestionKind) Valid() bool {
	switch k {
	case KindSingle, KindMultiple, KindHotspot:
		return true
	}
	return false
}

// HotspotSlot is one labelled drop target of a hotspot question.
type HotspotSlot struct {
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

type Question struct {
	ID          string        `json:"id"`
	Kind        QuestionKind  `json:"kind"`
	Text        string        `json:"text"`
	CaseStudy   string        `json:"case_study,omitempty"`
	Options     []string      `json:"options,omitempty"`
	Slots       []HotspotSlot `json:"slots,omitempty"`
	Correct     Answer        `json:"correct"`
	Explanation string        `json:"explanation,omitempty"`
}

// ── Answer ───────────────────────────────────────────────

// Answer is a response to one question. Kind selects which value field is
// meaningful; the zero Answer means unanswered.
//
// On the wire an answer keeps the shape clients have always stored: a scalar
// for single choice, a list for multi-select, a label→value object for
// hotspot and null when unanswered.
type Answer struct {
	Kind    QuestionKind
	Choice  string
	Choices []string
	Slots   map[string]string

	// Malformed marks a stored value that could not be read as any answer
	// shape. It is never written back.
	Malformed bool
}

func SingleAnswer(choice string) Answer {
	return Answer{Kind: KindSingle, Choice: choice}
}

func MultipleAnswer(choices ...string) Answer {
	return Answer{Kind: KindMultiple, Choices: choices}
}

func HotspotAnswer(slots map[string]string) Answer {
	return Answer{Kind: KindHotspot, Slots: slots}
}

// IsEmpty reports whether the answer carries no selection.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case KindSingle:
		return a.Choice == ""
	case KindMultiple:
		return len(a.Choices) == 0
	case KindHotspot:
		return len(a.Slots) == 0
	default:
		return true
	}
}

// Equal compares answers of the same kind. Multi-select order is ignored.
func (a Answer) Equal(b Answer) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSingle:
		return a.Choice == b.Choice
	case KindMultiple:
		if len(a.Choices) != len(b.Choices) {
			return false
		}
		x, y := sortedCopy(a.Choices), sortedCopy(b.Choices)
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case KindHotspot:
		if len(a.Slots) != len(b.Slots) {
			return false
		}
		for label, v := range a.Slots {
			if w, ok := b.Slots[label]; !ok || w != v {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case "":
		return []byte("null"), nil
	case KindSingle:
		return json.Marshal(a.Choice)
	case KindMultiple:
		if a.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Choices)
	case KindHotspot:
		if a.Slots == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(a.Slots)
	default:
		return nil, fmt.Errorf("marshal answer: unknown kind %q", a.Kind)
	}
}

// UnmarshalJSON never fails. A value it cannot read becomes an empty answer
// with Malformed set, so one bad answer does not lose the whole record.
func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*a = Answer{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			a.Malformed = true
			return nil
		}
		choices := make([]string, 0, len(items))
		for _, item := range items {
			c, ok := scalar(item)
			if !ok {
				*a = Answer{Malformed: true}
				return nil
			}
			choices = append(choices, c)
		}
		*a = MultipleAnswer(choices...)
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			a.Malformed = true
			return nil
		}
		slots := make(map[string]string, len(raw))
		for label, v := range raw {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				continue
			}
			c, ok := scalar(v)
			if !ok {
				*a = Answer{Malformed: true}
				return nil
			}
			slots[label] = c
		}
		*a = HotspotAnswer(slots)
	default:
		c, ok := scalar(b)
		if !ok {
			a.Malformed = true
			return nil
		}
		*a = SingleAnswer(c)
	}
	return nil
}

// scalar reads a JSON string, or a number or boolean in its literal form.
// Older clients stored option indexes as bare numbers.
func scalar(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "", false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	case '[', '{', 'n':
		return "", false
	}
	if !json.Valid(b) {
		return "", false
	}
	return string(b), true
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
