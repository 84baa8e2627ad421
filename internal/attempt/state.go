// Package attempt holds in-progress quiz state and the transitions a client
// drives it through. It knows nothing about rendering or persistence.
package attempt

import (
	"errors"
	"fmt"

	"github.com/certprep/backend/internal/models"
)

var (
	ErrOutOfRange       = errors.New("question index out of range")
	ErrAlreadySubmitted = errors.New("question already submitted")
	ErrWrongKind        = errors.New("answer kind does not match question")
	ErrUnknownAction    = errors.New("unknown action")
)

// State is an attempt in progress. Values are treated as immutable: Apply
// returns a new State and never mutates its input.
type State struct {
	Questions      []models.Question
	Current        int
	Answers        []models.Answer
	Scores         []*float64
	Submitted      []bool
	ElapsedSeconds int
}

// New starts a fresh attempt over questions.
func New(questions []models.Question) State {
	n := len(questions)
	return State{
		Questions: questions,
		Answers:   make([]models.Answer, n),
		Scores:    make([]*float64, n),
		Submitted: make([]bool, n),
	}
}

// Resume rebuilds state from a saved record.
func Resume(rec models.SavedTest) State {
	s := New(rec.Questions)
	p := rec.Progress
	copy(s.Answers, p.UserAnswers)
	copy(s.Scores, p.QuestionScore)
	copy(s.Submitted, p.QuestionSubmitted)
	s.ElapsedSeconds = p.ElapsedSeconds
	if p.Current >= 0 && p.Current < len(s.Questions) {
		s.Current = p.Current
	}
	return s
}

// Action is one transition. See Answer, Submit, Navigate, Tick and Reset.
type Action interface {
	isAction()
}

type Answer struct {
	Index  int
	Answer models.Answer
}

type Submit struct {
	Index int
}

type Navigate struct {
	Index int
}

// Tick adds elapsed time to the attempt clock.
type Tick struct {
	Seconds int
}

type Reset struct{}

func (Answer) isAction()   {}
func (Submit) isAction()   {}
func (Navigate) isAction() {}
func (Tick) isAction()     {}
func (Reset) isAction()    {}

// Apply returns the state after action. On error the original state is
// returned unchanged.
func Apply(s State, action Action) (State, error) {
	next := s.clone()

	switch a := action.(type) {
	case Answer:
		if err := s.checkIndex(a.Index); err != nil {
			return s, err
		}
		if s.Submitted[a.Index] {
			return s, fmt.Errorf("answer question %d: %w", a.Index, ErrAlreadySubmitted)
		}
		if !a.Answer.IsEmpty() && a.Answer.Kind != s.Questions[a.Index].Kind {
			return s, fmt.Errorf("answer question %d: %w", a.Index, ErrWrongKind)
		}
		next.Answers[a.Index] = a.Answer

	case Submit:
		if err := s.checkIndex(a.Index); err != nil {
			return s, err
		}
		if s.Submitted[a.Index] {
			return s, fmt.Errorf("submit question %d: %w", a.Index, ErrAlreadySubmitted)
		}
		score := Grade(s.Questions[a.Index], s.Answers[a.Index])
		next.Scores[a.Index] = &score
		next.Submitted[a.Index] = true

	case Navigate:
		if err := s.checkIndex(a.Index); err != nil {
			return s, err
		}
		next.Current = a.Index

	case Tick:
		if a.Seconds > 0 {
			next.ElapsedSeconds += a.Seconds
		}

	case Reset:
		next = New(s.Questions)

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}

	return next, nil
}

// Snapshot converts state into the progress block of a saved record.
func (s State) Snapshot() models.Progress {
	c := s.clone()
	p := models.Progress{
		Current:           c.Current,
		UserAnswers:       c.Answers,
		QuestionScore:     c.Scores,
		QuestionSubmitted: c.Submitted,
		TotalQuestions:    len(c.Questions),
		ElapsedSeconds:    c.ElapsedSeconds,
	}
	p.CompletedQuestions = p.SubmittedCount()
	return p
}

func (s State) checkIndex(i int) error {
	if i < 0 || i >= len(s.Questions) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(s.Questions))
	}
	return nil
}

func (s State) clone() State {
	c := s
	c.Answers = append([]models.Answer(nil), s.Answers...)
	c.Scores = append([]*float64(nil), s.Scores...)
	c.Submitted = append([]bool(nil), s.Submitted...)
	return c
}
