// Package titles recovers a readable original title for saved tests that were
// stored without source metadata. Results are advisory only.
package titles

import (
	"strings"
	"unicode"

	"github.com/certprep/backend/internal/models"
)

type Source string

const (
	SourceMetadata     Source = "metadata"
	SourceQuestionText Source = "question_text"
	SourceSnippet      Source = "snippet"
	SourceSavedTitle   Source = "saved_title"
)

const (
	scanQuestions = 5
	snippetRunes  = 60
)

type Inference struct {
	Title    string
	Source   Source
	ExamCode string
}

// Infer picks the best available title for rec: explicit metadata or an exam
// code found in it, then exam names in the first questions, then a snippet
// of the first question, then the record's own title.
func Infer(rec models.SavedTest) Inference {
	if ot := rec.OriginalTest; ot != nil {
		if !ot.Inferred && strings.TrimSpace(ot.Title) != "" {
			return Inference{Title: strings.TrimSpace(ot.Title), Source: SourceMetadata, ExamCode: ot.ExamCode}
		}
		if exam, ok := matchCode(ot.ExamCode, ot.SourceURL, ot.Title); ok {
			return Inference{Title: exam.Label(), Source: SourceMetadata, ExamCode: exam.Code}
		}
	}

	if exam, ok := matchQuestions(rec.Questions); ok {
		return Inference{Title: exam.Label(), Source: SourceQuestionText, ExamCode: exam.Code}
	}

	if len(rec.Questions) > 0 {
		if s := snippet(rec.Questions[0].Text); s != "" {
			return Inference{Title: s, Source: SourceSnippet}
		}
	}

	return Inference{Title: rec.Title, Source: SourceSavedTitle}
}

// matchCode looks for a known exam code in any of the given strings, ignoring
// case and punctuation so "az900", "AZ-900" and "/az-900/" all match.
func matchCode(fields ...string) (Exam, bool) {
	var haystack strings.Builder
	for _, f := range fields {
		haystack.WriteString(compact(f))
		haystack.WriteByte(' ')
	}
	h := haystack.String()

	for _, exam := range KnownExams {
		if strings.Contains(h, compact(exam.Code)) {
			return exam, true
		}
	}
	return Exam{}, false
}

func matchQuestions(qs []models.Question) (Exam, bool) {
	n := min(len(qs), scanQuestions)
	if n == 0 {
		return Exam{}, false
	}

	texts := make([]string, 0, n*2)
	for _, q := range qs[:n] {
		texts = append(texts, q.Text, q.CaseStudy)
	}
	if exam, ok := matchCode(texts...); ok {
		return exam, true
	}

	lower := strings.ToLower(strings.Join(texts, "\n"))
	for _, exam := range KnownExams {
		for _, frag := range exam.Fragments {
			if containsWord(lower, frag) {
				return exam, true
			}
		}
	}
	return Exam{}, false
}

// containsWord reports whether frag occurs in s without being glued to
// surrounding letters, so "aws" does not match "laws".
func containsWord(s, frag string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], frag)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(frag)
		if !isLetterBefore(s, i) && !isLetterAt(s, end) {
			return true
		}
		start = i + 1
	}
}

func isLetterBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r := rune(s[i-1])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLetterAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r := rune(s[i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

func snippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	runes := []rune(s)
	if len(runes) <= snippetRunes {
		return s
	}
	return strings.TrimRightFunc(string(runes[:snippetRunes]), unicode.IsSpace) + "..."
}
