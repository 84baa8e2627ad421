package achievements

import (
	"sort"
	"strings"
	"unicode"

	"github.com/certprep/backend/internal/models"
)

// subjectKeywords maps a lower-case title word to the subject it signals.
var subjectKeywords = map[string]string{
	"math": "math", "maths": "math", "algebra": "math", "calculus": "math", "geometry": "math", "statistics": "math",
	"physics": "science", "chemistry": "science", "biology": "science", "science": "science",
	"history": "history", "civics": "history",
	"english": "language", "grammar": "language", "vocabulary": "language", "spanish": "language", "french": "language", "german": "language",
	"programming": "programming", "python": "programming", "javascript": "programming", "java": "programming", "golang": "programming", "coding": "programming",
	"azure": "cloud", "aws": "cloud", "gcp": "cloud", "cloud": "cloud",
	"security": "security", "cissp": "security", "comptia": "security", "cybersecurity": "security",
	"network": "networking", "networking": "networking", "ccna": "networking", "cisco": "networking",
	"sql": "data", "database": "data", "data": "data", "analytics": "data",
	"accounting": "business", "finance": "business", "economics": "business", "business": "business", "marketing": "business",
	"geography": "geography",
	"anatomy": "medicine", "nursing": "medicine", "pharmacology": "medicine", "medical": "medicine",
	"law": "law", "legal": "law", "lsat": "law",
}

// Subjects returns the distinct subjects named by the records' titles,
// sorted.
func Subjects(recs []models.SavedTest) []string {
	set := make(map[string]bool)
	for _, rec := range recs {
		for _, word := range titleWords(rec.Title) {
			if s, ok := subjectKeywords[word]; ok {
				set[s] = true
			}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func titleWords(title string) []string {
	return strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
