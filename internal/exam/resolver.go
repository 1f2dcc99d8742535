// Package exam holds the pure attempt-scoring core: answer key
// resolution, grading, and the countdown timer.
package exam

import (
	"regexp"
	"sort"
	"strings"

	"github.com/itskys/jszs/internal/model"
)

var (
	// stripRe removes whitespace and CJK/ASCII punctuation before letter
	// matching ("a, b" → "AB").
	stripRe = regexp.MustCompile(`[\s,\.、，。]`)

	// letterRe detects answers already in letter-code form.
	letterRe = regexp.MustCompile(`^[A-Z]+$`)

	// prefixRe strips an enumerator prefix from option text ("A. 正确" → "正确").
	prefixRe = regexp.MustCompile(`^[A-Za-z0-9][\.、\s]+`)
)

// trueFalseOptions is the effective option list for true/false questions,
// which carry no options of their own.
var trueFalseOptions = []string{"对", "错"}

// Resolve normalizes a question's stored answer into its canonical
// comparable form: sorted unique option letters for letter-coded answers,
// the mapped letter for option-text answers (including 对/错), or the raw
// trimmed text as a fallback. Pure and deterministic.
func Resolve(q *model.Question) string {
	raw := strings.TrimSpace(q.Answer)
	cleaned := strings.ToUpper(stripRe.ReplaceAllString(raw, ""))

	if letterRe.MatchString(cleaned) {
		return sortUniqueLetters(cleaned)
	}

	options := q.Options
	if len(options) == 0 && q.Type == model.QuestionTypeTrueFalse {
		options = trueFalseOptions
	}

	for i, opt := range options {
		txt := strings.TrimSpace(prefixRe.ReplaceAllString(opt, ""))
		if txt == raw || txt == cleaned {
			return string(rune('A' + i))
		}
	}

	// No option matched: only a byte-identical submission will grade as
	// correct against this.
	return raw
}

// KeyIsLetterCoded reports whether a canonical key is in letter-code form.
// A key that is not can only grade correct against a byte-identical
// submission, which the option-picking clients never send; bank loaders
// warn about such entries.
func KeyIsLetterCoded(key string) bool {
	return letterRe.MatchString(key)
}

func sortUniqueLetters(s string) string {
	seen := make(map[rune]bool, len(s))
	letters := make([]rune, 0, len(s))
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			letters = append(letters, r)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}
