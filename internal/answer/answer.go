// Package answer normalizes free-text student answers and matches them
// against accepted keywords.
package answer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonWord = regexp.MustCompile(`[^\w\s]`)
	number  = regexp.MustCompile(`-?\d+(\.\d+)?`)

	// "382.50 kg", "-4 °C", "12": one number followed only by non-numeric
	// text. Fractions, times and lists don't match.
	numberWithUnits = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*([^\d/.:]*)$`)
)

// Normalize lower-cases and trims s, then removes every character that is
// not a word character or whitespace. Whitespace left next to removed
// punctuation is kept.
func Normalize(s string) string {
	return nonWord.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), "")
}

// Keywords returns the accepted keyword set for a question. When no keywords
// are supplied the canonical answer is the only keyword.
func Keywords(canonical string, keywords []string) []string {
	if len(keywords) == 0 {
		return []string{canonical}
	}
	return keywords
}

// Match reports whether the normalized input contains any normalized keyword.
// Empty input never matches, and keywords that normalize to nothing are skipped.
func Match(input string, keywords []string) bool {
	in := Normalize(input)
	if in == "" {
		return false
	}
	for _, k := range keywords {
		nk := Normalize(k)
		if nk == "" {
			continue
		}
		if strings.Contains(in, nk) {
			return true
		}
	}
	return false
}

// Check applies Match to the question's keywords, falling back to the
// canonical answer.
func Check(input, canonical string, keywords []string) bool {
	return Match(input, Keywords(canonical, keywords))
}

// StripUnits extracts the first signed decimal number in s, e.g. "382.50 kg"
// becomes "382.50". If s holds no number it is returned trimmed.
func StripUnits(s string) string {
	if m := number.FindString(s); m != "" {
		return m
	}
	return strings.TrimSpace(s)
}

// SplitUnits splits a number-with-units answer such as "382.50 kg" into
// "382.50" and "kg". ok is false for anything else, including fractions
// ("1/2"), times ("12:30") and lists ("5, 7").
func SplitUnits(s string) (num, units string, ok bool) {
	m := numberWithUnits.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// MatchQuiz is the quiz-mode rule: exact normalized equality, then keyword
// containment, then numeric equality when the canonical answer is a number
// with units.
func MatchQuiz(input, canonical string, keywords []string) bool {
	in := Normalize(input)
	if in == "" {
		return false
	}
	if in == Normalize(canonical) {
		return true
	}
	if Check(input, canonical, keywords) {
		return true
	}
	return numericEqual(input, canonical)
}

// numericEqual compares two number-with-units answers by value. Units on
// the input are optional but must agree with the canonical units when both
// carry them.
func numericEqual(input, canonical string) bool {
	cn, cu, ok := SplitUnits(canonical)
	if !ok {
		return false
	}
	in, iu, ok := SplitUnits(input)
	if !ok {
		return false
	}
	if iu != "" && cu != "" && Normalize(iu) != Normalize(cu) {
		return false
	}
	fa, err := strconv.ParseFloat(in, 64)
	if err != nil {
		return false
	}
	fb, err := strconv.ParseFloat(cn, 64)
	if err != nil {
		return false
	}
	return math.Abs(fa-fb) < 1e-9
}
