// Package score pulls the match score out of free-form completion text.
package score

import (
	"fmt"
	"regexp"
	"strconv"
)

// Max is the upper bound of a match score.
const Max = 100

// notaPattern matches "Nota" or "Minha Nota" as a whole word, then any run of
// whitespace, colons or asterisks, then the digits.
var notaPattern = regexp.MustCompile(`(?i)\b(?:minha\s+)?nota\b[\s*:]*(\d+)`)

// scorePattern is consulted only when the text has no Nota label.
var scorePattern = regexp.MustCompile(`(?i)\bscore\b[\s*:]*(\d+)`)

// Result is a parsed score. Found is false when the text carried no score;
// Value is 0 in that case.
type Result struct {
	Value int
	Found bool
}

// Parse returns the first Nota score in text, falling back to an English
// score label. It never fails; text without a recognizable score yields the
// zero Result.
func Parse(text string) Result {
	m := notaPattern.FindStringSubmatch(text)
	if m == nil {
		m = scorePattern.FindStringSubmatch(text)
	}
	if m == nil {
		return Result{}
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v > Max {
		// Overflowing digit runs are still out of range.
		v = Max
	}
	return Result{Value: v, Found: true}
}

// Display renders the score for people: "87%" or "N/A".
func (r Result) Display() string {
	if !r.Found {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", r.Value)
}

// Fraction returns the score in [0,1] for progress bars.
func (r Result) Fraction() float64 {
	return float64(r.Value) / Max
}

// Band buckets the score for presentation.
func (r Result) Band() string {
	switch {
	case !r.Found:
		return "unknown"
	case r.Value < 50:
		return "low"
	case r.Value < 75:
		return "medium"
	default:
		return "high"
	}
}
