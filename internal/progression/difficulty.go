package progression

import (
	"fmt"
	"strconv"
	"strings"
)

// Difficulty is a school-year tier, typically 7 through 14. The categorical
// labels easy, medium and hard are aliases for tiers 7, 8 and 10, which carry
// the same multipliers (0.7, 1.0, 1.3).
type Difficulty int

const (
	Easy   Difficulty = 7
	Medium Difficulty = 8
	Hard   Difficulty = 10
)

// multipliers holds hundredths so that rounding follows decimal arithmetic.
var multipliers = map[Difficulty]int{
	7:  70,
	8:  100,
	9:  115,
	10: 130,
	11: 150,
	12: 190,
	13: 250,
	14: 300,
}

// Multiplier returns the scoring multiplier for d, 1.0 for unlisted tiers.
func (d Difficulty) Multiplier() float64 {
	return float64(d.hundredths()) / 100
}

func (d Difficulty) hundredths() int {
	if m, ok := multipliers[d]; ok {
		return m
	}
	return 100
}

func (d Difficulty) String() string {
	return strconv.Itoa(int(d))
}

// DifficultyFromString parses a tier ("7".."14", or any positive integer)
// or one of the labels easy, medium, hard.
func DifficultyFromString(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "easy":
		return Easy, nil
	case "medium", "standard":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unknown difficulty %q", s)
	}
	return Difficulty(n), nil
}
