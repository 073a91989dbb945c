// Package progression converts attempt outcomes into mastery, experience
// and badge awards. Everything here is pure; persistence happens elsewhere.
package progression

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMasteryCap is the upper bound of the mastery scale.
const DefaultMasteryCap = 100

var ErrInvalidScore = errors.New("progression: score out of range")

// Record is the prior state for one (student, concept) pair.
type Record struct {
	Mastery int
	XP      int
}

// Result describes the outcome of applying one attempt.
type Result struct {
	Delta   int
	Mastery int
	XPGain  int
	XP      int
}

// Engine applies attempt outcomes against a fixed mastery cap.
type Engine struct {
	masteryCap int
}

// NewEngine returns an engine clamping mastery to [0, masteryCap]. A
// non-positive cap falls back to DefaultMasteryCap.
func NewEngine(masteryCap int) *Engine {
	if masteryCap <= 0 {
		masteryCap = DefaultMasteryCap
	}
	return &Engine{masteryCap: masteryCap}
}

func (e *Engine) Cap() int { return e.masteryCap }

// Apply computes the new record for an attempt scored in [0, 1].
func (e *Engine) Apply(prior Record, score float64, d Difficulty) (Result, error) {
	if err := validateScore(score); err != nil {
		return Result{}, err
	}
	if prior.Mastery < 0 || prior.XP < 0 {
		return Result{}, fmt.Errorf("progression: negative prior record %+v", prior)
	}

	delta := MasteryDelta(score, d)
	gain := XPGain(score, d)
	return Result{
		Delta:   delta,
		Mastery: Clamp(prior.Mastery+delta, e.masteryCap),
		XPGain:  gain,
		XP:      prior.XP + gain,
	}, nil
}

// MasteryDelta is round(score * 15 * multiplier).
func MasteryDelta(score float64, d Difficulty) int {
	return roundHalfUp(score * 15 * float64(d.hundredths()) / 100)
}

// XPGain is round(10 * multiplier), plus 5 for a perfect score.
func XPGain(score float64, d Difficulty) int {
	gain := (10*d.hundredths() + 50) / 100
	if score == 1 {
		gain += 5
	}
	return gain
}

// Clamp bounds v to [0, limit].
func Clamp(v, limit int) int {
	return max(0, min(v, limit))
}

func validateScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	return nil
}

// roundHalfUp rounds halves toward positive infinity. The epsilon absorbs
// binary representation error on exact halves such as 10.5.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5 + 1e-9))
}
