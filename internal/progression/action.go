package progression

// Action is a discrete learning event with a fixed experience tariff.
type Action string

const (
	ActionLessonView         Action = "lesson_view"
	ActionCheckCorrect       Action = "check_correct"
	ActionPracticeComplete   Action = "practice_complete"
	ActionAssessmentComplete Action = "assessment_complete"
	// ActionCheckFailedMax marks a check whose answer was revealed. It
	// earns nothing but still counts as activity.
	ActionCheckFailedMax Action = "check_failed_max"
)

var actionTariffs = map[Action]int{
	ActionLessonView:         5,
	ActionCheckCorrect:       10,
	ActionPracticeComplete:   15,
	ActionAssessmentComplete: 20,
	ActionCheckFailedMax:     0,
}

// Valid reports whether a has a tariff.
func (a Action) Valid() bool {
	_, ok := actionTariffs[a]
	return ok
}

// NoScore marks an action or level lookup that carries no score.
const NoScore = -1

const (
	assessmentBonus          = 30
	assessmentBonusThreshold = 85
)

// ActionXP returns the tariff for an action. An assessment scoring at
// least 85 on a 0-100 scale earns a bonus. Unknown actions earn nothing.
func ActionXP(a Action, score float64) int {
	xp := actionTariffs[a]
	if a == ActionAssessmentComplete && score >= assessmentBonusThreshold {
		xp += assessmentBonus
	}
	return xp
}

// LevelForScore maps a 0-100 score to a proficiency level 1..5. NoScore (or
// any negative value) yields level 1.
func LevelForScore(score float64) int {
	switch {
	case score < 0:
		return 1
	case score >= 85:
		return 5
	case score >= 60:
		return 4
	case score >= 40:
		return 3
	default:
		return 2
	}
}
