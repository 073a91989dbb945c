package badges

import "strings"

// Badge is an achievement marker. The value is the display label, icon
// included, and is the key badges are stored under.
type Badge string

const (
	FirstTry    Badge = "⭐ First Try"
	Persistence Badge = "🔁 Persistence"
	PracticePro Badge = "🧠 Practice Pro"

	FirstQuiz       Badge = "🎯 First Quiz"
	PerfectScore    Badge = "💯 Perfect Score"
	GreatJob        Badge = "⭐ Great Job"
	BrainPower      Badge = "🧠 Brain Power"
	LegendaryGenius Badge = "🌟 Legendary Genius"
	EpicWinner      Badge = "⚡ Epic Winner"
	RisingStar      Badge = "🔥 Rising Star"
)

// All returns every known badge in display order.
func All() []Badge {
	return []Badge{
		FirstTry, Persistence, PracticePro,
		FirstQuiz, PerfectScore, GreatJob, BrainPower,
		LegendaryGenius, EpicWinner, RisingStar,
	}
}

// Icon returns the leading emoji of the label.
func (b Badge) Icon() string {
	icon, _, ok := strings.Cut(string(b), " ")
	if !ok {
		return "✦"
	}
	return icon
}

// Name returns the label without its icon.
func (b Badge) Name() string {
	_, name, ok := strings.Cut(string(b), " ")
	if !ok {
		return string(b)
	}
	return name
}

func (b Badge) Rarity() Rarity {
	switch b {
	case LegendaryGenius:
		return RarityLegendary
	case EpicWinner, PerfectScore:
		return RarityEpic
	case RisingStar, BrainPower, PracticePro:
		return RarityRare
	default:
		return RarityCommon
	}
}
