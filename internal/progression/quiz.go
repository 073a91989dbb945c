package progression

import "github.com/abhisek/tutor/internal/badges"

// Rewards is what a finished quiz earns.
type Rewards struct {
	Badges []badges.Badge
	XP     int
}

// QuizRewards evaluates badge eligibility and experience for a quiz with
// score correct answers out of total, where d is the difficulty of the last
// question. At most one of Legendary Genius, Epic Winner and Rising Star is
// awarded, highest tier first. A quiz with no questions earns nothing.
func QuizRewards(score, total int, d Difficulty) Rewards {
	if total <= 0 {
		return Rewards{}
	}
	score = max(0, min(score, total))

	r := Rewards{XP: score * int(d) * 10}
	r.Badges = append(r.Badges, badges.FirstQuiz)
	if score == total {
		r.Badges = append(r.Badges, badges.PerfectScore)
	}
	// ratio comparisons are cross-multiplied to stay in integers
	if score*5 >= total*4 {
		r.Badges = append(r.Badges, badges.GreatJob)
	}
	if d >= 7 && score > 4 {
		r.Badges = append(r.Badges, badges.BrainPower)
	}

	if d >= 7 {
		switch {
		case score == total:
			r.Badges = append(r.Badges, badges.LegendaryGenius)
		case score*10 >= total*9:
			r.Badges = append(r.Badges, badges.EpicWinner)
		case score*10 >= total*7:
			r.Badges = append(r.Badges, badges.RisingStar)
		}
	}
	return r
}
