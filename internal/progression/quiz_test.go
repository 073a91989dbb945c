package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/tutor/internal/badges"
)

func TestQuizRewards(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		total      int
		d          Difficulty
		wantBadges []badges.Badge
		wantXP     int
	}{
		{
			name:  "perfect hard quiz",
			score: 5, total: 5, d: 9,
			wantBadges: []badges.Badge{badges.FirstQuiz, badges.PerfectScore, badges.GreatJob, badges.BrainPower, badges.LegendaryGenius},
			wantXP:     450,
		},
		{
			name:  "nine of ten",
			score: 9, total: 10, d: 8,
			wantBadges: []badges.Badge{badges.FirstQuiz, badges.GreatJob, badges.BrainPower, badges.EpicWinner},
			wantXP:     720,
		},
		{
			name:  "seven of ten",
			score: 7, total: 10, d: 7,
			wantBadges: []badges.Badge{badges.FirstQuiz, badges.BrainPower, badges.RisingStar},
			wantXP:     490,
		},
		{
			name:  "low difficulty perfect",
			score: 3, total: 3, d: 5,
			wantBadges: []badges.Badge{badges.FirstQuiz, badges.PerfectScore, badges.GreatJob},
			wantXP:     150,
		},
		{
			name:  "poor score",
			score: 1, total: 5, d: 10,
			wantBadges: []badges.Badge{badges.FirstQuiz},
			wantXP:     100,
		},
		{
			name:  "four of five",
			score: 4, total: 5, d: 10,
			wantBadges: []badges.Badge{badges.FirstQuiz, badges.GreatJob, badges.RisingStar},
			wantXP:     400,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := QuizRewards(tc.score, tc.total, tc.d)
			assert.Equal(t, tc.wantBadges, got.Badges)
			assert.Equal(t, tc.wantXP, got.XP)
		})
	}
}

func TestQuizRewards_TieredExclusive(t *testing.T) {
	tiered := []badges.Badge{badges.LegendaryGenius, badges.EpicWinner, badges.RisingStar}

	for total := 1; total <= 12; total++ {
		for score := 0; score <= total; score++ {
			for d := Difficulty(1); d <= 14; d++ {
				r := QuizRewards(score, total, d)
				n := 0
				for _, b := range r.Badges {
					for _, tb := range tiered {
						if b == tb {
							n++
						}
					}
				}
				if n > 1 {
					t.Fatalf("score=%d total=%d d=%d awarded %d tiered badges: %v", score, total, d, n, r.Badges)
				}
				if score == total && d >= 7 && !assert.Contains(t, r.Badges, badges.LegendaryGenius) {
					return
				}
			}
		}
	}
}

func TestQuizRewards_EmptyQuiz(t *testing.T) {
	r := QuizRewards(0, 0, 9)
	assert.Empty(t, r.Badges)
	assert.Zero(t, r.XP)
}
