package lesson

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tutor/internal/lessonflow"
	"github.com/abhisek/tutor/internal/ui/theme"
)

func (m *Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render returns the current screen as text.
func (m *Model) Render() string {
	v := m.flow.View()
	var b strings.Builder

	b.WriteString(theme.Title.Render(v.Lesson.Title) + "\n")
	switch v.State {
	case lessonflow.StateTeach:
		renderTeach(&b, v)
	case lessonflow.StateExample:
		renderExample(&b, v)
	case lessonflow.StateCheck:
		renderCheck(&b, v)
	case lessonflow.StatePractice:
		renderPractice(&b, v)
	case lessonflow.StateComplete:
		b.WriteString(theme.Correct.Render("🎉 Lesson complete!") + "\n")
		return b.String()
	}

	if m.result != nil {
		renderResult(&b, *m.result)
	}
	if m.notice != "" {
		b.WriteString(theme.Dim.Render(m.notice) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(theme.Dim.Render("Thinking...") + "\n")
	case !m.holding:
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(theme.Dim.Render("enter: submit/continue · /back · /continue · esc: quit"))
	return b.String()
}

func renderTeach(b *strings.Builder, v lessonflow.View) {
	l := v.Lesson
	var body strings.Builder
	body.WriteString(l.TeachIntro)
	for _, kp := range l.KeyPoints {
		body.WriteString("\n • " + kp)
	}
	fmt.Fprintf(b, "%s\n%s\n", theme.Dim.Render(l.LearningObjective), theme.Card.Render(body.String()))
}

func renderExample(b *strings.Builder, v lessonflow.View) {
	ex := v.Lesson.Example
	var body strings.Builder
	body.WriteString(theme.Body.Bold(true).Render(ex.Question))
	for i, s := range ex.Steps {
		fmt.Fprintf(&body, "\n%d. %s", i+1, s)
	}
	body.WriteString("\nAnswer: " + ex.Answer)
	fmt.Fprintf(b, "%s\n%s\n", theme.Subtitle.Render("Worked example"), theme.Card.Render(body.String()))
}

func renderCheck(b *strings.Builder, v lessonflow.View) {
	if v.Check == nil {
		b.WriteString(theme.Dim.Render("All checks done. Press enter for practice.") + "\n")
		return
	}
	label := fmt.Sprintf("Check %d/%d", v.CheckIndex+1, v.CheckTotal)
	fmt.Fprintf(b, "%s %s\n", theme.Subtitle.Render(label), v.Check.Question)
	if v.Revealed {
		b.WriteString(theme.Dim.Render("Press enter to continue.") + "\n")
	}
}

func renderPractice(b *strings.Builder, v lessonflow.View) {
	if v.Practice == nil {
		if v.Notice != "" {
			b.WriteString(theme.Hint.Render(v.Notice) + "\n")
		}
		b.WriteString(theme.Dim.Render("Press enter to finish the lesson.") + "\n")
		return
	}
	label := fmt.Sprintf("Practice %d/%d", v.PracticeIndex+1, v.PracticeTotal)
	fmt.Fprintf(b, "%s %s\n", theme.Subtitle.Render(label), v.Practice.Text)
}

func renderResult(b *strings.Builder, res lessonflow.Result) {
	b.WriteString(theme.Feedback(res.Correct).Render(res.Feedback) + "\n")
	if res.Revealed {
		fmt.Fprintf(b, "The answer is %s\n", theme.Body.Bold(true).Render(res.Answer))
	}
	if res.Reteach != "" {
		b.WriteString(theme.Card.Render(res.Reteach) + "\n")
	}
	if res.Badge != "" {
		b.WriteString(theme.Badge.Render("🏆 Badge earned: "+string(res.Badge)) + "\n")
	}
}

// Summary is printed once the program exits.
func (m *Model) Summary() string {
	if m.paused {
		return theme.Dim.Render("Lesson paused. Your progress so far is saved.")
	}
	if !m.Complete() {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Correct.Render("🎉 Lesson complete!") + "\n")
	if earned := m.flow.Badges(); len(earned) > 0 {
		b.WriteString("Badges this lesson:\n")
		for _, badge := range earned {
			fmt.Fprintf(&b, "  %s %s\n", theme.Badge.Render(string(badge)), theme.Dim.Render(badge.Rarity().DisplayName()))
		}
	}
	prev, next := m.flow.Neighbors()
	if prev != nil {
		fmt.Fprintf(&b, "Previous: tutor lesson %s\n", prev.Slug)
	}
	if next != nil {
		fmt.Fprintf(&b, "Next:     tutor lesson %s\n", next.Slug)
	}
	return b.String()
}
