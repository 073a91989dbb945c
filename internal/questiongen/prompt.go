package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a friendly tutor writing questions for secondary school students.

Rules:
- Use plain text. No LaTeX or Markdown.
- Every question must have a single short correct answer (a word, short phrase or number).
- List common alternative phrasings of the answer as keywords.
- Hints guide the student without giving the answer away.`

func buildPracticeMessage(in PracticeInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	if in.Objective != "" {
		fmt.Fprintf(&b, "Learning objective: %s\n", in.Objective)
	}
	fmt.Fprintf(&b, "Student year: %d\n", in.Difficulty)
	fmt.Fprintf(&b, "\nGenerate %d practice questions for this lesson. Make them progressively harder.", in.Count)

	return b.String()
}

func buildQuizMessage(in QuizInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	fmt.Fprintf(&b, "Sub-topic: %s\n", in.SubTopic)
	fmt.Fprintf(&b, "School year: %d\n", in.Grade)

	fmt.Fprintf(&b, `
Generate %d quiz questions.

Rules:
- Language and examples must suit school year %d.
- Do not assume knowledge above this year.
- Difficulty should be %s within this year, matching a typical school curriculum.
- For numeric answers put only the number in "answer" and the units in "units".
- Set "difficulty" to %d.`, in.Count, in.Grade, BandFor(in.Mastery), in.Grade)

	return b.String()
}
