package remediation

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a calm, encouraging tutor for secondary school students. Use simple language and plain text. Do not use Markdown headings or LaTeX.`

func buildHintMessage(in HintInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	if in.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	}
	fmt.Fprintf(&b, "Student year: %d\n\n", in.Difficulty)
	fmt.Fprintf(&b, "Question:\n%s\n\n", in.Question)
	fmt.Fprintf(&b, "Student answer:\n%s\n\n", in.StudentAnswer)
	fmt.Fprintf(&b, "Correct answer:\n%s\n", in.CorrectAnswer)
	writeAdvisory(&b, in.Advisory)

	fmt.Fprintf(&b, `
Instructions:
- Act like a Year %d teacher.
- Explain briefly why the answer is incorrect.
- Say whether the expected answer is a word or a number.
- Give one small hint.
- Do NOT give the correct answer.
- At most 3 sentences.`, in.Difficulty)

	return b.String()
}

func buildReteachMessage(in HintInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	fmt.Fprintf(&b, "Student year: %d\n\n", in.Difficulty)
	fmt.Fprintf(&b, "Original explanation:\n%s\n\n", in.Explanation)
	fmt.Fprintf(&b, "Question:\n%s\n\n", in.Question)
	fmt.Fprintf(&b, "Student answered %q; the correct answer is %q.\n", in.StudentAnswer, in.CorrectAnswer)
	writeAdvisory(&b, in.Advisory)

	fmt.Fprintf(&b, `
The student is still confused.

Instructions:
- Act like a Year %d teacher.
- Explain the concept again using different wording from the original explanation.
- Include one short example that is different from the question.
- Say whether the expected answer is a word or a number.
- Keep it under 5 sentences and be encouraging.`, in.Difficulty)

	return b.String()
}

func buildAskMessage(in AskInput) string {
	explanation := in.Explanation
	if explanation == "" {
		explanation = "No explanation provided"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The student is learning: %s\n", in.LessonTitle)
	fmt.Fprintf(&b, "Lesson content:\n%s\n\n", explanation)
	fmt.Fprintf(&b, "Student asks: %s\n\n", in.Question)
	fmt.Fprintf(&b, "Answer clearly and concisely for a Year %d student.", in.Difficulty)
	return b.String()
}

func writeAdvisory(b *strings.Builder, advisory string) {
	if advisory == "" {
		return
	}
	fmt.Fprintf(b, "\nTeaching guidance:\n%s\n", advisory)
}
