package llm

import "context"

// Purpose labels why a request was made. It is recorded with every
// logged request and drives `tutor llm stats`.
type Purpose string

const (
	PurposeHint     Purpose = "hint"
	PurposeReteach  Purpose = "reteach"
	PurposeAsk      Purpose = "ask"
	PurposePractice Purpose = "practice"
	PurposeQuiz     Purpose = "quiz"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose attaches a purpose label to the context.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return v
	}
	return PurposeUnknown
}
