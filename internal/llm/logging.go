package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/store"
)

// RequestRecorder persists one record per LLM call.
type RequestRecorder interface {
	Append(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider records every call in the request log and the
// structured logger. Recording failures never fail the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder RequestRecorder
	log      *logger.Logger
}

// WithLogging wraps a Provider. recorder may be nil.
func WithLogging(p Provider, providerName string, recorder RequestRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "purpose", purpose, "model", data.Model,
			"latency_ms", data.LatencyMs, "error", err)
	} else {
		l.log.Debug("llm request", "purpose", purpose, "model", data.Model,
			"latency_ms", data.LatencyMs, "input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	if l.recorder != nil {
		// The caller's context may already be cancelled; the record should
		// still land.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if recErr := l.recorder.Append(recCtx, data); recErr != nil {
			l.log.Warn("failed to record llm request", "purpose", purpose, "error", recErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request for the request log.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
