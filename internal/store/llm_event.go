package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// LLMRequestEventData captures one text-generation call for auditing.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequest is a stored LLMRequestEventData.
type LLMRequest struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// QueryOpts configures LLM request listings.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match, empty for all
}

type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

type LLMEventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var llmColumns = []string{
	"id", "sequence", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body", "created_at",
}

// Append records a request. The connection is taken before the sequence
// lock, matching Store.Apply, so the two never wait on each other.
func (r *LLMEventRepo) Append(ctx context.Context, data LLMRequestEventData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin llm event", err)
	}
	defer tx.Rollback()

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return unavailable("append llm event", err)
	}

	q, args := entsql.Dialect(dialect.SQLite).
		Insert("llm_requests").
		Columns(llmColumns[1:]...).
		Values(seq, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
			time.Now().UTC()).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return unavailable("save llm event", err)
	}
	return unavailable("commit llm event", tx.Commit())
}

// List returns requests newest first.
func (r *LLMEventRepo) List(ctx context.Context, opts QueryOpts) ([]LLMRequest, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(llmColumns...).
		From(entsql.Table("llm_requests")).
		OrderBy(entsql.Desc("sequence"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("list llm events", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		e, err := scanLLMRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, unavailable("list llm events", rows.Err())
}

// Get returns one request by ID, or ErrNotFound.
func (r *LLMEventRepo) Get(ctx context.Context, id int) (*LLMRequest, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(llmColumns...).
		From(entsql.Table("llm_requests")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("get llm event", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, unavailable("get llm event", err)
		}
		return nil, ErrNotFound
	}
	return scanLLMRequest(rows)
}

func scanLLMRequest(rows *sql.Rows) (*LLMRequest, error) {
	var e LLMRequest
	err := rows.Scan(&e.ID, &e.Sequence, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody,
		&e.ResponseBody, &e.Timestamp)
	if err != nil {
		return nil, unavailable("scan llm event", err)
	}
	return &e, nil
}

// UsageByPurpose aggregates token usage per purpose label.
func (r *LLMEventRepo) UsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT purpose, COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM llm_requests
		GROUP BY purpose
		ORDER BY purpose`)
	if err != nil {
		return nil, unavailable("llm usage", err)
	}
	defer rows.Close()

	var out []LLMUsageStats
	for rows.Next() {
		var s LLMUsageStats
		if err := rows.Scan(&s.Purpose, &s.Calls, &s.InputTokens, &s.OutputTokens, &s.AvgLatencyMs); err != nil {
			return nil, unavailable("scan llm usage", err)
		}
		out = append(out, s)
	}
	return out, unavailable("llm usage", rows.Err())
}

// UsageByModel aggregates token usage per served model.
func (r *LLMEventRepo) UsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_requests
		GROUP BY model
		ORDER BY model`)
	if err != nil {
		return nil, unavailable("llm model usage", err)
	}
	defer rows.Close()

	var out []LLMModelUsage
	for rows.Next() {
		var m LLMModelUsage
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens); err != nil {
			return nil, unavailable("scan llm model usage", err)
		}
		out = append(out, m)
	}
	return out, unavailable("llm model usage", rows.Err())
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

