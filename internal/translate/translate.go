// Package translate turns natural-language questions into SQL through an
// external oracle.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sipico/nlsql-gateway/internal/metrics"
	"github.com/sipico/nlsql-gateway/internal/oracle"
	"github.com/sipico/nlsql-gateway/internal/retry"
)

// DefaultAttemptTimeout bounds each oracle call.
const DefaultAttemptTimeout = 10 * time.Second

// SystemPrompt is the fixed instruction sent with every question.
const SystemPrompt = `You are a secure SQL generator that converts natural language questions into SQL queries.
Your task is to generate ONLY SELECT statements that are safe and efficient.

Rules:
1. ONLY generate SELECT statements - never UPDATE, DELETE, INSERT, DROP, etc.
2. Use proper SQL syntax and best practices
3. Return ONLY the SQL query without any explanation
4. If the question cannot be translated to a SELECT statement, return "-- BLOCKED"
5. If you're unsure about the translation, return "-- TODO"

Format your response as a JSON object with a single "sql" field containing the SQL query.
Example: {"sql": "SELECT * FROM customers WHERE name LIKE '%John%'"}
`

// Completer is the oracle capability the translator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Translator asks the oracle for SQL under a retry policy.
type Translator struct {
	oracle  Completer
	policy  retry.Policy
	timeout time.Duration
	sleep   retry.Sleeper
	logger  *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(t *Translator) {
		t.policy = p
	}
}

// WithAttemptTimeout overrides the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(t *Translator) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(s retry.Sleeper) Option {
	return func(t *Translator) {
		t.sleep = s
	}
}

// WithLogger sets the logger for attempt failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Translator using retry.DefaultPolicy and DefaultAttemptTimeout.
func New(o Completer, opts ...Option) *Translator {
	t := &Translator{
		oracle:  o,
		policy:  retry.DefaultPolicy(),
		timeout: DefaultAttemptTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate never fails: oracle and parse failures that survive the retry
// policy become NoTranslation.
func (t *Translator) Translate(ctx context.Context, question string) Outcome {
	var sql string
	attempt := 0

	call := func(ctx context.Context) error {
		attempt++
		actx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()

		content, err := t.oracle.Complete(actx, SystemPrompt, question)
		if err != nil {
			t.logger.Warn("oracle attempt failed", "attempt", attempt, "error", err)
			if errors.Is(err, oracle.ErrUnauthorized) {
				return retry.Permanent(err)
			}
			return err
		}

		parsed, err := ParseReply(content)
		if err != nil {
			t.logger.Warn("oracle reply rejected", "attempt", attempt, "error", err)
			return err
		}
		sql = parsed
		return nil
	}

	var err error
	if t.sleep != nil {
		err = retry.DoWithSleeper(ctx, t.policy, t.sleep, call)
	} else {
		err = retry.Do(ctx, t.policy, call)
	}

	out := Outcome{Kind: NoTranslation, SQL: SentinelTODO}
	if err == nil {
		out = Classify(sql)
	} else {
		t.logger.Error("translation failed", "attempts", attempt, "error", err)
	}
	metrics.RecordTranslation(out.Kind.String())
	return out
}
