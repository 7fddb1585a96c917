// Package query composes translation, validation and execution into the
// natural-language query pipeline.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sipico/nlsql-gateway/internal/auth"
	"github.com/sipico/nlsql-gateway/internal/metrics"
	"github.com/sipico/nlsql-gateway/internal/sqlguard"
	"github.com/sipico/nlsql-gateway/internal/storage"
	"github.com/sipico/nlsql-gateway/internal/translate"
)

// Translator produces a classified outcome for a question.
type Translator interface {
	Translate(ctx context.Context, question string) translate.Outcome
}

// Validator decides whether SQL may run.
type Validator interface {
	Validate(sql string) sqlguard.Verdict
}

// Response is the body returned for a processed question.
type Response struct {
	SQL    string        `json:"sql"`
	Result []storage.Row `json:"result"`
}

// RejectedError reports SQL refused by the safety validator.
type RejectedError struct {
	Rule   string
	Reason string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("unsafe SQL (%s): %s", e.Rule, e.Reason)
}

// Service runs questions through the pipeline.
type Service struct {
	translator Translator
	validator  Validator
	executor   storage.Executor
	logger     *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default.
func NewService(t Translator, v Validator, e storage.Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		translator: t,
		validator:  v,
		executor:   e,
		logger:     logger,
	}
}

// Run translates question, validates the SQL and executes it.
// Sentinel outcomes return an empty result without touching the store.
// Unsafe SQL yields *RejectedError; store failures yield *storage.ExecutionError.
func (s *Service) Run(ctx context.Context, question string) (*Response, error) {
	keyHash := auth.HashKey(auth.CredentialFromContext(ctx))

	outcome := s.translator.Translate(ctx, question)
	switch outcome.Kind {
	case translate.NoTranslation:
		s.logger.Info("query.translation.not_found", "question", question, "api_key_hash", keyHash)
		return &Response{SQL: translate.SentinelTODO, Result: []storage.Row{}}, nil
	case translate.Refused:
		s.logger.Warn("query.translation.blocked", "question", question, "api_key_hash", keyHash)
		return &Response{SQL: translate.SentinelBlocked, Result: []storage.Row{}}, nil
	}

	sql := outcome.SQL
	verdict := s.validator.Validate(sql)
	if !verdict.Safe {
		s.logger.Warn("query.sanitizer.unsafe",
			"sql", sql,
			"rule", verdict.Rule,
			"reason", verdict.Reason,
			"api_key_hash", keyHash,
		)
		metrics.RecordValidationRejection(verdict.Rule)
		return nil, &RejectedError{Rule: verdict.Rule, Reason: verdict.Reason}
	}

	s.logger.Info("query.execution.start", "sql", sql, "api_key_hash", keyHash)
	rows, err := s.executor.QueryReadOnly(ctx, sql)
	if err != nil {
		s.logger.Error("query.execution.error", "error", err, "api_key_hash", keyHash)
		metrics.RecordExecution("error")

		var execErr *storage.ExecutionError
		if !errors.As(err, &execErr) {
			execErr = &storage.ExecutionError{Message: err.Error(), Err: err}
		}
		return nil, execErr
	}

	s.logger.Info("query.execution.success", "row_count", len(rows), "api_key_hash", keyHash)
	metrics.RecordExecution("ok")
	if rows == nil {
		rows = []storage.Row{}
	}
	return &Response{SQL: sql, Result: rows}, nil
}
