package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel statements the oracle returns instead of SQL.
const (
	SentinelTODO    = "-- TODO"
	SentinelBlocked = "-- BLOCKED"
)

// Kind tags a translation outcome.
type Kind int

const (
	// Translated carries SQL that still needs validation.
	Translated Kind = iota
	// NoTranslation means the oracle was unsure or unavailable.
	NoTranslation
	// Refused means the question cannot be answered by a read query.
	Refused
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case Translated:
		return "translated"
	case NoTranslation:
		return "no_translation"
	case Refused:
		return "refused"
	default:
		return "unknown"
	}
}

// Outcome is the result of a translation. SQL holds the sentinel for
// NoTranslation and Refused.
type Outcome struct {
	Kind Kind
	SQL  string
}

// Classify maps oracle SQL text to an outcome. Sentinels must match
// exactly; anything else, padded sentinels included, is returned untouched
// as Translated so the validator sees the text that would run.
func Classify(sql string) Outcome {
	switch sql {
	case SentinelBlocked:
		return Outcome{Kind: Refused, SQL: SentinelBlocked}
	case SentinelTODO:
		return Outcome{Kind: NoTranslation, SQL: SentinelTODO}
	default:
		return Outcome{Kind: Translated, SQL: sql}
	}
}

// Errors returned by ParseReply.
var (
	ErrMalformedReply = errors.New("translate: reply is not a JSON object")
	ErrMissingSQL     = errors.New("translate: reply has no sql field")
	ErrEmptySQL       = errors.New("translate: reply sql is empty")
)

// ParseReply extracts the sql string from an oracle reply of the form
// {"sql": "..."}. A surrounding markdown code fence is tolerated.
func ParseReply(content string) (string, error) {
	body := stripFence(strings.TrimSpace(content))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	raw, ok := fields["sql"]
	if !ok {
		return "", ErrMissingSQL
	}

	var sql string
	if err := json.Unmarshal(raw, &sql); err != nil {
		return "", fmt.Errorf("%w: sql is not a string", ErrMalformedReply)
	}
	if strings.TrimSpace(sql) == "" {
		return "", ErrEmptySQL
	}
	return sql, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
