// Package sqlguard decides whether oracle-produced SQL is safe to execute.
package sqlguard

import (
	"strings"
)

// Rule names reported in verdicts.
const (
	RuleSelectOnly  = "select-only"
	RuleNoSemicolon = "no-semicolon"
	RuleDenylist    = "denylist"
	RuleNoUnion     = "no-union"
	RuleNoComments  = "no-comments"
)

// Verdict is the result of validating one statement.
type Verdict struct {
	Safe   bool
	Rule   string // failing rule, empty when safe
	Reason string
}

// Check inspects upper-cased, trimmed SQL and reports whether it passes.
type Check func(normalized string) (ok bool, reason string)

// Rule is a named check.
type Rule struct {
	Name  string
	Check Check
}

// SelectOnly requires the statement to begin with SELECT.
func SelectOnly(normalized string) (bool, string) {
	if strings.HasPrefix(normalized, "SELECT") {
		return true, ""
	}
	return false, "statement does not start with SELECT"
}

// NoSemicolon rejects statement stacking.
func NoSemicolon(normalized string) (bool, string) {
	if strings.Contains(normalized, ";") {
		return false, "statement contains a semicolon"
	}
	return true, ""
}

// NoUnion rejects UNION anywhere in the statement.
func NoUnion(normalized string) (bool, string) {
	if strings.Contains(normalized, "UNION") {
		return false, "statement contains UNION"
	}
	return true, ""
}

// NoComments rejects SQL comment markers.
func NoComments(normalized string) (bool, string) {
	for _, marker := range []string{"--", "/*", "*/"} {
		if strings.Contains(normalized, marker) {
			return false, "statement contains comment marker " + marker
		}
	}
	return true, ""
}

// DenylistCheck returns a Check rejecting any whole-word keyword of d.
func DenylistCheck(d *Denylist) Check {
	return func(normalized string) (bool, string) {
		if kw, found := d.Match(normalized); found {
			return false, "statement contains denied keyword " + kw
		}
		return true, ""
	}
}

// Validator applies rules in order; the first failure decides the verdict.
type Validator struct {
	rules []Rule
}

// New creates a Validator with the standard rule set using d as the denylist.
// A nil d means DefaultDenylist.
func New(d *Denylist) *Validator {
	if d == nil {
		d = DefaultDenylist()
	}
	return NewWithRules(
		Rule{Name: RuleSelectOnly, Check: SelectOnly},
		Rule{Name: RuleNoSemicolon, Check: NoSemicolon},
		Rule{Name: RuleDenylist, Check: DenylistCheck(d)},
		Rule{Name: RuleNoUnion, Check: NoUnion},
		Rule{Name: RuleNoComments, Check: NoComments},
	)
}

// NewWithRules creates a Validator from an explicit rule list.
func NewWithRules(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the rule names in evaluation order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.Name
	}
	return names
}

// Validate checks sql against every rule. sql itself is not modified.
func (v *Validator) Validate(sql string) Verdict {
	normalized := Normalize(sql)
	for _, r := range v.rules {
		if ok, reason := r.Check(normalized); !ok {
			return Verdict{Rule: r.Name, Reason: reason}
		}
	}
	return Verdict{Safe: true}
}

// Normalize upper-cases and trims sql for keyword checks.
func Normalize(sql string) string {
	return strings.ToUpper(strings.TrimSpace(sql))
}
