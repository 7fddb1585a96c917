package sqlguard

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords are statement keywords a read query never needs.
var DefaultKeywords = []string{
	// data mutation
	"UPDATE", "DELETE", "INSERT", "MERGE", "REPLACE", "TRUNCATE",
	// schema mutation
	"DROP", "ALTER", "CREATE",
	// privileges
	"GRANT", "REVOKE",
	// execution
	"EXECUTE", "EXEC",
	// transaction control
	"COMMIT", "ROLLBACK", "SAVEPOINT", "LOCK", "UNLOCK",
	// session and introspection
	"SET", "SHOW", "USE", "DESCRIBE", "EXPLAIN", "HELP",
	// administration
	"SHUTDOWN", "KILL", "FLUSH", "RESET", "PURGE", "OPTIMIZE", "REPAIR",
	"ANALYZE", "CHECK", "CHECKSUM",
	// bulk data movement
	"LOAD", "COPY", "BACKUP", "RESTORE", "IMPORT", "EXPORT", "DUMP", "BULK",
}

// File is the YAML shape of a denylist extension file.
type File struct {
	Keywords []string `yaml:"keywords"`
}

// Denylist matches whole-word keywords in upper-cased SQL.
type Denylist struct {
	keywords []string
	re       *regexp.Regexp
}

// NewDenylist builds a denylist from keywords. Keywords are upper-cased and
// de-duplicated; blanks are dropped.
func NewDenylist(keywords []string) *Denylist {
	seen := make(map[string]struct{}, len(keywords))
	var kws []string
	for _, k := range keywords {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kws = append(kws, k)
	}
	sort.Strings(kws)

	d := &Denylist{keywords: kws}
	if len(kws) == 0 {
		return d
	}

	quoted := make([]string, len(kws))
	for i, k := range kws {
		quoted[i] = regexp.QuoteMeta(k)
	}
	d.re = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return d
}

// DefaultDenylist returns a denylist of DefaultKeywords.
func DefaultDenylist() *Denylist {
	return NewDenylist(DefaultKeywords)
}

// LoadDenylist reads extra keywords from a YAML file and merges them with
// DefaultKeywords. An empty path yields the defaults.
func LoadDenylist(path string) (*Denylist, error) {
	if path == "" {
		return DefaultDenylist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", path, err)
	}

	merged := make([]string, 0, len(DefaultKeywords)+len(f.Keywords))
	merged = append(merged, DefaultKeywords...)
	merged = append(merged, f.Keywords...)
	return NewDenylist(merged), nil
}

// Keywords returns the sorted keyword set.
func (d *Denylist) Keywords() []string {
	out := make([]string, len(d.keywords))
	copy(out, d.keywords)
	return out
}

// Match returns the first denied keyword in normalized, if any.
func (d *Denylist) Match(normalized string) (string, bool) {
	if d.re == nil {
		return "", false
	}
	m := d.re.FindString(normalized)
	return m, m != ""
}
