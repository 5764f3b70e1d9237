package entities

import (
	"fmt"
	"regexp"
	"strings"
)

// Udev keys used by persistent net naming
const (
	UdevKeyName      = "NAME"
	UdevKeyKernel    = "KERNEL"
	UdevKeySubsystem = "SUBSYSTEM"
	UdevKeyAction    = "ACTION"
	UdevKeyDrivers   = "DRIVERS"
	UdevKeyAddress   = "ATTR{address}"
	UdevKeyDevType   = "ATTR{type}"
	UdevKeyKernels   = "KERNELS"
	UdevKeyModalias  = "ENV{MODALIAS}"
)

var udevClausePattern = regexp.MustCompile(`^([A-Za-z0-9_]+(?:\{[^}]*\})?)\s*(==|!=|\+=|:=|=)\s*(.*)$`)

// UdevClause is one parsed `KEY<op>"value"` element of a rule
type UdevClause struct {
	Key   string
	Op    string
	Value string
}

// ParseUdevClause splits a clause into key, operator and unquoted value
func ParseUdevClause(raw string) (UdevClause, error) {
	m := udevClausePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return UdevClause{}, fmt.Errorf("malformed udev clause %q", raw)
	}
	return UdevClause{Key: m[1], Op: m[2], Value: strings.Trim(m[3], `"`)}, nil
}

// FormatUdevClause renders a clause. NAME is an assignment, every other key
// is a match.
func FormatUdevClause(key, value string) string {
	if key == UdevKeyName {
		return fmt.Sprintf(`%s="%s"`, key, value)
	}
	return fmt.Sprintf(`%s=="%s"`, key, value)
}

// UdevRule is an ordered list of match clauses plus the NAME assignment.
// Clauses are kept as raw text so untouched ones are written back verbatim.
type UdevRule struct {
	Clauses []string
}

// NewUdevRule builds a rule from raw clauses
func NewUdevRule(clauses ...string) *UdevRule {
	return &UdevRule{Clauses: append([]string(nil), clauses...)}
}

// ParseUdevRuleLine splits a rules file line on the commas between clauses.
// Commas inside quoted values belong to the value.
func ParseUdevRuleLine(line string) *UdevRule {
	rule := &UdevRule{}
	add := func(part string) {
		if part = strings.TrimSpace(part); part != "" {
			rule.Clauses = append(rule.Clauses, part)
		}
	}

	start := 0
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				add(line[start:i])
				start = i + 1
			}
		}
	}
	add(line[start:])
	return rule
}

// IsEmpty reports whether the rule has no clauses
func (r *UdevRule) IsEmpty() bool {
	return r == nil || len(r.Clauses) == 0
}

// String renders the rule as one rules file line
func (r *UdevRule) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Clauses, ", ")
}

// Field returns the value of the first clause with the given key. Clauses
// that do not parse are returned separately and otherwise ignored.
func (r *UdevRule) Field(key string) (value string, malformed []string) {
	if r == nil {
		return "", nil
	}
	found := false
	for _, raw := range r.Clauses {
		clause, err := ParseUdevClause(raw)
		if err != nil {
			malformed = append(malformed, raw)
			continue
		}
		if !found && clause.Key == key {
			value = clause.Value
			found = true
		}
	}
	return value, malformed
}

// ReplaceField rewrites every clause keyed by matchKey into newKey with
// newValue. Order and all other clauses are preserved.
func (r *UdevRule) ReplaceField(matchKey, newKey, newValue string) bool {
	if r == nil {
		return false
	}
	replaced := false
	for i, raw := range r.Clauses {
		clause, err := ParseUdevClause(raw)
		if err != nil || clause.Key != matchKey {
			continue
		}
		r.Clauses[i] = FormatUdevClause(newKey, newValue)
		replaced = true
	}
	return replaced
}

// RemoveField drops every clause keyed by key
func (r *UdevRule) RemoveField(key string) bool {
	if r == nil {
		return false
	}
	kept := r.Clauses[:0]
	removed := false
	for _, raw := range r.Clauses {
		if clause, err := ParseUdevClause(raw); err == nil && clause.Key == key {
			removed = true
			continue
		}
		kept = append(kept, raw)
	}
	r.Clauses = kept
	return removed
}

// Clone returns an independent copy
func (r *UdevRule) Clone() *UdevRule {
	if r == nil {
		return nil
	}
	return NewUdevRule(r.Clauses...)
}
