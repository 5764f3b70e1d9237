package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRule = `SUBSYSTEM=="net", ACTION=="add", DRIVERS=="?*", ATTR{address}=="00:11:22:33:44:55", ATTR{type}=="1", KERNEL=="eth*", NAME="eth0"`

func TestParseUdevClause(t *testing.T) {
	clause, err := ParseUdevClause(`ATTR{address}=="00:11:22:33:44:55"`)
	require.NoError(t, err)
	assert.Equal(t, UdevClause{Key: "ATTR{address}", Op: "==", Value: "00:11:22:33:44:55"}, clause)

	clause, err = ParseUdevClause(` NAME = "eth0" `)
	require.NoError(t, err)
	assert.Equal(t, UdevClause{Key: "NAME", Op: "=", Value: "eth0"}, clause)

	_, err = ParseUdevClause(`garbage`)
	assert.Error(t, err)
}

func TestUdevRule_Field(t *testing.T) {
	rule := ParseUdevRuleLine(sampleRule)
	require.Len(t, rule.Clauses, 7)

	value, malformed := rule.Field(UdevKeyName)
	assert.Equal(t, "eth0", value)
	assert.Empty(t, malformed)

	value, _ = rule.Field(UdevKeyAddress)
	assert.Equal(t, "00:11:22:33:44:55", value)

	value, _ = rule.Field("MISSING")
	assert.Empty(t, value)
}

func TestParseUdevRuleLine_QuotedCommas(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		clauses []string
	}{
		{
			name:    "값 안의 쉼표",
			line:    `SUBSYSTEM=="net", ATTR{x}=="a,b", NAME="eth0"`,
			clauses: []string{`SUBSYSTEM=="net"`, `ATTR{x}=="a,b"`, `NAME="eth0"`},
		},
		{
			name:    "이스케이프된 따옴표",
			line:    `ATTR{x}=="a\",b", NAME="eth0"`,
			clauses: []string{`ATTR{x}=="a\",b"`, `NAME="eth0"`},
		},
		{
			name:    "빈 clause 무시",
			line:    `KERNEL=="eth*",, NAME="eth0",`,
			clauses: []string{`KERNEL=="eth*"`, `NAME="eth0"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ParseUdevRuleLine(tt.line)
			assert.Equal(t, tt.clauses, rule.Clauses)
		})
	}

	// 다시 쓰면 원래 줄과 같아야 함
	line := `SUBSYSTEM=="net", ATTR{x}=="a,b", NAME="eth0"`
	assert.Equal(t, line, ParseUdevRuleLine(line).String())
}

func TestUdevRule_FieldSkipsMalformedClauses(t *testing.T) {
	rule := NewUdevRule(`KERNEL=="eth*"`, `broken clause`, `NAME="lan0"`)

	value, malformed := rule.Field(UdevKeyName)
	assert.Equal(t, "lan0", value)
	assert.Equal(t, []string{"broken clause"}, malformed)
}

func TestUdevRule_ReplaceField(t *testing.T) {
	rule := ParseUdevRuleLine(sampleRule)

	assert.True(t, rule.ReplaceField(UdevKeyName, UdevKeyName, "lan0"))
	assert.Equal(t, `NAME="lan0"`, rule.Clauses[6])

	assert.True(t, rule.ReplaceField(UdevKeyAddress, UdevKeyKernels, "0000:00:19.0"))
	assert.Equal(t, `KERNELS=="0000:00:19.0"`, rule.Clauses[3])
	assert.Len(t, rule.Clauses, 7)

	assert.False(t, rule.ReplaceField("MISSING", UdevKeyName, "x"))

	var nilRule *UdevRule
	assert.False(t, nilRule.ReplaceField(UdevKeyName, UdevKeyName, "x"))
}

func TestUdevRule_RemoveField(t *testing.T) {
	rule := ParseUdevRuleLine(sampleRule)

	assert.True(t, rule.RemoveField(UdevKeyKernel))
	assert.Len(t, rule.Clauses, 6)
	assert.NotContains(t, rule.String(), "KERNEL==")
	assert.False(t, rule.RemoveField(UdevKeyKernel))
}

func TestUdevRule_CloneAndEmpty(t *testing.T) {
	var nilRule *UdevRule
	assert.True(t, nilRule.IsEmpty())
	assert.True(t, NewUdevRule().IsEmpty())
	assert.Equal(t, "", nilRule.String())

	rule := NewUdevRule(`KERNEL=="eth*"`, `NAME="eth0"`)
	clone := rule.Clone()
	clone.ReplaceField(UdevKeyName, UdevKeyName, "eth1")

	value, _ := rule.Field(UdevKeyName)
	assert.Equal(t, "eth0", value)
	assert.Equal(t, `KERNEL=="eth*", NAME="eth0"`, rule.String())
}
