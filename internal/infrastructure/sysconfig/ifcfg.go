package sysconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ParseIfcfg reads sysconfig KEY=value lines. Comments and blank lines are
// ignored; single and double quoted values are unquoted.
func ParseIfcfg(data []byte) map[string]string {
	fields := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = unquote(strings.TrimSpace(value))
	}
	return fields
}

// FormatIfcfg renders fields as KEY='value' lines in key order
func FormatIfcfg(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s='%s'\n", k, strings.ReplaceAll(fields[k], "'", `'\''`))
	}
	return buf.Bytes()
}

func unquote(value string) string {
	if len(value) >= 2 {
		switch {
		case value[0] == '\'' && value[len(value)-1] == '\'':
			return strings.ReplaceAll(value[1:len(value)-1], `'\''`, "'")
		case value[0] == '"' && value[len(value)-1] == '"':
			return strings.ReplaceAll(value[1:len(value)-1], `\"`, `"`)
		}
	}
	return value
}
