package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// encodeLine renders fields in key order as one newline-terminated line.
func encodeLine(format logFormat, fields map[string]any, keys []string) ([]byte, error) {
	var buf bytes.Buffer
	if format == formatJSON {
		buf.WriteByte('{')
	}
	for i, key := range keys {
		if format == formatJSON {
			val, err := json.Marshal(fields[key])
			if err != nil {
				return nil, fmt.Errorf("logger: encode %s: %w", key, err)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(key))
			buf.WriteByte(':')
			buf.Write(val)
			continue
		}
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(kvValue(fields[key]))
	}
	if format == formatJSON {
		buf.WriteByte('}')
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// orderedKeys lists the keys of order present in fields, then the rest alphabetically.
func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	for _, key := range order {
		if _, ok := fields[key]; ok && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	known := len(keys)
	for key := range fields {
		if !slices.Contains(keys[:known], key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys[known:])
	return keys
}

// kvValue quotes strings containing spaces, control characters, '=' or '"'.
func kvValue(val any) string {
	s, ok := val.(string)
	if !ok {
		return fmt.Sprint(val)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
