package engine

import (
	"encoding/json"
	"strings"
)

// ExtractFirstJSON returns the first balanced, valid JSON object or array embedded in s.
// Braces and brackets inside string literals are ignored, escapes are honored.
// Returns false if no opener exists or a value never balances.
func ExtractFirstJSON(s string) (string, bool) {
	values := ExtractJSONValues(s)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ExtractJSONValues returns the top-level JSON objects and arrays embedded in s,
// in order. A balanced span that is not valid JSON (bracketed prose) is skipped
// and scanning resumes after its opener. Scanning stops at the first opener
// that never balances.
func ExtractJSONValues(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		off := strings.IndexAny(s[i:], "{[")
		if off < 0 {
			break
		}
		start := i + off
		end, ok := balancedEnd(s, start)
		if !ok {
			break
		}
		if json.Valid([]byte(s[start:end])) {
			out = append(out, s[start:end])
			i = end
		} else {
			i = start + 1
		}
	}
	return out
}

// balancedEnd returns the index just past the value opened at s[start].
func balancedEnd(s string, start int) (int, bool) {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
