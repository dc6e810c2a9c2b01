// ABOUTME: Lenient JSON decoding for LLM replies
// ABOUTME: Handles markdown code fences and surrounding prose
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals an LLM reply into v. Replies are often wrapped in
// markdown fences or prose, so after a direct parse fails the first balanced
// JSON object or array in the text is tried.
func DecodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	candidate := extractJSON(text)
	if candidate == "" {
		return fmt.Errorf("no JSON found in response")
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("failed to parse JSON from response: %w", err)
	}
	return nil
}

// extractJSON returns the first balanced {...} or [...] span, ignoring
// brackets inside string literals
func extractJSON(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	open := text[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
