package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Stored analyses and LLM answers are untrusted JSON. The helpers below coerce a
// raw value into the shape a field needs instead of failing the whole document.

// looseText renders a JSON value as display text. Strings are kept verbatim, lists
// are joined with ", " and other values keep their JSON form. null and absent
// values yield nil.
func looseText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if s := looseText(item); s != nil && *s != "" {
				parts = append(parts, *s)
			}
		}
		joined := strings.Join(parts, ", ")
		return &joined
	}

	s := string(raw)
	return &s
}

// looseNumber accepts JSON numbers and numeric strings such as "85" or "85%".
// Anything else is treated as absent.
func looseNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// truthy follows JavaScript truthiness: null, false, 0 and "" are false, every
// other present value is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		return len(raw) > 2
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	return err != nil || f != 0
}

func textOrEmpty(raw json.RawMessage) string {
	if s := looseText(raw); s != nil {
		return *s
	}
	return ""
}
