// Package mask serializes handler arguments for logging with sensitive
// values redacted.
package mask

import (
	"encoding/json"
	"strings"
)

// Output replaces the value of every masked key.
const Output = "***"

const unserializable = "[Unserializable Parameter]"

// Stringify renders args as JSON, replacing the value of any object key that
// contains one of keywords (case-insensitive) with output. A single argument
// is rendered as itself, several as a JSON array. It returns "" when there is
// nothing to render (no arguments, or only nil ones).
func Stringify(keywords []string, output string, args ...any) string {
	if isEmpty(args) {
		return ""
	}

	var subject any = args
	if len(args) == 1 {
		subject = args[0]
	}

	raw, err := json.Marshal(subject)
	if err != nil {
		return unserializable
	}
	if len(keywords) == 0 {
		return string(raw)
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return unserializable
	}
	masked, err := json.Marshal(redact(tree, lower(keywords), output))
	if err != nil {
		return unserializable
	}
	return string(masked)
}

func redact(v any, keywords []string, output string) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if matches(k, keywords) {
				node[k] = output
				continue
			}
			node[k] = redact(child, keywords, output)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = redact(child, keywords, output)
		}
		return node
	default:
		return v
	}
}

func matches(key string, keywords []string) bool {
	key = strings.ToLower(key)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func isEmpty(args []any) bool {
	for _, a := range args {
		if a != nil {
			return false
		}
	}
	return true
}
