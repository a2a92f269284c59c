// Package jsonx recovers JSON objects from unreliable generative-model
// output: direct parse first, then tag/fence stripping with a brace-window
// search, then conservative text repairs. It never fails loudly; callers
// treat a false result the same as an oracle failure.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Parse attempts to recover a JSON object from raw model output.
// The second return value reports whether recovery succeeded.
func Parse(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if out, ok := tryUnmarshal(trimmed); ok {
		return out, true
	}

	if extracted := extractObject(trimmed); extracted != "" {
		if out, ok := tryUnmarshal(extracted); ok {
			return out, true
		}
		if out, ok := tryUnmarshal(repair(extracted)); ok {
			return out, true
		}
	}

	if out, ok := tryUnmarshal(repair(trimmed)); ok {
		return out, true
	}

	return nil, false
}

func tryUnmarshal(text string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, false
	}
	return out, true
}

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
	codeFenceOpen   = regexp.MustCompile("(?i)```(?:json)?")
	trailingCommas  = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoteKeys = regexp.MustCompile(`'([^']*)'\s*:`)
)

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&nbsp;", " ",
)

// extractObject strips HTML-like tags and markdown fences, then returns
// the largest brace-delimited window, or "" when no object is present.
func extractObject(text string) string {
	cleaned := htmlTagPattern.ReplaceAllString(text, "")
	cleaned = htmlEntities.Replace(cleaned)
	cleaned = codeFenceOpen.ReplaceAllString(cleaned, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(cleaned[start : end+1])
}

// repair applies conservative fixes for the malformations models emit
// most: single-quoted keys and trailing commas.
func repair(text string) string {
	fixed := strings.TrimSpace(text)
	for _, prefix := range []string{"```json", "```", "json", "JSON"} {
		fixed = strings.TrimSpace(strings.TrimPrefix(fixed, prefix))
	}
	fixed = strings.TrimSpace(strings.TrimSuffix(fixed, "```"))

	fixed = singleQuoteKeys.ReplaceAllString(fixed, `"$1":`)
	fixed = trailingCommas.ReplaceAllString(fixed, "$1")
	return fixed
}
