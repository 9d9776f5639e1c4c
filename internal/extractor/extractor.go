// Package extractor pulls named fields out of LLM output that is supposed to
// be a JSON object but frequently is not quite one.
//
// Well-formed JSON takes a fast path through gjson. Everything else falls
// back to per-field pattern matching that tolerates fenced code blocks,
// escaped strings, bare numbers, booleans, null, and unquoted scalars.
// The first match per field wins.
package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Extract returns the values found for the requested fields. Fields absent
// from the text are absent from the map. String values are unescaped and run
// through mojibake repair.
func Extract(text string, fields []string) map[string]any {
	result := make(map[string]any, len(fields))

	if gjson.Valid(text) {
		for _, field := range fields {
			v := gjson.Get(text, field)
			if !v.Exists() {
				continue
			}
			switch v.Type {
			case gjson.String:
				result[field] = RepairMojibake(v.String())
			case gjson.Number:
				if n := v.Num; n == float64(int64(n)) && !strings.Contains(v.Raw, ".") {
					result[field] = int64(n)
				} else {
					result[field] = n
				}
			case gjson.True, gjson.False:
				result[field] = v.Bool()
			case gjson.Null:
				result[field] = nil
			}
		}
		return result
	}

	for _, field := range fields {
		if v, ok := extractField(text, field); ok {
			result[field] = v
		}
	}
	return result
}

// extractField tries each value form in order, mirroring how models tend to
// mangle JSON: fenced code blocks first, then quoted strings, numbers,
// booleans, null, and finally unquoted scalars.
func extractField(text, field string) (any, bool) {
	if m := codeBlockRe(field).FindStringSubmatch(text); m != nil {
		value := strings.Trim(m[1], "\r\n ")
		return RepairMojibake(value), true
	}

	if m := quotedStringRe(field).FindStringSubmatch(text); m != nil {
		return RepairMojibake(unescapeString(m[1])), true
	}

	if m := numberRe(field).FindStringSubmatch(text); m != nil {
		numStr := m[1]
		if strings.Contains(numStr, ".") {
			if f, err := strconv.ParseFloat(numStr, 64); err == nil {
				return f, true
			}
		} else if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return n, true
		}
	}

	if m := boolRe(field).FindStringSubmatch(text); m != nil {
		return strings.EqualFold(m[1], "true"), true
	}

	if nullRe(field).MatchString(text) {
		return nil, true
	}

	if m := unquotedRe(field).FindStringSubmatch(text); m != nil {
		return RepairMojibake(strings.TrimSpace(m[1])), true
	}

	return nil, false
}

// One compiled regexp per (form, field) pair. Fields come from a small fixed
// set, so the cache stays tiny. Extract runs concurrently when several
// services answer in parallel, so the cache is guarded.
var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

func cached(key, pattern string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[key]; ok {
		return re
	}
	re := regexp.MustCompile(pattern)
	patternCache[key] = re
	return re
}

// "field": ```lang\n ... ```
func codeBlockRe(field string) *regexp.Regexp {
	return cached("code:"+field,
		fmt.Sprintf(`(?s)"%s"\s*:\s*`+"```"+`\w*[\r\n]*([\s\S]*?)`+"```", regexp.QuoteMeta(field)))
}

// "field": "..." with escape support.
func quotedStringRe(field string) *regexp.Regexp {
	return cached("str:"+field,
		fmt.Sprintf(`(?s)"%s"\s*:\s*"((?:\\.|[^"\\])*)"`, regexp.QuoteMeta(field)))
}

// "field": 123 or 3.14, with optional sign.
func numberRe(field string) *regexp.Regexp {
	return cached("num:"+field,
		fmt.Sprintf(`"%s"\s*:\s*([+-]?\d+(?:\.\d+)?)`, regexp.QuoteMeta(field)))
}

func boolRe(field string) *regexp.Regexp {
	return cached("bool:"+field,
		fmt.Sprintf(`(?i)"%s"\s*:\s*(true|false)`, regexp.QuoteMeta(field)))
}

func nullRe(field string) *regexp.Regexp {
	return cached("null:"+field,
		fmt.Sprintf(`(?i)"%s"\s*:\s*null`, regexp.QuoteMeta(field)))
}

// "field": bare value up to the next comma, whitespace, or closing brace.
func unquotedRe(field string) *regexp.Regexp {
	return cached("raw:"+field,
		fmt.Sprintf(`"%s"\s*:\s*([^\s,}]+)`, regexp.QuoteMeta(field)))
}

// unescapeString resolves JSON string escapes, including \uXXXX sequences.
// Invalid escapes leave the raw text in place rather than dropping the value.
func unescapeString(s string) string {
	if unquoted, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return unquoted
	}
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t", `\r`, "\r")
	return r.Replace(s)
}

// RepairMojibake fixes the common case of UTF-8 text (usually Chinese) that
// was mis-decoded as Latin-1, which shows up as runs of accented Latin
// letters. Each rune must fit in a single Latin-1 byte and the resulting
// byte string must be valid UTF-8; otherwise the input is returned as is.
func RepairMojibake(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		b = append(b, byte(r))
	}
	if !utf8.Valid(b) {
		return s
	}
	return string(b)
}
