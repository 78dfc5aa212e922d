package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"zillow-scraper/models"
)

// Helpers for reading the untyped page state. Every accessor reports
// (zero, false) on a miss instead of failing, so field rules can fall
// through to the next path.

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case models.RawListing:
		return m, m != nil
	}
	return nil, false
}

// lookup walks a dotted path such as "hdpData.homeInfo.price".
func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func asString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(s, ",", "")
	}
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	if f, ok := asFloat(v); ok {
		return f != 0, true
	}
	return false, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// firstString returns the first non-empty string found along paths.
func firstString(raw map[string]any, paths ...string) string {
	for _, p := range paths {
		if v, ok := lookup(raw, p); ok {
			if s, ok := asString(v); ok {
				return s
			}
		}
	}
	return ""
}

func firstInt(raw map[string]any, paths ...string) (int, bool) {
	for _, p := range paths {
		if v, ok := lookup(raw, p); ok {
			if n, ok := asInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func firstBool(raw map[string]any, paths ...string) bool {
	for _, p := range paths {
		if v, ok := lookup(raw, p); ok {
			if b, ok := asBool(v); ok {
				return b
			}
		}
	}
	return false
}

func present(raw map[string]any, path string) bool {
	_, ok := lookup(raw, path)
	return ok
}
