package access

import (
	"encoding/json"
	"time"

	"github.com/oarkflow/date"
)

// InstantConvertible is implemented by store-specific timestamp wrappers
// that can hand back a native time (the document SDK's toDate-style object).
type InstantConvertible interface {
	Time() time.Time
}

// instantShape tags the known timestamp representations found in stored
// documents. Dispatch is explicit so every call site shares one precedence
// order instead of duck-typing ad hoc.
type instantShape int

const (
	shapeUnknown instantShape = iota
	shapeNative               // time.Time
	shapeConvertible
	shapeEpochMap // {_seconds, _nanoseconds}
	shapeString   // ISO-8601 or similar parseable text
)

func classifyInstant(raw any) instantShape {
	switch v := raw.(type) {
	case time.Time, *time.Time:
		return shapeNative
	case InstantConvertible:
		return shapeConvertible
	case string:
		return shapeString
	case map[string]any:
		if _, ok := v["_seconds"]; ok {
			return shapeEpochMap
		}
	case Document:
		if _, ok := v["_seconds"]; ok {
			return shapeEpochMap
		}
	}
	return shapeUnknown
}

// NormalizeInstant converts any of the known stored timestamp shapes to a
// time.Time. The second return reports whether the value was recognized;
// unrecognized shapes (including nil) are treated as absent, never guessed.
func NormalizeInstant(raw any) (time.Time, bool) {
	switch classifyInstant(raw) {
	case shapeNative:
		if t, ok := raw.(time.Time); ok {
			return t, true
		}
		if t, ok := raw.(*time.Time); ok && t != nil {
			return *t, true
		}
	case shapeConvertible:
		return raw.(InstantConvertible).Time(), true
	case shapeEpochMap:
		m, ok := raw.(map[string]any)
		if !ok {
			m = map[string]any(raw.(Document))
		}
		sec, okSec := epochNumber(m["_seconds"])
		if !okSec {
			return time.Time{}, false
		}
		nsec, _ := epochNumber(m["_nanoseconds"])
		return time.Unix(sec, nsec).UTC(), true
	case shapeString:
		s := raw.(string)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := date.Parse(s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// epochNumber coerces the numeric encodings a JSON or store decoder may
// produce for the _seconds/_nanoseconds fields.
func epochNumber(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// NormalizeDocument returns a copy of doc with every recognized timestamp
// object rewritten as an RFC3339 string. It recurses into nested maps and
// slices so deeply nested legacy shapes are cleaned too. Plain strings are
// left alone; only convertible objects and epoch maps are rewritten.
func NormalizeDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch classifyInstant(v) {
	case shapeNative, shapeConvertible, shapeEpochMap:
		if t, ok := NormalizeInstant(v); ok {
			return t.UTC().Format(time.RFC3339)
		}
	}
	switch vv := v.(type) {
	case Document:
		return NormalizeDocument(vv)
	case map[string]any:
		return map[string]any(NormalizeDocument(Document(vv)))
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}
