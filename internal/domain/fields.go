// JSON column types and the shape-normalization boundary.
//
// The upstream store was written to by several generations of clients, so
// the same logical column can hold a JSON array, a JSON-encoded string, a
// double-encoded JSON payload, or a bare comma-separated string. Everything
// in this file exists to collapse those variants into one canonical Go shape
// the moment a row is scanned, so no aggregation code ever branches on
// wire shape. Malformed payloads normalize to empty values, never to errors.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringList is a []string column that accepts every historical encoding of
// a list field: JSON arrays (of strings or objects-as-strings), JSON-encoded
// scalars, double-encoded JSON, and plain comma-separated strings.
type StringList []string

// NormalizeList converts any raw persisted list shape into a canonical,
// trimmed []string with empties dropped.
//
// Rules:
//   - an actual list: stringify and trim each element, drop empties
//   - a string: JSON-parse it; a parsed list is normalized recursively, a
//     parsed scalar becomes a single element, and a parse failure falls back
//     to comma-splitting (stripping surrounding quotes per segment) or, with
//     no comma present, the whole trimmed string as one element
//   - nil: empty list
//
// The function is idempotent: normalizing its own output returns an
// identical list.
func NormalizeList(raw any) StringList {
	switch v := raw.(type) {
	case nil:
		return nil
	case StringList:
		return normalizeElems(toAnySlice(v))
	case []string:
		return normalizeElems(toAnySlice(v))
	case []any:
		return normalizeElems(v)
	case []byte:
		return normalizeString(string(v))
	case string:
		return normalizeString(v)
	default:
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return nil
		}
		return StringList{s}
	}
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func normalizeElems(elems []any) StringList {
	var out StringList
	for _, e := range elems {
		var s string
		switch t := e.(type) {
		case string:
			s = t
		case nil:
			continue
		default:
			s = fmt.Sprint(t)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeString(s string) StringList {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		if list, ok := parsed.([]any); ok {
			return normalizeElems(list)
		}
		// Scalar JSON ("\"a\"", 42, true) wraps as a single element.
		return normalizeElems([]any{parsed})
	}

	if strings.Contains(s, ",") {
		var out StringList
		for _, seg := range strings.Split(s, ",") {
			seg = strings.Trim(strings.TrimSpace(seg), `"'`)
			if seg != "" {
				out = append(out, seg)
			}
		}
		return out
	}
	return StringList{s}
}

// Scan implements sql.Scanner, normalizing whatever shape the store holds.
func (l *StringList) Scan(value any) error {
	*l = NormalizeList(value)
	return nil
}

// Value implements driver.Valuer, always writing a JSON array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// CategoryDetail is one V1 category entry: a score plus the model's reason.
type CategoryDetail struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// UnmarshalJSON accepts both the object form {"score":.., "reason":..} and
// a bare number, which some early pipeline versions emitted.
func (d *CategoryDetail) UnmarshalJSON(b []byte) error {
	var obj struct {
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		d.Score = obj.Score
		d.Reason = obj.Reason
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		d.Score = n
		d.Reason = ""
		return nil
	}
	// Unusable entry; zero value keeps the row readable.
	d.Score = 0
	d.Reason = ""
	return nil
}

// CategoryBreakdown is the V1 per-category payload: category -> {score, reason}.
type CategoryBreakdown map[string]CategoryDetail

// Scan implements sql.Scanner. Malformed payloads yield an empty map.
func (c *CategoryBreakdown) Scan(value any) error {
	*c = nil
	var m CategoryBreakdown
	if scanJSON(value, &m) {
		*c = m
	}
	return nil
}

// Value implements driver.Valuer.
func (c CategoryBreakdown) Value() (driver.Value, error) { return marshalJSONColumn(c) }

// CategoryScores is the V2 per-category payload: category -> plain score.
// Values that arrive as JSON strings are coerced to numbers when possible.
type CategoryScores map[string]float64

// Scan implements sql.Scanner. Malformed payloads yield an empty map.
func (c *CategoryScores) Scan(value any) error {
	*c = nil
	var raw map[string]any
	if !scanJSON(value, &raw) {
		return nil
	}
	out := make(CategoryScores, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				out[k] = f
			}
		}
	}
	if len(out) > 0 {
		*c = out
	}
	return nil
}

// Value implements driver.Valuer.
func (c CategoryScores) Value() (driver.Value, error) { return marshalJSONColumn(c) }

// WhatWorkedEntry is one positive observation from the analysis pipeline.
type WhatWorkedEntry struct {
	BehaviorSkill string `json:"behavior_skill"`
	Evidence      string `json:"evidence,omitempty"`
}

// WhatWorkedList is the ai_what_worked JSON column.
type WhatWorkedList []WhatWorkedEntry

// Scan implements sql.Scanner. Malformed payloads yield an empty list.
func (l *WhatWorkedList) Scan(value any) error {
	*l = nil
	var out WhatWorkedList
	if scanJSON(value, &out) {
		*l = out
	}
	return nil
}

// Value implements driver.Valuer.
func (l WhatWorkedList) Value() (driver.Value, error) { return marshalJSONColumn(l) }

// ImprovementArea is one coaching suggestion from the analysis pipeline.
type ImprovementArea struct {
	CategorySkill      string `json:"category_skill"`
	DoThisInstead      string `json:"do_this_instead,omitempty"`
	WhyThisWorksBetter string `json:"why_this_works_better,omitempty"`
}

// ImprovementList is the ai_improvement_areas JSON column.
type ImprovementList []ImprovementArea

// Scan implements sql.Scanner. Malformed payloads yield an empty list.
func (l *ImprovementList) Scan(value any) error {
	*l = nil
	var out ImprovementList
	if scanJSON(value, &out) {
		*l = out
	}
	return nil
}

// Value implements driver.Valuer.
func (l ImprovementList) Value() (driver.Value, error) { return marshalJSONColumn(l) }

// JSONMap is a free-form JSON object column (conversation/message metadata).
type JSONMap map[string]any

// Scan implements sql.Scanner. Malformed payloads yield an empty map.
func (m *JSONMap) Scan(value any) error {
	*m = nil
	var out JSONMap
	if scanJSON(value, &out) {
		*m = out
	}
	return nil
}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) { return marshalJSONColumn(m) }

// scanJSON decodes a DB value ([]byte or string) into dest, unwrapping one
// level of double-encoding ("\"{...}\"") when present. It reports success;
// it never returns an error because input-shape problems are recovered as
// empty values at this boundary.
func scanJSON(value any, dest any) bool {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return false
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return false
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return false
	}
	if json.Unmarshal(raw, dest) == nil {
		return true
	}
	// Double-encoded payload: a JSON string containing JSON.
	var inner string
	if json.Unmarshal(raw, &inner) == nil {
		return json.Unmarshal([]byte(inner), dest) == nil
	}
	return false
}

func marshalJSONColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
