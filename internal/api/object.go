package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// object is a loosely typed JSON object; accessors take alternative keys in priority order
type object map[string]json.RawMessage

func parseObject(data []byte) (object, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// raw returns the first present, non-null value
func (o object) raw(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

// str accepts strings and numbers
func (o object) str(keys ...string) string {
	for _, k := range keys {
		v, ok := o.raw(k)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok && s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// number accepts numbers and numeric strings
func (o object) number(keys ...string) (float64, bool) {
	for _, k := range keys {
		s := o.str(k)
		if s == "" {
			continue
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (o object) integer(keys ...string) (int, bool) {
	f, ok := o.number(keys...)
	return int(f), ok
}

func (o object) intOr(def int, keys ...string) int {
	if n, ok := o.integer(keys...); ok {
		return n
	}
	return def
}

// boolean accepts true/false, "true"/"false", 1/0
func (o object) boolean(keys ...string) bool {
	for _, k := range keys {
		v, ok := o.raw(k)
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return b
		}
		if s, ok := scalarString(v); ok {
			if parsed, err := strconv.ParseBool(s); err == nil {
				return parsed
			}
		}
	}
	return false
}

func (o object) object(keys ...string) (object, bool) {
	v, ok := o.raw(keys...)
	if !ok {
		return nil, false
	}
	return parseObject(v)
}

// array returns the first present key holding a JSON array
func (o object) array(keys ...string) ([]json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := o.raw(k)
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

// strings reads a list of strings; a single string is split on newlines
func (o object) strings(keys ...string) []string {
	for _, k := range keys {
		v, ok := o.raw(k)
		if !ok {
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			return compact(list)
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return compact(strings.Split(s, "\n"))
		}
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (o object) time(keys ...string) *time.Time {
	s := o.str(keys...)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}

// listOf reads a collection that may be a bare array or an object envelope
func listOf(raw json.RawMessage, keys ...string) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	obj, ok := parseObject(raw)
	if !ok {
		return nil
	}
	keys = append(keys, "data", "items", "results", "rows")
	items, _ = obj.array(keys...)
	return items
}
