package weeklyreport

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON numeric field that remembers whether it was present.
// Numeric strings are accepted; null, booleans and other shapes decode as
// absent instead of failing the whole document.
type Number struct {
	Value float64
	Valid bool
}

// Num builds a present Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or returns the value, or def when the field was absent.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}
	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		v = parsed
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes null for absent values.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// VehicleID is an opaque display identifier. The backend sends it either as
// a string or as a number; both decode to the same textual form.
type VehicleID string

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (id *VehicleID) UnmarshalJSON(data []byte) error {
	*id = ""
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*id = VehicleID(strings.TrimSpace(s))
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var num json.Number
		if err := json.Unmarshal(raw, &num); err == nil {
			*id = VehicleID(num.String())
		}
	}
	return nil
}

// StringList accepts a JSON array of labels or a single label string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
// Blank entries and nulls are dropped; numeric entries keep their literal text.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
			*l = StringList{strings.TrimSpace(single)}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			if label := labelOf(item); label != "" {
				out = append(out, label)
			}
		}
		*l = out
	}
	return nil
}

func labelOf(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var num json.Number
	if err := json.Unmarshal(item, &num); err == nil {
		return num.String()
	}
	return ""
}

// CountEntry is one label of a count mapping.
type CountEntry struct {
	Label string
	Value Number
}

// OrderedCounts is a label -> count mapping that keeps the document order of
// its keys. Repeated keys keep their first position and their last value,
// matching encoding/json's last-wins rule for maps.
type OrderedCounts []CountEntry

var errCountsNotObject = errors.New("count mapping must be a JSON object")

// UnmarshalJSON implements json.Unmarshaler.
func (c *OrderedCounts) UnmarshalJSON(data []byte) error {
	*c = nil
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errCountsNotObject
	}
	out := OrderedCounts{}
	positions := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		var n Number
		_ = n.UnmarshalJSON(value)
		if idx, seen := positions[key]; seen {
			out[idx].Value = n
			continue
		}
		positions[key] = len(out)
		out = append(out, CountEntry{Label: key, Value: n})
	}
	*c = out
	return nil
}

// Lookup returns the value stored under label (exact match).
func (c OrderedCounts) Lookup(label string) (Number, bool) {
	for _, entry := range c {
		if entry.Label == label {
			return entry.Value, true
		}
	}
	return Number{}, false
}
