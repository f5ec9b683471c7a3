package reportarchive

import (
	"encoding/json"
	"strings"
)

const (
	reportSuffix = "_weekly_report.json"
	jsonSuffix   = ".json"
)

// Entry describes one stored report.
type Entry struct {
	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

// Document is a stored report returned verbatim to API consumers.
type Document struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// NameForDate builds the storage name of the report published for date.
func NameForDate(date string) string {
	return date + reportSuffix
}

// DateFromName extracts the date prefix of a conventional report name.
func DateFromName(name string) (string, bool) {
	if !strings.HasSuffix(name, reportSuffix) {
		return "", false
	}
	date := strings.TrimSuffix(name, reportSuffix)
	if date == "" {
		return "", false
	}
	return date, true
}

// NewEntry builds an Entry, filling Date when the name is conventional.
func NewEntry(name string) Entry {
	date, _ := DateFromName(name)
	return Entry{Name: name, Date: date}
}
