// Package core holds the Savoo domain model and the pure computations
// built on it: chart series aggregation, the monthly income credit rule,
// and the transaction note sub-protocol.
//
// The transaction note column is a serialization sub-protocol of its own:
// the free-text field carries a nested JSON object so a single column can
// hold a title, an optional note, and the auto-income marker. Decoding is
// defensive — anything that is not the expected JSON shape is treated as
// a plain-text title.
package core

import (
	"encoding/json"
	"strings"
)

// NotePayload is the structured content embedded in a transaction's note
// field.
type NotePayload struct {
	Title      string `json:"title,omitempty"`
	Note       string `json:"note,omitempty"`
	AutoIncome bool   `json:"auto_income,omitempty"`
}

// EncodeNotePayload serializes the payload for storage in the note
// column. An entirely empty payload encodes to the empty string.
func EncodeNotePayload(p NotePayload) string {
	if p.Title == "" && p.Note == "" && !p.AutoIncome {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		// Marshal of this struct cannot fail; fall back to the title.
		return p.Title
	}
	return string(data)
}

// DecodeNotePayload parses a raw note column value. Invalid or non-object
// JSON degrades to treating the whole string as a title; it never fails.
func DecodeNotePayload(raw string) NotePayload {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NotePayload{}
	}
	if !strings.HasPrefix(trimmed, "{") {
		return NotePayload{Title: raw}
	}
	var p NotePayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return NotePayload{Title: raw}
	}
	return p
}
