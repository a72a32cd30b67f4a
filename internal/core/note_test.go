package core

import "testing"

func TestNotePayload_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload NotePayload
	}{
		{"title only", NotePayload{Title: "Groceries"}},
		{"title and note", NotePayload{Title: "Dinner", Note: "birthday"}},
		{"auto income marker", NotePayload{Title: AutoIncomeTitle, AutoIncome: true}},
		{"all fields", NotePayload{Title: "Salary", Note: "June", AutoIncome: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeNotePayload(EncodeNotePayload(tt.payload))
			if got != tt.payload {
				t.Errorf("round trip = %+v, want %+v", got, tt.payload)
			}
		})
	}
}

func TestDecodeNotePayload_Defensive(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want NotePayload
	}{
		{"empty", "", NotePayload{}},
		{"plain text becomes title", "coffee with Ania", NotePayload{Title: "coffee with Ania"}},
		{"broken json becomes title", `{"title": "x`, NotePayload{Title: `{"title": "x`}},
		{"wrong json shape becomes title", `{"title": 42}`, NotePayload{Title: `{"title": 42}`}},
		{"valid payload decodes", `{"title":"Rent","auto_income":false}`, NotePayload{Title: "Rent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeNotePayload(tt.raw); got != tt.want {
				t.Errorf("DecodeNotePayload(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeNotePayload_EmptyIsEmpty(t *testing.T) {
	if got := EncodeNotePayload(NotePayload{}); got != "" {
		t.Errorf("empty payload encoded to %q, want empty string", got)
	}
}
