package models

import (
	"encoding/json"
	"fmt"
)

// Word is an English prompt paired with its accepted Spanish translations
type Word struct {
	English    string   `json:"english" db:"english"`
	Spanish    []string `json:"spanish" db:"-"`      // Accepted translations, the first one is canonical
	Order      int      `json:"order" db:"position"` // Position in the source deck
	Confidence *int     `json:"confidence,omitempty" db:"-"`
}

// Key returns the canonical translation used to key progress, or "" if the word has none
func (w Word) Key() string {
	if len(w.Spanish) == 0 {
		return ""
	}
	return w.Spanish[0]
}

// WithConfidence returns a copy of the word annotated with the given confidence
func (w Word) WithConfidence(c int) Word {
	w.Confidence = &c
	return w
}

// UnmarshalJSON accepts "spanish" either as a single string or as a list
func (w *Word) UnmarshalJSON(data []byte) error {
	var raw struct {
		English    string          `json:"english"`
		Spanish    json.RawMessage `json:"spanish"`
		Order      int             `json:"order"`
		Confidence *int            `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	w.English = raw.English
	w.Order = raw.Order
	w.Confidence = raw.Confidence
	w.Spanish = nil

	if len(raw.Spanish) == 0 || string(raw.Spanish) == "null" {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Spanish, &single); err == nil {
		if single != "" {
			w.Spanish = []string{single}
		}
		return nil
	}
	if err := json.Unmarshal(raw.Spanish, &w.Spanish); err != nil {
		return fmt.Errorf("spanish must be a string or a list of strings: %w", err)
	}
	return nil
}
