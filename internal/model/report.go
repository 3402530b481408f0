package model

import (
	"encoding/json"
	"time"
)

// Report is a denormalized record of a completed collection. Nothing writes reports at runtime.
type Report struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CollectionID string    `json:"collection_id"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	QuantityKg   int       `json:"quantity_kg"`
	WasteType    string    `json:"waste_type"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
}

func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	var rec struct {
		plain
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = Report(rec.plain)
	r.Date = parseRawTime(rec.Date)
	return nil
}
