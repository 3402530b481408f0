package model

import (
	"encoding/json"
	"time"
)

type WasteType string

const (
	WasteTypeOrganic    WasteType = "organic"
	WasteTypeRecyclable WasteType = "recyclable"
	WasteTypeHazardous  WasteType = "hazardous"
	WasteTypeGeneral    WasteType = "general"
)

var WasteTypes = []WasteType{WasteTypeOrganic, WasteTypeRecyclable, WasteTypeHazardous, WasteTypeGeneral}

func (t WasteType) Valid() bool {
	switch t {
	case WasteTypeOrganic, WasteTypeRecyclable, WasteTypeHazardous, WasteTypeGeneral:
		return true
	default:
		return false
	}
}

type CollectionStatus string

const (
	CollectionStatusScheduled  CollectionStatus = "scheduled"
	CollectionStatusInProgress CollectionStatus = "in_progress"
	CollectionStatusCompleted  CollectionStatus = "completed"
	// CollectionStatusCancelled is part of the stored model but no operation moves a collection into it.
	CollectionStatusCancelled CollectionStatus = "cancelled"
)

func (s CollectionStatus) Terminal() bool {
	return s == CollectionStatusCompleted || s == CollectionStatusCancelled
}

type Collection struct {
	ID            string           `json:"id"`
	ClientID      string           `json:"client_id"`
	CompanyID     string           `json:"company_id,omitempty"`
	WasteType     WasteType        `json:"waste_type"`
	ScheduledDate time.Time        `json:"scheduled_date"`
	ScheduledTime string           `json:"scheduled_time"`
	Address       string           `json:"address"`
	QuantityKg    int              `json:"quantity_kg"`
	Status        CollectionStatus `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (c Collection) Assigned() bool {
	return c.CompanyID != ""
}

// Available reports whether any company may still accept the collection.
func (c Collection) Available() bool {
	return !c.Assigned() && c.Status == CollectionStatusScheduled
}

func (c Collection) InvolvesUser(userID string) bool {
	return userID != "" && (c.ClientID == userID || c.CompanyID == userID)
}

// UnmarshalJSON tolerates malformed or missing timestamps by leaving them zero.
func (c *Collection) UnmarshalJSON(data []byte) error {
	type plain Collection
	var rec struct {
		plain
		ScheduledDate json.RawMessage `json:"scheduled_date"`
		CompletedAt   json.RawMessage `json:"completed_at"`
		CreatedAt     json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*c = Collection(rec.plain)
	c.ScheduledDate = parseRawTime(rec.ScheduledDate)
	c.CreatedAt = parseRawTime(rec.CreatedAt)
	c.CompletedAt = nil
	if completed := parseRawTime(rec.CompletedAt); !completed.IsZero() {
		c.CompletedAt = &completed
	}
	return nil
}
