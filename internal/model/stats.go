package model

import "time"

type DateWindow string

const (
	DateWindowAll         DateWindow = "all"
	DateWindowLastWeek    DateWindow = "last_week"
	DateWindowLastMonth   DateWindow = "last_month"
	DateWindowLastQuarter DateWindow = "last_quarter"
	DateWindowLastYear    DateWindow = "last_year"
)

// WasteTypeAll disables the waste type filter.
const WasteTypeAll WasteType = "all"

type StatsFilter struct {
	Window    DateWindow `json:"window"`
	WasteType WasteType  `json:"waste_type"`
}

// Bucket is one entry of a grouping, kept in a slice so the order survives serialization.
type Bucket struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

type CollectionStats struct {
	TotalCollections     int      `json:"total_collections"`
	CompletedCollections int      `json:"completed_collections"`
	CompletionRate       int      `json:"completion_rate"`
	TotalQuantityKg      int      `json:"total_quantity_kg"`
	AverageQuantityKg    int      `json:"average_quantity_kg"`
	ByType               []Bucket `json:"by_type"`
	ByMonth              []Bucket `json:"by_month"`
	ByLocation           []Bucket `json:"by_location"`
	ByStatus             []Bucket `json:"by_status"`
}

// Lookup returns the value stored under key, or 0.
func Lookup(buckets []Bucket, key string) int {
	for _, b := range buckets {
		if b.Key == key {
			return b.Value
		}
	}
	return 0
}

// StatsReport is the exported view: the filtered statistics plus the collections behind them.
type StatsReport struct {
	User        string          `json:"user"`
	Window      DateWindow      `json:"date_range"`
	WasteType   WasteType       `json:"type_filter"`
	Stats       CollectionStats `json:"stats"`
	Collections []Collection    `json:"collections"`
	GeneratedAt time.Time       `json:"generated_at"`
}
