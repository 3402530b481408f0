// Package stats derives report figures from a set of collections. Nothing here touches storage.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nurpe/wasteops-collections/internal/model"
)

const topLocations = 10

const monthLabelLayout = "Jan 2006"

// ParseWindow maps user input to a window; unknown values mean all.
func ParseWindow(raw string) model.DateWindow {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "week", string(model.DateWindowLastWeek):
		return model.DateWindowLastWeek
	case "month", string(model.DateWindowLastMonth):
		return model.DateWindowLastMonth
	case "quarter", string(model.DateWindowLastQuarter):
		return model.DateWindowLastQuarter
	case "year", string(model.DateWindowLastYear):
		return model.DateWindowLastYear
	default:
		return model.DateWindowAll
	}
}

// ParseWasteType maps user input to a waste type filter; unknown values mean all.
func ParseWasteType(raw string) model.WasteType {
	t := model.WasteType(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t
	}
	return model.WasteTypeAll
}

// Cutoff returns the earliest scheduled date kept by window, or false for all.
func Cutoff(window model.DateWindow, now time.Time) (time.Time, bool) {
	switch window {
	case model.DateWindowLastWeek:
		return now.AddDate(0, 0, -7), true
	case model.DateWindowLastMonth:
		return now.AddDate(0, -1, 0), true
	case model.DateWindowLastQuarter:
		return now.AddDate(0, -3, 0), true
	case model.DateWindowLastYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Filter keeps the collections matching filter, in input order.
// Collections without a scheduled date only survive the all window.
func Filter(collections []model.Collection, filter model.StatsFilter, now time.Time) []model.Collection {
	cutoff, dated := Cutoff(filter.Window, now)
	byType := filter.WasteType != "" && filter.WasteType != model.WasteTypeAll

	result := make([]model.Collection, 0, len(collections))
	for _, c := range collections {
		if dated && (c.ScheduledDate.IsZero() || c.ScheduledDate.Before(cutoff)) {
			continue
		}
		if byType && c.WasteType != filter.WasteType {
			continue
		}
		result = append(result, c)
	}
	return result
}

// Compute filters collections and aggregates what is left.
func Compute(collections []model.Collection, filter model.StatsFilter, now time.Time) model.CollectionStats {
	return Summarize(Filter(collections, filter, now))
}

// ForUser computes stats over the collections userID is client or company of.
// An empty userID covers every collection.
func ForUser(collections []model.Collection, userID string, filter model.StatsFilter, now time.Time) model.CollectionStats {
	if userID == "" {
		return Compute(collections, filter, now)
	}
	own := make([]model.Collection, 0, len(collections))
	for _, c := range collections {
		if c.InvolvesUser(userID) {
			own = append(own, c)
		}
	}
	return Compute(own, filter, now)
}

// Summarize aggregates an already filtered set.
func Summarize(collections []model.Collection) model.CollectionStats {
	byType := newGrouping()
	byMonth := newGrouping()
	byLocation := newGrouping()
	byStatus := newGrouping()

	completed := 0
	completedQuantity := 0
	for _, c := range collections {
		if c.Status == model.CollectionStatusCompleted {
			completed++
			completedQuantity += c.QuantityKg
		}

		byType.add(string(c.WasteType), c.QuantityKg)
		if !c.ScheduledDate.IsZero() {
			byMonth.add(c.ScheduledDate.Format(monthLabelLayout), c.QuantityKg)
		}
		byLocation.add(LocationKey(c.Address), c.QuantityKg)
		byStatus.add(string(c.Status), 1)
	}

	total := len(collections)
	return model.CollectionStats{
		TotalCollections:     total,
		CompletedCollections: completed,
		CompletionRate:       percentage(completed, total),
		TotalQuantityKg:      completedQuantity,
		AverageQuantityKg:    ratio(completedQuantity, completed),
		ByType:               byType.buckets(),
		ByMonth:              byMonth.buckets(),
		ByLocation:           top(byLocation.buckets(), topLocations),
		ByStatus:             byStatus.buckets(),
	}
}

// LocationKey is the part of an address before the first comma.
func LocationKey(address string) string {
	if i := strings.Index(address, ","); i >= 0 {
		address = address[:i]
	}
	return strings.TrimSpace(address)
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func ratio(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

func top(buckets []model.Bucket, n int) []model.Bucket {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

// grouping sums values per key and remembers first-seen key order.
type grouping struct {
	index  map[string]int
	values []model.Bucket
}

func newGrouping() *grouping {
	return &grouping{index: map[string]int{}, values: []model.Bucket{}}
}

func (g *grouping) add(key string, value int) {
	if pos, ok := g.index[key]; ok {
		g.values[pos].Value += value
		return
	}
	g.values = append(g.values, model.Bucket{Key: key, Value: value})
	g.index[key] = len(g.values) - 1
}

func (g *grouping) buckets() []model.Bucket {
	return g.values
}
