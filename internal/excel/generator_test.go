package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/wasteops-collections/internal/model"
)

func TestGenerateWritesSummaryAndCollections(t *testing.T) {
	completedAt := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	report := model.StatsReport{
		User:      "Operations Admin",
		Window:    model.DateWindowAll,
		WasteType: model.WasteTypeAll,
		Stats: model.CollectionStats{
			TotalCollections:     1,
			CompletedCollections: 1,
			CompletionRate:       100,
			TotalQuantityKg:      50,
			AverageQuantityKg:    50,
			ByType:               []model.Bucket{{Key: "recyclable", Value: 50}},
		},
		Collections: []model.Collection{{
			ID:            "c-1",
			ClientID:      "client",
			CompanyID:     "company",
			WasteType:     model.WasteTypeRecyclable,
			ScheduledDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
			Address:       "Main St 4, Downtown",
			QuantityKg:    50,
			Status:        model.CollectionStatusCompleted,
			CompletedAt:   &completedAt,
		}},
		GeneratedAt: time.Date(2025, 4, 3, 9, 0, 0, 0, time.UTC),
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Summary", "Collections"}, file.GetSheetList())

	value, err := file.GetCellValue("Summary", "B8")
	require.NoError(t, err)
	assert.Equal(t, "50", value)

	value, err = file.GetCellValue("Summary", "A12")
	require.NoError(t, err)
	assert.Equal(t, "recyclable", value)

	value, err = file.GetCellValue("Collections", "J2")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-02 15:00:00", value)

	value, err = file.GetCellValue("Collections", "G2")
	require.NoError(t, err)
	assert.Equal(t, "Main St 4, Downtown", value)
}
