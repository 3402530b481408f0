package repository

import (
	"time"

	"github.com/nurpe/wasteops-collections/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SeedUsers is served while no users have been persisted.
func SeedUsers() []model.User {
	return []model.User{
		{
			ID:        "1",
			Email:     "admin@wasteops.local",
			Name:      "Operations Admin",
			Phone:     "+1 555 0100",
			Profile:   model.AdminProfile{},
			CreatedAt: day(2024, time.January, 15),
		},
		{
			ID:        "2",
			Email:     "client@wasteops.local",
			Name:      "Maria Gomez",
			Phone:     "+1 555 0101",
			Profile:   model.ClientProfile{Address: "Av. Libertad 123, Centro"},
			CreatedAt: day(2024, time.February, 1),
		},
		{
			ID:        "3",
			Email:     "company@wasteops.local",
			Name:      "Carlos Ruiz",
			Phone:     "+1 555 0102",
			Profile:   model.CompanyProfile{CompanyName: "EcoRecolecta S.A."},
			CreatedAt: day(2024, time.February, 10),
		},
	}
}

func SeedCollections() []model.Collection {
	completedAt := time.Date(2024, time.March, 5, 11, 30, 0, 0, time.UTC)
	return []model.Collection{
		{
			ID:            "1",
			ClientID:      "2",
			CompanyID:     "3",
			WasteType:     model.WasteTypeRecyclable,
			ScheduledDate: day(2024, time.March, 5),
			ScheduledTime: "10:00",
			Address:       "Av. Libertad 123, Centro",
			QuantityKg:    25,
			Status:        model.CollectionStatusCompleted,
			Notes:         "Cardboard and plastic bottles",
			CompletedAt:   &completedAt,
			CreatedAt:     day(2024, time.March, 1),
		},
		{
			ID:            "2",
			ClientID:      "2",
			CompanyID:     "3",
			WasteType:     model.WasteTypeOrganic,
			ScheduledDate: day(2024, time.March, 20),
			ScheduledTime: "08:30",
			Address:       "Av. Libertad 123, Centro",
			QuantityKg:    40,
			Status:        model.CollectionStatusScheduled,
			CreatedAt:     day(2024, time.March, 15),
		},
		{
			ID:            "3",
			ClientID:      "2",
			WasteType:     model.WasteTypeHazardous,
			ScheduledDate: day(2024, time.April, 2),
			ScheduledTime: "14:00",
			Address:       "Calle Norte 45, Industrial",
			QuantityKg:    10,
			Status:        model.CollectionStatusScheduled,
			Notes:         "Paint cans",
			CreatedAt:     day(2024, time.March, 28),
		},
	}
}

func SeedReports() []model.Report {
	return []model.Report{
		{
			ID:           "1",
			UserID:       "2",
			CollectionID: "1",
			Date:         day(2024, time.March, 5),
			Location:     "Av. Libertad 123, Centro",
			QuantityKg:   25,
			WasteType:    string(model.WasteTypeRecyclable),
			Status:       string(model.CollectionStatusCompleted),
			Notes:        "Cardboard and plastic bottles",
		},
	}
}
