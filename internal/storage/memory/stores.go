package memory

import "github.com/Galen-Chu/spiritual-g-code/internal/storage"

// NewStores returns a fresh in-memory store bundle.
func NewStores() *storage.Stores {
	return &storage.Stores{
		Users:        NewUserStore(),
		NatalCharts:  NewNatalChartStore(),
		DailyGCodes:  NewDailyGCodeStore(),
		ScoreHistory: NewScoreHistoryStore(),
		JobProgress:  NewJobProgressStore(),
	}
}
