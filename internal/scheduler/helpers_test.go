package scheduler

import (
	"time"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
)

func newMockCalculator() (*astro.Calculator, error) {
	return astro.NewCalculator()
}

func domainUser(name string) *domain.User {
	return domain.NewUser(name, time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), "14:30", "Taipei, Taiwan", "")
}
