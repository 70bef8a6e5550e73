package render

import (
	"sort"
	"time"

	"cgmcli/pkg/contracts/domain"
)

// mealLabel is a meal with the vertical slot its label was placed in.
// Level 0 is the topmost slot.
type mealLabel struct {
	Meal  domain.MealEntry
	Level int
}

// assignLabelSlots places meal labels into vertical slots so that two
// meals closer together than minGap never share a level. Greedy
// nearest-available-slot: meals in time order take the lowest free
// level among the labels they conflict with; when all levels are
// taken the assignment wraps around.
func assignLabelSlots(meals []domain.MealEntry, minGap time.Duration, maxLevels int) []mealLabel {
	if maxLevels < 1 {
		maxLevels = 1
	}

	sorted := make([]domain.MealEntry, len(meals))
	copy(sorted, meals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	labels := make([]mealLabel, 0, len(sorted))
	for _, meal := range sorted {
		used := make(map[int]bool)
		conflicts := 0
		for _, prev := range labels {
			if meal.Timestamp.Sub(prev.Meal.Timestamp) < minGap {
				used[prev.Level] = true
				conflicts++
			}
		}

		level := -1
		for l := 0; l < maxLevels; l++ {
			if !used[l] {
				level = l
				break
			}
		}
		if level < 0 {
			level = conflicts % maxLevels
		}

		labels = append(labels, mealLabel{Meal: meal, Level: level})
	}
	return labels
}
