package domain

import (
	"fmt"
	"time"
)

// MealEntry is one row of the nutrition log: a labelled meal with its
// macronutrient breakdown in grams.
type MealEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label" validate:"required"`
	ProteinG  float64   `json:"protein_g" validate:"min=0"`
	FatG      float64   `json:"fat_g" validate:"min=0"`
	CarbsG    float64   `json:"carbs_g" validate:"min=0"`
}

// Day returns the meal's calendar date at midnight.
func (m MealEntry) Day() time.Time {
	return Midnight(m.Timestamp)
}

// Validate checks label presence and macro plausibility.
func (m MealEntry) Validate() error {
	if m.Label == "" {
		return fmt.Errorf("meal entry has empty label")
	}
	if m.ProteinG < 0 || m.FatG < 0 || m.CarbsG < 0 {
		return fmt.Errorf("meal %q has negative macros", m.Label)
	}
	return nil
}
