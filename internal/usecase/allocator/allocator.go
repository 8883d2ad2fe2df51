package allocator

import (
	"errors"
	"fmt"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
)

// NewCategoryNote marks a scorecard category created by a milestone verification
const NewCategoryNote = "Added via milestone verification"

// CalculateAwards applies milestone contributions to a scorecard rubric
// Returns the updated categories and the awards actually applied
// Logic:
//  1. Work on a copy of the categories; the input is never mutated
//  2. For each contribution in order, award min(points, available - achieved) to an existing category
//  3. A contribution for an unknown category creates it with achieved = available = points
//  4. Zero awards are skipped so the history only records points that were applied
//
// Safety: Ensures the sum of awards equals the increase of achieved points exactly
func CalculateAwards(categories []domain.LeedScoreCategory, contributions []domain.LeedPointAward) ([]domain.LeedScoreCategory, []domain.LeedPointAward, error) {
	for _, c := range contributions {
		if c.Points < 0 {
			return nil, nil, fmt.Errorf("contribution for %q cannot be negative", c.Category)
		}
	}

	// Create a copy of categories to avoid mutating the original slice
	updated := make([]domain.LeedScoreCategory, len(categories))
	copy(updated, categories)

	before := sumAchieved(updated)
	awards := make([]domain.LeedPointAward, 0, len(contributions))

	for _, c := range contributions {
		if c.Category == "" || c.Points == 0 {
			continue
		}

		target := findCategory(updated, c.Category)
		if target == nil {
			updated = append(updated, domain.LeedScoreCategory{
				Category:        c.Category,
				AchievedPoints:  c.Points,
				AvailablePoints: c.Points,
				Notes:           NewCategoryNote,
			})
			awards = append(awards, domain.LeedPointAward{Category: c.Category, Points: c.Points, Note: c.Note})
			continue
		}

		gain := target.AvailablePoints - target.AchievedPoints
		if gain > c.Points {
			gain = c.Points
		}
		if gain <= 0 {
			continue
		}
		target.AchievedPoints += gain
		awards = append(awards, domain.LeedPointAward{Category: c.Category, Points: gain, Note: c.Note})
	}

	// Safety check: awarded points must match the rubric increase
	if sumAchieved(updated)-before != TotalPoints(awards) {
		return nil, nil, errors.New("awarded points do not match scorecard increase")
	}

	return updated, awards, nil
}

// TotalPoints sums the points of a list of awards
func TotalPoints(awards []domain.LeedPointAward) int {
	total := 0
	for _, a := range awards {
		total += a.Points
	}
	return total
}

// findCategory finds the category with the given name in the slice
func findCategory(categories []domain.LeedScoreCategory, name string) *domain.LeedScoreCategory {
	for i := range categories {
		if categories[i].Category == name {
			return &categories[i]
		}
	}
	return nil
}

func sumAchieved(categories []domain.LeedScoreCategory) int {
	total := 0
	for _, c := range categories {
		total += c.AchievedPoints
	}
	return total
}
