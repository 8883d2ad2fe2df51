package domain

import (
	"errors"
	"fmt"
	"time"
)

// LeedScoreCategory is one row of a certification rubric.
// BaseAchievedPoints is what the building earned outside of milestone awards;
// AchievedPoints is always derived from it plus the active awards.
type LeedScoreCategory struct {
	Category           string `json:"category"`
	AchievedPoints     int    `json:"achievedPoints"`
	AvailablePoints    int    `json:"availablePoints"`
	Notes              string `json:"notes,omitempty"`
	BaseAchievedPoints int    `json:"baseAchievedPoints"`
}

// LeedHistoryEntry records the points actually applied by one milestone verification
type LeedHistoryEntry struct {
	ID                 string           `json:"id"`
	MilestoneID        int              `json:"milestoneId"`
	MilestoneName      string           `json:"milestoneName"`
	VerifiedAt         time.Time        `json:"verifiedAt"`
	Awards             []LeedPointAward `json:"awards"`
	TotalPointsAwarded int              `json:"totalPointsAwarded"`
	RolledBackAt       *time.Time       `json:"rolledBackAt"`
}

// Active reports whether the awards of this entry still count toward the scorecard
func (e *LeedHistoryEntry) Active() bool {
	return e.RolledBackAt == nil
}

// LeedScorecard is the certification rubric of a project with its award history
type LeedScorecard struct {
	CertificationLevel    string              `json:"certificationLevel"`
	TotalPoints           int                 `json:"totalPoints"`
	BaseTotalPoints       int                 `json:"baseTotalPoints"`
	CertificationDate     string              `json:"certificationDate,omitempty"`
	ReviewingOrganization string              `json:"reviewingOrganization,omitempty"`
	ScorecardStatus       string              `json:"scorecardStatus,omitempty"`
	Categories            []LeedScoreCategory `json:"categories"`
	MilestoneHistory      []LeedHistoryEntry  `json:"milestoneHistory"`
}

// FindCategory returns the category with the given name, or nil
func (s *LeedScorecard) FindCategory(name string) *LeedScoreCategory {
	for i := range s.Categories {
		if s.Categories[i].Category == name {
			return &s.Categories[i]
		}
	}
	return nil
}

// FindHistory returns the history entry with the given id, or nil
func (s *LeedScorecard) FindHistory(id string) *LeedHistoryEntry {
	if id == "" {
		return nil
	}
	for i := range s.MilestoneHistory {
		if s.MilestoneHistory[i].ID == id {
			return &s.MilestoneHistory[i]
		}
	}
	return nil
}

// LatestActiveHistory returns the most recent active entry for a milestone, or nil
func (s *LeedScorecard) LatestActiveHistory(milestoneID int) *LeedHistoryEntry {
	for i := len(s.MilestoneHistory) - 1; i >= 0; i-- {
		e := &s.MilestoneHistory[i]
		if e.MilestoneID == milestoneID && e.Active() {
			return e
		}
	}
	return nil
}

// ActiveAwards sums the points of all active history entries per category
func (s *LeedScorecard) ActiveAwards() map[string]int {
	sums := make(map[string]int)
	for i := range s.MilestoneHistory {
		e := &s.MilestoneHistory[i]
		if !e.Active() {
			continue
		}
		for _, a := range e.Awards {
			if a.Points > 0 {
				sums[a.Category] += a.Points
			}
		}
	}
	return sums
}

// Recompute derives every achieved total from the base points and the active award history.
// Logic:
//   - achieved = clamp(base + active awards, 0, available) per category
//   - total = base total + sum of (achieved - base) over all categories
//
// Stored achieved/total numbers are overwritten, never trusted.
func (s *LeedScorecard) Recompute() {
	awards := s.ActiveAwards()
	total := s.BaseTotalPoints

	for i := range s.Categories {
		c := &s.Categories[i]
		if c.AvailablePoints < 0 {
			c.AvailablePoints = 0
		}
		base := clampPoints(c.BaseAchievedPoints, c.AvailablePoints)
		c.BaseAchievedPoints = base
		c.AchievedPoints = clampPoints(base+awards[c.Category], c.AvailablePoints)
		total += c.AchievedPoints - base
	}

	if total < 0 {
		total = 0
	}
	s.TotalPoints = total
}

// Validate ensures the scorecard adheres to domain rules
// Returns an error if validation fails
func (s *LeedScorecard) Validate() error {
	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		if c.Category == "" {
			return errors.New("category name cannot be empty")
		}
		if seen[c.Category] {
			return fmt.Errorf("duplicate category %q", c.Category)
		}
		seen[c.Category] = true
		if c.AchievedPoints < 0 || c.AvailablePoints < 0 {
			return fmt.Errorf("category %q points cannot be negative", c.Category)
		}
		if c.AchievedPoints > c.AvailablePoints {
			return fmt.Errorf("category %q achieved points exceed available points", c.Category)
		}
	}
	if s.TotalPoints < 0 {
		return errors.New("total points cannot be negative")
	}
	return nil
}

// Clone returns a deep copy of the scorecard
func (s *LeedScorecard) Clone() *LeedScorecard {
	if s == nil {
		return nil
	}
	out := *s
	if s.Categories != nil {
		out.Categories = append([]LeedScoreCategory{}, s.Categories...)
	}
	if s.MilestoneHistory != nil {
		out.MilestoneHistory = make([]LeedHistoryEntry, len(s.MilestoneHistory))
		for i, e := range s.MilestoneHistory {
			cp := e
			if e.Awards != nil {
				cp.Awards = append([]LeedPointAward{}, e.Awards...)
			}
			if e.RolledBackAt != nil {
				t := *e.RolledBackAt
				cp.RolledBackAt = &t
			}
			out.MilestoneHistory[i] = cp
		}
	}
	return &out
}

func clampPoints(points, capacity int) int {
	if points < 0 {
		return 0
	}
	if points > capacity {
		return capacity
	}
	return points
}
