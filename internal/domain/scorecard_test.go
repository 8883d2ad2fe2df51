package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorecard() *LeedScorecard {
	return &LeedScorecard{
		CertificationLevel: "LEED v4 BD+C: Major Renovation",
		TotalPoints:        79,
		BaseTotalPoints:    79,
		Categories: []LeedScoreCategory{
			{Category: "Energy & Atmosphere", AchievedPoints: 26, AvailablePoints: 33, BaseAchievedPoints: 26},
			{Category: "Innovation", AchievedPoints: 5, AvailablePoints: 6, BaseAchievedPoints: 5},
		},
		MilestoneHistory: []LeedHistoryEntry{},
	}
}

func TestLeedScorecard_Recompute_FromActiveHistory(t *testing.T) {
	sc := newTestScorecard()
	rolledBack := time.Now()
	sc.MilestoneHistory = []LeedHistoryEntry{
		{ID: "a", MilestoneID: 1, Awards: []LeedPointAward{{Category: "Energy & Atmosphere", Points: 3}}},
		{ID: "b", MilestoneID: 2, Awards: []LeedPointAward{{Category: "Energy & Atmosphere", Points: 2}}, RolledBackAt: &rolledBack},
		{ID: "c", MilestoneID: 3, Awards: []LeedPointAward{{Category: "Innovation", Points: 1}}},
	}

	// Drifted stored numbers must be ignored
	sc.Categories[0].AchievedPoints = 1000
	sc.TotalPoints = 1

	sc.Recompute()

	assert.Equal(t, 29, sc.FindCategory("Energy & Atmosphere").AchievedPoints)
	assert.Equal(t, 6, sc.FindCategory("Innovation").AchievedPoints)
	assert.Equal(t, 83, sc.TotalPoints)
}

func TestLeedScorecard_Recompute_ClampsToCapacity(t *testing.T) {
	sc := newTestScorecard()
	sc.MilestoneHistory = []LeedHistoryEntry{
		{ID: "a", MilestoneID: 1, Awards: []LeedPointAward{{Category: "Innovation", Points: 10}}},
	}

	sc.Recompute()

	innovation := sc.FindCategory("Innovation")
	assert.Equal(t, 6, innovation.AchievedPoints)
	assert.Equal(t, 80, sc.TotalPoints)
	require.NoError(t, sc.Validate())
}

func TestLeedScorecard_Recompute_FloorsBaseAtZero(t *testing.T) {
	sc := newTestScorecard()
	sc.Categories[1].BaseAchievedPoints = -4

	sc.Recompute()

	assert.Equal(t, 0, sc.FindCategory("Innovation").AchievedPoints)
	assert.Equal(t, 0, sc.FindCategory("Innovation").BaseAchievedPoints)
}

func TestLeedScorecard_LatestActiveHistory(t *testing.T) {
	sc := newTestScorecard()
	rolledBack := time.Now()
	sc.MilestoneHistory = []LeedHistoryEntry{
		{ID: "old", MilestoneID: 1},
		{ID: "undone", MilestoneID: 1, RolledBackAt: &rolledBack},
		{ID: "other", MilestoneID: 2},
	}

	entry := sc.LatestActiveHistory(1)
	require.NotNil(t, entry)
	assert.Equal(t, "old", entry.ID)
	assert.Nil(t, sc.LatestActiveHistory(9))
	assert.Nil(t, sc.FindHistory(""))
	assert.Equal(t, "other", sc.FindHistory("other").ID)
}

func TestLeedScorecard_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(sc *LeedScorecard)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Seed scorecard should pass",
			modify:  func(sc *LeedScorecard) {},
			wantErr: false,
		},
		{
			name: "Achieved above available should fail",
			modify: func(sc *LeedScorecard) {
				sc.Categories[1].AchievedPoints = 7
			},
			wantErr: true,
			errMsg:  "exceed available points",
		},
		{
			name: "Duplicate category should fail",
			modify: func(sc *LeedScorecard) {
				sc.Categories = append(sc.Categories, sc.Categories[0])
			},
			wantErr: true,
			errMsg:  "duplicate category",
		},
		{
			name: "Empty category should fail",
			modify: func(sc *LeedScorecard) {
				sc.Categories[0].Category = ""
			},
			wantErr: true,
			errMsg:  "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestScorecard()
			tt.modify(sc)
			err := sc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLeedScorecard_Clone_IsIndependent(t *testing.T) {
	sc := newTestScorecard()
	sc.MilestoneHistory = []LeedHistoryEntry{
		{ID: "a", Awards: []LeedPointAward{{Category: "Innovation", Points: 1}}},
	}

	clone := sc.Clone()
	clone.Categories[0].AchievedPoints = 0
	clone.MilestoneHistory[0].Awards[0].Points = 5

	assert.Equal(t, 26, sc.Categories[0].AchievedPoints)
	assert.Equal(t, 1, sc.MilestoneHistory[0].Awards[0].Points)

	var nilScorecard *LeedScorecard
	assert.Nil(t, nilScorecard.Clone())
}
