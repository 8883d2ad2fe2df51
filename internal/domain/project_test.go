package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject() *Project {
	return &Project{
		ID:            1,
		Name:          "Downtown Office Retrofit",
		TargetAmount:  decimal.NewFromInt(50),
		RaisedAmount:  decimal.RequireFromString("0.01"),
		Status:        ProjectStatusFunding,
		InvestorCount: 1,
		WalletBalance: decimal.Zero,
		Milestones: []Milestone{
			{ID: 1, Name: "Solar Panel Installation", Amount: decimal.NewFromInt(25), Documents: []string{}},
			{ID: 2, Name: "Window Upgrades", Amount: decimal.NewFromInt(15), Documents: []string{}},
		},
		ImpactMetrics: ImpactMetrics{
			LeedScorecard: newTestScorecard(),
		},
		InvestmentHistory:      []InvestmentTransaction{},
		MilestonePayoutHistory: []MilestonePayoutTransaction{},
	}
}

func TestProject_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Project)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Valid project should pass",
			modify:  func(p *Project) {},
			wantErr: false,
		},
		{
			name:    "Empty name should fail",
			modify:  func(p *Project) { p.Name = "" },
			wantErr: true,
			errMsg:  "project name cannot be empty",
		},
		{
			name:    "Unknown status should fail",
			modify:  func(p *Project) { p.Status = "Paused" },
			wantErr: true,
			errMsg:  "status",
		},
		{
			name:    "Negative raised amount should fail",
			modify:  func(p *Project) { p.RaisedAmount = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "amounts cannot be negative",
		},
		{
			name:    "Duplicate milestone should fail",
			modify:  func(p *Project) { p.Milestones[1].ID = 1 },
			wantErr: true,
			errMsg:  "duplicate milestone id 1",
		},
		{
			name: "Invalid milestone should fail",
			modify: func(p *Project) {
				p.Milestones[0].Completed = true
			},
			wantErr: true,
			errMsg:  "milestone 1",
		},
		{
			name: "Invalid scorecard should fail",
			modify: func(p *Project) {
				p.ImpactMetrics.LeedScorecard.Categories[0].AchievedPoints = 40
			},
			wantErr: true,
			errMsg:  "leed scorecard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProject()
			tt.modify(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProject_JSONShape(t *testing.T) {
	p := newTestProject()

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	// Financial fields travel as strings
	assert.Equal(t, "0.01", raw["raisedAmount"])
	assert.Equal(t, "1", raw["investorCount"])
	assert.Equal(t, "0", raw["projectWalletBalance"])

	milestones := raw["milestones"].([]interface{})
	first := milestones[0].(map[string]interface{})
	assert.Contains(t, first, "completedAt")
	assert.Nil(t, first["completedAt"])
}

func TestProject_Clone_IsIndependent(t *testing.T) {
	p := newTestProject()
	clone := p.Clone()

	clone.Milestones[0].Name = "changed"
	clone.ImpactMetrics.LeedScorecard.Categories[0].AchievedPoints = 0
	clone.InvestmentHistory = append(clone.InvestmentHistory, InvestmentTransaction{ID: "x"})

	assert.Equal(t, "Solar Panel Installation", p.Milestones[0].Name)
	assert.Equal(t, 26, p.ImpactMetrics.LeedScorecard.Categories[0].AchievedPoints)
	assert.Empty(t, p.InvestmentHistory)
}

func TestProjectDictionary_SortedAndIDs(t *testing.T) {
	d := ProjectDictionary{
		3: {ID: 3},
		1: {ID: 1},
		2: {ID: 2},
	}

	sorted := d.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, 1, sorted[0].ID)
	assert.Equal(t, 3, sorted[2].ID)
	assert.Equal(t, []int{1, 2, 3}, d.IDs())
}

func TestLedgerSums(t *testing.T) {
	investments := []InvestmentTransaction{
		{Amount: decimal.RequireFromString("0.1")},
		{Amount: decimal.RequireFromString("0.2")},
	}
	payouts := []MilestonePayoutTransaction{
		{Amount: decimal.NewFromInt(25)},
		{Amount: decimal.NewFromInt(15)},
	}

	assert.True(t, SumInvestments(investments).Equal(decimal.RequireFromString("0.3")))
	assert.True(t, SumPayouts(payouts).Equal(decimal.NewFromInt(40)))
	assert.True(t, SumInvestments(nil).IsZero())
}
