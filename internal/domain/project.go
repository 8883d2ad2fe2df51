package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ProjectStatus represents the funding lifecycle of a retrofit project
type ProjectStatus string

const (
	ProjectStatusFunding   ProjectStatus = "Funding"
	ProjectStatusFunded    ProjectStatus = "Funded"
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

// Valid reports whether the status is one of the known values
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusFunding, ProjectStatusFunded, ProjectStatusActive, ProjectStatusCompleted:
		return true
	}
	return false
}

// ImpactMetrics describes the environmental outcome of a retrofit
type ImpactMetrics struct {
	AnnualCO2Reduction float64        `json:"annualCO2Reduction"` // tons of CO2 avoided annually
	EnergySavings      float64        `json:"energySavings"`      // percentage improvement in efficiency
	JobsCreated        int            `json:"jobsCreated"`
	LeedCertification  string         `json:"leedCertification"`
	LeedScorecard      *LeedScorecard `json:"leedScorecard,omitempty"`
}

// Project represents a green building retrofit open for investment.
// Amounts are decimals serialized as JSON strings; InvestorCount is serialized as a string too.
// Token and wallet fields are opaque on-chain references and are never interpreted here.
type Project struct {
	ID                     int                          `json:"id"`
	Name                   string                       `json:"name"`
	Description            string                       `json:"description"`
	TargetAmount           decimal.Decimal              `json:"targetAmount"`
	RaisedAmount           decimal.Decimal              `json:"raisedAmount"`
	ExpectedReturn         string                       `json:"expectedReturn"`
	Duration               string                       `json:"duration"`
	Status                 ProjectStatus                `json:"status"`
	InvestorCount          int64                        `json:"investorCount,string"`
	Address                string                       `json:"address"`
	Image                  string                       `json:"image"`
	TokenContractAddress   string                       `json:"erc1155ContractAddress"`
	TokenID                string                       `json:"erc1155TokenId"`
	WalletAddress          string                       `json:"projectWalletAddress"`
	WalletBalance          decimal.Decimal              `json:"projectWalletBalance"` // funds released so far
	Milestones             []Milestone                  `json:"milestones"`
	ImpactMetrics          ImpactMetrics                `json:"impactMetrics"`
	InvestmentHistory      []InvestmentTransaction      `json:"investmentHistory"`
	MilestonePayoutHistory []MilestonePayoutTransaction `json:"milestonePayoutHistory"`
}

// Validate ensures the project adheres to domain rules
// Returns an error if validation fails
func (p *Project) Validate() error {
	if p.ID <= 0 {
		return errors.New("project id must be positive")
	}
	if p.Name == "" {
		return errors.New("project name cannot be empty")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("project status %q is invalid", p.Status)
	}
	if p.TargetAmount.IsNegative() || p.RaisedAmount.IsNegative() || p.WalletBalance.IsNegative() {
		return errors.New("project amounts cannot be negative")
	}
	if p.InvestorCount < 0 {
		return errors.New("investor count cannot be negative")
	}

	seen := make(map[int]bool, len(p.Milestones))
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if seen[m.ID] {
			return fmt.Errorf("duplicate milestone id %d", m.ID)
		}
		seen[m.ID] = true
		if err := m.Validate(); err != nil {
			return fmt.Errorf("milestone %d: %w", m.ID, err)
		}
	}

	if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("leed scorecard: %w", err)
		}
	}

	return nil
}

// FindMilestone returns the milestone with the given id, or nil
func (p *Project) FindMilestone(id int) *Milestone {
	for i := range p.Milestones {
		if p.Milestones[i].ID == id {
			return &p.Milestones[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the project
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p

	if p.Milestones != nil {
		out.Milestones = make([]Milestone, len(p.Milestones))
		for i := range p.Milestones {
			out.Milestones[i] = p.Milestones[i].Clone()
		}
	}
	out.ImpactMetrics.LeedScorecard = p.ImpactMetrics.LeedScorecard.Clone()
	if p.InvestmentHistory != nil {
		out.InvestmentHistory = append([]InvestmentTransaction{}, p.InvestmentHistory...)
	}
	if p.MilestonePayoutHistory != nil {
		out.MilestonePayoutHistory = append([]MilestonePayoutTransaction{}, p.MilestonePayoutHistory...)
	}

	return &out
}

// ProjectDictionary is the full set of projects keyed by project id
type ProjectDictionary map[int]*Project

// Clone returns a deep copy of every project in the dictionary
func (d ProjectDictionary) Clone() ProjectDictionary {
	out := make(ProjectDictionary, len(d))
	for id, p := range d {
		out[id] = p.Clone()
	}
	return out
}

// Sorted returns the projects ordered by id
func (d ProjectDictionary) Sorted() []*Project {
	ids := d.IDs()
	out := make([]*Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, d[id])
	}
	return out
}

// IDs returns the project ids in ascending order
func (d ProjectDictionary) IDs() []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
