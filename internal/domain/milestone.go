package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MilestoneState is the lifecycle position derived from the completed/verified flags
type MilestoneState string

const (
	MilestoneNotStarted MilestoneState = "NotStarted"
	MilestoneCompleted  MilestoneState = "Completed"
	MilestoneVerified   MilestoneState = "Verified"
)

// LeedPointAward is a number of certification points for one scorecard category.
// Milestones use it to declare contributions; history entries use it to record what was applied.
type LeedPointAward struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
	Note     string `json:"note,omitempty"`
}

// Milestone represents a unit of retrofit work tied to a funding tranche
type Milestone struct {
	ID                     int              `json:"id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Amount                 decimal.Decimal  `json:"amount"` // released to the project wallet on verification
	Completed              bool             `json:"completed"`
	Verified               bool             `json:"verified"`
	CompletedAt            *time.Time       `json:"completedAt"`
	VerifiedAt             *time.Time       `json:"verifiedAt"`
	ProofHash              string           `json:"proofHash"`
	Documents              []string         `json:"documents"`
	LeedPointContributions []LeedPointAward `json:"leedPointContributions"`

	// Ledger entries created by the most recent verification.
	LeedHistoryID string `json:"leedHistoryId,omitempty"`
	PayoutID      string `json:"payoutId,omitempty"`
}

// State derives the lifecycle state from the flags
func (m *Milestone) State() MilestoneState {
	switch {
	case m.Verified:
		return MilestoneVerified
	case m.Completed:
		return MilestoneCompleted
	default:
		return MilestoneNotStarted
	}
}

// Validate ensures the milestone adheres to domain rules
// Returns an error if validation fails
func (m *Milestone) Validate() error {
	if m.Verified && !m.Completed {
		return errors.New("verified milestone must be completed")
	}
	if m.Completed != (m.CompletedAt != nil) {
		return errors.New("completedAt must be set if and only if the milestone is completed")
	}
	if m.Verified != (m.VerifiedAt != nil) {
		return errors.New("verifiedAt must be set if and only if the milestone is verified")
	}
	if m.Amount.IsNegative() {
		return errors.New("milestone amount cannot be negative")
	}
	for _, c := range m.LeedPointContributions {
		if strings.TrimSpace(c.Category) == "" {
			return errors.New("leed contribution category cannot be empty")
		}
		if c.Points < 0 {
			return fmt.Errorf("leed contribution for %q cannot be negative", c.Category)
		}
	}
	return nil
}

// AddDocument adds a document name unless it is already present
func (m *Milestone) AddDocument(name string) {
	for _, d := range m.Documents {
		if d == name {
			return
		}
	}
	m.Documents = append(m.Documents, name)
}

// Clone returns a deep copy of the milestone
func (m Milestone) Clone() Milestone {
	out := m
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		out.CompletedAt = &t
	}
	if m.VerifiedAt != nil {
		t := *m.VerifiedAt
		out.VerifiedAt = &t
	}
	if m.Documents != nil {
		out.Documents = append([]string{}, m.Documents...)
	}
	if m.LeedPointContributions != nil {
		out.LeedPointContributions = append([]LeedPointAward{}, m.LeedPointContributions...)
	}
	return out
}

// PlaceholderDocumentName is the proof-of-work document synthesized when work is submitted
func PlaceholderDocumentName(milestoneID int) string {
	return fmt.Sprintf("Milestone_%d_Proof_of_Work.pdf", milestoneID)
}

// UniqueDocuments drops empty and repeated names, keeping first occurrence order
func UniqueDocuments(docs []string) []string {
	out := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
