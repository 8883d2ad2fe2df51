package milestone

import (
	"fmt"
	"strings"
	"time"

	"github.com/greenretrofit/retrofit-backend/internal/attestation"
	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/allocator"
	"github.com/shopspring/decimal"
)

// MilestoneUpdate is a partial status update; nil fields are left unchanged
type MilestoneUpdate struct {
	Completed *bool
	Verified  *bool
}

// transition applies one status update to a project copy
type transition struct {
	now      time.Time
	attestor attestation.Generator
	newID    func() string
}

// apply moves the milestone toward the requested flags and derives every side effect.
// Logic:
//  1. Reject contradictory requests and verification of a milestone that was never completed
//  2. Un-verify before un-complete, complete before verify
//  3. Report whether anything changed so identical repeats skip the save
func (t *transition) apply(p *domain.Project, m *domain.Milestone, u MilestoneUpdate) (bool, error) {
	if u.Verified != nil && *u.Verified {
		if u.Completed != nil && !*u.Completed {
			return false, fmt.Errorf("%w: cannot verify and un-complete milestone %d at once", domain.ErrInvalidTransition, m.ID)
		}
		if !m.Completed {
			return false, fmt.Errorf("%w: milestone %d must be completed before verification", domain.ErrInvalidTransition, m.ID)
		}
	}

	wantCompleted := m.Completed
	if u.Completed != nil {
		wantCompleted = *u.Completed
	}
	wantVerified := m.Verified
	if u.Verified != nil {
		wantVerified = *u.Verified
	}
	if !wantCompleted {
		wantVerified = false
	}

	changed := false
	if m.Verified && !wantVerified {
		t.unverify(p, m)
		changed = true
	}
	if m.Completed && !wantCompleted {
		t.uncomplete(m)
		changed = true
	}
	if !m.Completed && wantCompleted {
		t.complete(m)
		changed = true
	}
	if !m.Verified && wantVerified {
		if err := t.verify(p, m); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func (t *transition) complete(m *domain.Milestone) {
	now := t.now
	m.Completed = true
	m.CompletedAt = &now
	if len(m.Documents) == 0 {
		m.AddDocument(domain.PlaceholderDocumentName(m.ID))
	}
}

func (t *transition) uncomplete(m *domain.Milestone) {
	m.Completed = false
	m.CompletedAt = nil
	m.Documents = []string{}
	m.ProofHash = ""
}

// verify releases the tranche and awards certification points
func (t *transition) verify(p *domain.Project, m *domain.Milestone) error {
	if strings.TrimSpace(m.ProofHash) == "" {
		hash, err := t.attestor.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate proof hash: %w", err)
		}
		m.ProofHash = hash
	}

	now := t.now
	m.Verified = true
	m.VerifiedAt = &now
	m.AddDocument(domain.PlaceholderDocumentName(m.ID))

	// Fund release
	payout := domain.MilestonePayoutTransaction{
		ID:            t.newID(),
		MilestoneID:   m.ID,
		MilestoneName: m.Name,
		Amount:        m.Amount,
		Date:          now,
	}
	p.WalletBalance = p.WalletBalance.Add(m.Amount)
	p.MilestonePayoutHistory = append(p.MilestonePayoutHistory, payout)
	m.PayoutID = payout.ID

	// Certification award
	sc := p.ImpactMetrics.LeedScorecard
	if sc == nil || len(m.LeedPointContributions) == 0 {
		return nil
	}
	categories, awards, err := allocator.CalculateAwards(sc.Categories, m.LeedPointContributions)
	if err != nil {
		return fmt.Errorf("failed to calculate awards for milestone %d: %w", m.ID, err)
	}
	entry := domain.LeedHistoryEntry{
		ID:                 t.newID(),
		MilestoneID:        m.ID,
		MilestoneName:      m.Name,
		VerifiedAt:         now,
		Awards:             awards,
		TotalPointsAwarded: allocator.TotalPoints(awards),
	}
	sc.Categories = categories
	sc.MilestoneHistory = append(sc.MilestoneHistory, entry)
	sc.Recompute()
	m.LeedHistoryID = entry.ID

	return nil
}

// unverify rolls back exactly what the last verification recorded
func (t *transition) unverify(p *domain.Project, m *domain.Milestone) {
	if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
		entry := sc.FindHistory(m.LeedHistoryID)
		if entry == nil || !entry.Active() {
			entry = sc.LatestActiveHistory(m.ID)
		}
		if entry != nil {
			now := t.now
			entry.RolledBackAt = &now
		}
		sc.Recompute()
	}

	released := m.Amount
	if payout, ok := removePayout(p, m); ok {
		released = payout.Amount
	}
	balance := p.WalletBalance.Sub(released)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	p.WalletBalance = balance

	m.Verified = false
	m.VerifiedAt = nil
	m.ProofHash = ""
	m.LeedHistoryID = ""
	m.PayoutID = ""
}

// removePayout drops the payout recorded on the milestone, or its latest payout as a fallback
func removePayout(p *domain.Project, m *domain.Milestone) (domain.MilestonePayoutTransaction, bool) {
	idx := -1
	if m.PayoutID != "" {
		for i, entry := range p.MilestonePayoutHistory {
			if entry.ID == m.PayoutID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		for i := len(p.MilestonePayoutHistory) - 1; i >= 0; i-- {
			if p.MilestonePayoutHistory[i].MilestoneID == m.ID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return domain.MilestonePayoutTransaction{}, false
	}

	removed := p.MilestonePayoutHistory[idx]
	p.MilestonePayoutHistory = append(p.MilestonePayoutHistory[:idx:idx], p.MilestonePayoutHistory[idx+1:]...)
	return removed, true
}
