package reconciler

import (
	"time"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mergeProject overlays a persisted record onto a base project (the seed copy, or an empty
// project when the seed does not know the id). Persisted fields win; absent fields keep the base.
func (r *Reconciler) mergeProject(id int, seed *domain.Project, rec *projectRecord) *domain.Project {
	p := seed
	if p == nil {
		p = &domain.Project{
			ID:            id,
			Status:        domain.ProjectStatusFunding,
			TargetAmount:  decimal.Zero,
			RaisedAmount:  decimal.Zero,
			WalletBalance: decimal.Zero,
		}
	}
	p.ID = id

	setString(&p.Name, rec.Name)
	setString(&p.Description, rec.Description)
	setDecimal(&p.TargetAmount, rec.TargetAmount)
	setDecimal(&p.RaisedAmount, rec.RaisedAmount)
	setString(&p.ExpectedReturn, rec.ExpectedReturn)
	setString(&p.Duration, rec.Duration)
	if rec.Status != nil {
		if status := domain.ProjectStatus(*rec.Status); status.Valid() {
			p.Status = status
		} else {
			r.Logger.Warn("ignoring unknown project status",
				zap.Int("project_id", id),
				zap.String("status", *rec.Status),
			)
		}
	}
	if rec.InvestorCount != nil && rec.InvestorCount.valid {
		p.InvestorCount = rec.InvestorCount.value
	}
	setString(&p.Address, rec.Address)
	setString(&p.Image, rec.Image)
	setString(&p.TokenContractAddress, rec.TokenContractAddress)
	if rec.TokenID != nil {
		p.TokenID = rec.TokenID.value
	}
	setString(&p.WalletAddress, rec.WalletAddress)
	setDecimal(&p.WalletBalance, rec.WalletBalance)

	if rec.Milestones != nil {
		p.Milestones = r.mergeMilestones(id, p.Milestones, rec.Milestones)
	}
	if rec.ImpactMetrics != nil {
		mergeImpact(&p.ImpactMetrics, rec.ImpactMetrics)
	}
	if rec.InvestmentHistory != nil {
		p.InvestmentHistory = investmentsFromRecords(rec.InvestmentHistory)
	}
	if rec.MilestonePayoutHistory != nil {
		p.MilestonePayoutHistory = payoutsFromRecords(rec.MilestonePayoutHistory)
	}

	return p
}

// mergeMilestones matches persisted milestones to base milestones by id.
// Base order is kept; persisted-only milestones are appended in persisted order.
func (r *Reconciler) mergeMilestones(projectID int, base []domain.Milestone, records []milestoneRecord) []domain.Milestone {
	out := make([]domain.Milestone, len(base))
	copy(out, base)

	index := make(map[int]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}

	for _, rec := range records {
		if rec.ID == nil {
			r.Logger.Warn("dropping persisted milestone without id", zap.Int("project_id", projectID))
			continue
		}
		if i, ok := index[*rec.ID]; ok {
			overlayMilestone(&out[i], rec)
			continue
		}
		m := domain.Milestone{ID: *rec.ID, Amount: decimal.Zero}
		overlayMilestone(&m, rec)
		index[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}

func overlayMilestone(m *domain.Milestone, rec milestoneRecord) {
	setString(&m.Name, rec.Name)
	setString(&m.Description, rec.Description)
	setDecimal(&m.Amount, rec.Amount)
	if rec.Completed != nil {
		m.Completed = *rec.Completed
	}
	if rec.Verified != nil {
		m.Verified = *rec.Verified
	}
	if rec.CompletedAt != nil {
		m.CompletedAt = rec.CompletedAt.ptr()
	}
	if rec.VerifiedAt != nil {
		m.VerifiedAt = rec.VerifiedAt.ptr()
	}
	setString(&m.ProofHash, rec.ProofHash)
	if rec.Documents != nil {
		m.Documents = rec.Documents
	}
	if rec.LeedPointContributions != nil {
		m.LeedPointContributions = rec.LeedPointContributions
	}
	setString(&m.LeedHistoryID, rec.LeedHistoryID)
	setString(&m.PayoutID, rec.PayoutID)
}

// normalizeMilestone restores the flag/timestamp invariants of a merged milestone.
// A verified milestone that is not completed is demoted; verification is never implied.
func normalizeMilestone(p *domain.Project, m *domain.Milestone) {
	if m.Verified && !m.Completed {
		m.Verified = false
		m.VerifiedAt = nil
	}
	if !m.Completed {
		m.CompletedAt = nil
	}
	if !m.Verified {
		m.VerifiedAt = nil
	}
	if m.Completed && m.CompletedAt == nil {
		t := completionTime(p, m)
		m.CompletedAt = &t
	}
	if m.Verified && m.VerifiedAt == nil {
		t := *m.CompletedAt
		m.VerifiedAt = &t
	}

	m.Documents = domain.UniqueDocuments(m.Documents)

	contributions := make([]domain.LeedPointAward, 0, len(m.LeedPointContributions))
	for _, c := range m.LeedPointContributions {
		if c.Category == "" || c.Points < 0 {
			continue
		}
		contributions = append(contributions, c)
	}
	m.LeedPointContributions = contributions
}

func mergeImpact(im *domain.ImpactMetrics, rec *impactRecord) {
	if rec.AnnualCO2Reduction != nil {
		im.AnnualCO2Reduction = *rec.AnnualCO2Reduction
	}
	if rec.EnergySavings != nil {
		im.EnergySavings = *rec.EnergySavings
	}
	if rec.JobsCreated != nil {
		im.JobsCreated = *rec.JobsCreated
	}
	setString(&im.LeedCertification, rec.LeedCertification)
	if rec.LeedScorecard != nil {
		im.LeedScorecard = mergeScorecard(im.LeedScorecard, rec.LeedScorecard)
	}
}

// mergeScorecard rebuilds a scorecard from the seed rubric and the persisted award history.
// Logic:
//  1. Metadata and history come from the persisted record when present
//  2. Categories known to the seed keep the seed base and available points
//  3. Persisted-only categories use their persisted base, or achieved minus active awards for legacy data
//  4. Achieved and total points are left for Recompute; stored values are never trusted
func mergeScorecard(seed *domain.LeedScorecard, rec *scorecardRecord) *domain.LeedScorecard {
	sc := seed
	if sc == nil {
		sc = &domain.LeedScorecard{}
	}

	setString(&sc.CertificationLevel, rec.CertificationLevel)
	setString(&sc.CertificationDate, rec.CertificationDate)
	setString(&sc.ReviewingOrganization, rec.ReviewingOrganization)
	setString(&sc.ScorecardStatus, rec.ScorecardStatus)

	if rec.MilestoneHistory != nil {
		sc.MilestoneHistory = historyFromRecords(rec.MilestoneHistory)
	}
	awarded := sc.ActiveAwards()

	seedKnown := make(map[string]bool, len(sc.Categories))
	for _, c := range sc.Categories {
		seedKnown[c.Category] = true
	}

	for _, rc := range rec.Categories {
		if rc.Category == "" {
			continue
		}
		if seedKnown[rc.Category] {
			if rc.Notes != nil {
				sc.FindCategory(rc.Category).Notes = *rc.Notes
			}
			continue
		}

		c := domain.LeedScoreCategory{Category: rc.Category}
		achieved := intOr(rc.AchievedPoints, 0)
		c.AvailablePoints = intOr(rc.AvailablePoints, achieved)
		c.BaseAchievedPoints = intOr(rc.BaseAchievedPoints, achieved-awarded[rc.Category])
		if rc.Notes != nil {
			c.Notes = *rc.Notes
		}
		if existing := sc.FindCategory(rc.Category); existing != nil {
			*existing = c
		} else {
			sc.Categories = append(sc.Categories, c)
		}
	}

	if seed == nil {
		if rec.BaseTotalPoints != nil {
			sc.BaseTotalPoints = *rec.BaseTotalPoints
		} else {
			total := intOr(rec.TotalPoints, 0)
			for _, pts := range awarded {
				total -= pts
			}
			sc.BaseTotalPoints = total
		}
	}
	return sc
}

// rollbackStaleAwards marks active history entries of unverified milestones as rolled back.
// It returns the ids of the entries it touched.
func rollbackStaleAwards(p *domain.Project, now time.Time) []string {
	sc := p.ImpactMetrics.LeedScorecard
	if sc == nil {
		return nil
	}

	var touched []string
	for i := range sc.MilestoneHistory {
		e := &sc.MilestoneHistory[i]
		if !e.Active() {
			continue
		}
		m := p.FindMilestone(e.MilestoneID)
		if m == nil || m.Verified {
			continue
		}
		t := now
		e.RolledBackAt = &t
		if m.LeedHistoryID == e.ID {
			m.LeedHistoryID = ""
		}
		touched = append(touched, e.ID)
	}
	return touched
}

// rollbackStalePayouts drops payouts of unverified milestones and takes them back out of the wallet.
// The balance is floored at zero. It returns the ids of the removed payouts.
func rollbackStalePayouts(p *domain.Project) []string {
	var removed []string
	kept := make([]domain.MilestonePayoutTransaction, 0, len(p.MilestonePayoutHistory))
	balance := p.WalletBalance
	for _, payout := range p.MilestonePayoutHistory {
		m := p.FindMilestone(payout.MilestoneID)
		if m == nil || m.Verified {
			kept = append(kept, payout)
			continue
		}
		balance = balance.Sub(payout.Amount)
		if m.PayoutID == payout.ID {
			m.PayoutID = ""
		}
		removed = append(removed, payout.ID)
	}
	if len(removed) == 0 {
		return nil
	}

	if balance.IsNegative() {
		balance = decimal.Zero
	}
	p.WalletBalance = balance
	p.MilestonePayoutHistory = kept
	return removed
}

// completionTime picks a stable completedAt for a completed milestone persisted without one.
// Order: verifiedAt, the milestone's latest payout or award, the project's latest ledger entry, the Unix epoch.
func completionTime(p *domain.Project, m *domain.Milestone) time.Time {
	if m.VerifiedAt != nil {
		return *m.VerifiedAt
	}

	var latest time.Time
	for _, payout := range p.MilestonePayoutHistory {
		if payout.MilestoneID == m.ID && payout.Date.After(latest) {
			latest = payout.Date
		}
	}
	if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
		for _, e := range sc.MilestoneHistory {
			if e.MilestoneID == m.ID && e.VerifiedAt.After(latest) {
				latest = e.VerifiedAt
			}
		}
	}
	if !latest.IsZero() {
		return latest
	}

	for _, payout := range p.MilestonePayoutHistory {
		if payout.Date.After(latest) {
			latest = payout.Date
		}
	}
	for _, inv := range p.InvestmentHistory {
		if inv.Date.After(latest) {
			latest = inv.Date
		}
	}
	if !latest.IsZero() {
		return latest
	}
	return time.Unix(0, 0).UTC()
}

func historyFromRecords(records []historyRecord) []domain.LeedHistoryEntry {
	out := make([]domain.LeedHistoryEntry, 0, len(records))
	for _, rec := range records {
		awards := make([]domain.LeedPointAward, 0, len(rec.Awards))
		sum := 0
		for _, a := range rec.Awards {
			if a.Category == "" || a.Points <= 0 {
				continue
			}
			awards = append(awards, a)
			sum += a.Points
		}
		out = append(out, domain.LeedHistoryEntry{
			ID:                 rec.ID,
			MilestoneID:        rec.MilestoneID,
			MilestoneName:      rec.MilestoneName,
			VerifiedAt:         rec.VerifiedAt.value,
			Awards:             awards,
			TotalPointsAwarded: intOr(rec.TotalPointsAwarded, sum),
			RolledBackAt:       rec.RolledBackAt.ptr(),
		})
	}
	return out
}

func investmentsFromRecords(records []investmentRecord) []domain.InvestmentTransaction {
	out := make([]domain.InvestmentTransaction, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.InvestmentTransaction{
			ID:             rec.ID,
			Amount:         rec.Amount.value,
			Date:           rec.Date.value,
			InvestorWallet: rec.InvestorWallet,
		})
	}
	return out
}

func payoutsFromRecords(records []payoutRecord) []domain.MilestonePayoutTransaction {
	out := make([]domain.MilestonePayoutTransaction, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.MilestonePayoutTransaction{
			ID:            rec.ID,
			MilestoneID:   rec.MilestoneID,
			MilestoneName: rec.MilestoneName,
			Amount:        rec.Amount.value,
			Date:          rec.Date.value,
		})
	}
	return out
}

// normalizeProject fills nil collections and restores the derived invariants
func normalizeProject(p *domain.Project) {
	if p.Milestones == nil {
		p.Milestones = []domain.Milestone{}
	}
	for i := range p.Milestones {
		normalizeMilestone(p, &p.Milestones[i])
	}
	if p.InvestmentHistory == nil {
		p.InvestmentHistory = []domain.InvestmentTransaction{}
	}
	if p.MilestonePayoutHistory == nil {
		p.MilestonePayoutHistory = []domain.MilestonePayoutTransaction{}
	}
	if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
		if sc.Categories == nil {
			sc.Categories = []domain.LeedScoreCategory{}
		}
		if sc.MilestoneHistory == nil {
			sc.MilestoneHistory = []domain.LeedHistoryEntry{}
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDecimal(dst *decimal.Decimal, src *looseDecimal) {
	if src != nil && src.valid {
		*dst = src.value
	}
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
