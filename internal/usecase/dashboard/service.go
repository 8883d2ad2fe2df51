package dashboard

import (
	"context"
	"fmt"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// PortfolioSummary represents the aggregated state of every project
type PortfolioSummary struct {
	ProjectCount       int
	TotalTarget        decimal.Decimal
	TotalRaised        decimal.Decimal
	TotalReleased      decimal.Decimal // sum of project wallet balances
	TotalInvestors     int64
	MilestoneCount     int
	VerifiedMilestones int
	CertificationTotal int // sum of LEED total points
}

// DashboardService handles read-only project queries
type DashboardService struct {
	ProjectRepo domain.ProjectRepository
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(projectRepo domain.ProjectRepository) *DashboardService {
	return &DashboardService{
		ProjectRepo: projectRepo,
	}
}

// GetAllProjects returns every reconciled project ordered by id
func (s *DashboardService) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.ProjectRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return projects.Sorted(), nil
}

// GetProject returns a single reconciled project
func (s *DashboardService) GetProject(ctx context.Context, projectID int) (*domain.Project, error) {
	projects, err := s.ProjectRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	p, ok := projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
	}
	return p, nil
}

// GetPortfolioSummary calculates totals across all projects
// Logic:
//   - Target, Raised, Released: decimal sums of the project amounts
//   - Investors: sum of investor counts
//   - Milestones: total and verified counts
//   - Certification: sum of recomputed LEED totals
func (s *DashboardService) GetPortfolioSummary(ctx context.Context) (*PortfolioSummary, error) {
	projects, err := s.ProjectRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	summary := &PortfolioSummary{
		ProjectCount:  len(projects),
		TotalTarget:   decimal.Zero,
		TotalRaised:   decimal.Zero,
		TotalReleased: decimal.Zero,
	}
	for _, p := range projects {
		summary.TotalTarget = summary.TotalTarget.Add(p.TargetAmount)
		summary.TotalRaised = summary.TotalRaised.Add(p.RaisedAmount)
		summary.TotalReleased = summary.TotalReleased.Add(p.WalletBalance)
		summary.TotalInvestors += p.InvestorCount
		summary.MilestoneCount += len(p.Milestones)
		for _, m := range p.Milestones {
			if m.Verified {
				summary.VerifiedMilestones++
			}
		}
		if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
			summary.CertificationTotal += sc.TotalPoints
		}
	}

	return summary, nil
}
