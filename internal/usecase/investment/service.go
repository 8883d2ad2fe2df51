package investment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvestmentService handles investment-related operations
type InvestmentService struct {
	ProjectRepo domain.ProjectRepository
	Logger      *zap.Logger
	Now         func() time.Time
	NewID       func() string
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(projectRepo domain.ProjectRepository, logger *zap.Logger) *InvestmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvestmentService{
		ProjectRepo: projectRepo,
		Logger:      logger,
		Now:         time.Now,
		NewID:       uuid.NewString,
	}
}

// ParseAmount parses a decimal investment amount
// Returns ErrInvalidAmount for non-numeric or non-positive input
func ParseAmount(amount string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, amount)
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	return value, nil
}

// RecordInvestment records a new investment into a project
// Logic:
//   - raisedAmount += amount (exact decimal arithmetic)
//   - investorCount += 1 for every investment, repeat investors included
//   - a new ledger entry is appended
//   - status becomes Funded once raisedAmount reaches targetAmount
//
// Returns the updated project
func (s *InvestmentService) RecordInvestment(ctx context.Context, projectID int, amount string, investor string) (*domain.Project, error) {
	value, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	investor = strings.TrimSpace(investor)
	if investor == "" {
		return nil, fmt.Errorf("%w: investor wallet cannot be empty", domain.ErrInvalidInvestor)
	}

	var result *domain.Project
	err = s.ProjectRepo.Update(ctx, func(projects domain.ProjectDictionary) (bool, error) {
		current, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
		}

		p := current.Clone()
		p.RaisedAmount = p.RaisedAmount.Add(value)
		p.InvestorCount++
		p.InvestmentHistory = append(p.InvestmentHistory, domain.InvestmentTransaction{
			ID:             s.NewID(),
			Amount:         value,
			Date:           s.Now(),
			InvestorWallet: investor,
		})
		if p.Status == domain.ProjectStatusFunding && p.RaisedAmount.GreaterThanOrEqual(p.TargetAmount) {
			p.Status = domain.ProjectStatusFunded
		}

		projects[projectID] = p
		result = p.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("investment recorded",
		zap.Int("project_id", projectID),
		zap.String("amount", value.String()),
		zap.String("raised_amount", result.RaisedAmount.String()),
	)
	return result, nil
}

// UpdateProjectInvestment is an alias of RecordInvestment
func (s *InvestmentService) UpdateProjectInvestment(ctx context.Context, projectID int, amount string, investor string) (*domain.Project, error) {
	return s.RecordInvestment(ctx, projectID, amount, investor)
}

// ResetProjectFunding clears the funding state of a project
// Logic: raisedAmount = 0, investorCount = 0, investment ledger cleared.
// Milestones, wallet balance and certification are left untouched.
// Returns the updated project
func (s *InvestmentService) ResetProjectFunding(ctx context.Context, projectID int) (*domain.Project, error) {
	var result *domain.Project
	err := s.ProjectRepo.Update(ctx, func(projects domain.ProjectDictionary) (bool, error) {
		current, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
		}

		changed := !current.RaisedAmount.IsZero() ||
			current.InvestorCount != 0 ||
			len(current.InvestmentHistory) > 0 ||
			current.Status == domain.ProjectStatusFunded

		p := current.Clone()
		p.RaisedAmount = decimal.Zero
		p.InvestorCount = 0
		p.InvestmentHistory = []domain.InvestmentTransaction{}
		if p.Status == domain.ProjectStatusFunded {
			p.Status = domain.ProjectStatusFunding
		}

		projects[projectID] = p
		result = p.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CalculateFundingProgress calculates how much of the target has been raised
// Logic: Progress = raisedAmount / targetAmount * 100, rounded to 2 places
// A project without a target reports 0
func (s *InvestmentService) CalculateFundingProgress(ctx context.Context, projectID int) (decimal.Decimal, error) {
	projects, err := s.ProjectRepo.LoadAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	p, ok := projects[projectID]
	if !ok {
		return decimal.Zero, fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
	}

	return FundingProgress(p), nil
}

// FundingProgress returns the raised percentage of a project target
func FundingProgress(p *domain.Project) decimal.Decimal {
	if !p.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return p.RaisedAmount.Div(p.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}
