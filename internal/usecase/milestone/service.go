package milestone

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greenretrofit/retrofit-backend/internal/attestation"
	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"go.uber.org/zap"
)

// MilestoneService handles milestone status transitions
type MilestoneService struct {
	ProjectRepo domain.ProjectRepository
	Attestor    attestation.Generator
	Logger      *zap.Logger
	Now         func() time.Time
	NewID       func() string
}

// NewMilestoneService creates a new MilestoneService instance
func NewMilestoneService(projectRepo domain.ProjectRepository, attestor attestation.Generator, logger *zap.Logger) *MilestoneService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneService{
		ProjectRepo: projectRepo,
		Attestor:    attestor,
		Logger:      logger,
		Now:         time.Now,
		NewID:       uuid.NewString,
	}
}

// TransitionMilestone applies a completed/verified update to one milestone
// Logic:
//  1. Load the reconciled projects and work on a copy of the target project
//  2. Apply the transition with its fund release and certification side effects
//  3. Persist only when something changed; nothing is written on error
//
// Returns the updated milestone
func (s *MilestoneService) TransitionMilestone(ctx context.Context, projectID, milestoneID int, update MilestoneUpdate) (*domain.Milestone, error) {
	var result domain.Milestone

	err := s.ProjectRepo.Update(ctx, func(projects domain.ProjectDictionary) (bool, error) {
		current, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
		}

		p := current.Clone()
		m := p.FindMilestone(milestoneID)
		if m == nil {
			return false, fmt.Errorf("project %d milestone %d: %w", projectID, milestoneID, domain.ErrMilestoneNotFound)
		}

		before := m.State()
		t := &transition{now: s.Now(), attestor: s.Attestor, newID: s.NewID}
		changed, err := t.apply(p, m, update)
		if err != nil {
			return false, err
		}
		result = m.Clone()

		if !changed {
			return false, nil
		}
		if err := p.Validate(); err != nil {
			return false, fmt.Errorf("project %d invalid after transition: %w", projectID, err)
		}
		projects[projectID] = p

		s.Logger.Info("milestone transitioned",
			zap.Int("project_id", projectID),
			zap.Int("milestone_id", milestoneID),
			zap.String("from", string(before)),
			zap.String("to", string(m.State())),
		)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateMilestone is an alias of TransitionMilestone
func (s *MilestoneService) UpdateMilestone(ctx context.Context, projectID, milestoneID int, update MilestoneUpdate) (*domain.Milestone, error) {
	return s.TransitionMilestone(ctx, projectID, milestoneID, update)
}

// Bool returns a pointer to b, for building updates
func Bool(b bool) *bool {
	return &b
}
