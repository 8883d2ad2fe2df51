package seeder

import (
	"context"
	"fmt"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
)

// Seeder writes the catalog into an empty snapshot store
type Seeder struct {
	Store   domain.SnapshotStore
	Repo    domain.ProjectRepository
	Catalog domain.SeedCatalog
}

// NewSeeder creates a new Seeder instance
func NewSeeder(store domain.SnapshotStore, repo domain.ProjectRepository, catalog domain.SeedCatalog) *Seeder {
	return &Seeder{
		Store:   store,
		Repo:    repo,
		Catalog: catalog,
	}
}

// Seed ensures the store holds a snapshot.
// Logic:
//  1. Load the raw snapshot from the store
//  2. If a snapshot exists (even a corrupt one), do nothing
//  3. Otherwise persist every catalog project through the repository
func (s *Seeder) Seed(ctx context.Context) error {
	_, found, err := s.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if found {
		return nil
	}

	projects := s.Catalog.All()
	for _, p := range projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("seed project %d: %w", p.ID, err)
		}
	}

	if err := s.Repo.SaveAll(ctx, projects); err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}
	return nil
}
