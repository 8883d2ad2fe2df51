package domain

import "context"

// SnapshotStore defines the persistence boundary: a single key holding the whole
// project dictionary as one serialized document
type SnapshotStore interface {
	// Load returns the stored document
	// found is false when nothing has been saved under the key yet
	Load(ctx context.Context) (data []byte, found bool, err error)

	// Save replaces the stored document
	Save(ctx context.Context, data []byte) error
}

// SeedCatalog defines the read-only canonical starting shape of every project
type SeedCatalog interface {
	// Get returns a deep copy of the seed project with the given id
	Get(id int) (*Project, bool)

	// All returns a deep copy of every seed project
	All() ProjectDictionary
}

// ProjectRepository defines the reconciled view over the snapshot store
type ProjectRepository interface {
	// LoadAll returns a freshly reconciled project dictionary
	LoadAll(ctx context.Context) (ProjectDictionary, error)

	// SaveAll persists the whole dictionary
	SaveAll(ctx context.Context, projects ProjectDictionary) error

	// Update runs load -> fn -> save as one unit of work.
	// The dictionary is saved only when fn reports a change and returns no error.
	Update(ctx context.Context, fn func(projects ProjectDictionary) (changed bool, err error)) error
}
