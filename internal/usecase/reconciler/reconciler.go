package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"go.uber.org/zap"
)

// Reconciler is the project repository backed by a single snapshot document.
// Every load merges the seed catalog with the persisted snapshot; every save writes the whole dictionary.
type Reconciler struct {
	Store   domain.SnapshotStore
	Catalog domain.SeedCatalog
	Logger  *zap.Logger
	Now     func() time.Time

	mu sync.Mutex
}

// NewReconciler creates a new Reconciler instance
func NewReconciler(store domain.SnapshotStore, catalog domain.SeedCatalog, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		Store:   store,
		Catalog: catalog,
		Logger:  logger,
		Now:     time.Now,
	}
}

// LoadAll returns a freshly reconciled project dictionary.
// Logic:
//  1. Read the snapshot from the store (I/O errors are returned)
//  2. Decode it; a corrupt document is logged and treated as missing
//  3. Merge every id of seed and snapshot, normalize, and validate each project
func (r *Reconciler) LoadAll(ctx context.Context) (domain.ProjectDictionary, error) {
	data, found, err := r.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var records map[int]*projectRecord
	if found {
		records, err = r.decode(data)
		if err != nil {
			r.Logger.Warn("discarding unreadable snapshot", zap.Error(err))
			records = nil
		}
	}

	return r.reconcile(records), nil
}

// SaveAll persists the whole dictionary as one enveloped document
func (r *Reconciler) SaveAll(ctx context.Context, projects domain.ProjectDictionary) error {
	data, err := encodeSnapshot(projects)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.Store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Update runs load -> fn -> save under the reconciler lock.
// Nothing is written when fn fails or reports no change.
func (r *Reconciler) Update(ctx context.Context, fn func(projects domain.ProjectDictionary) (bool, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}

	changed, err := fn(projects)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	return r.SaveAll(ctx, projects)
}

func (r *Reconciler) decode(data []byte) (map[int]*projectRecord, error) {
	raw, err := rawProjects(data)
	if err != nil {
		return nil, err
	}

	records := make(map[int]*projectRecord, len(raw))
	for key, msg := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			r.Logger.Warn("skipping snapshot entry with invalid key", zap.String("key", key))
			continue
		}
		var rec *projectRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			r.Logger.Warn("skipping unreadable project record",
				zap.Int("project_id", id),
				zap.Error(err),
			)
			continue
		}
		if rec == nil {
			continue
		}
		records[id] = rec
	}
	return records, nil
}

func (r *Reconciler) reconcile(records map[int]*projectRecord) domain.ProjectDictionary {
	now := r.Now()
	seeds := r.Catalog.All()

	ids := make(map[int]bool, len(seeds)+len(records))
	for id := range seeds {
		ids[id] = true
	}
	for id := range records {
		ids[id] = true
	}

	out := make(domain.ProjectDictionary, len(ids))
	for id := range ids {
		p, err := r.reconcileProject(id, seeds[id], records[id], now)
		if err == nil {
			out[id] = p
			continue
		}

		seed, ok := r.Catalog.Get(id)
		if !ok {
			r.Logger.Warn("dropping invalid persisted project", zap.Int("project_id", id), zap.Error(err))
			continue
		}
		r.Logger.Warn("falling back to seed for invalid persisted project", zap.Int("project_id", id), zap.Error(err))
		fallback, err := r.reconcileProject(id, seed, nil, now)
		if err != nil {
			r.Logger.Error("seed project is invalid", zap.Int("project_id", id), zap.Error(err))
			continue
		}
		out[id] = fallback
	}
	return out
}

func (r *Reconciler) reconcileProject(id int, seed *domain.Project, rec *projectRecord, now time.Time) (*domain.Project, error) {
	var p *domain.Project
	if rec == nil {
		if seed == nil {
			return nil, errors.New("project has neither seed nor snapshot")
		}
		p = seed
		p.ID = id
	} else {
		p = r.mergeProject(id, seed, rec)
	}

	normalizeProject(p)
	if touched := rollbackStaleAwards(p, now); len(touched) > 0 {
		r.Logger.Warn("rolled back awards of unverified milestones",
			zap.Int("project_id", id),
			zap.Strings("history_ids", touched),
		)
	}
	if removed := rollbackStalePayouts(p); len(removed) > 0 {
		r.Logger.Warn("removed payouts of unverified milestones",
			zap.Int("project_id", id),
			zap.Strings("payout_ids", removed),
			zap.String("wallet_balance", p.WalletBalance.String()),
		)
	}
	if sc := p.ImpactMetrics.LeedScorecard; sc != nil {
		sc.Recompute()
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
