package planner

import (
	"context"
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/sitepublish/internal/sync/comparator"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

// DefaultParallelism bounds concurrent comparisons when none is configured.
const DefaultParallelism = 8

// Planner creates operation sets for publish passes.
type Planner struct {
	comparator  comparator.Comparator
	parallelism int
	logger      *slog.Logger
}

// NewPlanner creates a new planner with the given comparator.
func NewPlanner(comp comparator.Comparator, parallelism int, logger *slog.Logger) *Planner {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Planner{
		comparator:  comp,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Plan diffs the local entries against the remote entries.
// The returned sets are disjoint. A key whose comparison fails is placed in
// Failed and in none of the other sets.
func (p *Planner) Plan(
	ctx context.Context,
	local []pubtypes.LocalEntry,
	remote []pubtypes.RemoteEntry,
) *pubtypes.OperationSet {
	localMap := make(map[string]pubtypes.LocalEntry, len(local))
	localKeys := mapset.NewThreadUnsafeSetWithSize[string](len(local))
	for _, entry := range local {
		localMap[entry.RelativePath] = entry
		localKeys.Add(entry.RelativePath)
	}

	remoteMap := make(map[string]pubtypes.RemoteEntry, len(remote))
	remoteKeys := mapset.NewThreadUnsafeSetWithSize[string](len(remote))
	for _, entry := range remote {
		remoteMap[entry.Key] = entry
		remoteKeys.Add(entry.Key)
	}

	ops := pubtypes.NewOperationSet()
	ops.ToAdd = localKeys.Difference(remoteKeys)
	ops.ToRemove = remoteKeys.Difference(localKeys)

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(p.parallelism)

	for _, key := range localKeys.Intersect(remoteKeys).ToSlice() {
		g.Go(func() error {
			changed, err := p.comparator.HasChanged(ctx, localMap[key], remoteMap[key])

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				p.logger.WarnContext(ctx, "comparison failed", "key", key, "error", err)
				ops.Failed[key] = err
			case changed:
				ops.ToUpdate.Add(key)
			default:
				ops.Unchanged.Add(key)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.DebugContext(ctx, "plan computed",
		"add", ops.ToAdd.Cardinality(),
		"update", ops.ToUpdate.Cardinality(),
		"remove", ops.ToRemove.Cardinality(),
		"unchanged", ops.Unchanged.Cardinality(),
		"failed", len(ops.Failed),
	)
	return ops
}
