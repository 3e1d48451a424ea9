package process

import (
	"context"
	"os"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"docu-assets/pkg/utils"
)

// CleanupReport summarizes the garbage collection sweep.
type CleanupReport struct {
	Candidates int // Paths never confirmed this run
	Deleted    int
	Failed     int // Deletion failures, logged and skipped
}

// Cleanup sweeps the seen registry: every seeded path the run never
// confirmed is deleted. Deletion is deferred to run end so one run can
// reference the same file from several blocks without an intra-run
// delete-then-recreate.
//
// The sweep is best-effort: a failed deletion is logged as a cleanup error
// and the remaining paths are still processed.
func (p *Processor) Cleanup(ctx context.Context) CleanupReport {
	remaining := p.registry.Remaining()
	sort.Strings(remaining) // Deterministic log order

	report := CleanupReport{Candidates: len(remaining)}
	if len(remaining) == 0 {
		p.log.Debug("Cleanup: no stale assets")
		return report
	}
	p.log.WithField("count", len(remaining)).Info("Sweeping stale assets")

	var deleted, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(p.opts.NumSweepWorkers)
	for _, path := range remaining {
		if ctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				failed.Add(1)
				p.log.Warnf("%v", utils.WrapErrorf(utils.ErrCleanup, "deleting '%s': %v", path, err))
				return nil
			}
			deleted.Add(1)
			if p.index != nil {
				if err := p.index.Forget(path); err != nil {
					p.log.Warnf("Failed to drop swept asset from index: %v", err)
				}
			}
			p.log.WithField("path", path).Debug("Deleted stale asset")
			return nil
		})
	}
	g.Wait()

	report.Deleted = int(deleted.Load())
	report.Failed = int(failed.Load())
	return report
}
