// Package process orchestrates the per-block asset pipeline: parse, plan,
// gate, fetch, write, and the end-of-run garbage collection sweep.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docu-assets/pkg/config"
	"docu-assets/pkg/fetch"
	"docu-assets/pkg/models"
	"docu-assets/pkg/naming"
	"docu-assets/pkg/parse"
	"docu-assets/pkg/storage"
	"docu-assets/pkg/utils"
)

// Stats counts what one run did. Block processing is single-pass, so plain
// ints are safe; sweep counters live in CleanupReport.
type Stats struct {
	Blocks    int // Blocks processed successfully
	Fetched   int // Network fetches performed
	Written   int // Files written (primary + localized)
	Skipped   int // Gate decisions that trusted an existing file
	Localized int // Localized variants written
}

// Processor sequences the asset pipeline for image blocks and owns the
// run's seen registry. One Processor serves one run.
type Processor struct {
	opts     *config.Options
	strategy naming.Strategy
	planner  *naming.Planner
	fetcher  *fetch.Fetcher
	writer   AssetWriter
	gate     CacheGate
	registry *storage.SeenRegistry
	index    storage.AssetIndex // nil unless a persisted index is configured
	log      *logrus.Logger
	stats    Stats
}

// NewProcessor wires a Processor from validated options. index may be nil.
func NewProcessor(
	opts *config.Options,
	fetcher *fetch.Fetcher,
	writer AssetWriter,
	registry *storage.SeenRegistry,
	index storage.AssetIndex,
	log *logrus.Logger,
) (*Processor, error) {
	if opts == nil || !opts.Initialized() {
		return nil, utils.WrapErrorf(utils.ErrConfiguration, "processor created before options were validated")
	}
	strategy, err := naming.ForMode(opts.ImageFileNameFormat)
	if err != nil {
		return nil, err
	}
	planner, err := naming.NewPlanner(opts)
	if err != nil {
		return nil, err
	}
	return &Processor{
		opts:     opts,
		strategy: strategy,
		planner:  planner,
		fetcher:  fetcher,
		writer:   writer,
		gate:     CacheGate{ForceRefresh: opts.ForceRefreshImages},
		registry: registry,
		index:    index,
		log:      log,
	}, nil
}

// Stats returns a copy of the run counters so far.
func (p *Processor) Stats() Stats {
	return p.stats
}

// ProcessImageBlock turns one remote image block into locally persisted
// asset files and mutates the block in place to reference the local copy.
//
// For identifier-based naming modes the path is planned first and the
// network is only touched when the gate demands a write (or a localized
// fallback needs the primary bytes). Content-hash naming needs the bytes
// before it can name, so there the fetch always comes first.
func (p *Processor) ProcessImageBlock(ctx context.Context, block *models.ImageBlock, page models.PageContext) error {
	desc, err := parse.ImageDescriptor(block, page, p.opts)
	if err != nil {
		return err
	}
	blockLog := p.log.WithFields(logrus.Fields{"block": desc.BlockID, "url": desc.PrimaryURL})

	if p.strategy.RequiresContent() {
		if err := p.ensurePrimaryBytes(ctx, desc); err != nil {
			return err
		}
	}
	fileName, err := p.strategy.FileName(desc)
	if err != nil {
		return err
	}
	p.planner.Plan(desc, fileName)

	// Primary asset
	decision := p.gate.Decide(desc.PrimaryOutputPath)
	p.registry.MarkSeen(desc.PrimaryOutputPath)
	switch decision {
	case DecisionSkip:
		p.stats.Skipped++
		blockLog.WithField("path", desc.PrimaryOutputPath).Debug("Primary asset up to date, skipping")
	case DecisionWrite:
		if err := p.ensurePrimaryBytes(ctx, desc); err != nil {
			return err
		}
		if err := p.writer.Write(desc.PrimaryOutputPath, desc.PrimaryBytes); err != nil {
			return err
		}
		p.stats.Written++
		p.record(desc.PrimaryOutputPath, desc.PrimaryURL, "", len(desc.PrimaryBytes), blockLog)
		blockLog.WithField("path", desc.PrimaryOutputPath).Debug("Wrote primary asset")
	}

	// Localized variants, one per configured locale, each with its own gate
	// decision against its own locale-specific path.
	for _, locale := range p.opts.Locales {
		if err := p.processLocalized(ctx, desc, locale, blockLog); err != nil {
			return err
		}
	}

	// Rewrite the block so downstream rendering emits the local reference.
	block.Source.URL = desc.MarkdownReferencePath
	block.SetCaption(desc.Caption)

	p.stats.Blocks++
	return nil
}

// processLocalized persists one locale's variant: an override URL when the
// caption supplied one, the primary bytes otherwise.
func (p *Processor) processLocalized(ctx context.Context, desc *models.ImageDescriptor, locale string, blockLog *logrus.Entry) error {
	locPath := p.planner.LocalizedPath(desc, locale)
	locLog := blockLog.WithFields(logrus.Fields{"locale": locale, "path": locPath})

	decision := p.gate.Decide(locPath)
	p.registry.MarkSeen(locPath)
	if decision == DecisionSkip {
		p.stats.Skipped++
		locLog.Debug("Localized asset up to date, skipping")
		return nil
	}

	var data []byte
	sourceURL := desc.OverrideFor(locale)
	if sourceURL != "" {
		result, err := p.fetcher.Fetch(ctx, sourceURL)
		if err != nil {
			return fmt.Errorf("fetching %s override for block %q: %w", locale, desc.BlockID, err)
		}
		p.stats.Fetched++
		data = result.Bytes
	} else {
		// No override: fall back to the primary bytes, fetching them on
		// demand when the primary stage was skip-cached.
		if err := p.ensurePrimaryBytes(ctx, desc); err != nil {
			return err
		}
		sourceURL = desc.PrimaryURL
		data = desc.PrimaryBytes
	}

	if err := p.writer.Write(locPath, data); err != nil {
		return err
	}
	p.stats.Written++
	p.stats.Localized++
	p.record(locPath, sourceURL, locale, len(data), locLog)
	locLog.Debug("Wrote localized asset")
	return nil
}

// ensurePrimaryBytes fetches the primary asset once per descriptor. Repeat
// calls (skip-cached primary later needed as a locale fallback) are served
// from memory.
func (p *Processor) ensurePrimaryBytes(ctx context.Context, desc *models.ImageDescriptor) error {
	if desc.PrimaryBytes != nil {
		return nil
	}
	result, err := p.fetcher.Fetch(ctx, desc.PrimaryURL)
	if err != nil {
		return fmt.Errorf("fetching primary asset for block %q: %w", desc.BlockID, err)
	}
	p.stats.Fetched++
	desc.PrimaryBytes = result.Bytes
	detected := result.Type
	desc.Detected = &detected
	return nil
}

// record mirrors a successful write into the persisted index, when one is
// configured. Index failures are logged, not fatal: the filesystem is the
// source of truth and the next run can fall back to a directory walk.
func (p *Processor) record(path, sourceURL, locale string, size int, log *logrus.Entry) {
	if p.index == nil {
		return
	}
	entry := &storage.AssetEntry{
		SourceURL: sourceURL,
		Locale:    locale,
		Size:      int64(size),
		WrittenAt: time.Now(),
	}
	if err := p.index.Record(path, entry); err != nil {
		log.Warnf("Failed to record asset in index: %v", err)
	}
}
