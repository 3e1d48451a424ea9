package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"docu-assets/pkg/config"
	"docu-assets/pkg/fetch"
	"docu-assets/pkg/models"
	"docu-assets/pkg/process"
	"docu-assets/pkg/storage"
	"docu-assets/pkg/utils"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync":
		runSync(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "version":
		fmt.Printf("docu-assets %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `docu-assets - localized image asset pipeline for exported docs

Usage:
  docu-assets <command> [options]

Commands:
  sync        Persist remote image blocks locally and sweep stale assets
  validate    Validate configuration file
  version     Show version info

Run 'docu-assets <command> -h' for command-specific help.`)
}

// setupLogging configures the shared logrus logger from the options.
func setupLogging(opts *config.Options) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Warnf("Invalid log_level %q, using info", opts.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// loadOptions loads and validates the config file, collecting warnings.
func loadOptions(path string) (*config.Options, []string, error) {
	opts, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := opts.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return opts, warnings, nil
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to the options YAML file")
	fs.Parse(args)

	_, warnings, err := loadOptions(*configPath)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration OK")
}

// blockInput is one entry of the blocks file handed to sync: the raw image
// block plus the page context the exporter resolved for it.
type blockInput struct {
	Block models.ImageBlock  `json:"block"`
	Page  models.PageContext `json:"page"`
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to the options YAML file")
	blocksPath := fs.String("blocks", "", "Path to the JSON array of image blocks (required)")
	outPath := fs.String("out", "", "Where to write the rewritten blocks (default: stdout)")
	force := fs.Bool("force", false, "Force refresh: re-fetch and re-write every asset")
	keepGoing := fs.Bool("keep-going", false, "Skip blocks whose asset processing fails instead of aborting")
	fs.Parse(args)

	if *blocksPath == "" {
		fmt.Fprintln(os.Stderr, "sync: -blocks is required")
		fs.Usage()
		os.Exit(2)
	}

	opts, warnings, err := loadOptions(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *force {
		opts.ForceRefreshImages = true
	}
	log := setupLogging(opts)
	for _, w := range warnings {
		log.Warn(w)
	}

	inputs, err := loadBlocks(*blocksPath)
	if err != nil {
		log.Fatalf("Loading blocks file: %v", err)
	}
	log.WithField("blocks", len(inputs)).Info("Loaded image blocks")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One run per output tree at a time: the pipeline's existence checks are
	// not safe against a concurrent writer.
	lock := flock.New(lockPath(opts))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("Acquiring run lock: %v", err)
	}
	if !locked {
		log.Fatalf("Another run holds the lock at %s", lock.Path())
	}
	defer lock.Unlock()

	stats, report, failures := sync(ctx, opts, inputs, *keepGoing, log)

	if err := writeBlocks(*outPath, inputs); err != nil {
		log.Fatalf("Writing rewritten blocks: %v", err)
	}

	printSummary(stats, report, failures)
	if failures > 0 && !*keepGoing {
		os.Exit(1)
	}
}

// sync runs the pipeline over every block, then sweeps. Returns run stats,
// the cleanup report, and the count of failed blocks.
func sync(ctx context.Context, opts *config.Options, inputs []*blockInput, keepGoing bool, log *logrus.Logger) (process.Stats, process.CleanupReport, int) {
	client := fetch.NewClient(opts.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(client, opts.FetchTimeout, log)

	var index storage.AssetIndex
	var lister storage.PathLister
	if opts.IndexDir != "" {
		badgerIndex, err := storage.NewBadgerIndex(opts.IndexDir, logrus.NewEntry(log))
		if err != nil {
			log.Fatalf("Opening asset index: %v", err)
		}
		defer badgerIndex.Close()
		index = badgerIndex
		lister = badgerIndex
	} else {
		lister = &storage.DirectoryLister{
			Roots: seedRoots(opts, inputs),
			Log:   logrus.NewEntry(log),
		}
	}

	registry, err := storage.SeedRegistry(lister)
	if err != nil {
		log.Fatalf("Seeding seen registry: %v", err)
	}
	log.WithField("known_assets", registry.PendingCount()).Debug("Seen registry seeded")

	processor, err := process.NewProcessor(opts, fetcher, process.FSWriter{}, registry, index, log)
	if err != nil {
		log.Fatalf("Creating processor: %v", err)
	}

	failures := 0
	for _, in := range inputs {
		if ctx.Err() != nil {
			log.Warnf("Run cancelled: %v", ctx.Err())
			break
		}
		if err := processor.ProcessImageBlock(ctx, &in.Block, in.Page); err != nil {
			failures++
			log.WithFields(logrus.Fields{
				"block":    in.Block.ID,
				"category": utils.CategorizeError(err),
			}).Errorf("Block failed: %v", err)
			if !keepGoing {
				break
			}
		}
	}

	// Sweep runs even after failures: paths confirmed so far stay, and an
	// aborted run deleting nothing would be worse than deleting late.
	var report process.CleanupReport
	if failures == 0 || keepGoing {
		report = processor.Cleanup(ctx)
	} else {
		log.Warn("Skipping cleanup sweep after aborted run")
	}

	return processor.Stats(), report, failures
}

// lockPath picks a stable lock file location for the run's output tree.
func lockPath(opts *config.Options) string {
	root := opts.ImageOutputPath
	if root == "" {
		root = opts.SiteRoot
	}
	os.MkdirAll(root, 0755)
	return filepath.Join(root, ".docu-assets.lock")
}

// seedRoots collects the directories prior runs could have written assets
// into: the configured output root (or every page directory when unset)
// plus the localized i18n tree.
func seedRoots(opts *config.Options, inputs []*blockInput) []string {
	seen := make(map[string]struct{})
	var roots []string
	add := func(root string) {
		if root == "" {
			return
		}
		if _, dup := seen[root]; dup {
			return
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}

	if opts.ImageOutputPath != "" {
		add(opts.ImageOutputPath)
	} else {
		for _, in := range inputs {
			add(in.Page.Dir)
		}
	}
	if len(opts.Locales) > 0 {
		add(filepath.Join(opts.SiteRoot, "i18n"))
	}
	return roots
}

func loadBlocks(path string) ([]*blockInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var inputs []*blockInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("parsing blocks file '%s': %w", path, err)
	}
	return inputs, nil
}

func writeBlocks(path string, inputs []*blockInput) error {
	data, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// printSummary renders the run counters as a table on stderr.
func printSummary(stats process.Stats, report process.CleanupReport, failures int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"Blocks processed", stats.Blocks},
		{"Blocks failed", failures},
		{"Fetches", stats.Fetched},
		{"Files written", stats.Written},
		{"Localized variants", stats.Localized},
		{"Skipped (cached)", stats.Skipped},
		{"Stale candidates", report.Candidates},
		{"Stale deleted", report.Deleted},
		{"Delete failures", report.Failed},
	})
	t.Render()
}
