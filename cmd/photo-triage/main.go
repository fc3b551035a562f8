package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"photo-triage/internal/kv"
	"photo-triage/internal/library"
	"photo-triage/internal/preview"
	"photo-triage/internal/resolver"
	"photo-triage/internal/trash"
	"photo-triage/internal/triage"
	ui "photo-triage/internal/tui"
	"photo-triage/pkg/utils"
)

type multiFlag []string

func (m *multiFlag) String() string     { return fmt.Sprint([]string(*m)) }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func main() {
	var (
		root        string
		dbPath      string
		jsonOut     bool
		concurrency int
		maxDepth    int
		useTUI      bool
		dryRun      bool
		excludes    multiFlag
		year        int
		month       int
		day         int
		limit       int
		archiveDir  string
	)

	flag.StringVar(&root, "path", ".", "Photo library root to index")
	flag.StringVar(&root, "p", ".", "Alias of --path")
	flag.StringVar(&dbPath, "db", "", "Index database path (default: <config dir>/photo-triage/index.db)")
	flag.BoolVar(&jsonOut, "json", false, "Output the index as JSON instead of launching the TUI")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Concurrency for indexing and deletion")
	flag.IntVar(&concurrency, "c", runtime.NumCPU(), "Alias of --concurrency")
	flag.IntVar(&maxDepth, "max-depth", -1, "Max depth for directory walk (-1 for unlimited)")
	flag.IntVar(&maxDepth, "m", -1, "Alias of --max-depth")
	flag.BoolVar(&useTUI, "tui", true, "Run interactive TUI (default)")
	flag.BoolVar(&useTUI, "t", true, "Alias of --tui")
	flag.BoolVar(&dryRun, "dry-run", false, "Do not delete anything; simulate deletion")
	flag.BoolVar(&dryRun, "d", false, "Alias of --dry-run")
	flag.Var(&excludes, "exclude", "Glob pattern to exclude (can repeat). Matches full path or basename.")
	flag.Var(&excludes, "x", "Alias of --exclude")
	flag.IntVar(&year, "year", time.Now().Year(), "Initial filter year")
	flag.IntVar(&month, "month", 0, "Initial filter month (0 for all)")
	flag.IntVar(&day, "day", 0, "Initial filter day (0 for all)")
	flag.IntVar(&limit, "limit", triage.DefaultLimit, "Max photos loaded per triage session")
	flag.StringVar(&archiveDir, "archive", "", "Zip staged photos into this directory before deleting")
	flag.Parse()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve path: %v\n", err)
		os.Exit(2)
	}
	if dbPath == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to locate config dir: %v\n", err)
			os.Exit(2)
		}
		dbPath = filepath.Join(cfgDir, "photo-triage", "index.db")
	}

	db, err := library.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open index: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	lib, err := library.New(db, absRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init library: %v\n", err)
		os.Exit(1)
	}
	lib.Concurrency = concurrency
	lib.DryRun = dryRun

	kvStore, err := kv.New(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init storage: %v\n", err)
		os.Exit(1)
	}

	scanOpts := library.ScanOptions{
		Concurrency: concurrency,
		MaxDepth:    maxDepth,
		Excludes:    []string(excludes),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !useTUI || jsonOut {
		listIndex(ctx, lib, scanOpts, jsonOut)
		return
	}

	trashStore := trash.New(kvStore, lib, trash.Options{ArchiveDir: archiveDir})
	defer trashStore.Close()
	trashStore.Initialize(ctx)

	renderer, err := preview.NewRenderer(64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init preview cache: %v\n", err)
		os.Exit(1)
	}

	filter := triage.DateFilter{Year: year}
	if month > 0 {
		filter.Month = &month
		if day > 0 {
			filter.Day = &day
		}
	}

	cfg := ui.Config{
		Library:  lib,
		Trash:    trashStore,
		Session:  triage.NewSession(lib, trashStore, limit),
		Resolver: resolver.New(lib),
		Preview:  renderer,
		ScanOpts: scanOpts,
		Filter:   filter,
	}
	if err := ui.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}

// listIndex scans and prints the library index, as a table or JSON.
func listIndex(ctx context.Context, lib *library.SQLite, opts library.ScanOptions, jsonOut bool) {
	start := time.Now()
	assets, scanErr := lib.Scan(ctx, opts)
	if scanErr != nil {
		// We'll still print what we have but exit non-zero.
		fmt.Fprintf(os.Stderr, "scan completed with errors: %v\n", scanErr)
	}

	var totalSize int64
	for _, a := range assets {
		totalSize += a.Size
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		payload := struct {
			Root      string          `json:"root"`
			TotalSize int64           `json:"totalSize"`
			Assets    []library.Asset `json:"assets"`
			Duration  string          `json:"duration"`
		}{Root: lib.Root, TotalSize: totalSize, Assets: assets, Duration: time.Since(start).String()}
		if err := enc.Encode(payload); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write json: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("photo-triage index\nroot: %s\nfound: %d\n", lib.Root, len(assets))
		fmt.Println("----------------------------------------------")
		for _, a := range assets {
			fmt.Printf("%s\t%s\t%s\n", a.Filename, utils.HumanizeBytes(a.Size),
				a.CreationTime.Format("2006-01-02 15:04:05"))
		}
		fmt.Println("----------------------------------------------")
		fmt.Printf("Total size: %s\n", utils.HumanizeBytes(totalSize))
		fmt.Printf("Duration: %s\n", time.Since(start).Round(time.Millisecond))
	}

	if scanErr != nil {
		os.Exit(1)
	}
}
