// Command succd-batch is a headless, directory-watching entrypoint: it
// watches a directory for new Boolean network files and runs the full
// analysis pipeline over each one as it appears, writing a JSON result
// next to the input. It has no interactive output and is meant to run
// as a long-lived background process (e.g. under systemd or a
// container supervisor).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/sdlab/succd/internal/analysis"
	"github.com/sdlab/succd/internal/parser"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/config"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/utils"
	"github.com/sdlab/succd/pkg/writer"
)

var (
	configPath = flag.String("c", "", "Path to succd.yaml configuration file")
	watchDir   = flag.String("d", ".", "Directory to watch for new network files")
	logDir     = flag.String("log-dir", "", "Directory for log files (stdout if empty)")
	gzipOut    = flag.Bool("gzip", false, "Gzip result files (.result.json.gz)")
	version    = flag.Bool("v", false, "Print version and exit")
)

var (
	// Version information, set at build time via -ldflags.
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("succd-batch version %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	logger, err := buildLogger(*logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	utils.SetGlobalLogger(logger)

	logger.Info("Starting succd-batch...")
	logger.Info("Version: %s, Commit: %s, Built: %s", Version, GitCommit, BuildTime)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Info("Configuration loaded; expansion kind = %s", cfg.Expansion.Kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("Failed to create directory watcher: %v", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(*watchDir); err != nil {
		logger.Error("Failed to watch %s: %v", *watchDir, err)
		os.Exit(1)
	}
	logger.Info("Watching %s for new network files (.bnet, .txt)", *watchDir)

	go runWatchLoop(ctx, watcher, cfg, logger)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down...", sig)
		cancel()
	case <-ctx.Done():
	}

	logger.Info("succd-batch stopped")
}

func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, cfg *config.Config, logger utils.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isNetworkFile(event.Name) {
				continue
			}
			logger.Info("Detected network file: %s", event.Name)
			if err := analyzeOne(ctx, event.Name, cfg, logger); err != nil {
				logger.Error("Analysis of %s failed: %v", event.Name, err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", werr)
		}
	}
}

func isNetworkFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".bnet" || ext == ".txt"
}

func analyzeOne(ctx context.Context, path string, cfg *config.Config, logger utils.Logger) error {
	bn, err := loadNetwork(path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	eng, err := symbolic.NewRuddEngine(bn.N())
	if err != nil {
		return fmt.Errorf("BDD engine: %w", err)
	}

	a, err := analysis.Run(ctx, bn, eng, cfg)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	summary := a.Summary()
	logger.Info("%s: %d nodes, depth %d, %d node(s) with attractors",
		filepath.Base(path), summary.NNodes, summary.Depth, len(summary.AttractorsByNode))

	if *gzipOut {
		outPath := path + ".result.json.gz"
		w := writer.NewGzipWriter[analysis.Summary]()
		if err := w.WriteToFile(summary, outPath); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		logger.Info("Result written to %s", outPath)
		return nil
	}
	outPath := path + ".result.json"
	w := writer.NewPrettyJSONWriter[analysis.Summary]()
	if err := w.WriteToFile(summary, outPath); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	logger.Info("Result written to %s", outPath)
	return nil
}

func loadNetwork(path string) (*model.BooleanNetwork, error) {
	return parser.ParseFile(path, parser.FormatAuto)
}

func buildLogger(dir string) (utils.Logger, error) {
	if dir == "" {
		return utils.NewDefaultLogger(utils.LevelInfo, os.Stdout), nil
	}
	return utils.NewFileLogger(utils.LevelInfo, filepath.Join(dir, "succd-batch.log"))
}
