// Package main is the shabd CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/chat"
	"github.com/vedlang/shabd/internal/config"
	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/ingest"
	"github.com/vedlang/shabd/internal/meaning"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/offline"
	"github.com/vedlang/shabd/internal/pipeline"
	"github.com/vedlang/shabd/internal/scheduler"
	"github.com/vedlang/shabd/internal/search"
	"github.com/vedlang/shabd/internal/server"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
	"github.com/vedlang/shabd/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shabd/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "sync":
		runSync()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("shabd version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Ingest.Directory != "" {
		ingestWatcher := ingest.NewWatcher(
			cfg.Ingest.Directory,
			components.Extractor,
			components.Pending,
			logger,
		)
		if err := ingestWatcher.Start(); err != nil {
			logger.Fatal("Failed to start transcript watcher", zap.Error(err))
		}
		defer ingestWatcher.Stop()
	}

	components.Scheduler.Start()
	defer components.Scheduler.Stop()

	srv := server.NewServer(
		components.Chat,
		components.Pipeline,
		components.Pending,
		components.Validated,
		components.Index,
		components.Prober,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSync() {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = use direct storage when server is not running)`)
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		result, err := syncViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
		printSyncResult(result)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	if !components.Prober.Online() {
		fmt.Println("Offline: translation provider unreachable, backlog left as is")
		os.Exit(1)
	}
	res := components.Pipeline.Drain(context.Background())
	printSyncResult(&models.SyncResult{
		Status:         "success",
		ProcessedCount: res.Processed,
		FailedCount:    len(res.Failures),
		RemainingCount: res.Remaining,
	})
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = use direct storage when server is not running)`)
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		stats, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		printStats(stats)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	validated, err := components.Validated.CountValidated(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	printStats(&models.Stats{
		PendingCount:   components.Pending.Count(),
		ValidatedCount: validated,
		Online:         components.Prober.Online(),
	})
}

func syncViaHTTP(serverURL string) (*models.SyncResult, error) {
	resp, err := http.Post(serverURL+"/api/sync", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func statusViaHTTP(serverURL string) (*models.Stats, error) {
	resp, err := http.Get(serverURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var stats models.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func printSyncResult(res *models.SyncResult) {
	fmt.Printf("Sync %s: %d processed, %d failed, %d remaining\n",
		res.Status, res.ProcessedCount, res.FailedCount, res.RemainingCount)
}

func printStats(stats *models.Stats) {
	state := "offline"
	if stats.Online {
		state = "online"
	}
	fmt.Printf("Pending: %d\nValidated: %d\nNetwork: %s\n",
		stats.PendingCount, stats.ValidatedCount, state)
}

// Components holds initialized services.
type Components struct {
	Pending   *store.PendingStore
	Validated *store.SQLiteStore
	Index     *search.VocabIndex
	Extractor *extract.Extractor
	Prober    connectivity.Prober
	Chat      *chat.Service
	Pipeline  *pipeline.Pipeline
	Scheduler *scheduler.Scheduler
}

func (c *Components) Close() {
	if c.Validated != nil {
		_ = c.Validated.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	pending, err := store.NewPendingStore(cfg.Storage.PendingPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pending store: %w", err)
	}
	validated, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validated store: %w", err)
	}

	var index *search.VocabIndex
	if cfg.Storage.SearchIndexPath != "" {
		index, err = search.NewVocabIndex(cfg.Storage.SearchIndexPath)
		if err != nil {
			logger.Warn("failed to open vocab index, search disabled", zap.Error(err))
			index = nil
		}
	}

	prober := connectivity.NewDialProber(
		cfg.Connectivity.Address,
		time.Duration(cfg.Connectivity.TimeoutSeconds)*time.Second,
	)

	provider := translate.NewGoogleTranslator(
		cfg.Translate.Endpoint,
		time.Duration(cfg.Translate.TimeoutSeconds)*time.Second,
	)
	translator := translate.WithRetry(
		provider,
		cfg.Translate.RetryAttempts,
		time.Duration(cfg.Translate.RetryDelayMS)*time.Millisecond,
		logger,
	)

	meanings := meaning.NewService("", time.Duration(cfg.Translate.TimeoutSeconds)*time.Second, translator, logger)
	extractor := extract.NewExtractor(cfg.Languages)
	offlineTr := offline.NewTranslator(validated, logger)

	chatSvc := chat.NewService(translator, offlineTr, prober, extractor, pending, validated, logger)
	p := pipeline.New(pending, validated, index, translator, meanings, cfg.Sync.MaxConcurrent, logger)
	sched := scheduler.New(p, prober, time.Duration(cfg.Sync.IntervalSeconds)*time.Second, logger)

	return &Components{
		Pending:   pending,
		Validated: validated,
		Index:     index,
		Extractor: extractor,
		Prober:    prober,
		Chat:      chatSvc,
		Pipeline:  p,
		Scheduler: sched,
	}, nil
}

func printUsage() {
	fmt.Println(`shabd - word lifecycle manager for multilingual transcription

Usage:
  shabd server [flags]    Start the HTTP server
  shabd sync [flags]      Run one reconciliation pass over the pending backlog
  shabd status [flags]    Show pending/validated counts and connectivity
  shabd version           Show version
  shabd help              Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/shabd/config.yaml)
  --debug            Enable debug logging

Sync/Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.

Examples:
  shabd server
  shabd sync
  shabd status
  shabd status --server ""`)
}
