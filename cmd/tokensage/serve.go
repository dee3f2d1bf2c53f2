package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tokensage/tokensage/internal/config"
	"github.com/tokensage/tokensage/internal/contextstore"
	"github.com/tokensage/tokensage/internal/httpapi"
	"github.com/tokensage/tokensage/pkg/models"
)

var serveListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the query pipeline over HTTP:

  POST /api/query   {"input": "..."}  -> routed result
  POST /api/reset                     -> clears the context window
  GET  /api/context                   -> current window and metadata
  GET  /health                        -> liveness check

The user config file is watched; edits are applied by rebuilding the
pipeline in place, preserving the conversation context.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address (overrides config)")
}

// switchable lets the serve loop swap the orchestrator under a running
// HTTP handler when configuration changes.
type switchable struct {
	v atomic.Pointer[app]
}

func (s *switchable) HandleQuery(ctx context.Context, input string) *models.Result {
	return s.v.Load().orch.HandleQuery(ctx, input)
}

func (s *switchable) Reset() { s.v.Load().orch.Reset() }

func (s *switchable) Context() contextstore.Snapshot { return s.v.Load().orch.Context() }

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveListenAddr != "" {
		cfg.Server.ListenAddr = serveListenAddr
	}

	a, err := buildApp(cfg, nil)
	if err != nil {
		return err
	}

	// The switchable is the single owner of the active app: the watcher
	// swaps it and closes the app it replaced, and shutdown closes
	// whatever it holds last, after the watcher has stopped.
	sw := &switchable{}
	sw.v.Store(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		watchConfig(ctx, sw)
	}()

	err = httpapi.Serve(ctx, cfg.Server.ListenAddr, httpapi.NewHandler(sw))
	stop()
	<-watchDone
	sw.v.Load().Close()
	return err
}

// watchConfig rebuilds the pipeline when the user config file changes.
// The context store is carried over so the conversation survives the
// swap. A broken config keeps the previous pipeline running.
func watchConfig(ctx context.Context, sw *switchable) {
	configPath := config.GetUserConfigPath()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[serve] config watch unavailable: %v", err)
		return
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		log.Printf("[serve] config watch unavailable: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != configPath || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Printf("[serve] config changed, rebuilding")

			cfg, err := config.Load()
			if err != nil {
				log.Printf("[serve] reload failed, keeping previous config: %v", err)
				continue
			}

			old := sw.v.Load()
			next, err := buildApp(cfg, old.store)
			if err != nil {
				log.Printf("[serve] rebuild failed, keeping previous config: %v", err)
				continue
			}
			sw.v.Store(next)
			old.Close()
			log.Printf("[serve] config applied")

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[serve] config watch error: %v", err)
		}
	}
}
