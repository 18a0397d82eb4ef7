// ABOUTME: CLI entrypoint for the pagesmith editor server.
// ABOUTME: Wires config, the LLM client, the mutation pipeline, persistence, and the HTTP server.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/2389-research/pagesmith/editor"
	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/pipeline"
)

var version = "dev"

func main() {
	loadDotEnv(".env")

	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("pagesmith %s\n", version)
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	cfg, err := editor.ConfigFromEnv()
	if err != nil {
		log.Printf("component=main action=config_failed err=%v", err)
		return 1
	}

	var clientOpts []llm.ClientOption
	if cfg.DefaultProvider != "" {
		clientOpts = append(clientOpts, llm.WithDefaultProvider(cfg.DefaultProvider))
	}
	client, err := llm.FromEnv(clientOpts...)
	if err != nil {
		log.Printf("component=main action=llm_client_failed err=%v", err)
		return 1
	}
	defer client.Close()

	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		log.Printf("component=main action=home_dir_failed path=%s err=%v", cfg.Home, err)
		return 1
	}

	convLog, err := editor.OpenConversationLog(filepath.Join(cfg.Home, "pagesmith.db"))
	if err != nil {
		log.Printf("component=main action=sqlite_open_failed err=%v", err)
		return 1
	}
	defer func() { _ = convLog.Close() }()

	store := editor.NewStore(cfg.MaxSessions, cfg.SessionTTL)
	stopCleanup := store.StartCleanup(5 * time.Minute)
	defer stopCleanup()

	pipe := pipeline.New(client)

	srv := editor.NewServer(store, pipe,
		editor.WithConversationLog(convLog),
		editor.WithAuthToken(cfg.AuthToken),
		editor.WithDefaultModel(cfg.DefaultModel),
	)

	httpServer := &http.Server{
		Addr:              cfg.Bind,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("component=main action=listening bind=%s version=%s", cfg.Bind, version)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("component=main action=serve_failed err=%v", err)
			return 1
		}
	case sig := <-sigCh:
		log.Printf("component=main action=shutdown signal=%s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("component=main action=shutdown_failed err=%v", err)
			return 1
		}
	}

	return 0
}
