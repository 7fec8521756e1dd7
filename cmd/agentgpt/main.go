package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentgpt/agentgpt/internal/bus"
	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/simulator"
	"github.com/agentgpt/agentgpt/internal/state"
	"github.com/agentgpt/agentgpt/internal/store"
	"github.com/agentgpt/agentgpt/internal/vault"
	"github.com/agentgpt/agentgpt/internal/web"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("agentgpt %s\n", version)
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("serve failed", "error", err)
			os.Exit(1)
		}
	case "backup":
		if err := runBackup(os.Args[2:]); err != nil {
			slog.Error("backup failed", "error", err)
			os.Exit(1)
		}
	case "restore":
		if err := runRestore(os.Args[2:]); err != nil {
			slog.Error("restore failed", "error", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: agentgpt <command>

Commands:
  serve      Start the AgentGPT gateway
  backup     Archive the data directory (tar.zst)
  restore    Restore a data directory archive
  version    Print version
`)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("starting agentgpt gateway", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// API keys are encrypted at rest when a passphrase is configured
	var v *vault.Vault
	if cfg.Vault.Passphrase != "" {
		v = vault.New(cfg.Vault.Passphrase)
	} else {
		slog.Warn("vault passphrase not set, api keys stored in the clear")
	}

	// SQLite store
	db, err := store.New(cfg.Store, v)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()
	slog.Info("store initialized", "path", cfg.Store.Path)

	// Embedded NATS event bus
	b, err := bus.New(cfg.NATS)
	if err != nil {
		return fmt.Errorf("init nats: %w", err)
	}
	defer b.Close()
	slog.Info("nats started", "port", cfg.NATS.Port)

	client, err := bus.NewClient(b)
	if err != nil {
		return fmt.Errorf("init nats client: %w", err)
	}
	defer client.Close()

	// State container, restored from the persisted subset
	st := state.New(db, client)
	agent, ok, err := db.LoadCurrentAgent()
	if err != nil {
		return fmt.Errorf("restore agent: %w", err)
	}
	saved, err := db.ListSavedAgents()
	if err != nil {
		return fmt.Errorf("restore saved agents: %w", err)
	}
	if !ok {
		agent = state.DefaultAgentConfig()
	}
	st.Restore(agent, saved)
	slog.Info("state restored", "agent", agent.Name, "saved_agents", len(saved))

	// Task simulator
	runner := simulator.New(st, cfg.Simulator)
	runner.OnDone = func() {
		_ = client.PublishEvent(bus.TopicExecutionDone, "execution_done", nil)
	}

	// Web API + dashboard WebSocket
	srv := web.NewServer(st, runner, b, cfg.Web, version)
	go func() {
		if err := srv.Start(ctx); err != nil {
			slog.Error("web server error", "error", err)
		}
	}()
	slog.Info("web server started", "port", cfg.Web.Port)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig)

	runner.Stop()
	cancel()
	return nil
}
