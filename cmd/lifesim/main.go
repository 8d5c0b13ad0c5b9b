// Command lifesim runs the chat life-simulator core.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/chatlife/internal/api"
	"github.com/talgya/chatlife/internal/config"
	"github.com/talgya/chatlife/internal/entropy"
	"github.com/talgya/chatlife/internal/ledger"
	"github.com/talgya/chatlife/internal/scheduler"
	"github.com/talgya/chatlife/internal/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("chatlife — chat life simulator core")

	cfgPath := envOr("CHATLIFE_CONFIG", "chatlife.yaml")
	dbPath := envOr("CHATLIFE_DB", "data/chatlife.db")
	apiPort := 8080
	if v := os.Getenv("CHATLIFE_API_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			apiPort = p
		}
	}

	// ── Configuration ─────────────────────────────────────────────────
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded", "path", cfgPath,
		"quiz_interval", cfg.Game.QuizInterval,
		"salary_interval", cfg.Game.SalaryInterval,
	)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		slog.Error("failed to create database directory", "path", dbPath, "error", err)
		os.Exit(1)
	}
	led, err := ledger.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer led.Close()
	led.StartBalance = cfg.Game.StartBalance
	slog.Info("database opened", "path", dbPath)

	// ── Simulation core ───────────────────────────────────────────────
	core := sim.New(led, cfg, entropy.NewCrypto())

	sched := scheduler.New(func(chatID int64, kind scheduler.TaskKind) {
		note, err := core.OnTick(chatID, kind)
		if err != nil {
			// Best-effort continuation: the chat keeps its future ticks.
			slog.Error("tick failed", "chat", chatID, "task", kind, "error", err)
			return
		}
		if note != nil {
			// The chat transport picks notifications up from here.
			slog.Info("notification", "chat", chatID, "task", kind,
				"affected", len(note.Affected), "text", note.Text)
		}
	}, core.TaskSpecs())

	// Re-schedule every chat that already has members.
	chats, err := led.Chats()
	if err != nil {
		slog.Error("failed to list chats", "error", err)
		os.Exit(1)
	}
	for _, chatID := range chats {
		sched.AddChat(chatID)
	}
	slog.Info("scheduler ready", "chats", len(chats))

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{Core: core, Sched: sched, Port: apiPort}
	apiServer.Start()

	// ── Run until signalled ───────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("chatlife is running: %d chats scheduled.\n", len(chats))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)

	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	sched.Stop()
	slog.Info("scheduler stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
