package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskgate/taskgate/internal/adapter/boardapi"
	tgcache "github.com/taskgate/taskgate/internal/adapter/cache"
	tghttp "github.com/taskgate/taskgate/internal/adapter/http"
	"github.com/taskgate/taskgate/internal/adapter/mcp"
	tgnats "github.com/taskgate/taskgate/internal/adapter/nats"
	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/adapter/postgres"
	"github.com/taskgate/taskgate/internal/adapter/trackerapi"
	"github.com/taskgate/taskgate/internal/adapter/ws"
	"github.com/taskgate/taskgate/internal/config"
	"github.com/taskgate/taskgate/internal/logger"
	"github.com/taskgate/taskgate/internal/middleware"
	"github.com/taskgate/taskgate/internal/outbound"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/cache"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
	"github.com/taskgate/taskgate/internal/port/syncstore"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
	"github.com/taskgate/taskgate/internal/resilience"
	"github.com/taskgate/taskgate/internal/secrets"
	"github.com/taskgate/taskgate/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	// Credentials resolve through the vault, not the plain env overlay;
	// the config loader leaves secret fields alone.
	vault, err := secrets.NewVault(secrets.EnvLoader(
		secrets.KeyBoardToken,
		secrets.KeyTrackerToken,
		secrets.KeyWebhookSecret,
		secrets.KeyMCPAPIKey,
	))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	cfg.ApplySecrets(vault.Get)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"board_configured", cfg.Board.Configured(),
		"tracker_configured", cfg.Tracker.Configured(),
		"board_token", vault.Redacted(secrets.KeyBoardToken),
		"tracker_token", vault.Redacted(secrets.KeyTrackerToken),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	otelShutdown, err := tgotel.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Logging.Service, cfg.MCP.Version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown", "error", err)
		}
	}()

	metrics, err := tgotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Persistence ---
	// A dead database is a degraded start, not a failed one: the status
	// reporter renders the sync section as unavailable and everything
	// else keeps working.
	var store syncstore.Store
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("postgres unavailable, sync records disabled", "error", err)
	} else {
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		store = postgres.NewStore(pool)
		slog.Info("postgres connected")
	}

	// --- Events ---
	var queue *tgnats.Queue
	if cfg.NATS.URL != "" {
		queue, err = tgnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			slog.Error("nats unavailable, events disabled", "error", err)
			queue = nil
		} else {
			defer func() {
				if err := queue.Drain(); err != nil {
					slog.Error("nats drain", "error", err)
				}
			}()
		}
	}

	// --- Knowledge cache ---
	knowledgeCache := buildCache(ctx, cfg.Cache, queue)

	// --- External clients ---
	gate := service.NewGate(cfg)

	var board boardclient.Client
	if gate.SourceAvailable() {
		board = boardapi.NewClient(boardapi.Options{
			BaseURL:   cfg.Board.BaseURL,
			Token:     cfg.Board.Token,
			ProjectID: cfg.Board.ProjectID,
			Timeout:   cfg.Board.Timeout,
			Breaker:   resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
		})
	}

	var tracker trackerclient.Client
	if gate.MirrorAvailable() {
		tracker = trackerapi.NewClient(trackerapi.Options{
			BaseURL: cfg.Tracker.BaseURL,
			Token:   cfg.Tracker.Token,
			Owner:   cfg.Tracker.Owner,
			Repo:    cfg.Tracker.Repo,
			Timeout: cfg.Tracker.Timeout,
			Breaker: resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
			Pool:    outbound.NewPool(cfg.Outbound.MaxConcurrent),
		})
	}

	// --- Services ---
	hub := ws.NewHub()

	events := queuePort(queue)
	reconciler := service.NewReconciler(board, tracker, store, cfg.Sync.PageSize)
	syncSvc := service.NewSyncService(board, tracker, reconciler, events, hub, metrics, cfg.Sync.PageSize)
	statusSvc := service.NewStatusService(board, tracker, store)
	orch := service.NewOrchestrator(board, tracker, events, hub)
	boardSvc := service.NewBoardService(board, events, knowledgeCache, cfg.Cache.TTL)
	trackerSvc := service.NewTrackerService(tracker)
	webhookSvc := service.NewWebhookService(syncSvc, events)

	if queue != nil {
		stopBridge, err := hub.BridgeQueue(ctx, queue)
		if err != nil {
			slog.Error("ws bridge", "error", err)
		} else {
			defer stopBridge()
		}
	}

	// --- Bolt loop ---
	if cfg.Bolt.Enabled {
		bolt := service.NewBoltRunner(orch, syncSvc, gate, cfg.Bolt.Interval)
		stopBolt := bolt.Start(ctx)
		defer stopBolt()
	}

	// --- MCP server ---
	mcpDeps := mcp.ServerDeps{
		Gate:         gate,
		Orchestrator: orch,
		Status:       statusSvc,
		Metrics:      metrics,
	}
	if gate.SourceAvailable() {
		mcpDeps.Board = boardSvc
	}
	if gate.MirrorAvailable() {
		mcpDeps.Tracker = trackerSvc
	}
	if gate.SyncAvailable() {
		mcpDeps.Syncer = syncSvc
	}
	if store != nil {
		mcpDeps.Records = store
	}
	mcpServer := mcp.NewServer(mcp.ServerConfig{
		Addr:    cfg.MCP.Addr,
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
		APIKey:  cfg.MCP.APIKey,
	}, mcpDeps)
	if err := mcpServer.Start(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mcpServer.Stop(shutdownCtx); err != nil {
			slog.Error("mcp shutdown", "error", err)
		}
	}()

	// --- Ops HTTP ---
	handlers := &tghttp.Handlers{
		Board:        boardSvc,
		Tracker:      trackerSvc,
		Sync:         syncSvc,
		Orchestrator: orch,
		Status:       statusSvc,
		Webhook:      webhookSvc,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst).
		Exempt("/health", "/ws")
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(tghttp.CORS(cfg.Server.CORSOrigin))
	r.Use(tghttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(tghttp.Logger)
	r.Use(tgotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(limiter.Handler)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", healthHandler(gate, store, queue))
	r.Get("/ws", hub.HandleWS)
	tghttp.MountRoutes(r, handlers, gate, cfg.Webhook)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildCache assembles the knowledge cache: ristretto in-process L1,
// optionally layered over a NATS KV L2 when the queue is up. Any failure
// degrades to the next simpler arrangement.
func buildCache(ctx context.Context, cfg config.Cache, queue *tgnats.Queue) cache.Cache {
	l1, err := tgcache.NewMemory(cfg.L1MaxSizeMB << 20)
	if err != nil {
		slog.Error("l1 cache disabled", "error", err)
		return nil
	}
	if queue == nil {
		return l1
	}
	kv, err := queue.KeyValue(ctx, cfg.L2Bucket, cfg.TTL)
	if err != nil {
		slog.Error("l2 cache disabled", "error", err)
		return l1
	}
	return tgcache.NewTiered(l1, tgcache.NewKV(kv), cfg.L1Expire)
}

// healthHandler reports liveness plus the configured state of each
// dependency. It always answers 200: degraded dependencies are data,
// not an outage of the gateway itself.
func healthHandler(gate *service.Gate, store syncstore.Store, queue *tgnats.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			Status   string `json:"status"`
			Board    bool   `json:"board_configured"`
			Tracker  bool   `json:"tracker_configured"`
			Postgres string `json:"postgres"`
			NATS     string `json:"nats"`
		}{
			Status:   "ok",
			Board:    gate.SourceAvailable(),
			Tracker:  gate.MirrorAvailable(),
			Postgres: "unavailable",
			NATS:     "disabled",
		}
		if store != nil {
			status.Postgres = "ok"
			if err := store.Ping(r.Context()); err != nil {
				status.Postgres = "unreachable"
			}
		}
		if queue != nil {
			status.NATS = "ok"
			if !queue.IsConnected() {
				status.NATS = "disconnected"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			slog.Error("write health response", "error", err)
		}
	}
}

// queuePort converts the concrete queue to its port type without smuggling
// a typed nil into the interface.
func queuePort(q *tgnats.Queue) messagequeue.Queue {
	if q == nil {
		return nil
	}
	return q
}
