// Command browseagentd is the long-running daemon: it serves the §6.1 MCP
// tool surface and the §6.2 REST surface over HTTP, runs the §4.6 stream
// consumer loop per active session, and hosts the Knowledge Extraction
// Workflow orchestrator. Flag/env wiring follows joestump-claude-ops's
// cmd/claudeops main.go (cobra flags bound into viper, BROWSE_ env prefix).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/config"
	"github.com/10xr-agents/browse-automation-service/internal/eventbus"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest/doc"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest/site"
	knowledgestore "github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
	mcpserver "github.com/10xr-agents/browse-automation-service/internal/server/mcp"
	restserver "github.com/10xr-agents/browse-automation-service/internal/server/rest"
	"github.com/10xr-agents/browse-automation-service/internal/session"
	"github.com/10xr-agents/browse-automation-service/internal/state"
	"github.com/10xr-agents/browse-automation-service/internal/stream"
	streamstore "github.com/10xr-agents/browse-automation-service/internal/stream/store"
	"github.com/10xr-agents/browse-automation-service/internal/upload"
	"github.com/10xr-agents/browse-automation-service/internal/util"
	"github.com/10xr-agents/browse-automation-service/internal/workflow"
	"github.com/10xr-agents/browse-automation-service/internal/workflow/temporalrt"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "browseagentd",
		Short: "Browse automation daemon: MCP/REST tool surface, stream consumers, knowledge workflow",
		RunE:  run,
	}

	f := rootCmd.Flags()
	f.String("mcp-listen-addr", ":8701", "listen address for the MCP tool-call surface")
	f.String("rest-listen-addr", ":8702", "listen address for the REST surface")
	f.String("eventbus-listen-addr", ":8703", "listen address for the websocket event bus")
	defaultStreamStorePath := "browseagent-streams.db"
	if path, err := state.StreamStoreFile(); err == nil {
		defaultStreamStorePath = path
	}
	f.String("stream-store-path", defaultStreamStorePath, "path to the SQLite command/state stream store")
	f.String("upload-dir", "", "if set, upload_file is restricted to paths under this directory")
	f.StringSlice("upload-deny-pattern", nil, "additional glob patterns upload_file paths must not match")
	f.Int("stream-max-len", 10000, "max entries retained per stream before Trim")
	f.Int("stream-idle-ttl-ms", 3600000, "idle TTL in ms before a stream entry is eligible for Trim")
	f.Int("dedup-ttl-ms", 300000, "dedup cache TTL in ms (§3.1/§3.2, default 5m)")
	f.String("knowledge-dsn", "", "Postgres DSN for the knowledge document store")
	f.String("temporal-host-port", "", "Temporal frontend host:port; empty disables the Temporal-backed WorkflowRuntime")
	f.String("temporal-task-queue", "browse-automation", "Temporal task queue name")
	f.Int("action-default-timeout-ms", 10000, "default execute_action timeout in ms")
	f.Bool("verify-enabled", false, "enable the feature-flagged knowledge verification phase")

	bind := func(key, flagName string) { _ = viper.BindPFlag(key, f.Lookup(flagName)) }
	bind("mcp_listen_addr", "mcp-listen-addr")
	bind("rest_listen_addr", "rest-listen-addr")
	bind("eventbus_listen_addr", "eventbus-listen-addr")
	bind("stream_store_path", "stream-store-path")
	bind("upload_dir", "upload-dir")
	bind("upload_deny_pattern", "upload-deny-pattern")
	bind("stream_max_len", "stream-max-len")
	bind("stream_idle_ttl_ms", "stream-idle-ttl-ms")
	bind("dedup_ttl_ms", "dedup-ttl-ms")
	bind("knowledge_dsn", "knowledge-dsn")
	bind("temporal_host_port", "temporal-host-port")
	bind("temporal_task_queue", "temporal-task-queue")
	bind("action_default_timeout_ms", "action-default-timeout-ms")
	bind("verify_enabled", "verify-enabled")

	viper.SetEnvPrefix("BROWSE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	streamStore, err := streamstore.Open(cfg.StreamStorePath)
	if err != nil {
		return fmt.Errorf("open stream store: %w", err)
	}
	defer streamStore.Close()

	var docs capability.DocStore
	var knowledge *knowledgestore.Store
	if cfg.KnowledgeDSN != "" {
		knowledge, err = knowledgestore.Open(context.Background(), cfg.KnowledgeDSN)
		if err != nil {
			return fmt.Errorf("open knowledge store: %w", err)
		}
		defer knowledge.Close()
		docs = knowledge
	} else {
		log.Warn("knowledge_dsn not set, knowledge tier and REST knowledge routes will return errors")
	}

	hub := eventbus.NewHub(log)

	publisher := stream.NewPublisher(streamStore, hub)

	sessions := session.NewManager(noDriverFactory, nil, func(ctx context.Context, handle action.SessionHandle, envelope action.Envelope, result action.Result) {
		_ = publisher.Publish(ctx, handle.RoomName(), envelope, result)
	}, log)

	dispatcher := action.NewDispatcher(func(ctx context.Context, handle action.SessionHandle, envelope action.Envelope, result action.Result) {
		_ = publisher.Publish(ctx, handle.RoomName(), envelope, result)
	})
	if cfg.UploadDir != "" {
		sec, err := upload.ValidateUploadDir(cfg.UploadDir, cfg.UploadDenyPatterns)
		if err != nil {
			return fmt.Errorf("validate upload-dir: %w", err)
		}
		dispatcher.SetUploadSecurity(sec)
	}

	consumer := stream.NewConsumer(streamStore, streamStore, dispatcher, func(roomName string) (action.SessionHandle, bool) {
		sess, ok := sessions.Get(roomName)
		if !ok {
			return nil, false
		}
		return sess, true
	}, publisher, "browseagentd-0", log)

	const consumerReadTimeout = 2 * time.Second
	var consumersMu sync.Mutex
	consumerCancels := map[string]context.CancelFunc{}
	sessions.SetLifecycleHooks(
		func(roomName string) {
			consumersMu.Lock()
			defer consumersMu.Unlock()
			if _, running := consumerCancels[roomName]; running {
				return
			}
			roomCtx, cancel := context.WithCancel(context.Background())
			consumerCancels[roomName] = cancel
			util.SafeGo(func() { consumer.Run(roomCtx, roomName, consumerReadTimeout) })
		},
		func(roomName string) {
			consumersMu.Lock()
			defer consumersMu.Unlock()
			if cancel, running := consumerCancels[roomName]; running {
				cancel()
				delete(consumerCancels, roomName)
			}
		},
	)

	var runtime capability.WorkflowRuntime
	if cfg.TemporalHostPort != "" {
		temporalClient, err := client.Dial(client.Options{HostPort: cfg.TemporalHostPort})
		if err != nil {
			return fmt.Errorf("dial temporal: %w", err)
		}
		defer temporalClient.Close()
		runtime = temporalrt.New(temporalClient, cfg.TemporalTaskQueue)
	}

	var ckpt workflow.CheckpointStore
	if knowledge != nil {
		ckpt = knowledge
	}
	orchestrator := workflow.NewOrchestrator(runtime, docs, ckpt, nil, nil)

	ingesters := map[string]ingest.Ingester{
		"documentation": doc.New(),
		"website":       site.New(http.DefaultClient),
	}

	mcpHandler := mcpserver.New(mcpserver.Deps{
		Sessions:     sessions,
		Dispatcher:   dispatcher,
		Docs:         docs,
		Orchestrator: orchestrator,
		Ingesters:    ingesters,
		Log:          log,
	})

	restHandler := restserver.New(restserver.Deps{
		Sessions:      sessions,
		Docs:          docs,
		Orchestrator:  orchestrator,
		Ingesters:     ingesters,
		StreamStore:   streamStore,
		VerifyEnabled: cfg.VerifyEnabled,
		Audit:         mcpHandler.Audit(),
		Log:           log,
	})

	if pidFile, err := state.PIDFile(restPort(cfg.RESTListenAddr)); err == nil {
		if werr := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); werr != nil {
			log.Warn("could not write pid file", "path", pidFile, "error", werr)
		} else {
			defer os.Remove(pidFile)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcpSrv := &http.Server{Addr: cfg.MCPListenAddr, Handler: mcpHandler}
	restSrv := &http.Server{Addr: cfg.RESTListenAddr, Handler: restHandler.Router()}
	eventSrv := &http.Server{Addr: cfg.EventBusAddr, Handler: http.HandlerFunc(hub.HandleWS)}

	go func() {
		log.Info("mcp surface listening", "addr", cfg.MCPListenAddr)
		if err := mcpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("mcp server error", "error", err)
		}
	}()
	go func() {
		log.Info("rest surface listening", "addr", cfg.RESTListenAddr)
		if err := restSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("rest server error", "error", err)
		}
	}()
	go func() {
		log.Info("eventbus listening", "addr", cfg.EventBusAddr)
		if err := eventSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("eventbus server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	log.Info("shutting down")
	cancel()
	_ = mcpSrv.Shutdown(context.Background())
	_ = restSrv.Shutdown(context.Background())
	_ = eventSrv.Shutdown(context.Background())
	return nil
}

// restPort extracts the numeric port from a ":8702"-style listen address,
// for the §"Runtime artifacts" PID file name (state.PIDFile(port)).
func restPort(addr string) int {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return 0
	}
	port := 0
	for _, r := range addr[idx+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		port = port*10 + int(r-'0')
	}
	return port
}

// noDriverFactory is the default session.DriverFactory: no concrete
// BrowserDriver implementation ships in this repo (CDP/Playwright wiring is
// a genuinely external capability per spec.md's External Interfaces), so
// every StartSession call fails until an operator builds and links one in.
func noDriverFactory(ctx context.Context, cfg session.StartConfig) (capability.BrowserDriver, error) {
	return nil, fmt.Errorf("no BrowserDriver implementation configured")
}
