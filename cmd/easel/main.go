// Command easel runs the drawing-agent canvas client: it consumes the
// server's event stream, maintains the reducer-owned canvas state, paces
// the staging pipeline, and animates fetched stroke batches. A local HTTP
// endpoint exposes metrics and a state snapshot for debugging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/easel/pkg/canvas"
	"github.com/odvcencio/easel/pkg/canvas/batch"
	"github.com/odvcencio/easel/pkg/config"
	"github.com/odvcencio/easel/pkg/observability"
	"github.com/odvcencio/easel/pkg/telemetry"
	"github.com/odvcencio/easel/pkg/transport"
)

// Version information - set via ldflags during build
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("easel %s (%s)\n", version, commit)
		return
	}

	if err := run(configPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "easel: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger("easel", logLevel(cfg.Debug.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer := telemetry.NewService()
	if cfg.Telemetry.Enabled {
		if err := tracer.Configure(ctx); err != nil {
			return fmt.Errorf("configure telemetry: %w", err)
		}
		defer tracer.Shutdown(context.Background())
	}

	// Core: reducer-owned state behind a single store.
	reducer := canvas.NewReducer(canvas.Limits{
		MaxWordsPerItem: cfg.Animation.MaxWordsPerItem,
		RevealChunkSize: cfg.Animation.RevealChunkSize,
	})

	// Pending stroke batches are signaled to the fetch loop through a
	// small buffered channel; the latest signal wins.
	ready := make(chan int, 1)
	store := canvas.NewStore(reducer, canvas.WithOnChange(func(s *canvas.State) {
		if s.Pending == nil {
			return
		}
		select {
		case ready <- s.Pending.BatchID:
		default:
		}
	}))

	router := canvas.NewRouter(store, logger)
	client := transport.NewClient(cfg.Server.URL, router, logger, tracer, cfg.Server.ReconnectDelay.Duration)
	logger = logger.WithSession(client.SessionID())

	performer := canvas.NewPerformer(store, store, canvas.PerformerConfig{
		RevealInterval: cfg.Animation.RevealInterval.Duration,
		PointInterval:  cfg.Animation.PointInterval.Duration,
	})

	fetcher := transport.NewStrokeFetcher(cfg.Server.StrokeBaseURL, cfg.Server.FetchTimeout.Duration)
	renderer := batch.NewRenderer(
		fetcher.Fetch,
		store,
		batch.IntervalClock{Interval: cfg.Animation.PointInterval.Duration},
		logger,
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return client.Run(ctx) })
	group.Go(func() error { return performer.Run(ctx) })
	group.Go(func() error {
		return fetchLoop(ctx, ready, renderer, store, cfg.Server.FetchRetryDelay.Duration, logger)
	})
	if cfg.Debug.ListenAddr != "" {
		group.Go(func() error { return serveDebug(ctx, cfg.Debug.ListenAddr, store, logger) })
	}

	logger.Info("easel client started",
		slog.String("server", cfg.Server.URL),
		slog.String("version", version),
	)
	defer renderer.Stop()

	return group.Wait()
}

// fetchLoop turns pending-stroke signals into batch fetches, retrying a
// failed batch id after the configured delay. The renderer's batch-id
// watermark deduplicates repeated signals.
func fetchLoop(ctx context.Context, ready <-chan int, renderer *batch.Renderer, store *canvas.Store, retryDelay time.Duration, logger *observability.Logger) error {
	if retryDelay <= 0 {
		retryDelay = config.DefaultFetchRetryDelay
	}
	for {
		var batchID int
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batchID = <-ready:
		}

		for {
			_, err := renderer.HandleStrokesReady(ctx, batchID)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithBatch(batchID).Warn("stroke batch fetch failed, retrying",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", retryDelay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			// A newer signal supersedes the retry.
			if s := store.State(); s.Pending == nil || s.Pending.BatchID != batchID {
				break
			}
		}
	}
}

// serveDebug exposes metrics, health, and a live state snapshot.
func serveDebug(ctx context.Context, addr string, store *canvas.Store, logger *observability.Logger) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/debug/state", func(w http.ResponseWriter, _ *http.Request) {
		s := store.State()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":         canvas.DeriveAgentStatus(s),
			"piece_number":   s.PieceNumber,
			"stroke_count":   len(s.Strokes),
			"message_count":  len(s.Messages),
			"paused":         s.Paused,
			"pending":        s.Pending,
			"buffer_depth":   len(s.Performance.Buffer),
			"on_stage":       s.Performance.OnStage != nil,
			"revealed_text":  s.Performance.RevealedText,
			"idle_animation": canvas.ShouldShowIdleAnimation(s),
		})
	})

	server := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("debug endpoint listening", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
