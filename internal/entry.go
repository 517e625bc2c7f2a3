// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/logpub/internal/api"
	"github.com/starford/logpub/internal/graph"
	"github.com/starford/logpub/internal/manifest"
	"github.com/starford/logpub/internal/mcpserver"
	"github.com/starford/logpub/internal/publish"
	"github.com/starford/logpub/internal/slug"
	"github.com/starford/logpub/internal/sse"
	"github.com/starford/logpub/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// site bundles the exporter with the manifest it records runs in.
type site struct {
	exporter *publish.Exporter
	db       *manifest.DB
	events   *sse.Broker
	logger   *slog.Logger
}

func newSite(cfg *Config, logger *slog.Logger) (*site, error) {
	src, err := storage.NewFS(cfg.Graph.Path)
	if err != nil {
		return nil, fmt.Errorf("init graph storage: %w", err)
	}
	out, err := storage.EnsureFS(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	s := &site{logger: logger}
	opts := publish.Options{
		Graph:         src,
		Output:        out,
		Slugger:       slug.New(cfg.Publish.Tag()),
		NotesURL:      cfg.Publish.NotesURL,
		MaxEmbedDepth: cfg.Publish.MaxEmbedDepth,
		Logger:        logger,
	}
	if cfg.Manifest.Path != "" {
		db, err := manifest.Open(cfg.Manifest.Path)
		if err != nil {
			return nil, fmt.Errorf("init manifest: %w", err)
		}
		s.db = db
		opts.Manifest = db
	}
	s.exporter = publish.NewExporter(opts)
	return s, nil
}

func (s *site) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// export runs one export, records it and announces it to preview clients.
func (s *site) export(ctx context.Context) error {
	res, err := s.exporter.Export(ctx)
	sum := sse.ExportSummary{}
	if res != nil {
		sum.Written = len(res.Written)
		sum.Pruned = len(res.Pruned)
	}
	if err != nil {
		sum.Failed = countErrors(err)
		sum.Error = err.Error()
	}
	if s.db != nil && res != nil {
		run := manifest.Run{
			FinishedAt: time.Now().UTC(),
			Written:    sum.Written,
			Pruned:     sum.Pruned,
			Failed:     sum.Failed,
		}
		if rerr := s.db.RecordRun(ctx, run); rerr != nil {
			s.logger.Warn("record run failed", slog.String("error", rerr.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishExport(sum)
	}
	return err
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

// Run exports the graph once and, with WithWatch or WithServe, keeps
// re-exporting on changes until a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("graph_path", cfg.Graph.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("manifest_path", cfg.Manifest.Path),
		slog.String("notes_url", cfg.Publish.NotesURL),
		slog.Bool("watch", app.watch),
		slog.Bool("serve", app.serve),
		slog.String("log_level", cfg.App.LogLevel.String()))

	s, err := newSite(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if !app.watch {
		return s.export(ctx)
	}

	var httpServer *http.Server
	if app.serve {
		// SSE broker.
		s.events = sse.NewBroker(2 * time.Second)
		defer s.events.Close()

		opts := api.RouterOptions{
			NotesURL: cfg.Publish.NotesURL,
			Token:    cfg.App.HTTP.Token,
			Events:   s.events,
		}
		if s.db != nil {
			opts.Runs = s.db
		}
		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: api.NewRouter(s.exporter, opts),
		}
	}

	if err := s.export(ctx); err != nil {
		logger.Warn("initial export failed", slog.String("error", err.Error()))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// Re-export on graph changes.
	g.Go(func() error {
		err := graph.Watch(gCtx, cfg.Graph.Path, cfg.Watch.Debounce, logger, func(ctx context.Context) {
			if err := s.export(ctx); err != nil {
				logger.Warn("export failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return fmt.Errorf("graph watcher: %w", err)
		}
		return nil
	})

	// Start HTTP server.
	if httpServer != nil {
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		cancel()

		if httpServer != nil {
			logger.Info("Shutting down server...")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr so they do not
// corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)

	s, err := newSite(app.config, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.exporter.Build(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(s.exporter, app.version).ServeStdio()
}
