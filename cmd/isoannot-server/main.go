// Command isoannot-server provides a REST API for tail localization and
// boundary annotation.
//
// Usage:
//
//	isoannot-server [flags]
//
// Flags:
//
//	--listen    Address to listen on (default: :8080)
//	--gtf       Reference annotation; enables the boundary endpoints
//	--fasta     Reference genome; enables sequence-dependent fields
//	--config    YAML configuration file
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aria-lang/isoannot-go/api/handlers"
	"github.com/aria-lang/isoannot-go/api/middleware"
	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/config"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/logging"
	"github.com/aria-lang/isoannot-go/internal/metrics"
	"github.com/aria-lang/isoannot-go/internal/sitecache"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type serverFlags struct {
	configPath string
	gtf, fasta string
}

func newRootCmd() *cobra.Command {
	var f serverFlags
	v := config.New()
	d := config.Default()

	cmd := &cobra.Command{
		Use:           "isoannot-server",
		Short:         "REST API for tail localization and boundary annotation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, f.configPath)
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)

			bh, cleanup, err := loadBoundary(cfg, f, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			return serve(cmd.Context(), cfg.Listen, newRouter(logger, m, reg, bh), logger)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fl.StringVar(&f.gtf, "gtf", "", "Reference annotation in GTF")
	fl.StringVar(&f.fasta, "fasta", "", "Reference genome FASTA")
	fl.String("listen", d.Listen, "Address to listen on")
	fl.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fl.Int("upstream-len", d.UpstreamRegionLen, "Genomic window after the read end checked for A content")
	fl.String("redis-addr", d.RedisAddr, "Redis address for a shared splice-site cache")
	for name, key := range map[string]string{
		"listen":       config.KeyListen,
		"log-level":    config.KeyLogLevel,
		"upstream-len": config.KeyUpstreamRegionLen,
		"redis-addr":   config.KeyRedisAddr,
	} {
		if err := v.BindPFlag(key, fl.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// loadBoundary loads the reference model. It returns a nil handler when
// no GTF is configured.
func loadBoundary(cfg *config.Config, f serverFlags, logger *slog.Logger) (*handlers.Boundary, func() error, error) {
	noop := func() error { return nil }
	if f.gtf == "" {
		return nil, noop, nil
	}

	model, err := genemodel.LoadGTFFile(f.gtf)
	if err != nil {
		return nil, noop, err
	}
	logger.Info("model loaded", "genes", len(model.Genes()), "transcripts", model.TranscriptCount())

	bh := &handlers.Boundary{
		Model: model,
		Annotator: boundary.NewAnnotator(model,
			boundary.WithUpstreamRegionLen(cfg.UpstreamRegionLen),
			boundary.WithLogger(logger)),
	}
	if f.fasta == "" {
		return bh, noop, nil
	}

	contigs, err := genemodel.LoadFASTAFile(f.fasta)
	if err != nil {
		return nil, noop, err
	}

	var newCache func(*genemodel.GeneRegion) sitecache.Cache
	cleanup := noop
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		newCache = func(r *genemodel.GeneRegion) sitecache.Cache {
			return sitecache.NewRedis(client, r.Key(), sitecache.WithRedisLogger(logger))
		}
		cleanup = client.Close
		logger.Info("using redis site cache", "addr", cfg.RedisAddr)
	}
	bh.Regions = genemodel.NewRegions(model, contigs, cfg.UpstreamRegionLen+1, newCache)
	return bh, cleanup, nil
}

func newRouter(logger *slog.Logger, m *metrics.Metrics, reg *prometheus.Registry, bh *handlers.Boundary) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/polya", func(r chi.Router) {
			r.Post("/scan", handlers.PolyAScanHandler)
			r.Post("/tail", handlers.PolyATailHandler)
		})

		if bh == nil {
			return
		}
		r.Route("/boundary", func(r chi.Router) {
			r.Post("/annotate", bh.AnnotateHandler)
			r.Post("/stats", bh.StatsHandler)
		})
		r.Get("/genes/{id}", bh.GeneHandler)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(homePage))
	})
	return r
}

// serve runs srv until ctx is done or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server.SetKeepAlivesEnabled(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>isoannot API</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
        h1 { color: #2563eb; }
        pre { background: #f3f4f6; padding: 1rem; border-radius: 0.5rem; overflow-x: auto; }
        .endpoint { margin: 1rem 0; padding: 1rem; border: 1px solid #e5e7eb; border-radius: 0.5rem; }
        .method { display: inline-block; padding: 0.25rem 0.5rem; background: #10b981; color: white; border-radius: 0.25rem; font-size: 0.875rem; }
    </style>
</head>
<body>
    <h1>isoannot API</h1>
    <p>Poly(A) tail localization and isoform boundary annotation for long reads.</p>

    <h2>Endpoints</h2>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/polya/scan</code>
        <p>Find the first poly(A) window in a sequence.</p>
        <pre>{"sequence": "CCCCAAAAAAAAAAAAAAAAAAAA", "window_size": 20, "min_fraction": 0.8}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/polya/tail</code>
        <p>Locate the poly(A) tail and poly(T) head of an alignment.</p>
        <pre>{"name": "read1", "sequence": "...", "cigar": "1200M35S", "start": 10432}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/boundary/annotate</code>
        <p>Annotate a read's boundaries against its assigned transcript.</p>
        <pre>{"read_id": "r1", "transcript_id": "T1", "exons": [{"start": 1051, "end": 1200}, {"start": 1501, "end": 1950}]}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/boundary/stats</code>
        <p>Summarize a batch of reads.</p>
        <pre>{"reads": [...], "hist_bins": 10}</pre>
    </div>

    <div class="endpoint">
        <span class="method">GET</span> <code>/api/genes/{id}</code>
        <p>Show a gene and its transcripts.</p>
    </div>
</body>
</html>`
