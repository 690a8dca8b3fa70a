package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fornace/kitchen-panel/internal/dashboard"
	"github.com/fornace/kitchen-panel/internal/handler"
	"github.com/fornace/kitchen-panel/internal/orderstore"
	"github.com/fornace/kitchen-panel/internal/printer"
	"github.com/fornace/kitchen-panel/pkg/health"
	"github.com/fornace/kitchen-panel/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and background
// workers, and handles graceful shutdown. It is the single wiring point for
// the panel.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store_url", cfg.StoreURL),
	)

	// Order store client. Interactive requests carry the caller's token
	// via context; background workers fall back to the service token.
	store, err := orderstore.New(cfg.StoreURL, func(ctx context.Context) string {
		if tok := handler.TokenFromContext(ctx); tok != "" {
			return tok
		}
		return cfg.StoreToken
	})
	if err != nil {
		return errors.Wrap(err, "create store client")
	}

	ctrl := dashboard.NewController(store)
	watcher := dashboard.NewWatcher(store, cfg.PollInterval, lg.Named("watcher"), nil)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Print journal: optional, enabled by database configuration.
	var spooler *printer.Spooler
	if cfg.DatabaseURL != "" {
		pool, perr := printer.NewPool(ctx, cfg.DatabaseURL)
		if perr != nil {
			return errors.Wrap(perr, "create journal pool")
		}
		defer pool.Close()

		if err := printer.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		spooler = printer.NewSpooler(printer.NewJournal(pool), lg.Named("spooler"), cfg.PrintQueueDepth)
	} else {
		lg.Info("print journal disabled, no database configured")
	}

	// Panel routes behind the role gate.
	h := handler.NewHandler(ctrl, enqueuer(spooler))
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(handler.Auth([]byte(cfg.JWTSecret), store))
		h.Routes(r)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(mux,
				httpmiddleware.Recovery(),
				httpmiddleware.CORS(httpmiddleware.CORSConfig{
					AllowOrigins:     cfg.CORS.Origins,
					AllowHeaders:     []string{"Content-Type", "Authorization"},
					AllowCredentials: cfg.CORS.AllowCredentials,
					MaxAge:           86400,
				}),
				httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
					Max:    cfg.RateLimit.Max,
					Window: cfg.RateLimit.Window,
				}),
				httpmiddleware.RequestID(),
				httpmiddleware.InjectLogger(zctx.From(ctx)),
				httpmiddleware.LogRequests(),
			),
			"kitchen-panel",
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	if spooler != nil {
		g.Go(func() error {
			return ignoreCancel(spooler.Run(gctx))
		})
	}
	g.Go(func() error {
		return ignoreCancel(watcher.Run(gctx))
	})

	// Graceful shutdown: stop readiness, drain, then stop the server.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		healthSvc.SetReady(true)
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}

// enqueuer adapts the optional spooler to the handler interface; a nil
// spooler disables journaling without a nil-interface pitfall.
func enqueuer(s *printer.Spooler) handler.Enqueuer {
	if s == nil {
		return nil
	}
	return s
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
