package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/nexran/nexran/internal/api/http"
	"github.com/nexran/nexran/internal/application/allocation"
	"github.com/nexran/nexran/internal/application/requestgroup"
	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/config"
	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/infrastructure/codec"
	"github.com/nexran/nexran/internal/infrastructure/postgres"
	"github.com/nexran/nexran/internal/infrastructure/servicemodel"
	"github.com/nexran/nexran/internal/infrastructure/sse"
	"github.com/nexran/nexran/internal/infrastructure/transport"
	"github.com/nexran/nexran/internal/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	e2termURL   string
	adminAddr   string
	logLevel    string
	kpmInterval int
	requestorID int64
	databaseURL string
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "nexran",
		Short: "RAN slicing xApp",
		Long: `nexran manages RAN slices on E2 nodes. It subscribes every node to KPM
reports, rebalances slice shares from those reports and exposes a REST API
for nodes, slices and UEs.

Settings come from the environment; flags override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if err := f.apply(cmd, cfg); err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.e2termURL, "e2term-url", "", "E2 termination websocket url (E2TERM_URL)")
	fl.StringVar(&f.adminAddr, "admin-addr", "", "REST API listen address (ADMIN_ADDR)")
	fl.StringVar(&f.logLevel, "log-level", "", "log level (LOG_LEVEL)")
	fl.IntVar(&f.kpmInterval, "kpm-interval", 0, "KPM report period index (KPM_INTERVAL_INDEX)")
	fl.Int64Var(&f.requestorID, "requestor-id", 0, "E2AP requestor id, negative for random (REQUESTOR_ID)")
	fl.StringVar(&f.databaseURL, "database-url", "", "PostgreSQL url for the KPM archive (DATABASE_URL)")
	return cmd
}

// apply copies every flag set on the command line over cfg.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("e2term-url") {
		cfg.E2TermURL = f.e2termURL
	}
	if fl.Changed("admin-addr") {
		cfg.AdminAddr = f.adminAddr
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fl.Changed("kpm-interval") {
		cfg.KPMIntervalIndex = f.kpmInterval
	}
	if fl.Changed("requestor-id") {
		cfg.RequestorID = f.requestorID
	}
	if fl.Changed("database-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	return cfg.Validate()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.LogConsole {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.Level()).With().Timestamp().Str("xapp", cfg.XAppName).Logger()
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	var archive kpm.Archive
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseConns)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer pool.Close()
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
		}
		archive = postgres.NewKPMArchive(pool)
		logger.Info().Msg("kpm archive enabled")
	}

	msgpack := codec.NewMsgpack()
	models, err := servicemodel.NewRegistry(msgpack, time.Now)
	if err != nil {
		return fmt.Errorf("service models: %w", err)
	}

	ws := transport.NewWebSocket(cfg.E2TermURL, msgpack, logger)
	engine := transaction.NewEngine(ws, msgpack, models, transaction.Config{
		RequestorID: cfg.RequestorID,
		Timeout:     cfg.TransactionTimeout,
	}, logger)
	groups := requestgroup.NewTracker(cfg.RequestGroupTimeout, time.Now, logger)
	hub := sse.NewHub(logger)
	defer hub.Stop()

	ctl := allocation.NewController(engine, groups, archive, hub, allocation.Config{
		KPMPeriod:   cfg.KPMPeriod(),
		KPMFunction: servicemodel.FunctionKPM,
		SliceStatus: cfg.SliceStatus,
	}, logger)
	engine.SetHandler(ctl)

	apiServer := httpapi.NewServer(ctl, engine, hub,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		httpapi.Info{Name: cfg.XAppName, Version: version, Connected: ws.Connected},
		logger,
	)
	httpServer := &http.Server{
		Addr:        cfg.AdminAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info().
		Str("e2term", cfg.E2TermURL).
		Int64("requestor_id", engine.RequestorID()).
		Int("kpm_interval_index", cfg.KPMIntervalIndex).
		Msg("starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Run(ctx, engine.Receive)
	})
	g.Go(func() error {
		return engine.RunReaper(ctx, cfg.ReaperInterval)
	})
	g.Go(func() error {
		return groups.Run(ctx, cfg.ReaperInterval)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.AdminAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Msg("stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
