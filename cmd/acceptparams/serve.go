package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/config"
	"github.com/nateware/accept-params/metrics"
	"github.com/nateware/accept-params/middleware"
	"github.com/nateware/accept-params/schemafile"
)

func newServeCmd(a *app) *cobra.Command {
	var schemaPath, addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve params validation over HTTP",
		Long: `Starts an HTTP server validating POST /validate requests (query, form or JSON body) against a schema file.
GET /schema returns the JSON Schema and the metrics path exposes Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schemafile.Load(schemaPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.NewWithRegistry(reg, a.cfg.Metrics.Namespace)

			if watch && a.configPath != "" {
				holder, err := config.NewHolder(a.configPath, a.logger)
				if err != nil {
					return err
				}
				defer holder.Stop()
				holder.OnChange(func(*config.Config) { collector.ConfigReloads.Inc() })
				if err := holder.WatchFile(); err != nil {
					return err
				}
				holder.WatchSignals()
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      newServer(doc, a.cfg, a.logger, reg, collector),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}
			return run(cmd.Context(), srv, a.logger)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema file (YAML or JSON)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the config file on change or SIGHUP")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// newServer wires the validation routes.
func newServer(doc *schemafile.Document, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry, collector *metrics.Collector) http.Handler {
	acceptor := acceptparams.NewAcceptor(
		acceptparams.WithLogger(logger),
		acceptparams.WithObserver(collector),
	)
	mw := middleware.New(
		middleware.WithAcceptor(acceptor),
		middleware.WithRequestLogger(logger),
		middleware.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		s, err := doc.Rules().JSONSchema()
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, s)
	})
	r.With(mw.Accept(doc.Declare, doc.Options()...)).Post("/validate", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"params": middleware.Params(r)})
	})
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	return r
}

// run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// gracefully.
func run(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("serving params validation")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown did not complete")
			return srv.Close()
		}
		return nil
	}
}
