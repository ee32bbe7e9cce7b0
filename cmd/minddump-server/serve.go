package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/systemshift/minddump/internal/server/api"
	"github.com/systemshift/minddump/internal/server/fixtures"
	"github.com/systemshift/minddump/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		file, err := fixtures.Load(cfg.FixturesPath)
		if err != nil {
			return err
		}
		seed, err := file.Seed(time.Now().UTC())
		if err != nil {
			return fmt.Errorf("seeding fixtures: %w", err)
		}
		s, err := store.New(seed)
		if err != nil {
			return fmt.Errorf("building store: %w", err)
		}
		counts := s.Counts()
		log.Info().
			Int("notes", counts.Notes).
			Int("folders", counts.Folders).
			Int("concepts", counts.Concepts).
			Msg("store seeded")

		srv := &http.Server{
			Addr:         cfg.Addr,
			Handler:      api.New(s, log).Routes(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			log.Info().Str("addr", cfg.Addr).Msg("starting minddump server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving http: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			log.Info().Msg("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		})

		if cfg.Watch {
			w := fixtures.NewWatcher(cfg.FixturesPath, s, log)
			g.Go(func() error { return w.Run(ctx) })
		}

		if err := g.Wait(); err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8000)")
	serveCmd.Flags().String("fixtures", "", "Fixture file replacing the built-in sample data")
	serveCmd.Flags().Bool("watch", false, "Reload the fixture file when it changes")
	rootCmd.AddCommand(serveCmd)
}
