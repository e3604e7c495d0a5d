package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blogz/internal/auth"
	"blogz/internal/db"
	"blogz/internal/handlers"
	"blogz/internal/metrics"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and serve the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			dbc, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := db.Migrate(ctx, dbc, cfg.DBDriver); err != nil {
				return err
			}

			h := handlers.New(
				db.NewStore(dbc),
				auth.NewManager(dbc, cfg.SessionTTL, cfg.SecureCookies),
				auth.NewHasher(cfg.BcryptCost),
				metrics.New(),
			)
			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           h.Router(cfg.SecureCookies),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				log.Printf("[http] listening on %s (%s)", cfg.Addr, cfg.DBDriver)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("[http] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides PORT")
	addDBFlags(cmd)
	return cmd
}
