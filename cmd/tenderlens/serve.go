package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/tenderlens/internal/httpapi"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		fromSnapshot bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lens, comps, err := a.newLens(ctx)
			if err != nil {
				return err
			}
			defer lens.Close()

			var table *tender.Table
			if fromSnapshot {
				table, err = lens.LoadSnapshot(ctx)
			} else {
				table, err = lens.PrepareDataset(ctx)
			}
			if err != nil {
				return err
			}

			sc := a.cfg.Server
			if addr == "" {
				addr = sc.Addr
			}
			srv := &http.Server{
				Addr: addr,
				Handler: httpapi.NewRouter(table, comps.ClusterTable, lens, httpapi.Options{
					AllowedOrigins: sc.AllowedOrigins,
					DefaultLimit:   sc.DefaultLimit,
				}),
				ReadTimeout:  sc.ReadTimeout.Std(),
				WriteTimeout: sc.WriteTimeout.Std(),
				IdleTimeout:  60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				zap.L().Info("server listening", zap.String("addr", addr), zap.Int("tenders", table.Len()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			select {
			case err, ok := <-errc:
				if ok {
					return err
				}
				return nil
			case <-stop:
			}
			zap.L().Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVar(&fromSnapshot, "from-snapshot", false, "serve the prepared snapshot instead of re-reading the dataset")
	return cmd
}
