package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cpuppm/sysboost/ppm/procfs"
)

var (
	serveAddr string // HTTP listen address
)

// serveCmd exposes the control files over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sysboost control files over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadTopologyConfig(topologyPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		sys, err := newSystem(cfg, false)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer sys.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, serveAddr, newServeMux(sys)); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Server stopped.")
	},
}

func newServeMux(sys *system) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(procfs.PathPrefix, procfs.Handler(sys.entries))
	mux.HandleFunc("/ppm/decision", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		if err := yaml.NewEncoder(w).Encode(sys.fw.LastDecision()); err != nil {
			logrus.Warnf("encoding decision: %v", err)
		}
	})
	return mux
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("Serving sysboost control files on %s%s", addr, procfs.PathPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "HTTP listen address")
}
