// Package server holds the command running the snake server: the controller
// with its store, the HTTP API and the prometheus exporter.
package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/battlesnakeio/snake/api"
	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	apiListen  = ":3005"
	promEnable = true
	promListen = ":9000"
)

// RootCmd provides the root run command.
var RootCmd = &cobra.Command{
	Use:   "server",
	Short: "serve the snake game engine",
	Run: func(c *cobra.Command, args []string) {
		if err := serve(); err != nil {
			log.WithError(err).Fatal("server failed")
		}
	},
}

func init() {
	RootCmd.Flags().StringVarP(&apiListen, "listen", "l", apiListen, "api address to listen on")
	RootCmd.Flags().BoolVar(&promEnable, "prometheus", promEnable, "enable prometheus metrics")
	RootCmd.Flags().StringVar(&promListen, "prometheus-listen", promListen, "prometheus http endpoint")
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).WithField("backend", storeBackend).Error("unable to start up backend store")
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.WithError(err).Error("unable to close store")
			}
		}()
	}

	ctrl := controller.New(controller.InstrumentStore(store), cfg)
	srv := api.New(apiListen, ctrl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(log.Fields{
			"listen":  apiListen,
			"backend": storeBackend,
		}).Info("snake api serving")
		return srv.ListenAndServe()
	})
	if promEnable {
		prom := prometheusServer()
		g.Go(func() error {
			log.WithField("addr", promListen).Info("starting prometheus exporter")
			if err := prom.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return prom.Close()
		})
	} else {
		log.Info("prometheus exporter not enabled")
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		return ctrl.Shutdown(sctx)
	})

	return g.Wait()
}

func prometheusServer() *http.Server {
	r := http.NewServeMux()
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: promListen, Handler: r}
}
