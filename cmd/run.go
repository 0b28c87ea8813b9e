// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Thermoquad/aerostat/pkg/api"
	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/hass"
	"github.com/Thermoquad/aerostat/pkg/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge with MQTT and the HTTP API",
	Long: `Run the bridge against a live unit until interrupted.

Polls the unit every update interval, keeps the climate model in sync and
sends queued changes as command frames. When configured, the model is also
published to Home Assistant over MQTT (mqtt.broker) and served over HTTP with
Prometheus metrics (http.listen).

Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := componentLogger("run")

	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Infof("Starting aerostat (%s, update interval %s)", connInfo, cfg.UpdateInterval)

	b := newBridge()
	vane := bridge.NewVaneSelect(b, nil)

	m := metrics.New()
	m.Attach(b)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	transport := bridge.NewStreamTransport(conn)
	g.Go(func() error {
		return b.Run(ctx, transport)
	})

	if cfg.MQTT.Broker != "" {
		integration := hass.New(b, vane, hass.Options{
			BaseTopic:       cfg.MQTT.BaseTopic,
			DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
			DeviceName:      cfg.MQTT.DeviceName,
		}, componentLogger("mqtt"))

		client, err := hass.Connect(cfg.MQTT, integration)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer client.Disconnect(250)
			return integration.Run(ctx)
		})
	}

	if cfg.HTTP.Listen != "" {
		gin.SetMode(gin.ReleaseMode)
		router := api.SetupRouter(api.NewClimateHandler(b, vane), m.Handler(), componentLogger("http"))
		server := &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			log.Infof("HTTP API listening on %s", cfg.HTTP.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "http server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("Shutting down...")
	return err
}
