package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"lunargen/cache"
	"lunargen/server"
	"lunargen/terrain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated surfaces over HTTP and websockets",
	Long: `Starts the HTTP server. POST /generate returns mesh JSON, GET /generate.bin
returns the binary mesh format and /ws streams the latest mesh for each
parameter change. Seeded meshes are cached in memory and optionally in Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := settings.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("redis") {
			settings.Cache.RedisAddress, _ = cmd.Flags().GetString("redis")
		}
		defaults, err := generationParams(cmd)
		if err != nil {
			return err
		}

		var meshCache cache.MeshCache
		if settings.Cache.Size > 0 {
			meshCache = cache.NewMemory(settings.Cache.Size)
		}
		if addr := settings.Cache.RedisAddress; addr != "" {
			redis := cache.NewRedis(addr, settings.Cache.RedisPassword, settings.Cache.RedisDB,
				cache.WithTTL(settings.Cache.TTL))
			defer redis.Close()
			if err := redis.Ping(ctx); err != nil {
				return fmt.Errorf("redis at %s: %w", addr, err)
			}
			logger.Info("using redis mesh cache", "addr", addr, "ttl", settings.Cache.TTL)
			if meshCache != nil {
				meshCache = &cache.Tiered{Near: meshCache, Far: redis}
			} else {
				meshCache = redis
			}
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := server.NewMetrics(registry)

		service := server.NewService(terrain.NewGenerator(terrain.WithLogger(logger)), meshCache, metrics, logger)
		srv := server.New(service, registry, metrics, defaults, logger,
			server.WithMaxSegments(settings.Server.MaxSegments))

		return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port), settings.Server.ReadTimeout)
	},
}

func init() {
	addGenerationFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the shared mesh cache")
	rootCmd.AddCommand(serveCmd)
}
