package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asthma-care-server/internal/logger"
	"asthma-care-server/internal/middleware"
	"asthma-care-server/internal/routes"
	"asthma-care-server/internal/service"
	"asthma-care-server/internal/session"
	"asthma-care-server/internal/store"
)

func getServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the clinic HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			ctx := context.Background()

			log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "asthma-care-server")
			if err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			b, err := openBackends(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("error opening %s store: %w", cfg.Store.Driver, err)
			}
			defer func() { _ = b.close() }()

			kv, closeKV, err := openCache(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = closeKV() }()

			staff := store.NewTableCache(b.store, kv, cfg.Cache.StaffTTL, "staff", log)
			public := store.NewTableCache(b.public, kv, cfg.Cache.PublicTTL, "public", log)
			clinic := service.NewClinic(staff, public, b.store, cfg.AppURL, log)
			sessions := session.NewRegistry(kv, time.Duration(cfg.SessionTTLHours)*time.Hour)

			if cfg.Environment != "development" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery(), middleware.RequestLogger(log))

			// Configure CORS
			corsConfig := cors.DefaultConfig()
			corsConfig.AllowOrigins = []string{cfg.Origin}
			corsConfig.AllowCredentials = true
			corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
			corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
			router.Use(cors.New(corsConfig))

			if err := routes.SetupRoutes(router, clinic, sessions, cfg, log); err != nil {
				return fmt.Errorf("error setting up routes: %w", err)
			}

			log.Info("Server starting",
				zap.String("port", cfg.Port),
				zap.String("store", cfg.Store.Driver),
				zap.String("cache", cfg.Cache.Backend),
			)
			return router.Run(":" + cfg.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}
