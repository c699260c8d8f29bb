package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oxygene76/vb3d-sim/pkg/server"
	"github.com/oxygene76/vb3d-sim/pkg/utils"
)

// serveCmd starts the scene API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scenes over HTTP and a live websocket",
	Long: `Start the scene API.

Endpoints:
  GET  /api/v1/status     service status
  GET  /api/v1/presets    net presets
  GET  /api/v1/defaults   default scene config
  POST /api/v1/scene      render a scene from a (partial) config
  POST /api/v1/envelope   compute a bare spike envelope
  GET  /api/v1/live       websocket, one scene per config message

A .env file in the working directory is loaded first, so VB3D_* variables
placed there override the config file.

Example:
  vb3d serve --port 8080`,
	// Env files must be loaded before the config is read.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return rootCmd.PersistentPreRunE(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.Server
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}

		return runServer(cmd.Context(), cfg)
	},
}

func runServer(parent context.Context, cfg utils.ServerConfig) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, appConfig.Scene, version, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	logger.Info("starting vb3d scene API",
		zap.Int("port", cfg.Port),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.String("mode", string(appConfig.Scene.Mode)),
		zap.String("net", string(appConfig.Scene.Net)))

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("scene API stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("env-file", ".env", "Environment file loaded before the config")
}
