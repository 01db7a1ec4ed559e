package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kotlang/summitGo/appconfig"
	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "summit",
		Usage: "Lead capture, event registration and admin dashboard API.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("Application failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*appconfig.AppConfig, error) {
	config, err := appconfig.LoadAppConfig(c.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return config, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the http and grpc servers (default).",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	inject, err := NewInject(config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	go func() { errs <- inject.GrpcServer.Start() }()
	go func() { errs <- inject.HttpServer.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errs:
		logger.Error("Server stopped", zap.Error(err))
	}
	inject.Close()
	return err
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print an admin session token signed with the configured secret.",
		Action: func(c *cli.Context) error {
			config, err := loadConfig(c)
			if err != nil {
				return err
			}

			issuer := auth.NewSessionIssuer(config.AdminPassword, config.AccessSecret, config.SessionTTL)
			token, expiresAt, err := issuer.GetToken(auth.AdminSubject)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			logger.Info("Issued admin token", zap.Time("expiresAt", expiresAt))
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version.",
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, version)
			return nil
		},
	}
}
