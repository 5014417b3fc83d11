package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/datadose/pkg/api"
	"github.com/hazyhaar/datadose/pkg/chassis"
	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
)

func cmdServe(args []string) error {
	fs := newFlagSet("serve")
	fs.String("addr", "", "listen address")
	fs.String("tls", "", "TLS mode: off, dev (self-signed) or file")
	cfg, logger, err := setup(fs, args)
	if err != nil {
		return err
	}

	reg := lexicon.NewRegistry(cfg.LexiconDir)
	eng := pipeline.NewEngine(reg, pipeline.Options{Logger: logger})
	if err := reg.Load(); err != nil {
		return err
	}

	srv, err := chassis.New(chassis.Config{
		Addr:     cfg.Addr,
		TLSMode:  cfg.TLS.Mode,
		CertFile: cfg.TLS.Cert,
		KeyFile:  cfg.TLS.Key,
		Handler:  api.NewRouter(eng, logger),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// SIGHUP: hot reload the lexicon; a reload failing the self-test keeps the old one.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading lexicon")
			if err := eng.Reload(); err != nil {
				logger.Error("reload failed, keeping current lexicon", "error", err)
			}
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func cmdMCP(args []string) error {
	fs := newFlagSet("mcp")
	cfg, logger, err := setup(fs, args)
	if err != nil {
		return err
	}

	reg := lexicon.NewRegistry(cfg.LexiconDir)
	eng := pipeline.NewEngine(reg, pipeline.Options{Logger: logger})
	if err := reg.Load(); err != nil {
		return err
	}

	srv := server.NewMCPServer("datadose", "1.0.0", server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, eng, logger)
	logger.Info("serving MCP over stdio")
	return server.ServeStdio(srv)
}
