package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/mcp"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "base URL of a running LiftLog server (remote mode)")
	token := flag.String("token", "", "API token for remote mode")
	userID := flag.Int64("user", 1, "user id to serve in local mode")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *remote != "" {
		if *token == "" {
			if *token = os.Getenv("LIFTLOG_TOKEN"); *token == "" {
				log.Error("remote mode needs -token or LIFTLOG_TOKEN")
				os.Exit(1)
			}
		}
		ds = mcp.NewHTTPClient(*remote, *token)
		log.Info("MCP server starting", "version", Version, "mode", "remote", "url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("MCP server starting", "version", Version, "mode", "local", "user", *userID)
	}

	s := mcp.New(ds, Version, log)

	uid := *userID
	stdio := server.NewStdioServer(s)
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, uid)
	})
	stdio.SetErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError))

	if err := stdio.Listen(context.Background(), os.Stdin, os.Stdout); err != nil && err != io.EOF {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
