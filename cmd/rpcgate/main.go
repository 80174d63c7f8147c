// Package main runs the rpcgate reference server: a procedure table
// exposed as a REST-style API with generated OpenAPI documentation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/rpcgate/bootstrap"
	"github.com/artpar/rpcgate/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "rpcgate.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	validate := flag.Bool("validate", false, "Validate configuration and procedure table, then exit")
	openapiOut := flag.String("openapi", "", "Write the OpenAPI document to the given file (- for stdout) and exit")
	hotReload := flag.Bool("hot-reload", true, "Enable hot reload of configuration")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rpcgate %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		// No config file is fine for local runs; defaults serve on :8080.
		d := config.Default()
		cfg, err = &d, nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	table, err := buildTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Procedure table invalid: %v\n", err)
		os.Exit(1)
	}

	if *validate {
		fmt.Printf("Configuration valid\n")
		fmt.Printf("  Listen: %s\n", cfg.Server.Addr())
		fmt.Printf("  Auth mode: %s\n", cfg.Auth.Mode)
		fmt.Printf("  Procedures: %d\n", table.Len())
		os.Exit(0)
	}

	if *openapiOut != "" {
		doc, err := bootstrap.GenerateDoc(cfg, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate document: %v\n", err)
			os.Exit(1)
		}
		if *openapiOut == "-" {
			fmt.Println(string(doc))
		} else if err := os.WriteFile(*openapiOut, doc, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write document: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	application, err := bootstrap.New(cfg, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if *hotReload {
		holder, err := config.NewHolder(*configPath, application.Logger)
		if err != nil {
			application.Logger.Warn().Err(err).Msg("config watch disabled")
		} else if err := holder.Watch(); err != nil {
			application.Logger.Warn().Err(err).Msg("config watch disabled")
		} else {
			defer holder.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
