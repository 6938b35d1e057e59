// One-shot audit: fetch, score, and print a single target as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sitepulse/packages/bootstrap"
	"sitepulse/packages/config"
	"sitepulse/packages/domain"
)

func main() {
	urlFlag := flag.String("url", "", "target URL to audit")
	categoryFlag := flag.String("category", "retail", "business category")
	timeoutFlag := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	if *urlFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: audit -url <target> [-category <category>]")
		os.Exit(2)
	}

	cfg, err := config.Load(false)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	bootstrap.SetupLogger(cfg, "audit-cli")

	target, err := domain.NewAuditTarget(*urlFlag, domain.BusinessCategory(*categoryFlag))
	if err != nil {
		slog.Error("Invalid target", "error", err)
		os.Exit(1)
	}

	engine, cleanup := bootstrap.BuildEngine(cfg)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	result, err := engine.Run(ctx, target)
	if err != nil {
		slog.Error("Audit failed", "url", target.URL, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
