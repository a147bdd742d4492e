// cmd/haulstats/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bashkirian/haulstats/internal/aggregator"
	"github.com/bashkirian/haulstats/internal/charts"
	"github.com/bashkirian/haulstats/internal/config"
	"github.com/bashkirian/haulstats/internal/loader"
	"github.com/bashkirian/haulstats/internal/report"
	"github.com/bashkirian/haulstats/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("haulstats: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("haulstats", flag.ContinueOnError)
	eventsPath := fs.String("events", "", "path to the event log (JSON Lines or JSON document)")
	configPath := fs.String("config", "", "optional config file")
	outPath := fs.String("out", "", "write the full report as JSON to this file")
	chartsPath := fs.String("charts", "", "write chart data as JSON to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *eventsPath == "" {
		fs.Usage()
		return fmt.Errorf("-events is required")
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts, err := cfg.LoaderOptions()
	if err != nil {
		return err
	}

	in, err := loader.New(opts).Load(*eventsPath)
	if err != nil {
		return err
	}

	// отчёт живёт только в рамках одного запуска
	agg := aggregator.New(storage.NewInMemoryStorage())
	rep, err := agg.Process(context.Background(), *eventsPath, in)
	if err != nil {
		return err
	}

	// графики строятся до любой записи на диск: либо все, либо ни одного
	set, err := charts.Build(rep, cfg.Charts.Bins, cfg.Charts.Colors)
	if err != nil {
		return err
	}

	if err := report.WriteSummary(stdout, report.Summarize(rep)); err != nil {
		return err
	}
	if *outPath != "" {
		if err := writeJSONFile(*outPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nFull report: %s\n", *outPath)
	}
	if *chartsPath != "" {
		if err := writeJSONFile(*chartsPath, set); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Chart data: %s\n", *chartsPath)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
