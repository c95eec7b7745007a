// Command feltquakes lists earthquakes felt in Los Angeles from a USGS feed
// CSV file.
//
// Usage:
//
//	go run ./cmd/feltquakes -csv data/all_month.csv \
//	  -start 2017-02-01 -end 2017-02-28
//
// Omitting -end uses today; omitting -start uses 30 days before today.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/felt-quakes/internal/adapter/csvfile"
	"github.com/couchcryptid/felt-quakes/internal/catalog"
	"github.com/couchcryptid/felt-quakes/internal/config"
	"github.com/couchcryptid/felt-quakes/internal/display"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "feltquakes: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feltquakes", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "path to a USGS earthquake feed CSV (default $QUAKE_CSV_PATH)")
	start := fs.String("start", "", "first date to include, YYYY-MM-DD")
	end := fs.String("end", "", "last date to include, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *csvPath != "" {
		cfg.CSVPath = *csvPath
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	cat := catalog.New(config.ReferencePoint)
	res, err := cat.CompileFrom(context.Background(), csvfile.NewReader(cfg.CSVPath, logger))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn("skipping malformed record", "index", w.Index, "field", w.Field, "value", w.Value, "error", w.Err)
	}
	logger.Debug("catalog compiled", "records", res.Stats.Records, "events", res.Stats.Compiled)

	events, err := cat.Query(*start, *end)
	if err != nil {
		var ide *catalog.InvalidDateFormatError
		if errors.As(err, &ide) {
			fs.Usage()
		}
		return err
	}

	return display.RenderTable(out, events, config.ReferenceName)
}
