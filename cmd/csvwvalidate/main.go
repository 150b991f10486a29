// Command csvwvalidate validates a CSV-W table group against its metadata:
// validate --schema <path> [--csv <path>]
// [--log-level OFF|ERROR|WARN|INFO|DEBUG|TRACE].
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"csvwvalidate/internal/config"
	"csvwvalidate/internal/datasource"
	"csvwvalidate/internal/logging"
	"csvwvalidate/internal/schema"
	"csvwvalidate/internal/validator"
)

func main() {
	var (
		schemaPath  string
		csvOverride string
		logLevel    string
		cacheDir    string
	)

	flag.StringVar(&schemaPath, "schema", "", "local file path of the normalised CSV-W metadata document (required; URLs are not fetched)")
	flag.StringVar(&csvOverride, "csv", "", "override every table's CSV url with a single path or URL, used as-is for every table")
	flag.StringVar(&logLevel, "log-level", "INFO", "OFF|ERROR|WARN|INFO|DEBUG|TRACE")
	flag.StringVar(&cacheDir, "cache-dir", "", "directory for the byte-source fetch cache (defaults to a temp dir)")
	flag.Parse()

	if schemaPath == "" {
		fatalf("missing required --schema flag")
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		fatalf("read metadata document: %v", err)
	}

	group, issues := schema.Build(data)
	if csvOverride != "" {
		for _, t := range group.Tables {
			t.URL = csvOverride
		}
	}

	if cacheDir == "" {
		dir, err := os.MkdirTemp("", "csvwvalidate-cache-*")
		if err != nil {
			fatalf("create cache dir: %v", err)
		}
		cacheDir = dir
		defer os.RemoveAll(cacheDir)
	}

	cache, closeCache, err := datasource.NewCache(context.Background(), cacheDir)
	if err != nil {
		fatalf("open fetch cache: %v", err)
	}
	defer closeCache()

	source := datasource.NewResolver(datasource.NewHTTPSource(datasource.HTTPConfig{}, cache))

	eng := validator.New(source, logging.ParseLevel(logLevel), config.RuntimeConfig{})

	start := time.Now()
	report, err := eng.Validate(context.Background(), group, issues)
	if err != nil {
		fatalf("validate: %v", err)
	}
	elapsed := time.Since(start).Truncate(time.Millisecond)

	totals := report.Metrics.Totals()
	fmt.Printf("validated %s tables in %s: %s rows, %s errors, %s warnings\n",
		humanize.Comma(int64(len(group.Tables))),
		elapsed,
		humanize.Comma(totals.RowsRead),
		humanize.Comma(int64(len(report.Errors))),
		humanize.Comma(int64(len(report.Warnings))),
	)
	for _, w := range report.Warnings {
		fmt.Printf("WARN  %s\n", w.String())
	}
	for _, e := range report.Errors {
		fmt.Printf("ERROR %s\n", e.String())
	}

	if report.HasErrors() {
		os.Exit(1)
	}
}

func fatalf(format string, a ...any) {
	log.Printf(format, a...)
	os.Exit(1)
}
