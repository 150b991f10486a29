// Package validator wires the engine's collaborators — metadata intake,
// byte-source resolution, the per-table pipeline, and the cross-table
// integrity checker — into the single entry point a CLI or embedding
// program calls to validate one CSV-W table group end to end.
package validator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"csvwvalidate/internal/config"
	"csvwvalidate/internal/datasource"
	"csvwvalidate/internal/integrity"
	"csvwvalidate/internal/logging"
	"csvwvalidate/internal/metrics"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
	"csvwvalidate/internal/table"
)

// Engine validates CSV-W table groups, resolving each table's CSV through
// source and reporting progress through log.
type Engine struct {
	Source datasource.Source
	Log    *logging.Logger
	Run    config.RuntimeConfig
}

// New builds an Engine with the given byte source and log level, applying
// RuntimeConfig defaults.
func New(source datasource.Source, level logging.Level, run config.RuntimeConfig) *Engine {
	return &Engine{Source: source, Log: logging.New(level), Run: run.WithDefaults()}
}

// Report is the outcome of validating an entire table group: the combined
// warnings/errors plus per-table metrics.
type Report struct {
	result.WarningsAndErrors
	Metrics metrics.Run
}

// Validate runs every table in group through its two-pass pipeline, then
// resolves cross-table foreign keys, returning the combined Report. A
// table whose CSV cannot be fetched completes with a single
// file_not_found/csv_cannot_be_downloaded error and zero rows processed;
// sibling tables are unaffected.
func (e *Engine) Validate(ctx context.Context, group *schema.TableGroup, metadataIssues []schema.Issue) (Report, error) {
	var report Report

	failedTables := make(map[string]bool)
	for _, issue := range metadataIssues {
		f := result.Finding{Type: issue.Type, Category: "metadata", Content: issue.Content, CSVPath: issue.Table}
		if issue.Severity == schema.SeverityWarning {
			report.AddWarning(f)
		} else {
			report.AddError(f)
			if issue.Table != "" {
				failedTables[issue.Table] = true
			}
		}
	}

	accumulators := make(map[string]*table.Accumulator, len(group.Tables))
	tableCounters := make(map[string]*metrics.TableCounters, len(group.Tables))

	for _, t := range group.Tables {
		if t.Schema == nil || len(t.Schema.Columns) == 0 || failedTables[t.URL] {
			continue
		}
		e.Log.Infof("validating table %s", t.URL)

		fetchCtx, cancelFetch := context.WithTimeout(ctx, e.Run.FetchTimeout)
		localPath, err := e.Source.Fetch(fetchCtx, t.URL)
		cancelFetch()
		if err != nil {
			report.AddError(fetchErrorFinding(t.URL, err))
			accumulators[t.URL] = table.NewAccumulator(t)
			continue
		}
		if mc, ok := e.Source.(datasource.MismatchChecker); ok {
			if resolved, mismatched := mc.ResolvedURLMismatch(t.URL); mismatched {
				report.AddWarning(result.Finding{
					Type: result.TypeSourceURLMismatch, Category: "structure",
					Content: fmt.Sprintf("requested %s, resolved %s", t.URL, resolved), CSVPath: t.URL,
				})
			}
		}

		start := time.Now()

		acc, counters, err := table.RunPass1(ctx, t, localPath, e.Run)
		if err != nil {
			errType := result.TypeCSVCannotBeDownloaded
			if errors.Is(err, fs.ErrNotExist) {
				errType = result.TypeFileNotFound
			}
			report.AddError(result.Finding{Type: errType, Category: "structure", Content: err.Error(), CSVPath: t.URL})
			accumulators[t.URL] = acc
			tableCounters[t.URL] = counters
			continue
		}

		duplicates, err := table.RunPass2(ctx, t, localPath, acc.CollidingRows(), counters)
		if err != nil {
			report.AddError(result.Finding{Type: result.TypeCSVCannotBeDownloaded, Category: "structure", Content: err.Error(), CSVPath: t.URL})
		}
		acc.Findings = append(acc.Findings, duplicates...)

		counters.Elapsed = time.Since(start)
		accumulators[t.URL] = acc
		tableCounters[t.URL] = counters

		e.Log.Debugf("table %s: rows_read=%d rows_valid=%d rows_with_errors=%d duplicates=%d",
			t.URL, counters.RowsRead.Load(), counters.RowsValid.Load(), counters.RowsWithErrors.Load(), len(duplicates))
	}

	for _, t := range group.Tables {
		acc := accumulators[t.URL]
		if acc == nil {
			continue
		}
		for _, f := range acc.Findings {
			f.CSVPath = t.URL
			report.Classify(f)
		}
	}

	integrityFindings := integrity.Check(group, accumulators)
	for _, f := range integrityFindings {
		if tc := tableCounters[f.CSVPath]; tc != nil {
			switch f.Type {
			case result.TypeUnmatchedFK:
				tc.AddUnmatchedFK()
			case result.TypeMultipleMatchedFK:
				tc.AddMultiMatchedFK()
			}
		}
		report.Classify(f)
	}

	for _, t := range group.Tables {
		if tc := tableCounters[t.URL]; tc != nil {
			report.Metrics.Add(tc.Snapshot(t.URL))
		}
	}

	return report, nil
}

func fetchErrorFinding(tableURL string, err error) result.Finding {
	if fe, ok := err.(*datasource.FetchError); ok && fe.NotFound {
		return result.Finding{Type: result.TypeFileNotFound, Category: "structure", Content: fe.Error(), CSVPath: tableURL}
	}
	return result.Finding{Type: result.TypeCSVCannotBeDownloaded, Category: "structure", Content: err.Error(), CSVPath: tableURL}
}
