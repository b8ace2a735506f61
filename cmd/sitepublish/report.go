package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/input-output-hk/sitepublish/pubtypes"
)

// jsonReport is the machine-readable form of a report.
type jsonReport struct {
	*pubtypes.Report
	DurationMS int64 `json:"duration_ms"`
}

func writeReport(w io.Writer, report *pubtypes.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{Report: report, DurationMS: report.Duration.Milliseconds()})
	}

	mode := "published"
	if report.DryRun {
		mode = "planned (dry run)"
	}
	target := report.Bucket
	if report.Prefix != "" {
		target += "/" + report.Prefix
	}

	fmt.Fprintf(w, "%s s3://%s in %s\n", mode, target, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  added:     %s\n", humanize.Comma(int64(report.Added)))
	fmt.Fprintf(w, "  updated:   %s\n", humanize.Comma(int64(report.Updated)))
	fmt.Fprintf(w, "  removed:   %s\n", humanize.Comma(int64(report.Removed)))
	fmt.Fprintf(w, "  unchanged: %s\n", humanize.Comma(int64(report.Unchanged)))
	if report.Skipped > 0 {
		fmt.Fprintf(w, "  skipped:   %s\n", humanize.Comma(int64(report.Skipped)))
	}
	fmt.Fprintf(w, "  failed:    %s\n", humanize.Comma(int64(report.Failed)))
	fmt.Fprintf(w, "  uploaded:  %s\n", humanize.Bytes(uint64(max(report.BytesUploaded, 0))))

	if report.DryRun {
		for _, r := range report.Results {
			if r.Outcome == pubtypes.OutcomeSkipped {
				fmt.Fprintf(w, "  would %-6s %s\n", r.Action, r.Key)
			}
		}
	}

	for _, f := range report.Failures {
		fmt.Fprintf(w, "  FAILED %-7s %s: %s\n", f.Action, f.Key, f.Reason)
	}
	return nil
}
