package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/ChicagoDave/villageplanner/pkg/scene"
	"github.com/ChicagoDave/villageplanner/pkg/store"
	"github.com/ChicagoDave/villageplanner/pkg/validation"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [%s] %s\n", e.Level, e.Message)
			if e.Path != "" {
				fmt.Fprintf(w, "    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Fprintf(w, "    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Fprintf(w, "    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, wr := range r.Warnings {
			fmt.Fprintf(w, "  [%s] %s\n", wr.Level, wr.Message)
			if wr.Path != "" {
				fmt.Fprintf(w, "    -> %s = %v\n", wr.Path, wr.ActualValue)
			}
			if wr.ConflictWith != "" {
				fmt.Fprintf(w, "    overlaps: %s\n", wr.ConflictWith)
			}
			for _, s := range wr.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printDocumentSummary(w io.Writer, path string, d *scene.Document) {
	fmt.Fprintf(w, "Wrote %s\n", path)
	fmt.Fprintf(w, "  river width:  %.3f\n", d.EntityData.RiverWidth)
	fmt.Fprintf(w, "  houses:       %d\n", len(d.EntityData.Houses))
	fmt.Fprintf(w, "  rocks:        %d\n", len(d.EntityData.Rocks))
	fmt.Fprintf(w, "  trees:        %d\n", len(d.EntityData.Trees))
	fmt.Fprintf(w, "  attractors:   %d\n", len(d.AttractorData))
	if d.Metadata != nil {
		fmt.Fprintf(w, "  seed:         %d\n", d.Metadata.Seed)
	}
}

func printRecords(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No saved scenes.")
		return
	}

	fmt.Fprintf(w, "%-10s %-20s %7s %6s %6s %6s %10s  %s\n",
		"ID", "Name", "River", "Houses", "Rocks", "Trees", "Size", "Saved")
	fmt.Fprintf(w, "%-10s %-20s %7s %6s %6s %6s %10s  %s\n",
		"----------", "--------------------", "-------", "------", "------", "------", "----------", "-----")
	for _, r := range records {
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%-10s %-20s %7.3f %6d %6d %6d %10s  %s\n",
			r.ShortID(), truncate(name, 20), r.RiverWidth, r.Houses, r.Rocks, r.Trees,
			humanize.Bytes(uint64(r.Size)), humanize.Time(r.Created()))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
