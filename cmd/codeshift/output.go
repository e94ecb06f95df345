package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"codeshift/internal/diag"
	"codeshift/internal/diagfmt"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

func hasErrors(rep *pipeline.Report) bool {
	for _, fr := range rep.PerFile {
		if fr.Errors > 0 {
			return true
		}
	}
	return false
}

// issueBag gathers the reported diagnostics of every file in input order.
func issueBag(rep *pipeline.Report) *diag.Bag {
	bag := diag.NewBag(0)
	for _, fr := range rep.PerFile {
		bag.AddAll(fr.Diagnostics)
	}
	return bag
}

func prettyOpts(colored, notes bool) diagfmt.PrettyOpts {
	opts := diagfmt.PrettyOpts{
		Color:     colored,
		Context:   1,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: notes,
	}
	if isTerminal(os.Stdout) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			opts.Width = w - 8
		}
	}
	return opts
}

func printIssues(w io.Writer, fs *source.FileSet, rep *pipeline.Report, colored, notes bool) {
	bag := issueBag(rep)
	if bag.Len() == 0 {
		return
	}
	diagfmt.Pretty(w, bag, fs, prettyOpts(colored, notes))
	fmt.Fprintln(w)
	for _, fr := range rep.PerFile {
		if fr.Dropped > 0 {
			fmt.Fprintf(w, "%s: %d more issue(s) not shown\n", fr.Path, fr.Dropped)
		}
	}
}

func printSummary(w io.Writer, rep *pipeline.Report, colored bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	for _, c := range []*color.Color{bold, red, yellow} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var errs, warns, converted, skipped int
	for _, fr := range rep.PerFile {
		errs += fr.Errors
		warns += fr.Warnings
		if fr.Skipped {
			skipped++
		} else {
			converted++
		}
	}

	acc := "n/a"
	if rep.AggregateAccuracy != nil {
		acc = fmt.Sprintf("%.1f%%", *rep.AggregateAccuracy*100)
	}
	line := fmt.Sprintf("%s -> %s: %d file(s) converted, %d skipped, accuracy %s, coverage %.1f%%",
		rep.SourceLanguage, rep.TargetLanguage, converted, skipped, acc, rep.AggregateCoverage*100)
	fmt.Fprintln(w, bold.Sprint(line))

	counts := fmt.Sprintf("%d error(s), %d warning(s), average complexity %.2f", errs, warns, rep.AverageComplexity)
	switch {
	case errs > 0:
		counts = red.Sprint(counts)
	case warns > 0:
		counts = yellow.Sprint(counts)
	}
	fmt.Fprintln(w, counts)

	if len(rep.ManualReview) > 0 {
		fmt.Fprintf(w, "manual review: %s\n", strings.Join(rep.ManualReview, ", "))
	}
	if rep.Cached {
		fmt.Fprintln(w, "(cached)")
	}
	if rep.Incomplete {
		fmt.Fprintln(w, yellow.Sprint("cancelled: the report is incomplete"))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
