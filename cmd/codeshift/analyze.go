package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codeshift/internal/detect"
	"codeshift/internal/diag"
	"codeshift/internal/diagfmt"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/model"
	"codeshift/internal/source"
	"codeshift/internal/structure"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file|directory>...",
	Short: "Show block structure, dependencies and complexity metrics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().Bool("tree", false, "print the block tree of each file")
	analyzeCmd.Flags().String("lang", "", "analyze every file as this language")
}

type analysis struct {
	file    *source.File
	tag     lang.Tag
	model   *model.Model
	metrics metrics.Metrics
	bag     *diag.Bag
}

type analysisJSON struct {
	Path      string                    `json:"path"`
	Language  string                    `json:"language"`
	Truncated bool                      `json:"truncated,omitempty"`
	Deps      []string                  `json:"dependencies"`
	Metrics   *metrics.Metrics          `json:"metrics,omitempty"`
	Issues    diagfmt.DiagnosticsOutput `json:"issues"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	tree, err := cmd.Flags().GetBool("tree")
	if err != nil {
		return fmt.Errorf("failed to get tree flag: %w", err)
	}
	hint, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	maxIssues, err := cmd.Root().PersistentFlags().GetInt("max-issues")
	if err != nil {
		return fmt.Errorf("failed to get max-issues flag: %w", err)
	}

	paths, err := discoverPaths(args, nil)
	if err != nil {
		return err
	}
	fs, files, err := loadFiles(paths, hint)
	if err != nil {
		return err
	}

	results := make([]analysis, len(files))
	exit := 0
	for i, f := range files {
		results[i] = analyzeFile(f, maxIssues)
		if results[i].bag.HasErrors() {
			exit = 1
		}
	}

	switch strings.ToLower(format) {
	case "json":
		out := make([]analysisJSON, len(results))
		for i, a := range results {
			out[i] = analysisJSON{
				Path:     a.file.Path,
				Language: a.tag.String(),
				Deps:     []string{},
				Issues:   diagfmt.BuildDiagnosticsOutput(a.bag, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true}),
			}
			if a.model != nil {
				out[i].Truncated = a.model.Truncated
				if a.model.Deps != nil {
					out[i].Deps = a.model.Deps
				}
				m := a.metrics
				out[i].Metrics = &m
			}
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	case "pretty":
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, a := range results {
			printAnalysis(w, a, tree)
			if a.bag.Len() > 0 {
				diagfmt.Pretty(w, a.bag, fs, prettyOpts(colored, true))
				fmt.Fprintln(w)
			}
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if exit != 0 {
		return &exitError{code: exit}
	}
	return nil
}

// analyzeFile runs detection, structure building and scoring on one file.
func analyzeFile(f *source.File, maxIssues int) analysis {
	a := analysis{file: f, bag: diag.NewBag(maxIssues)}
	det := detect.Classify(f)
	a.tag = det.Lang
	a.bag.AddAll(det.Issues)
	if det.Lang == lang.Unknown {
		return a
	}
	m, diags := structure.Build(f, det.Lang)
	a.bag.AddAll(diags)
	a.bag.Sort()
	a.model = m
	a.metrics = metrics.Score(m)
	return a
}

func printAnalysis(w io.Writer, a analysis, tree bool) {
	fmt.Fprintf(w, "%s (%s)\n", a.file.Path, a.tag)
	if a.model == nil {
		return
	}
	m := a.metrics
	fmt.Fprintf(w, "  loc %d, blocks %d, max depth %d, cyclomatic %d, comments %.0f%%\n",
		m.LOC, m.Blocks, m.MaxDepth, m.Cyclomatic, m.CommentRatio*100)
	if a.model.Truncated {
		fmt.Fprintln(w, "  structure truncated at the first fault")
	}
	if len(a.model.Deps) > 0 {
		fmt.Fprintf(w, "  dependencies: %s\n", strings.Join(a.model.Deps, ", "))
	}
	for _, p := range m.Procedures {
		fmt.Fprintf(w, "  proc %-24s cyclomatic %3d  lines %4d\n", p.Name, p.Cyclomatic, p.Lines)
	}
	if tree {
		a.model.Walk(func(b *model.Block, depth int) bool {
			label := a.model.HeaderText(b)
			if i := strings.IndexByte(label, '\n'); i >= 0 {
				label = label[:i]
			}
			fmt.Fprintf(w, "  %s%-11s %s\n", strings.Repeat("  ", depth), b.Kind, strings.TrimSpace(label))
			return true
		})
	}
}
