package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"codeshift/internal/detect"
	"codeshift/internal/diag"
	"codeshift/internal/diagfmt"
	"codeshift/internal/source"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] <file|directory>...",
	Short: "Report the detected language of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	detectCmd.Flags().String("hint", "", "language hint applied to every file")
}

type detectEntry struct {
	Path       string                    `json:"path"`
	Language   string                    `json:"language"`
	Stage      string                    `json:"stage"`
	Confidence float64                   `json:"confidence"`
	Reason     string                    `json:"reason,omitempty"`
	Issues     diagfmt.DiagnosticsOutput `json:"issues"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	hint, err := cmd.Flags().GetString("hint")
	if err != nil {
		return fmt.Errorf("failed to get hint flag: %w", err)
	}
	paths, err := discoverPaths(args, nil)
	if err != nil {
		return err
	}
	fs, files, err := loadFiles(paths, hint)
	if err != nil {
		return err
	}

	results := make([]detect.Result, len(files))
	bag := diag.NewBag(0)
	for i, f := range files {
		results[i] = detect.Classify(f)
		bag.AddAll(results[i].Issues)
	}

	switch strings.ToLower(format) {
	case "json":
		entries := make([]detectEntry, len(files))
		for i, f := range files {
			fileBag := diag.NewBag(0)
			fileBag.AddAll(results[i].Issues)
			entries[i] = detectEntry{
				Path:       f.Path,
				Language:   results[i].Lang.String(),
				Stage:      results[i].Stage.String(),
				Confidence: results[i].Confidence,
				Reason:     results[i].Reason,
				Issues:     diagfmt.BuildDiagnosticsOutput(fileBag, fs, diagfmt.JSONOpts{IncludePositions: true}),
			}
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	case "pretty":
		printDetections(cmd.OutOrStdout(), files, results)
		if bag.Len() > 0 {
			colored, err := useColor(cmd, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			diagfmt.Pretty(cmd.OutOrStdout(), bag, fs, prettyOpts(colored, false))
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

func printDetections(w io.Writer, files []*source.File, results []detect.Result) {
	rows := make([][]string, len(files))
	for i, f := range files {
		r := results[i]
		rows[i] = []string{f.Path, r.Lang.String(), r.Stage.String(), fmt.Sprintf("%.2f", r.Confidence), r.Reason}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PATH", "LANGUAGE", "STAGE", "CONFIDENCE", "REASON").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
