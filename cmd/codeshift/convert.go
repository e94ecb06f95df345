package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codeshift/internal/cache"
	"codeshift/internal/config"
	"codeshift/internal/convert"
	"codeshift/internal/detect"
	"codeshift/internal/diag"
	"codeshift/internal/docgen"
	"codeshift/internal/lang"
	"codeshift/internal/observ"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <file|directory>...",
	Short: "Convert source files to another language",
	Long: `Convert every source file found under the given paths to the target
language. Converted files are written to --out; issues are printed and the
command exits non-zero when any file has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("from", "", "source language (default: config or the dominant detected language)")
	convertCmd.Flags().String("to", "", "target language")
	convertCmd.Flags().String("level", "", "optimization level (minimal|balanced|aggressive)")
	convertCmd.Flags().String("style", "", "template style (standard|modern|legacy)")
	convertCmd.Flags().Bool("preserve-structure", false, "keep one output block per source block")
	convertCmd.Flags().StringToString("map", nil, "custom mapping construct=template (repeatable)")
	convertCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	convertCmd.Flags().StringP("out", "o", "", "directory to write converted files to")
	convertCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	convertCmd.Flags().String("report", "", "write the JSON report to this file")
	convertCmd.Flags().String("docs", "", "write a markdown technical document to this file")
	convertCmd.Flags().Bool("no-cache", false, "disable the report cache")
	convertCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	convertCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

// convertOptions are the resolved flags of one convert run.
type convertOptions struct {
	format   string
	outDir   string
	report   string
	docs     string
	noCache  bool
	ui       uiMode
	notes    bool
	quiet    bool
	timings  bool
	cacheDir string
	ignore   []string
}

func runConvert(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cfg, opts, err := resolveConvert(cmd)
	if err != nil {
		return err
	}

	paths, err := discoverPaths(args, opts.ignore)
	if err != nil {
		return err
	}
	fs, files, err := loadFiles(paths, "")
	if err != nil {
		return err
	}
	if cfg.Source == lang.Unknown {
		cfg.Source = dominantLanguage(files)
		if cfg.Source == lang.Unknown {
			return errors.New("cannot infer the source language, set --from")
		}
	}
	if opts.docs != "" {
		cfg.RetainArtifacts = true
	}

	timer := observ.NewTimer()
	cfg.Timer = timer

	bundle, err := runCached(cmd.Context(), cfg, opts, files)
	if err != nil {
		return err
	}
	rep := bundle.Report

	if opts.outDir != "" {
		if err := writeOutputs(opts.outDir, rep); err != nil {
			return err
		}
	}
	if opts.report != "" {
		if err := writeJSONFile(opts.report, rep); err != nil {
			return err
		}
	}
	if opts.docs != "" {
		if err := os.WriteFile(opts.docs, docgen.Render(bundle), 0o644); err != nil {
			return fmt.Errorf("failed to write docs: %w", err)
		}
	}

	switch opts.format {
	case "json":
		if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	case "short":
		if out := diag.FormatShort(issueBag(rep).Items(), fs); out != "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
		}
	default:
		color, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		if !opts.quiet || hasErrors(rep) {
			printIssues(cmd.OutOrStdout(), fs, rep, color, opts.notes)
		}
		if !opts.quiet {
			printSummary(cmd.OutOrStdout(), rep, color)
		}
	}
	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if rep.Incomplete {
		return &exitError{code: 130}
	}
	if hasErrors(rep) {
		return &exitError{code: 1}
	}
	return nil
}

// resolveConvert merges the config file, then explicit flags, into a
// pipeline configuration.
func resolveConvert(cmd *cobra.Command) (pipeline.Config, convertOptions, error) {
	var (
		cfg  pipeline.Config
		opts convertOptions
	)
	cfgFile, err := findConfig(cmd)
	if err != nil {
		return cfg, opts, err
	}
	cacheEnabled := true
	if cfgFile != nil {
		cfg, err = cfgFile.Pipeline()
		if err != nil {
			return cfg, opts, err
		}
		opts.outDir = cfgFile.Convert.Output
		opts.ignore = cfgFile.Ignore
		opts.cacheDir = cfgFile.Cache.Dir
		cacheEnabled = cfgFile.Cache.Enabled
	}

	flags := cmd.Flags()
	if flags.Changed("from") {
		from, _ := flags.GetString("from")
		tag, ok := lang.Parse(from)
		if !ok {
			return cfg, opts, fmt.Errorf("unknown source language %q", from)
		}
		cfg.Source = tag
	}
	if flags.Changed("to") || cfgFile == nil {
		to, _ := flags.GetString("to")
		if to == "" {
			return cfg, opts, errors.New("missing target language, set --to")
		}
		tag, ok := lang.Parse(to)
		if !ok {
			return cfg, opts, fmt.Errorf("unknown target language %q", to)
		}
		cfg.Target = tag
	}
	if flags.Changed("level") {
		name, _ := flags.GetString("level")
		level, ok := convert.ParseLevel(name)
		if !ok {
			return cfg, opts, fmt.Errorf("unknown optimization level %q", name)
		}
		cfg.Level = level
	}
	if flags.Changed("style") {
		name, _ := flags.GetString("style")
		style, ok := lang.ParseStyle(name)
		if !ok {
			return cfg, opts, fmt.Errorf("unknown style %q", name)
		}
		cfg.Style = style
	}
	if flags.Changed("preserve-structure") {
		cfg.PreserveStructure, _ = flags.GetBool("preserve-structure")
	}
	if flags.Changed("map") {
		extra, _ := flags.GetStringToString("map")
		if cfg.Custom == nil {
			cfg.Custom = make(map[string]string, len(extra))
		}
		for k, v := range extra {
			cfg.Custom[k] = v
		}
	}
	if flags.Changed("jobs") || cfgFile == nil {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	root := cmd.Root().PersistentFlags()
	if root.Changed("max-issues") || cfg.MaxIssues == 0 {
		cfg.MaxIssues, err = root.GetInt("max-issues")
		if err != nil {
			return cfg, opts, fmt.Errorf("failed to get max-issues flag: %w", err)
		}
	}
	if flags.Changed("out") {
		opts.outDir, _ = flags.GetString("out")
	}

	format, _ := flags.GetString("format")
	opts.format = strings.ToLower(format)
	if opts.format != "pretty" && opts.format != "short" && opts.format != "json" {
		return cfg, opts, fmt.Errorf("unknown format: %s", format)
	}
	uiValue, _ := flags.GetString("ui")
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return cfg, opts, err
	}
	opts.report, _ = flags.GetString("report")
	opts.docs, _ = flags.GetString("docs")
	opts.notes, _ = flags.GetBool("with-notes")
	noCache, _ := flags.GetBool("no-cache")
	opts.noCache = noCache || !cacheEnabled
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return cfg, opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return cfg, opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return cfg, opts, nil
}

// findConfig loads --config, or the nearest config file above the working
// directory. No file yields nil.
func findConfig(cmd *cobra.Command) (*config.File, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

// dominantLanguage is the most frequent detected language, ties going to
// the earlier registry entry.
func dominantLanguage(files []*source.File) lang.Tag {
	counts := make(map[lang.Tag]int)
	for _, f := range files {
		if t := detect.Detect(f); t != lang.Unknown {
			counts[t]++
		}
	}
	best, bestN := lang.Unknown, 0
	for _, s := range lang.All() {
		if n := counts[s.Tag]; n > bestN {
			best, bestN = s.Tag, n
		}
	}
	return best
}

// runCached serves the report from the cache when the rule set and every
// input are unchanged, and runs the pipeline otherwise.
func runCached(ctx context.Context, cfg pipeline.Config, opts convertOptions, files []*source.File) (*pipeline.Bundle, error) {
	var (
		store *cache.Store
		key   string
	)
	if !opts.noCache && !cfg.RetainArtifacts {
		rs, err := cfg.RuleSet()
		if err != nil {
			return nil, err
		}
		if store, err = openCache(opts.cacheDir); err == nil {
			key = cache.Key(fmt.Sprintf("%s/%d", rs.Fingerprint(), cfg.MaxIssues), files)
			if p, ok, err := store.Get(key); err == nil && ok {
				if rep, err := p.Report(files); err == nil {
					return &pipeline.Bundle{RuleSet: rs, Report: rep}, nil
				}
			}
		}
	}

	var (
		bundle *pipeline.Bundle
		err    error
	)
	if opts.format != "json" && !opts.quiet && shouldUseTUI(opts.ui) {
		bundle, err = runWithUI(ctx, fmt.Sprintf("%s -> %s", cfg.Source, cfg.Target), cfg, files)
	} else {
		bundle, err = pipeline.RunBundle(ctx, cfg, files)
	}
	if err != nil {
		return nil, err
	}
	if store != nil && !bundle.Report.Incomplete {
		if err := store.Put(key, cache.FromReport(bundle.Report)); err != nil {
			fmt.Fprintf(os.Stderr, "cache: %v\n", err)
		}
	}
	return bundle, nil
}

func openCache(dir string) (*cache.Store, error) {
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.Open(dir)
}

// writeOutputs writes every converted file below dir at its target path.
func writeOutputs(dir string, rep *pipeline.Report) error {
	for _, fr := range rep.PerFile {
		if fr.Skipped || fr.TargetPath == "" {
			continue
		}
		target := filepath.FromSlash(fr.TargetPath)
		// Inputs outside the working directory land at the top of dir.
		if !filepath.IsLocal(target) {
			target = filepath.Base(target)
		}
		dst := filepath.Join(dir, target)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(dst, []byte(fr.Output), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
	}
	return nil
}
