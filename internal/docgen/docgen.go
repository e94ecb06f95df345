// Package docgen renders a markdown technical document from a finished run.
package docgen

import (
	"fmt"
	"sort"
	"strings"

	"codeshift/internal/convert"
	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
)

// FileName is the default name of the rendered document.
const FileName = "CONVERSION.md"

// coverageTarget is the aggregate coverage below which tests are recommended.
const coverageTarget = 0.9

type section struct {
	name    string
	content string
}

// Render produces the document for b. Sections with nothing to say are
// left out.
func Render(b *pipeline.Bundle) []byte {
	if b == nil || b.Report == nil {
		return []byte("# Conversion Report\n\n_No report._\n")
	}
	sections := []section{
		{"Summary", renderSummary(b)},
		{"Languages", renderLanguages(b.Report)},
		{"Files", renderFiles(b.Report)},
		{"Dependencies", renderDependencies(b)},
		{"Procedures", renderProcedures(b.Report)},
		{"Issues", renderIssues(b.Report)},
		{"Manual Review", renderReview(b.Report)},
		{"Recommendations", renderRecommendations(b)},
	}

	var sb strings.Builder
	sb.WriteString("# Conversion Report\n\n")
	for _, sec := range sections {
		if sec.content == "" {
			continue
		}
		sb.WriteString(sec.content)
	}
	return []byte(sb.String())
}

func renderSummary(b *pipeline.Bundle) string {
	r := b.Report
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Request: `%s`\n", r.RequestID))
	sb.WriteString(fmt.Sprintf("- Conversion: %s -> %s\n", r.SourceLanguage, r.TargetLanguage))
	sb.WriteString(fmt.Sprintf("- Optimization level: %s, style: %s\n", r.Level, r.Style))
	if b.RuleSet != nil {
		sb.WriteString(fmt.Sprintf("- Rule set: `%s`", short(b.RuleSet.Fingerprint())))
		if keys := b.RuleSet.CustomKeys(); len(keys) > 0 {
			sb.WriteString(fmt.Sprintf(" (custom mappings: %s)", strings.Join(keys, ", ")))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("- Files: %d\n", len(r.PerFile)))
	sb.WriteString(fmt.Sprintf("- Aggregate accuracy: %s\n", percent(r.AggregateAccuracy)))
	sb.WriteString(fmt.Sprintf("- Aggregate coverage: %.1f%%\n", r.AggregateCoverage*100))
	sb.WriteString(fmt.Sprintf("- Average complexity: %.2f\n", r.AverageComplexity))
	if r.Incomplete {
		sb.WriteString("- **Incomplete**: the run was cancelled before every file was processed.\n")
	}
	if r.Cached {
		sb.WriteString("- Served from cache.\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderLanguages(r *pipeline.Report) string {
	counts := make(map[lang.Tag]int)
	for _, fr := range r.PerFile {
		counts[fr.Language]++
	}
	if len(counts) == 0 {
		return ""
	}
	tags := make([]lang.Tag, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var sb strings.Builder
	sb.WriteString("## Languages\n\n")
	sb.WriteString("| Language | Files |\n")
	sb.WriteString("|----------|-------|\n")
	for _, t := range tags {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", t, counts[t]))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderFiles(r *pipeline.Report) string {
	if len(r.PerFile) == 0 {
		return "## Files\n\n_No files._\n\n"
	}
	var sb strings.Builder
	sb.WriteString("## Files\n\n")
	sb.WriteString("| File | Target | Blocks | Converted | Accuracy | LOC | Cyclomatic |\n")
	sb.WriteString("|------|--------|--------|-----------|----------|-----|------------|\n")
	for _, fr := range r.PerFile {
		if fr.Skipped {
			sb.WriteString(fmt.Sprintf("| `%s` | _skipped_ | - | - | - | - | - |\n", fr.Path))
			continue
		}
		target := fr.TargetPath
		if target == "" {
			target = "-"
		}
		sb.WriteString(fmt.Sprintf("| `%s` | `%s` | %d | %d | %s | %d | %d |\n",
			fr.Path, target, fr.Blocks, fr.Converted, percent(fr.Accuracy),
			fr.Metrics.LOC, fr.Metrics.Cyclomatic))
	}
	sb.WriteString("\n")
	return sb.String()
}

// renderDependencies needs retained artifacts; without them it is omitted.
func renderDependencies(b *pipeline.Bundle) string {
	if len(b.Artifacts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Dependencies\n\n")
	found := false
	for _, a := range b.Artifacts {
		if a.Model == nil || len(a.Model.Deps) == 0 {
			continue
		}
		found = true
		sb.WriteString(fmt.Sprintf("### `%s`\n\n", a.File.Path))
		for _, d := range a.Model.Deps {
			sb.WriteString(fmt.Sprintf("- `%s`\n", d))
		}
		sb.WriteString("\n")
	}
	if !found {
		sb.WriteString("_No dependencies detected._\n\n")
	}
	return sb.String()
}

func renderProcedures(r *pipeline.Report) string {
	var sb strings.Builder
	rows := 0
	for _, fr := range r.PerFile {
		for _, p := range fr.Metrics.Procedures {
			if rows == 0 {
				sb.WriteString("## Procedures\n\n")
				sb.WriteString("| File | Procedure | Cyclomatic | Lines | |\n")
				sb.WriteString("|------|-----------|------------|-------|-|\n")
			}
			rows++
			name := p.Name
			if p.Implicit {
				name = "_(top level)_"
			}
			flag := ""
			if p.Cyclomatic >= convert.HighComplexity {
				flag = "review"
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %d | %d | %s |\n",
				fr.Path, name, p.Cyclomatic, p.Lines, flag))
		}
	}
	if rows == 0 {
		return ""
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderIssues(r *pipeline.Report) string {
	var errs, warns int
	byCode := make(map[string]int)
	for _, fr := range r.PerFile {
		errs += fr.Errors
		warns += fr.Warnings
		for _, is := range fr.Issues {
			byCode[is.Code]++
		}
	}
	var sb strings.Builder
	sb.WriteString("## Issues\n\n")
	if errs == 0 && warns == 0 {
		sb.WriteString("_No issues._\n\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("%d error(s), %d warning(s).\n\n", errs, warns))
	codes := make([]string, 0, len(byCode))
	for c := range byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	if len(codes) > 0 {
		sb.WriteString("| Code | Reported |\n")
		sb.WriteString("|------|----------|\n")
		for _, c := range codes {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", c, byCode[c]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderReview(r *pipeline.Report) string {
	if len(r.ManualReview) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Manual Review\n\n")
	sb.WriteString(fmt.Sprintf("Accuracy below %.0f%%:\n\n", pipeline.ReviewThreshold*100))
	for _, p := range r.ManualReview {
		sb.WriteString(fmt.Sprintf("- `%s`\n", p))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderRecommendations(b *pipeline.Bundle) string {
	r := b.Report
	var (
		recs            []string
		issues, outputs int
	)
	for _, fr := range r.PerFile {
		issues += fr.Errors + fr.Warnings
		if !fr.Skipped && fr.Converted > 0 {
			outputs++
		}
	}
	if outputs == 0 {
		recs = append(recs, "No file was converted; check the source language and the skipped files.")
	}
	if r.AggregateAccuracy != nil && *r.AggregateAccuracy < pipeline.ReviewThreshold {
		recs = append(recs, "Review the converted code for missing functionality.")
	}
	if r.AggregateCoverage < coverageTarget {
		recs = append(recs, fmt.Sprintf("Add tests for the converted code; only %.1f%% of blocks were converted.", r.AggregateCoverage*100))
	}
	if issues > 0 {
		recs = append(recs, fmt.Sprintf("Address the %d reported issue(s) before deployment.", issues))
	}
	for _, a := range b.Artifacts {
		if a.Model != nil && len(a.Model.Deps) > 0 {
			recs = append(recs, "Verify that external dependencies have target equivalents.")
			break
		}
	}
	if len(recs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Recommendations\n\n")
	for _, rec := range recs {
		sb.WriteString("- " + rec + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
