package detect

import (
	"fmt"

	"github.com/go-enry/go-enry/v2"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/source"
)

// Thresholds for keyword scoring.
const (
	MinConfidence = 0.40
	MinScore      = 2
)

// Stage names the step of the policy that decided.
type Stage uint8

const (
	StageNone Stage = iota
	StageHint
	StageExtension
	StageSignature
	StageKeywords
)

func (s Stage) String() string {
	switch s {
	case StageHint:
		return "hint"
	case StageExtension:
		return "extension"
	case StageSignature:
		return "signature"
	case StageKeywords:
		return "keywords"
	default:
		return "none"
	}
}

// Result explains a detection decision.
type Result struct {
	Lang       lang.Tag
	Stage      Stage
	Confidence float64
	Reason     string
	Keywords   Classification
	Issues     []diag.Diagnostic
}

// Detect returns the language tag of f, lang.Unknown when undecidable.
func Detect(f *source.File) lang.Tag {
	return Classify(f).Lang
}

// Classify runs the detection policy and reports how it decided.
// A file that ends up Unknown always carries one warning.
func Classify(f *source.File) Result {
	var res Result
	whole := source.SpanOf(f.ID, 0, 0)

	if f.Hint != "" {
		if tag, ok := lang.Parse(f.Hint); ok {
			return Result{Lang: tag, Stage: StageHint, Confidence: 1, Reason: "hint " + f.Hint}
		}
		res.Issues = append(res.Issues, diag.NewWarning(diag.DetUnknownHint, whole,
			fmt.Sprintf("language hint %q is not supported, detecting from content", f.Hint)))
	}

	if len(f.Content) > 0 && enry.IsBinary(f.Content) {
		res.Issues = append(res.Issues, diag.NewWarning(diag.DetBinaryContent, whole,
			fmt.Sprintf("%s: binary content, skipped", f.Path)))
		return res
	}

	candidates := lang.ByExtension(f.Path)
	if len(candidates) == 1 {
		res.Lang, res.Stage, res.Confidence = candidates[0], StageExtension, 1
		res.Reason = "extension"
		return res
	}

	if tag, sig, ok := matchSignature(f, candidates); ok {
		res.Lang, res.Stage, res.Confidence = tag, StageSignature, 1
		res.Reason = sig.Reason
		return res
	}

	ev := NewEvidence()
	CollectWords(ev, f)
	cls := Classifier{}.Classify(ev)
	res.Keywords = cls
	if cls.Lang != lang.Unknown && cls.Score >= MinScore && cls.Confidence >= MinConfidence {
		res.Lang, res.Stage, res.Confidence = cls.Lang, StageKeywords, cls.Confidence
		res.Reason = fmt.Sprintf("keywords %d/%d", cls.Score, cls.TotalScore)
		return res
	}

	msg := fmt.Sprintf("%s: source language could not be determined", f.Path)
	if len(f.Content) == 0 {
		msg = fmt.Sprintf("%s: empty file with no known extension", f.Path)
	} else if cls.Lang != lang.Unknown {
		msg = fmt.Sprintf("%s: best guess %s at confidence %.2f is below threshold", f.Path, cls.Lang, cls.Confidence)
	}
	res.Issues = append(res.Issues, diag.NewWarning(diag.DetUnknownLanguage, whole, msg))
	return res
}

// matchSignature returns the most specific matching signature. When the
// extension was ambiguous only its candidates are considered.
func matchSignature(f *source.File, candidates []lang.Tag) (lang.Tag, lang.Signature, bool) {
	allowed := func(lang.Tag) bool { return true }
	if len(candidates) > 1 {
		set := make(map[lang.Tag]bool, len(candidates))
		for _, c := range candidates {
			set[c] = true
		}
		allowed = func(t lang.Tag) bool { return set[t] }
	}

	var (
		best    lang.Signature
		bestTag = lang.Unknown
	)
	for _, s := range lang.All() {
		if !allowed(s.Tag) {
			continue
		}
		for _, sig := range s.Signatures {
			// strictly greater keeps the earlier registry entry on ties
			if sig.Specificity <= best.Specificity {
				continue
			}
			if sig.Pattern.Match(f.Content) {
				best, bestTag = sig, s.Tag
			}
		}
	}
	return bestTag, best, bestTag != lang.Unknown
}
