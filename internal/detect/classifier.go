package detect

import "codeshift/internal/lang"

// Classification is the result of scoring evidence for a file.
type Classification struct {
	Lang            lang.Tag
	Score           int
	TotalScore      int
	Confidence      float64
	RunnerUp        lang.Tag
	RunnerUpScore   int
	ObservedSignals int
}

// Classifier scores evidence and chooses a dominant language.
// Ties go to the language declared first in the registry.
// Callers apply their own thresholds.
type Classifier struct{}

func (Classifier) Classify(e *Evidence) Classification {
	if e == nil || len(e.hints) == 0 {
		return Classification{Lang: lang.Unknown}
	}

	scores := map[lang.Tag]int{}
	total := 0
	observed := 0
	for _, h := range e.hints {
		observed++
		if h.Score <= 0 || h.Lang == lang.Unknown {
			continue
		}
		scores[h.Lang] += h.Score
		total += h.Score
	}

	bestKind := lang.Unknown
	bestScore := 0
	runnerKind := lang.Unknown
	runnerScore := 0
	for _, s := range lang.All() {
		score := scores[s.Tag]
		if score > bestScore {
			runnerKind, runnerScore = bestKind, bestScore
			bestKind, bestScore = s.Tag, score
			continue
		}
		if score > runnerScore {
			runnerKind, runnerScore = s.Tag, score
		}
	}

	conf := 0.0
	if total > 0 {
		conf = float64(bestScore) / float64(total)
	}

	return Classification{
		Lang:            bestKind,
		Score:           bestScore,
		TotalScore:      total,
		Confidence:      conf,
		RunnerUp:        runnerKind,
		RunnerUpScore:   runnerScore,
		ObservedSignals: observed,
	}
}
