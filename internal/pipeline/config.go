package pipeline

import (
	"errors"
	"fmt"
	"runtime"

	"codeshift/internal/convert"
	"codeshift/internal/lang"
	"codeshift/internal/observ"
)

// Config is one conversion request.
type Config struct {
	Source            lang.Tag
	Target            lang.Tag
	Custom            map[string]string
	Level             convert.Level
	Style             lang.Style
	PreserveStructure bool

	Jobs            int  // worker count, 0 means GOMAXPROCS
	RetainArtifacts bool // keep models and metrics in the Bundle
	MaxIssues       int  // per-file issue limit, 0 means unlimited

	Progress ProgressSink  // optional
	Timer    *observ.Timer // optional
}

// RuleSet validates cfg and builds the rule set of the run.
func (cfg *Config) RuleSet() (*convert.RuleSet, error) {
	if cfg.Source == lang.Unknown {
		return nil, &ConfigurationError{Field: "sourceLanguage", Err: errors.New("missing")}
	}
	if cfg.Target == lang.Unknown {
		return nil, &ConfigurationError{Field: "targetLanguage", Err: errors.New("missing")}
	}
	if cfg.Jobs < 0 {
		return nil, &ConfigurationError{Field: "jobs", Err: fmt.Errorf("must not be negative, got %d", cfg.Jobs)}
	}
	if cfg.MaxIssues < 0 {
		return nil, &ConfigurationError{Field: "maxIssues", Err: fmt.Errorf("must not be negative, got %d", cfg.MaxIssues)}
	}
	rs, err := convert.NewRuleSet(convert.Options{
		Source:            cfg.Source,
		Target:            cfg.Target,
		Level:             cfg.Level,
		Style:             cfg.Style,
		Custom:            cfg.Custom,
		PreserveStructure: cfg.PreserveStructure,
	})
	if err != nil {
		field := "options"
		switch {
		case errors.Is(err, convert.ErrUnsupportedPair):
			field = "languagePair"
		case errors.Is(err, convert.ErrBadMapping):
			field = "customMappings"
		}
		return nil, &ConfigurationError{Field: field, Err: err}
	}
	return rs, nil
}

func (cfg *Config) jobs(files int) int {
	n := cfg.Jobs
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, files))
}
