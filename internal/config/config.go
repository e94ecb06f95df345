// Package config loads run configuration from codeshift.toml (or a YAML
// variant) and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"codeshift/internal/convert"
	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
)

// Names are the file names Find looks for, in priority order.
var Names = []string{"codeshift.toml", "codeshift.yaml", "codeshift.yml"}

var (
	ErrConvertSectionMissing = errors.New("missing [convert]")
	ErrTargetMissing         = errors.New("missing [convert].target")
)

// File is the decoded configuration file.
type File struct {
	Path     string            `toml:"-" yaml:"-"`
	Convert  Convert           `toml:"convert" yaml:"convert"`
	Mappings map[string]string `toml:"mappings" yaml:"mappings"`
	Ignore   []string          `toml:"ignore" yaml:"ignore"`
	Cache    Cache             `toml:"cache" yaml:"cache"`
}

type Convert struct {
	Source            string `toml:"source" yaml:"source"`
	Target            string `toml:"target" yaml:"target"`
	Level             string `toml:"level" yaml:"level"`
	Style             string `toml:"style" yaml:"style"`
	PreserveStructure bool   `toml:"preserve_structure" yaml:"preserve_structure"`
	Jobs              int    `toml:"jobs" yaml:"jobs"`
	RetainArtifacts   bool   `toml:"retain_artifacts" yaml:"retain_artifacts"`
	MaxIssues         int    `toml:"max_issues" yaml:"max_issues"`
	Output            string `toml:"output" yaml:"output"`
}

type Cache struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Default returns the values used for keys the file leaves out.
func Default() *File {
	return &File{
		Convert: Convert{Level: "balanced", Style: "standard"},
		Cache:   Cache{Enabled: true},
	}
}

// Find walks up from startDir to the first directory holding one of Names.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		for _, name := range Names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path by extension. [convert].target is required.
func Load(path string) (*File, error) {
	cfg := Default()
	cfg.Path = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	default:
		if err := loadTOML(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadTOML(path string, cfg *File) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("convert") {
		return fmt.Errorf("%s: %w", path, ErrConvertSectionMissing)
	}
	if !meta.IsDefined("convert", "target") || strings.TrimSpace(cfg.Convert.Target) == "" {
		return fmt.Errorf("%s: %w", path, ErrTargetMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	return nil
}

func loadYAML(path string, cfg *File) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	var raw struct {
		Convert map[string]any `yaml:"convert"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if raw.Convert == nil {
		return fmt.Errorf("%s: %w", path, ErrConvertSectionMissing)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if _, ok := raw.Convert["target"]; !ok || strings.TrimSpace(cfg.Convert.Target) == "" {
		return fmt.Errorf("%s: %w", path, ErrTargetMissing)
	}
	return nil
}

// LoadEnv reads .env from dir into the process environment. Variables
// already set win; a missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Pipeline converts the file into a pipeline configuration.
func (f *File) Pipeline() (pipeline.Config, error) {
	var cfg pipeline.Config
	c := f.Convert
	if c.Source != "" {
		tag, ok := lang.Parse(c.Source)
		if !ok {
			return cfg, fmt.Errorf("%s: unknown source language %q", f.Path, c.Source)
		}
		cfg.Source = tag
	}
	tag, ok := lang.Parse(c.Target)
	if !ok {
		return cfg, fmt.Errorf("%s: unknown target language %q", f.Path, c.Target)
	}
	cfg.Target = tag
	level, ok := convert.ParseLevel(c.Level)
	if !ok {
		return cfg, fmt.Errorf("%s: unknown optimization level %q", f.Path, c.Level)
	}
	style, ok := lang.ParseStyle(c.Style)
	if !ok {
		return cfg, fmt.Errorf("%s: unknown style %q", f.Path, c.Style)
	}
	cfg.Level, cfg.Style = level, style
	cfg.PreserveStructure = c.PreserveStructure
	cfg.Jobs = c.Jobs
	cfg.RetainArtifacts = c.RetainArtifacts
	cfg.MaxIssues = c.MaxIssues
	if len(f.Mappings) > 0 {
		cfg.Custom = make(map[string]string, len(f.Mappings))
		for k, v := range f.Mappings {
			cfg.Custom[k] = v
		}
	}
	return cfg, nil
}
