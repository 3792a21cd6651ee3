// Package config holds the aligner tunables, loaded from an optional YAML
// file over built-in defaults and validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"srat/internal/index"
	"srat/internal/output"
	"srat/internal/search"
	"srat/internal/seqprep"
)

// Output formats.
const (
	FormatXLSX  = output.FormatXLSX
	FormatTSV   = output.FormatTSV
	FormatJSON  = output.FormatJSON
	FormatJSONL = output.FormatJSONL
)

// Config is the full set of run parameters.
type Config struct {
	MinK       int `yaml:"min_k" validate:"gte=1"`
	MaxK       int `yaml:"max_k" validate:"gtefield=MinK"`
	Window     int `yaml:"window" validate:"gtefield=MinK,ltefield=MaxK"`
	MaxSites   int `yaml:"max_sites" validate:"gte=1"`
	PrefixLen  int `yaml:"prefix_len" validate:"gte=0,ltefield=MinK"`
	MaskMinRun int `yaml:"mask_min_run" validate:"gte=2"`

	Threads int `yaml:"threads" validate:"gte=0"`

	Format          string `yaml:"format" validate:"oneof=xlsx tsv json jsonl"`
	Header          bool   `yaml:"header"`
	NoMatchExitCode int    `yaml:"no_match_exit_code" validate:"gte=0,lte=255"`
}

// Default returns the stock parameters: k in [20,50], a 50-nt window and
// reads discarded above 3 sites.
func Default() Config {
	return Config{
		MinK:            index.DefaultMinK,
		MaxK:            index.DefaultMaxK,
		Window:          search.DefaultConfig().Window,
		MaxSites:        search.DefaultConfig().MaxSites,
		PrefixLen:       index.DefaultPrefixLen,
		MaskMinRun:      seqprep.DefaultMaskMinRun,
		Format:          FormatXLSX,
		Header:          true,
		NoMatchExitCode: 0,
	}
}

var validate = validator.New()

// Validate checks field constraints and returns a single readable error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (%s)", yamlName(fe.Field()), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func yamlName(field string) string {
	switch field {
	case "MinK":
		return "min_k"
	case "MaxK":
		return "max_k"
	case "MaxSites":
		return "max_sites"
	case "PrefixLen":
		return "prefix_len"
	case "MaskMinRun":
		return "mask_min_run"
	case "NoMatchExitCode":
		return "no_match_exit_code"
	}
	return strings.ToLower(field)
}

// Load reads path (if non-empty) over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

// Write stores cfg as YAML at path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IndexOptions derives the index build options.
func (c Config) IndexOptions() index.Options {
	return index.Options{MinK: c.MinK, MaxK: c.MaxK, PrefixLen: c.PrefixLen}
}

// SearchConfig derives the search engine tunables.
func (c Config) SearchConfig() search.Config {
	return search.Config{MinLen: c.MinK, Window: c.Window, MaxSites: c.MaxSites}
}
