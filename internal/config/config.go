/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"zr3/muse/internal/apperr"
)

const (
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"

	CacheAsk        = "ask"
	CacheReuse      = "reuse"
	CacheRegenerate = "regenerate"
)

type Config struct {
	Secrets     Secrets   `mapstructure:"secrets"`
	LLM         LLM       `mapstructure:"llm"`
	Paths       Paths     `mapstructure:"paths"`
	Images      Images    `mapstructure:"images"`
	Selection   Selection `mapstructure:"selection"`
	InputTexts  string    `mapstructure:"input-texts"`
	InputImages string    `mapstructure:"input-images"`
	Persona     string    `mapstructure:"persona"`
	Combine     bool      `mapstructure:"combine"`
	Quiet       bool      `mapstructure:"quiet"`
	Verbose     bool      `mapstructure:"verbose"`
}

type Secrets struct {
	OpenAIKey string `mapstructure:"openai-key"`
}

type LLM struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base-url"`
	PersonaModel string        `mapstructure:"persona-model"`
	StoryModel   string        `mapstructure:"story-model"`
	VisionModel  string        `mapstructure:"vision-model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Paths struct {
	Personas string `mapstructure:"personas"`
	Cache    string `mapstructure:"cache"`
	Stories  string `mapstructure:"stories"`
}

type Images struct {
	MaxDimension int  `mapstructure:"max-dimension"`
	Exif         bool `mapstructure:"exif"`
}

type Selection struct {
	Cache       string `mapstructure:"cache"`
	MaxAttempts int    `mapstructure:"max-attempts"`
}

// SetDefaults registers every key so AutomaticEnv can override any of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("secrets.openai-key", "ollama")
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.base-url", "http://localhost:11434/v1")
	v.SetDefault("llm.persona-model", "gemma3:27b")
	v.SetDefault("llm.story-model", "mistral-small:24b-instruct-2501-q8_0")
	v.SetDefault("llm.vision-model", "gemma3:27b")
	v.SetDefault("llm.timeout", 5*time.Minute)
	v.SetDefault("paths.personas", "personas")
	v.SetDefault("paths.cache", "cache")
	v.SetDefault("paths.stories", "stories")
	v.SetDefault("images.max-dimension", 1568)
	v.SetDefault("images.exif", true)
	v.SetDefault("selection.cache", CacheAsk)
	v.SetDefault("selection.max-attempts", 3)
	v.SetDefault("input-texts", "")
	v.SetDefault("input-images", "")
	v.SetDefault("persona", "")
	v.SetDefault("combine", false)
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)
}

// BindEnv wires MUSE_* variables and the conventional OPENAI_API_KEY.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("secrets.openai-key", "MUSE_SECRETS_OPENAI_KEY", "OPENAI_API_KEY")
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperr.New(apperr.Configuration, "decode config", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	invalid := func(key string, format string, args ...any) error {
		return apperr.Errorf(apperr.Configuration, "validate config", key, format, args...)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderStub:
	default:
		return invalid("llm.provider", "unknown provider %q (want %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderStub)
	}
	switch c.Selection.Cache {
	case CacheAsk, CacheReuse, CacheRegenerate:
	default:
		return invalid("selection.cache", "unknown cache policy %q (want ask, reuse or regenerate)", c.Selection.Cache)
	}
	if c.LLM.Timeout <= 0 {
		return invalid("llm.timeout", "must be positive, got %s", c.LLM.Timeout)
	}
	if c.Selection.MaxAttempts < 1 {
		return invalid("selection.max-attempts", "must be at least 1, got %d", c.Selection.MaxAttempts)
	}
	if c.Images.MaxDimension < 0 {
		return invalid("images.max-dimension", "must not be negative, got %d", c.Images.MaxDimension)
	}
	for key, dir := range map[string]string{
		"paths.personas": c.Paths.Personas,
		"paths.cache":    c.Paths.Cache,
		"paths.stories":  c.Paths.Stories,
	} {
		if strings.TrimSpace(dir) == "" {
			return invalid(key, "must not be empty")
		}
	}
	return nil
}

// RequireInputs checks the two directories a batch run needs were given.
func (c *Config) RequireInputs() error {
	var missing []string
	if c.InputTexts == "" {
		missing = append(missing, "--input-texts")
	}
	if c.InputImages == "" {
		missing = append(missing, "--input-images")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.Configuration, "validate flags", "",
			fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", ")))
	}
	return nil
}
