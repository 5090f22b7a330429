package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zr3/muse/internal/apperr"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, "cache", cfg.Paths.Cache)
	assert.Equal(t, CacheAsk, cfg.Selection.Cache)
	assert.Equal(t, 3, cfg.Selection.MaxAttempts)
	assert.True(t, cfg.Images.Exif)
}

func TestLoadOverrides(t *testing.T) {
	v := newViper()
	v.Set("llm.timeout", "90s")
	v.Set("selection.cache", CacheReuse)
	v.Set("paths.stories", "out")
	v.Set("input-texts", "texts")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, CacheReuse, cfg.Selection.Cache)
	assert.Equal(t, "out", cfg.Paths.Stories)
	assert.Equal(t, "texts", cfg.InputTexts)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MUSE_LLM_STORY_MODEL", "llama3")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	v := newViper()
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.LLM.StoryModel)
	assert.Equal(t, "sk-test", cfg.Secrets.OpenAIKey)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"provider", "llm.provider", "bard"},
		{"cache policy", "selection.cache", "sometimes"},
		{"timeout", "llm.timeout", "0s"},
		{"attempts", "selection.max-attempts", 0},
		{"cache dir", "paths.cache", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			require.Error(t, err)
			assert.Equal(t, apperr.Configuration, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestRequireInputs(t *testing.T) {
	cfg := &Config{InputTexts: "texts"}
	err := cfg.RequireInputs()
	require.Error(t, err)
	assert.True(t, apperr.Fatal(err))
	assert.Contains(t, err.Error(), "--input-images")

	cfg.InputImages = "images"
	assert.NoError(t, cfg.RequireInputs())
}
