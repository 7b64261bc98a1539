package ai

import (
	"testing"

	appcfg "github.com/echomeet/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProvider(t *testing.T) {
	cfg := appcfg.AIConfig{Providers: []appcfg.AIProvider{
		{ID: "p1", Type: "openai", Enabled: false},
		{ID: "p2", Type: "anthropic", Enabled: true},
		{ID: "p3", Type: "openai", Enabled: true},
	}}

	t.Run("assignment wins when enabled", func(t *testing.T) {
		p := selectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "p3"})
		require.NotNil(t, p)
		assert.Equal(t, "p3", p.ID)
	})

	t.Run("disabled assignment falls back to first enabled", func(t *testing.T) {
		p := selectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "p1"})
		require.NotNil(t, p)
		assert.Equal(t, "p2", p.ID)
	})

	t.Run("nil assignment picks first enabled", func(t *testing.T) {
		p := selectProvider(cfg, nil)
		require.NotNil(t, p)
		assert.Equal(t, "p2", p.ID)
	})

	t.Run("no enabled providers yields nil", func(t *testing.T) {
		empty := appcfg.AIConfig{Providers: []appcfg.AIProvider{{ID: "x", Enabled: false}}}
		assert.Nil(t, selectProvider(empty, nil))
	})
}

func TestResolveModelID(t *testing.T) {
	provider := &appcfg.AIProvider{DefaultModel: "default-model"}

	assert.Equal(t, "pinned", resolveModelID(provider, &appcfg.AIModelAssignment{Model: " pinned "}))
	assert.Equal(t, "default-model", resolveModelID(provider, &appcfg.AIModelAssignment{}))
	assert.Equal(t, "default-model", resolveModelID(provider, nil))
}

func TestProviderTypeNormalization(t *testing.T) {
	assert.True(t, isOpenAICompatibleProviderType("openai-compatible"))
	assert.True(t, isOpenAICompatibleProviderType("OpenAI_Compatible"))
	assert.True(t, isOpenAICompatibleProviderType("openrouter"))
	assert.False(t, isOpenAICompatibleProviderType("openai"))

	assert.True(t, isAnthropicProviderType("Anthropic"))
	assert.False(t, isAnthropicProviderType("openai"))
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	assert.Equal(t, "", normalizeOpenAIBaseURL(""))
	assert.Equal(t, "https://example.com/v1", normalizeOpenAIBaseURL("https://example.com"))
	assert.Equal(t, "https://example.com/v1", normalizeOpenAIBaseURL("https://example.com/v1/"))
	assert.Equal(t, "https://example.com/proxy/v1", normalizeOpenAIBaseURL("https://example.com/proxy"))
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com", normalizeOpenAICompatibleEndpoint(""))
	assert.Equal(t, "https://example.com", normalizeOpenAICompatibleEndpoint("https://example.com/v1"))
	assert.Equal(t, "https://example.com", normalizeOpenAICompatibleEndpoint("https://example.com/"))
}

func TestUnmarshalAIJSON(t *testing.T) {
	type doc struct {
		Name string `json:"name"`
	}

	t.Run("plain json", func(t *testing.T) {
		var d doc
		require.NoError(t, unmarshalAIJSON(`{"name":"a"}`, &d))
		assert.Equal(t, "a", d.Name)
	})

	t.Run("fenced json", func(t *testing.T) {
		var d doc
		require.NoError(t, unmarshalAIJSON("```json\n{\"name\":\"b\"}\n```", &d))
		assert.Equal(t, "b", d.Name)
	})

	t.Run("json buried in prose", func(t *testing.T) {
		var d doc
		require.NoError(t, unmarshalAIJSON(`Here is the result: {"name":"c"} hope it helps`, &d))
		assert.Equal(t, "c", d.Name)
	})

	t.Run("garbage fails", func(t *testing.T) {
		var d doc
		assert.Error(t, unmarshalAIJSON("no json here", &d))
	})
}
