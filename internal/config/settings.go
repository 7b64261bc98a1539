package config

// Settings is the persisted application settings document. It lives in the
// options collection under a single fixed key and is deep-merged over
// DefaultSettings on load, so unknown or missing keys never break the reader.
type Settings struct {
	DarkMode               bool          `json:"dark_mode"`
	Locale                 string        `json:"locale"`
	AutoArchiveDays        *int          `json:"auto_archive_days"`          // nil = disabled
	AutoDeleteArchivedDays *int          `json:"auto_delete_archived_days"`  // nil = disabled
	AI                     AIConfig      `json:"ai"`
	Pricing                PricingConfig `json:"pricing"`
	BackupOptions          BackupOptions `json:"backup_options"`
	S3Options              S3Options     `json:"s3_options"`
}

// AIConfig configures summarization and transcription providers.
type AIConfig struct {
	Providers           []AIProvider       `json:"providers"`
	Tier                string             `json:"tier"` // "standard" | "premium"
	SummaryModel        *AIModelAssignment `json:"summary_model,omitempty"`
	PremiumSummaryModel *AIModelAssignment `json:"premium_summary_model,omitempty"`
	PromptCaching       bool               `json:"prompt_caching"`
	TargetLanguage      string             `json:"target_language"`
	TranscriptionModel  string             `json:"transcription_model"`
}

// AIProvider is one configured upstream model provider.
type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // "openai" | "anthropic" | "openai-compatible" | "openrouter"
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

// AIModelAssignment pins a task to a provider and model.
type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

// PricingConfig holds the rates used by cost estimation.
type PricingConfig struct {
	TranscriptionPerMinute     float64 `json:"transcription_per_minute"`
	SummarizationPer1KTokens   float64 `json:"summarization_per_1k_tokens"`
	PremiumSummaryPer1KTokens  float64 `json:"premium_summary_per_1k_tokens"`
	CharactersPerToken         float64 `json:"characters_per_token"`
}

// BackupOptions controls the scheduled local export archive.
type BackupOptions struct {
	Enable    bool   `json:"enable"`
	Path      string `json:"path"` // S3 object key template
	KeepCount int    `json:"keep_count"`
}

// S3Options configures uploads of export archives to S3-compatible storage.
type S3Options struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	CustomDomain    string `json:"custom_domain"`
	PathStyleAccess bool   `json:"path_style_access"`
}

// DefaultSettings returns the defaults merged under the persisted document.
func DefaultSettings() Settings {
	return Settings{
		DarkMode: false,
		Locale:   "en",
		AI: AIConfig{
			Providers:          []AIProvider{},
			Tier:               "standard",
			TargetLanguage:     "auto",
			TranscriptionModel: "whisper-1",
		},
		Pricing: PricingConfig{
			TranscriptionPerMinute:    0.006,
			SummarizationPer1KTokens:  0.0008,
			PremiumSummaryPer1KTokens: 0.015,
			CharactersPerToken:        4,
		},
		BackupOptions: BackupOptions{
			Enable:    false,
			Path:      "exports/{Y}/{m}/{filename}",
			KeepCount: 7,
		},
	}
}
