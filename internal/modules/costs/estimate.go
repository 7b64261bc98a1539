package costs

import "github.com/echomeet/core/internal/config"

// EstimateTranscription prices an audio transcription by duration.
func EstimateTranscription(pricing config.PricingConfig, durationSeconds int) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	minutes := float64(durationSeconds) / 60
	return minutes * pricing.TranscriptionPerMinute
}

// EstimateSummarization prices a summary call from transcript length,
// using a characters-per-token approximation.
func EstimateSummarization(pricing config.PricingConfig, transcriptChars int, premium bool) float64 {
	if transcriptChars <= 0 {
		return 0
	}
	perChar := pricing.CharactersPerToken
	if perChar <= 0 {
		perChar = 4
	}
	tokens := float64(transcriptChars) / perChar
	rate := pricing.SummarizationPer1KTokens
	if premium {
		rate = pricing.PremiumSummaryPer1KTokens
	}
	return tokens / 1000 * rate
}
