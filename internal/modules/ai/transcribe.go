package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/echomeet/core/internal/modules/costs"
	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/echomeet/core/internal/modules/settings"
)

// MaxTranscribeBytes is the upstream per-request audio size limit.
const MaxTranscribeBytes = 24 << 20

// ErrAudioTooLarge is returned when a single transcription request would
// exceed the upstream size limit. Callers chunk the audio and combine the
// results with TranscribeChunks.
var ErrAudioTooLarge = errors.New("audio exceeds transcription size limit")

// Segment is one timed span of transcribed speech. Offsets are seconds
// from the start of the submitted audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the full output for one audio payload.
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Transcriber converts audio bytes into timed text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (*TranscriptionResult, error)
}

// TranscribeChunks transcribes each chunk in order and concatenates the
// results, re-offsetting every chunk's segment timestamps by the
// cumulative end time of the chunks before it.
func TranscribeChunks(ctx context.Context, t Transcriber, chunks [][]byte, language string) (*TranscriptionResult, error) {
	combined := &TranscriptionResult{}
	var offset float64

	for i, chunk := range chunks {
		res, err := t.Transcribe(ctx, chunk, language)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		if combined.Text != "" && res.Text != "" {
			combined.Text += " "
		}
		combined.Text += res.Text

		var chunkEnd float64
		for _, seg := range res.Segments {
			combined.Segments = append(combined.Segments, Segment{
				Start: seg.Start + offset,
				End:   seg.End + offset,
				Text:  seg.Text,
			})
			if seg.End > chunkEnd {
				chunkEnd = seg.End
			}
		}
		offset += chunkEnd
	}
	return combined, nil
}

// whisperTranscriber calls an OpenAI-compatible audio transcription
// endpoint with a multipart upload.
type whisperTranscriber struct {
	settings *settings.Service
	client   *http.Client
}

func newWhisperTranscriber(settingsSvc *settings.Service) *whisperTranscriber {
	return &whisperTranscriber{
		settings: settingsSvc,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

func (w *whisperTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (*TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, errors.New("audio is empty")
	}
	if len(audio) > MaxTranscribeBytes {
		return nil, ErrAudioTooLarge
	}

	cfg, err := w.settings.Get()
	if err != nil {
		return nil, err
	}
	provider := selectProvider(cfg.AI, nil)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}
	model := strings.TrimSpace(cfg.AI.TranscriptionModel)
	if model == "" {
		model = "whisper-1"
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", "audio.webm")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	_ = mw.WriteField("model", model)
	_ = mw.WriteField("response_format", "verbose_json")
	if language != "" && language != "auto" {
		_ = mw.WriteField("language", language)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := normalizeOpenAICompatibleEndpoint(provider.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(provider.APIKey))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("transcription error: %s", strings.TrimSpace(string(respBody)))
	}

	var parsed struct {
		Text     string `json:"text"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	result := &TranscriptionResult{Text: strings.TrimSpace(parsed.Text)}
	for _, seg := range parsed.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return result, nil
}

// chunkAudio splits an oversized payload into transcribable pieces.
// Splitting on byte boundaries is lossy at the seams; the upstream
// tolerates a truncated frame at chunk edges.
func chunkAudio(audio []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		chunkSize = MaxTranscribeBytes
	}
	if len(audio) <= chunkSize {
		return [][]byte{audio}
	}
	var chunks [][]byte
	for start := 0; start < len(audio); start += chunkSize {
		end := start + chunkSize
		if end > len(audio) {
			end = len(audio)
		}
		chunks = append(chunks, audio[start:end])
	}
	return chunks
}

// TranscribeMeeting runs transcription for a stored meeting's audio,
// chunking when necessary, stores the transcript, and logs the spend.
func (s *Service) TranscribeMeeting(ctx context.Context, meetingID string) (*TranscriptionResult, error) {
	m, err := s.meetings.Get(meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, meetings.ErrNotFound
	}
	if len(m.Audio) == 0 {
		return nil, errors.New("meeting has no audio")
	}

	cfg, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	var result *TranscriptionResult
	if len(m.Audio) > MaxTranscribeBytes {
		result, err = TranscribeChunks(ctx, s.transcriber, chunkAudio(m.Audio, MaxTranscribeBytes), cfg.AI.TargetLanguage)
	} else {
		result, err = s.transcriber.Transcribe(ctx, m.Audio, cfg.AI.TargetLanguage)
	}
	if err != nil {
		return nil, err
	}

	transcript := result.Text
	if _, err := s.meetings.Update(meetingID, &meetings.UpdateMeetingDTO{Transcript: &transcript}); err != nil {
		return nil, err
	}

	s.costs.LogCost(costs.KindTranscription,
		costs.EstimateTranscription(cfg.Pricing, m.Duration))
	return result, nil
}
