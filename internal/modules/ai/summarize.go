package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appcfg "github.com/echomeet/core/internal/config"
	"github.com/echomeet/core/internal/modules/costs"
	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/echomeet/core/internal/modules/settings"
	"github.com/echomeet/core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const TaskTypeMeetingSummary = "ai:meeting_summary"

var (
	// ErrInvalidSummary is returned when the AI response does not carry a
	// usable structured summary.
	ErrInvalidSummary = errors.New("invalid summary shape from AI")
	// ErrEmptyTranscript is returned when a meeting has no transcript yet.
	ErrEmptyTranscript = errors.New("meeting has no transcript")
)

// Service drives AI summarization and transcription of meetings.
type Service struct {
	meetings    *meetings.Service
	settings    *settings.Service
	costs       *costs.Service
	tasks       *taskqueue.Service
	transcriber Transcriber
	log         *zap.Logger
}

func NewService(meetingsSvc *meetings.Service, settingsSvc *settings.Service, costsSvc *costs.Service, tasks *taskqueue.Service, log *zap.Logger) *Service {
	return &Service{
		meetings:    meetingsSvc,
		settings:    settingsSvc,
		costs:       costsSvc,
		tasks:       tasks,
		transcriber: newWhisperTranscriber(settingsSvc),
		log:         log,
	}
}

// rawSummary is the JSON shape expected back from the model.
type rawSummary struct {
	Executive   string                `json:"executive"`
	KeyPoints   []string              `json:"key_points"`
	ActionItems []meetings.ActionItem `json:"action_items"`
	Decisions   []string              `json:"decisions"`
	Questions   []string              `json:"questions"`
	Category    string                `json:"category"`
	Tags        []string              `json:"tags"`
}

// GenerateSummary summarizes a meeting's transcript, replaces the stored
// summary wholesale, and logs the estimated spend.
func (s *Service) GenerateSummary(ctx context.Context, meetingID string) (*meetings.Summary, error) {
	m, err := s.meetings.Get(meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, meetings.ErrNotFound
	}
	if strings.TrimSpace(m.Transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	cfg, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	premium := cfg.AI.Tier == "premium"
	assignment := cfg.AI.SummaryModel
	if premium && cfg.AI.PremiumSummaryModel != nil {
		assignment = cfg.AI.PremiumSummaryModel
	}
	provider := selectProvider(cfg.AI, assignment)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}
	modelID := resolveModelID(provider, assignment)

	systemPrompt, prompt := buildMeetingSummaryPrompt(cfg.AI.TargetLanguage, m.Transcript)
	raw, err := callAIWithSystemPrompt(ctx, provider, modelID, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	summary, err := parseSummary(raw, modelID)
	if err != nil {
		return nil, err
	}

	if _, err := s.meetings.Update(meetingID, &meetings.UpdateMeetingDTO{Summary: summary}); err != nil {
		return nil, err
	}

	s.costs.LogCost(costs.KindSummarization,
		costs.EstimateSummarization(cfg.Pricing, len(m.Transcript), premium))

	return summary, nil
}

// parseSummary validates the raw model output and stamps generation info.
func parseSummary(raw, modelID string) (*meetings.Summary, error) {
	var parsed rawSummary
	if err := unmarshalAIJSON(raw, &parsed); err != nil {
		return nil, ErrInvalidSummary
	}
	if strings.TrimSpace(parsed.Executive) == "" {
		return nil, ErrInvalidSummary
	}
	if len(parsed.KeyPoints) == 0 {
		return nil, ErrInvalidSummary
	}
	for _, it := range parsed.ActionItems {
		if strings.TrimSpace(it.Task) == "" {
			return nil, ErrInvalidSummary
		}
	}

	return &meetings.Summary{
		Executive:   strings.TrimSpace(parsed.Executive),
		KeyPoints:   parsed.KeyPoints,
		ActionItems: parsed.ActionItems,
		Decisions:   parsed.Decisions,
		Questions:   parsed.Questions,
		Category:    parsed.Category,
		Tags:        parsed.Tags,
		GeneratedAt: time.Now(),
		Model:       modelID,
	}, nil
}

// SummaryPayload is the task payload for async summary generation.
type SummaryPayload struct {
	MeetingID string `json:"meeting_id"`
}

// EnqueueSummary creates an async summary task, deduplicated by meeting.
func (s *Service) EnqueueSummary(ctx context.Context, meetingID string) (*taskqueue.Task, error) {
	m, err := s.meetings.Get(meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, meetings.ErrNotFound
	}

	payload := SummaryPayload{MeetingID: meetingID}
	task, err := s.tasks.Enqueue(ctx, TaskTypeMeetingSummary, payload, meetingID, meetingID)
	if err != nil {
		return nil, err
	}

	if task.Status == taskqueue.TaskPending {
		go s.executeSummaryTask(context.Background(), task.ID, payload)
	}
	return task, nil
}

func (s *Service) executeSummaryTask(ctx context.Context, taskID string, payload SummaryPayload) {
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	summary, err := s.GenerateSummary(ctx, payload.MeetingID)
	if err != nil {
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, gin.H{"summary": summary}, "")
}

// TestConnection performs a minimal round trip against a provider config.
func (s *Service) TestConnection(ctx context.Context, provider *appcfg.AIProvider, modelID string) error {
	raw, err := callAIWithSystemPrompt(ctx, provider, modelID,
		"Reply with the single word: ok", "ping")
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("empty response from provider")
	}
	return nil
}
