package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/models"
)

type fakeCompleter struct {
	content string
	err     error
	request *openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.request = &req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: f.content,
			},
		}},
	}, nil
}

func survey(status, symptoms string, wantsReview bool) models.FollowUpSurvey {
	return models.FollowUpSurvey{
		RecordID:           17,
		PatientName:        "Carlos Quispe",
		TreatmentType:      "extracción",
		DaysSinceTreatment: 3,
		Response: models.PatientResponse{
			Status:      status,
			Symptoms:    symptoms,
			WantsReview: wantsReview,
		},
	}
}

func modelJSON(urgency string, attention bool) string {
	out, _ := json.Marshal(models.AnalysisResult{
		UrgencyLevel:            urgency,
		RequiresAttention:       attention,
		OverallSentiment:        models.SentimentNeutral,
		DetectedSymptoms:        []string{"sensibilidad leve"},
		Recommendation:          "Sin acción necesaria",
		Summary:                 "Recuperación dentro de lo esperado",
		ComplicationProbability: 0.1,
	})
	return string(out)
}

func newTestAnalyzer(completer *fakeCompleter) *Analyzer {
	return NewAnalyzer(completer, nil, Options{
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   800,
	}, zap.NewNop())
}

func TestAnalyzer_Analyze_ModelResult(t *testing.T) {
	completer := &fakeCompleter{content: modelJSON(models.UrgencyLow, false)}
	analyzer := newTestAnalyzer(completer)

	result := analyzer.Analyze(context.Background(), survey("bien", "", false))

	assert.Equal(t, models.UrgencyLow, result.UrgencyLevel)
	assert.False(t, result.RequiresAttention)
	assert.Equal(t, []string{"sensibilidad leve"}, result.DetectedSymptoms)

	// The request carries the JSON contract and the survey details.
	require.NotNil(t, completer.request)
	require.NotNil(t, completer.request.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, completer.request.ResponseFormat.Type)
	prompt := completer.request.Messages[len(completer.request.Messages)-1].Content
	assert.Contains(t, prompt, "Carlos Quispe")
	assert.Contains(t, prompt, "extracción")
	assert.Contains(t, prompt, "nivel_urgencia")
}

func TestApplyOverrides(t *testing.T) {
	longSymptoms := strings.Repeat("dolor intenso ", 5) // 70 runes

	tests := []struct {
		name          string
		status        string
		symptoms      string
		urgency       string
		attention     bool
		wantUrgency   string
		wantAttention bool
	}{
		{
			name:        "bad status escalates low to medium",
			status:      "mal",
			urgency:     models.UrgencyLow,
			wantUrgency: models.UrgencyMedium, wantAttention: true,
		},
		{
			name:        "bad status leaves high urgency alone",
			status:      "mal",
			urgency:     models.UrgencyHigh,
			attention:   true,
			wantUrgency: models.UrgencyHigh, wantAttention: true,
		},
		{
			name:        "long symptoms force attention on low urgency",
			status:      "regular",
			symptoms:    longSymptoms,
			urgency:     models.UrgencyLow,
			wantUrgency: models.UrgencyLow, wantAttention: true,
		},
		{
			name:        "short symptoms do not force attention",
			status:      "bien",
			symptoms:    "leve molestia",
			urgency:     models.UrgencyLow,
			wantUrgency: models.UrgencyLow, wantAttention: false,
		},
		{
			name:        "long symptoms with medium urgency stay untouched",
			status:      "regular",
			symptoms:    longSymptoms,
			urgency:     models.UrgencyMedium,
			wantUrgency: models.UrgencyMedium, wantAttention: false,
		},
		{
			name:        "healthy low urgency passes through",
			status:      "bien",
			urgency:     models.UrgencyLow,
			wantUrgency: models.UrgencyLow, wantAttention: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.AnalysisResult{
				UrgencyLevel:      tt.urgency,
				RequiresAttention: tt.attention,
			}
			ApplyOverrides(survey(tt.status, tt.symptoms, false), &result)
			assert.Equal(t, tt.wantUrgency, result.UrgencyLevel)
			assert.Equal(t, tt.wantAttention, result.RequiresAttention)
		})
	}
}

func TestApplyOverrides_Idempotent(t *testing.T) {
	result := models.AnalysisResult{UrgencyLevel: models.UrgencyLow}
	s := survey("mal", "", false)

	ApplyOverrides(s, &result)
	once := result
	ApplyOverrides(s, &result)
	assert.Equal(t, once, result)
}

func TestAnalyzer_Analyze_Fallback(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		analyzer := newTestAnalyzer(&fakeCompleter{err: errors.New("timeout")})

		result := analyzer.Analyze(context.Background(), survey("mal", "", true))

		assert.Equal(t, models.UrgencyMedium, result.UrgencyLevel)
		assert.True(t, result.RequiresAttention)
		assert.Equal(t, models.SentimentNeutral, result.OverallSentiment)
		assert.Equal(t, []string{"Requiere revisión manual"}, result.DetectedSymptoms)
		assert.InDelta(t, 0.5, result.ComplicationProbability, 0.001)
		assert.Contains(t, result.Summary, "Carlos Quispe")
		assert.Contains(t, result.Summary, "mal")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		analyzer := newTestAnalyzer(&fakeCompleter{content: "lo siento, no puedo"})

		result := analyzer.Analyze(context.Background(), survey("bien", "", false))
		assert.Equal(t, models.UrgencyMedium, result.UrgencyLevel)
		assert.True(t, result.RequiresAttention)
	})

	t.Run("urgent appointment mirrors the review request", func(t *testing.T) {
		withReview := FallbackResult(survey("regular", "", true))
		withoutReview := FallbackResult(survey("regular", "", false))
		assert.True(t, withReview.NeedsUrgentAppointment)
		assert.False(t, withoutReview.NeedsUrgentAppointment)
	})
}

func TestNotifier_Dispatch(t *testing.T) {
	t.Run("delivers payload with internal key", func(t *testing.T) {
		received := make(chan *http.Request, 1)
		var gotBody models.WebhookPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			received <- r
		}))
		defer server.Close()

		notifier := NewNotifier(server.URL, "secret", 5*time.Second, zap.NewNop())
		notifier.Dispatch(models.WebhookPayload{
			RecordID:  17,
			Analysis:  FallbackResult(survey("mal", "", true)),
			Timestamp: time.Now().UTC(),
		})

		select {
		case r := <-received:
			assert.Equal(t, "secret", r.Header.Get("X-Internal-Key"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, int64(17), gotBody.RecordID)
			assert.Equal(t, models.UrgencyMedium, gotBody.Analysis.UrgencyLevel)
		case <-time.After(2 * time.Second):
			t.Fatal("webhook was never delivered")
		}
	})

	t.Run("unreachable endpoint does not panic", func(t *testing.T) {
		notifier := NewNotifier("http://127.0.0.1:1", "secret", time.Second, zap.NewNop())
		assert.NotPanics(t, func() {
			notifier.Dispatch(models.WebhookPayload{RecordID: 1})
			time.Sleep(100 * time.Millisecond)
		})
	})
}

func TestAnalyzer_Analyze_DispatchesWebhook(t *testing.T) {
	received := make(chan models.WebhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload models.WebhookPayload
		json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "secret", 5*time.Second, zap.NewNop())
	analyzer := NewAnalyzer(&fakeCompleter{content: modelJSON(models.UrgencyHigh, true)}, notifier, Options{
		Model: "gpt-4o-mini",
	}, zap.NewNop())

	result := analyzer.Analyze(context.Background(), survey("mal", "sangrado", true))

	select {
	case payload := <-received:
		assert.Equal(t, int64(17), payload.RecordID)
		assert.Equal(t, result.UrgencyLevel, payload.Analysis.UrgencyLevel)
		assert.False(t, payload.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never dispatched")
	}
}
