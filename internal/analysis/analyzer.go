package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/llm"
	"github.com/arludent/clinic-ai/internal/models"
)

const analysisSystemMessage = "Eres un asistente médico especializado en odontología. " +
	"Tu tarea es analizar respuestas de seguimiento post-tratamiento " +
	"y detectar posibles complicaciones. " +
	"Siempre respondes en formato JSON válido."

// Options configures the analysis model call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Analyzer classifies post-treatment follow-up responses. It always returns
// a structurally valid result: provider and parse failures degrade to the
// conservative fallback, never to an error.
type Analyzer struct {
	client   llm.ChatCompleter
	notifier *Notifier
	opts     Options
	logger   *zap.Logger
}

func NewAnalyzer(client llm.ChatCompleter, notifier *Notifier, opts Options, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client:   client,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Analyze runs the survey through the model, applies the escalation
// overrides, and dispatches the webhook notification out of band.
func (a *Analyzer) Analyze(ctx context.Context, survey models.FollowUpSurvey) models.AnalysisResult {
	a.logger.Info("Analyzing follow-up",
		zap.Int64("record_id", survey.RecordID),
		zap.String("patient", survey.PatientName))

	result, ok := a.modelAnalysis(ctx, survey)
	if ok {
		ApplyOverrides(survey, &result)
	} else {
		result = FallbackResult(survey)
	}

	a.logger.Info("Analysis completed",
		zap.Int64("record_id", survey.RecordID),
		zap.String("urgency", result.UrgencyLevel),
		zap.Bool("requires_attention", result.RequiresAttention),
		zap.String("sentiment", result.OverallSentiment))

	if a.notifier != nil {
		a.notifier.Dispatch(models.WebhookPayload{
			RecordID:  survey.RecordID,
			Analysis:  result,
			Timestamp: time.Now().UTC(),
		})
	}
	return result
}

// modelAnalysis calls the model with the JSON-object contract and parses the
// response. ok=false on any provider or parse failure.
func (a *Analyzer) modelAnalysis(ctx context.Context, survey models.FollowUpSurvey) (models.AnalysisResult, bool) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(survey)},
		},
		Temperature: float32(a.opts.Temperature),
		MaxTokens:   a.opts.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		a.logger.Error("Analysis model call failed",
			zap.Int64("record_id", survey.RecordID),
			zap.Error(err))
		return models.AnalysisResult{}, false
	}

	content, err := firstChoice(resp)
	if err != nil {
		a.logger.Error("Analysis model returned no output",
			zap.Int64("record_id", survey.RecordID),
			zap.Error(err))
		return models.AnalysisResult{}, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		a.logger.Warn("Model did not return valid JSON, using fallback",
			zap.Int64("record_id", survey.RecordID),
			zap.Error(err))
		return models.AnalysisResult{}, false
	}
	return result, true
}

func firstChoice(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ApplyOverrides escalates the model's assessment deterministically; it
// never downgrades and is idempotent.
func ApplyOverrides(survey models.FollowUpSurvey, result *models.AnalysisResult) {
	// A patient who says they feel bad is never a low-urgency case.
	if survey.Response.Status == models.PatientStateBad && result.UrgencyLevel == models.UrgencyLow {
		result.UrgencyLevel = models.UrgencyMedium
		result.RequiresAttention = true
	}

	// Substantial free-text symptoms with a low-urgency verdict still need
	// a human to look at them.
	if utf8.RuneCountInString(survey.Response.Symptoms) > 50 && result.UrgencyLevel == models.UrgencyLow {
		result.RequiresAttention = true
	}
}

// FallbackResult is the conservative verdict used when the model fails:
// medium urgency, flagged for manual review, urgent-appointment mirrors the
// patient's own review request.
func FallbackResult(survey models.FollowUpSurvey) models.AnalysisResult {
	return models.AnalysisResult{
		UrgencyLevel:      models.UrgencyMedium,
		RequiresAttention: true,
		OverallSentiment:  models.SentimentNeutral,
		DetectedSymptoms:  []string{"Requiere revisión manual"},
		Recommendation: "Por favor, revisa manualmente esta respuesta. " +
			"El análisis automático no pudo completarse.",
		Summary: fmt.Sprintf("Paciente %s reportó estado: %s",
			survey.PatientName, survey.Response.Status),
		ComplicationProbability: 0.5,
		NeedsUrgentAppointment:  survey.Response.WantsReview,
	}
}

// buildPrompt renders the survey into the structured analysis prompt with
// the mandated JSON output schema.
func buildPrompt(survey models.FollowUpSurvey) string {
	symptoms := survey.Response.Symptoms
	if strings.TrimSpace(symptoms) == "" {
		symptoms = "Ninguno reportado"
	}
	observations := survey.Response.Observations
	if strings.TrimSpace(observations) == "" {
		observations = "Ninguna"
	}
	wantsReview := "No"
	if survey.Response.WantsReview {
		wantsReview = "Sí"
	}

	return fmt.Sprintf(`Eres un asistente médico especializado en odontología. Analiza la siguiente respuesta de seguimiento post-tratamiento.

**INFORMACIÓN DEL PACIENTE:**
- Nombre: %s
- Tratamiento: %s
- Días desde tratamiento: %d

**RESPUESTA DEL PACIENTE:**
- Estado general reportado: %s
- Síntomas/molestias: %s
- Observaciones adicionales: %s
- Solicita cita de revisión: %s

**INSTRUCCIONES DE ANÁLISIS:**

1. **Evaluación de urgencia**: Determina si hay signos de alarma (infección, sangrado excesivo, dolor severo, inflamación anormal).

2. **Sentimiento del paciente**: Clasifica el sentimiento general como positivo, neutral o negativo basándote en su estado y comentarios.

3. **Síntomas de riesgo**: Identifica síntomas específicos que requieran seguimiento:
   - Dolor intenso o que empeora
   - Inflamación progresiva
   - Sangrado persistente
   - Fiebre o malestar general
   - Sensibilidad extrema
   - Problemas de cicatrización

4. **Nivel de urgencia**: Clasifica como:
   - **ALTO**: Signos de complicación grave, requiere atención inmediata
   - **MEDIO**: Molestias moderadas, requiere seguimiento en 24-48h
   - **BAJO**: Recuperación normal, no requiere intervención

5. **Recomendación**: Proporciona una recomendación clara para la secretaria sobre qué acción tomar.

**IMPORTANTE**:
- Considera que algunos síntomas son normales en los primeros días (leve molestia, sensibilidad leve).
- Prioriza la seguridad del paciente: ante la duda, recomienda contacto o revisión.
- Sé específico en las recomendaciones.

Responde en formato JSON con esta estructura exacta:
{
    "nivel_urgencia": "bajo|medio|alto",
    "requiere_atencion": true|false,
    "sentimiento_general": "positivo|neutral|negativo",
    "sintomas_detectados": ["lista", "de", "sintomas"],
    "recomendacion": "texto con recomendación clara",
    "resumen": "resumen ejecutivo en 1-2 líneas",
    "probabilidad_complicacion": 0.0-1.0,
    "necesita_cita_urgente": true|false
}`,
		survey.PatientName,
		survey.TreatmentType,
		survey.DaysSinceTreatment,
		survey.Response.Status,
		symptoms,
		observations,
		wantsReview)
}
