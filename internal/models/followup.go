package models

import "time"

// Urgency levels and sentiments use the Spanish values the backend and the
// model contract agreed on. They are part of the wire format, do not rename.
const (
	UrgencyLow    = "bajo"
	UrgencyMedium = "medio"
	UrgencyHigh   = "alto"

	SentimentPositive = "positivo"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negativo"

	PatientStateBad = "mal"
)

// PatientResponse is the patient's self-reported post-treatment state.
type PatientResponse struct {
	Status       string `json:"estado_paciente"`
	Symptoms     string `json:"sintomas_reportados,omitempty"`
	Observations string `json:"observaciones_paciente,omitempty"`
	WantsReview  bool   `json:"necesita_revision"`
}

// FollowUpSurvey is the input to the analysis pipeline.
type FollowUpSurvey struct {
	RecordID           int64           `json:"seguimiento_id"`
	PatientName        string          `json:"paciente_nombre"`
	TreatmentType      string          `json:"tipo_tratamiento"`
	DaysSinceTreatment int             `json:"dias_desde_tratamiento"`
	Response           PatientResponse `json:"respuesta"`
}

// AnalysisResult is the structured outcome of one follow-up analysis.
type AnalysisResult struct {
	UrgencyLevel            string   `json:"nivel_urgencia"`
	RequiresAttention       bool     `json:"requiere_atencion"`
	OverallSentiment        string   `json:"sentimiento_general"`
	DetectedSymptoms        []string `json:"sintomas_detectados"`
	Recommendation          string   `json:"recomendacion"`
	Summary                 string   `json:"resumen"`
	ComplicationProbability float64  `json:"probabilidad_complicacion"`
	NeedsUrgentAppointment  bool     `json:"necesita_cita_urgente"`
}

// WebhookPayload is posted to the backend after each analysis.
type WebhookPayload struct {
	RecordID  int64          `json:"seguimiento_id"`
	Analysis  AnalysisResult `json:"analisis"`
	Timestamp time.Time      `json:"timestamp"`
}
