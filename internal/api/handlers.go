package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/agent"
	"github.com/arludent/clinic-ai/internal/analysis"
	"github.com/arludent/clinic-ai/internal/backend"
	"github.com/arludent/clinic-ai/internal/models"
	"github.com/arludent/clinic-ai/internal/session"
	"github.com/arludent/clinic-ai/internal/tools"
)

const (
	serviceName    = "Arludent AI Microservice"
	serviceVersion = "1.0.0"

	maxMessageLength = 1000
)

type Handler struct {
	agent       *agent.Agent
	sessions    *session.Store
	analyzer    *analysis.Analyzer
	backend     *backend.Client
	registry    *tools.Registry
	model       string
	environment string
	logger      *zap.Logger
}

func NewHandler(
	ag *agent.Agent,
	sessions *session.Store,
	analyzer *analysis.Analyzer,
	backendClient *backend.Client,
	registry *tools.Registry,
	model, environment string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		agent:       ag,
		sessions:    sessions,
		analyzer:    analyzer,
		backend:     backendClient,
		registry:    registry,
		model:       model,
		environment: environment,
		logger:      logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// ChatHandler processes one user message through the agent. The X-User-ID
// header, when present, takes precedence over the body's user_id.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "El mensaje no puede estar vacío")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "El mensaje supera la longitud máxima de 1000 caracteres")
		return
	}

	userID := req.UserID
	if header := r.Header.Get("X-User-ID"); header != "" {
		if id, err := strconv.ParseInt(header, 10, 64); err == nil {
			userID = id
		}
	}

	h.logger.Info("Chat request", zap.String("session_id", req.SessionID))

	result := h.agent.Process(r.Context(), req.Message, req.SessionID, userID, req.UserContext)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Message:   result.Message,
		SessionID: result.SessionID,
		Timestamp: time.Now(),
		Metadata:  result.Metadata,
	})
}

// AnalyzeFollowUpHandler runs the follow-up analysis pipeline and returns
// the structured verdict. The webhook fires in the background.
func (h *Handler) AnalyzeFollowUpHandler(w http.ResponseWriter, r *http.Request) {
	var survey models.FollowUpSurvey
	if err := json.NewDecoder(r.Body).Decode(&survey); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if survey.RecordID == 0 || survey.PatientName == "" || survey.Response.Status == "" {
		writeError(w, http.StatusBadRequest, "seguimiento_id, paciente_nombre y respuesta.estado_paciente son obligatorios")
		return
	}

	result := h.analyzer.Analyze(r.Context(), survey)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SessionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history := h.sessions.History(sessionID)

	messages := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		messages = append(messages, map[string]any{
			"role":      msg.Role,
			"content":   msg.Content,
			"timestamp": msg.Timestamp.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sessionID,
		"message_count": len(history),
		"messages":      messages,
	})
}

func (h *Handler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.sessions.Delete(sessionID)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Sesión limpiada exitosamente",
		"session_id": sessionID,
	})
}

func (h *Handler) ActiveSessionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions": h.sessions.ActiveCount(),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

// HealthHandler reports service health including backend reachability.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	backendUp := h.backend.HealthCheck(r.Context())

	status := "healthy"
	if !backendUp {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Services: map[string]bool{
			"backend": backendUp,
			"agent":   true,
		},
		Details: map[string]any{
			"active_sessions": h.sessions.ActiveCount(),
			"environment":     h.environment,
		},
	})
}

func (h *Handler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        serviceName,
		"version":     serviceVersion,
		"environment": h.environment,
		"model":       h.model,
		"tools_count": len(names),
		"tools":       names,
	})
}
