package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// APIResponse is the envelope every internal backend endpoint returns.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the clinic backend's internal API. All requests carry the
// static X-Internal-API-Key header; these endpoints skip user authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Request performs one backend call and decodes the response envelope.
// Transport failures and non-2xx statuses come back as errors; the caller
// decides how to render them.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) (*APIResponse, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Internal-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Backend request", zap.String("method", method), zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed", zap.String("url", reqURL), zap.Error(err))
		return nil, fmt.Errorf("backend connection error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Backend returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", reqURL))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return &apiResp, nil
}

// ----------------------------------------
// Patients
// ----------------------------------------

func (c *Client) GetPatient(ctx context.Context, patientID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/pacientes/%d", patientID), nil, nil)
}

func (c *Client) GetPatientByDNI(ctx context.Context, dni string) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, "/api/internal/pacientes/dni/"+url.PathEscape(dni), nil, nil)
}

func (c *Client) SearchPatients(ctx context.Context, limit int, search string) (*APIResponse, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	if search != "" {
		q.Set("search", search)
	}
	return c.Request(ctx, http.MethodGet, "/api/internal/pacientes", nil, q)
}

// ----------------------------------------
// Appointments
// ----------------------------------------

func (c *Client) GetAppointment(ctx context.Context, appointmentID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/citas/%d", appointmentID), nil, nil)
}

func (c *Client) GetPatientAppointments(ctx context.Context, patientID int64, status string) (*APIResponse, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"estado": {status}}
	}
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/pacientes/%d/citas", patientID), nil, q)
}

func (c *Client) GetDoctorAppointments(ctx context.Context, doctorID int64, date string) (*APIResponse, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"fecha": {date}}
	}
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/medicos/%d/citas", doctorID), nil, q)
}

func (c *Client) GetDoctorAvailability(ctx context.Context, doctorID int64, date string) (*APIResponse, error) {
	q := url.Values{"fecha": {date}}
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/medicos/%d/disponibilidad", doctorID), nil, q)
}

// ----------------------------------------
// Clinical history
// ----------------------------------------

func (c *Client) GetClinicalHistory(ctx context.Context, patientID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/pacientes/%d/historial", patientID), nil, nil)
}

func (c *Client) GetClinicalHistorySummary(ctx context.Context, patientID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/pacientes/%d/historial-resumen", patientID), nil, nil)
}

func (c *Client) GetPatientTreatments(ctx context.Context, patientID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/pacientes/%d/tratamientos", patientID), nil, nil)
}

// ----------------------------------------
// Doctors
// ----------------------------------------

func (c *Client) GetDoctor(ctx context.Context, doctorID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/medicos/%d", doctorID), nil, nil)
}

func (c *Client) GetDoctors(ctx context.Context, specialty string) (*APIResponse, error) {
	var q url.Values
	if specialty != "" {
		q = url.Values{"especialidad": {specialty}}
	}
	return c.Request(ctx, http.MethodGet, "/api/internal/medicos", nil, q)
}

// ----------------------------------------
// Scheduling
// ----------------------------------------

func (c *Client) DetermineUserType(ctx context.Context, userID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/api/internal/agendamiento/tipo-usuario/%d", userID), nil, nil)
}

type SuggestSlotsRequest struct {
	DoctorID        int64  `json:"id_medico"`
	StartDate       string `json:"fecha_inicio"`
	EndDate         string `json:"fecha_fin,omitempty"`
	DurationMinutes int    `json:"duracion_minutos"`
	Limit           int    `json:"limite"`
}

func (c *Client) SuggestSlots(ctx context.Context, req SuggestSlotsRequest) (*APIResponse, error) {
	return c.Request(ctx, http.MethodPost, "/api/internal/agendamiento/sugerir-horarios", req, nil)
}

type CreateAppointmentRequest struct {
	UserID    int64  `json:"id_usuario"`
	DoctorID  int64  `json:"id_medico"`
	StartTime string `json:"fecha_hora_inicio"`
	EndTime   string `json:"fecha_hora_fin"`
	Reason    string `json:"motivo,omitempty"`
	Type      string `json:"tipo_cita,omitempty"`
	Notes     string `json:"notas,omitempty"`
}

func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*APIResponse, error) {
	return c.Request(ctx, http.MethodPost, "/api/internal/agendamiento/registrar-cita", req, nil)
}

func (c *Client) ConfirmAppointment(ctx context.Context, appointmentID int64) (*APIResponse, error) {
	return c.Request(ctx, http.MethodPatch, fmt.Sprintf("/api/internal/agendamiento/confirmar-cita/%d", appointmentID), nil, nil)
}

type LogInteractionRequest struct {
	UserID     int64          `json:"id_usuario"`
	IntentType string         `json:"tipo_intencion,omitempty"`
	UserInput  string         `json:"entrada_usuario,omitempty"`
	AIResponse string         `json:"respuesta_ia,omitempty"`
	Outcome    string         `json:"estado_resultado,omitempty"`
	Context    map[string]any `json:"contexto,omitempty"`
}

func (c *Client) LogInteraction(ctx context.Context, req LogInteractionRequest) (*APIResponse, error) {
	return c.Request(ctx, http.MethodPost, "/api/internal/interacciones", req, nil)
}

// HealthCheck reports whether the backend's internal API is reachable.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.Request(ctx, http.MethodGet, "/api/internal/health", nil, nil)
	return err == nil
}
