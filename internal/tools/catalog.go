package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/backend"
)

// Payload shapes returned by the backend's internal API.

type patientInfo struct {
	ID        int64  `json:"id_paciente"`
	FirstName string `json:"nombres"`
	LastName  string `json:"apellidos"`
	DNI       string `json:"dni"`
	Age       int    `json:"edad"`
	Phone     string `json:"telefono"`
	Allergies string `json:"alergias"`
	BloodType string `json:"grupo_sanguineo"`
}

type doctorInfo struct {
	ID        int64  `json:"id_medico"`
	FirstName string `json:"nombres"`
	LastName  string `json:"apellidos"`
	Specialty string `json:"especialidad"`
	License   string `json:"colegiatura"`
}

type appointmentInfo struct {
	ID        int64       `json:"id_cita"`
	StartTime string      `json:"fecha_hora_inicio"`
	EndTime   string      `json:"fecha_hora_fin"`
	Reason    string      `json:"motivo"`
	Status    string      `json:"estado"`
	Doctor    *doctorInfo `json:"medico"`
}

type historySummary struct {
	TotalVisits      int    `json:"total_consultas"`
	LastVisit        string `json:"ultima_consulta"`
	ActiveTreatments int    `json:"tratamientos_activos"`
	Allergies        string `json:"alergias"`
	RecentDiagnoses  string `json:"diagnosticos_recientes"`
	ImportantNotes   string `json:"notas_importantes"`
}

type availabilityInfo struct {
	AvailableSlots []string `json:"horarios_disponibles"`
}

type userTypeInfo struct {
	IsActivePatient bool        `json:"es_paciente_activo"`
	FullName        string      `json:"nombre_completo"`
	LastDoctor      *doctorInfo `json:"ultimo_medico"`
}

type slotSuggestion struct {
	Date    string `json:"fecha"`
	Time    string `json:"hora"`
	Weekday string `json:"dia_semana"`
}

type createdAppointment struct {
	ID        int64  `json:"id_cita"`
	StartTime string `json:"fecha_hora_inicio"`
	Status    string `json:"estado"`
	Reason    string `json:"motivo"`
}

type loggedInteraction struct {
	ID int64 `json:"id_interaccion"`
}

func objectSchema(props map[string]jsonschema.Definition, required ...string) *jsonschema.Definition {
	return &jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props,
		Required:   required,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// hasData reports whether a successful envelope actually carries a payload.
// Backends may answer success with a literal null body.
func hasData(resp *backend.APIResponse) bool {
	if !resp.Success || len(resp.Data) == 0 {
		return false
	}
	return strings.TrimSpace(string(resp.Data)) != "null"
}

func (r *Registry) searchPatientTool() *Tool {
	return &Tool{
		Name: "buscar_paciente",
		Description: "Busca información de un paciente en el sistema. " +
			"Puedes buscar por DNI, ID de paciente, o nombre. " +
			"Retorna datos básicos del paciente como nombre, edad, alergias, etc. " +
			"Usa esta herramienta cuando el usuario pregunte por un paciente específico.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"dni":         {Type: jsonschema.String, Description: "DNI del paciente a buscar"},
			"paciente_id": {Type: jsonschema.Integer, Description: "ID del paciente a buscar"},
			"nombre":      {Type: jsonschema.String, Description: "Nombre del paciente a buscar"},
		}),
		Run: func(ctx context.Context, args Args) string {
			patientID, hasID := args.Int("paciente_id")
			dni := args.String("dni")
			name := args.String("nombre")

			var (
				resp *backend.APIResponse
				err  error
			)
			switch {
			case hasID:
				resp, err = r.backend.GetPatient(ctx, patientID)
			case dni != "":
				resp, err = r.backend.GetPatientByDNI(ctx, dni)
			case name != "":
				resp, err = r.backend.SearchPatients(ctx, 5, name)
			default:
				return "❌ Debes proporcionar al menos un criterio de búsqueda (DNI, ID o nombre)"
			}
			if err != nil {
				return renderError("buscar paciente", err)
			}
			if !hasData(resp) {
				return "❌ No se encontró el paciente solicitado"
			}

			patient, ok := decodeFirst[patientInfo](resp.Data)
			if !ok || patient.ID == 0 {
				return "❌ No se encontró ningún paciente con ese criterio"
			}
			return fmt.Sprintf(`✅ Paciente encontrado:
- Nombre: %s %s
- DNI: %s
- Edad: %d años
- Teléfono: %s
- Alergias: %s
- Grupo sanguíneo: %s`,
				patient.FirstName, patient.LastName,
				orDefault(patient.DNI, "No registrado"),
				patient.Age,
				orDefault(patient.Phone, "No registrado"),
				orDefault(patient.Allergies, "Ninguna registrada"),
				orDefault(patient.BloodType, "No registrado"))
		},
	}
}

// decodeFirst decodes data as T, or as []T taking the first element.
func decodeFirst[T any](data json.RawMessage) (T, bool) {
	var single T
	if err := json.Unmarshal(data, &single); err == nil {
		return single, true
	}
	var list []T
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list[0], true
	}
	var zero T
	return zero, false
}

func (r *Registry) listAppointmentsTool() *Tool {
	return &Tool{
		Name: "consultar_citas",
		Description: "Consulta las citas médicas programadas. " +
			"Puedes filtrar por paciente, médico y estado de la cita. " +
			"Útil cuando el usuario pregunta por sus citas o las citas de un paciente.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"paciente_id": {Type: jsonschema.Integer, Description: "ID del paciente"},
			"medico_id":   {Type: jsonschema.Integer, Description: "ID del médico"},
			"estado":      {Type: jsonschema.String, Description: "Estado de la cita (pendiente, confirmada, etc.)"},
		}),
		Run: func(ctx context.Context, args Args) string {
			patientID, hasPatient := args.Int("paciente_id")
			doctorID, hasDoctor := args.Int("medico_id")
			status := args.String("estado")

			var (
				resp *backend.APIResponse
				err  error
			)
			switch {
			case hasPatient:
				resp, err = r.backend.GetPatientAppointments(ctx, patientID, status)
			case hasDoctor:
				resp, err = r.backend.GetDoctorAppointments(ctx, doctorID, "")
			default:
				return "❌ Debes proporcionar al menos un ID de paciente o médico"
			}
			if err != nil {
				return renderError("consultar citas", err)
			}
			if !hasData(resp) {
				return "ℹ️ No se encontraron citas"
			}

			var appointments []appointmentInfo
			if err := json.Unmarshal(resp.Data, &appointments); err != nil || len(appointments) == 0 {
				return "ℹ️ No hay citas registradas con esos criterios"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "✅ Se encontraron %d citas:\n", len(appointments))
			shown := appointments
			if len(shown) > 5 {
				shown = shown[:5]
			}
			for i, cita := range shown {
				doctorName := ""
				if cita.Doctor != nil {
					doctorName = fmt.Sprintf("%s %s", cita.Doctor.FirstName, cita.Doctor.LastName)
				}
				fmt.Fprintf(&b, `
%d. Cita #%d
   - Fecha: %s
   - Médico: Dr(a). %s
   - Motivo: %s
   - Estado: %s
`,
					i+1, cita.ID,
					orDefault(cita.StartTime, "No disponible"),
					doctorName,
					orDefault(cita.Reason, "No especificado"),
					strings.ToUpper(orDefault(cita.Status, "pendiente")))
			}
			if len(appointments) > 5 {
				fmt.Fprintf(&b, "\n... y %d citas más", len(appointments)-5)
			}
			return strings.TrimSpace(b.String())
		},
	}
}

func (r *Registry) clinicalHistoryTool() *Tool {
	return &Tool{
		Name: "consultar_historial_clinico",
		Description: "Consulta el historial clínico completo de un paciente. " +
			"Incluye diagnósticos, tratamientos realizados, y observaciones médicas. " +
			"Usa esta herramienta cuando necesites información médica histórica del paciente.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"paciente_id": {Type: jsonschema.Integer, Description: "ID del paciente"},
		}, "paciente_id"),
		Run: func(ctx context.Context, args Args) string {
			patientID, _ := args.Int("paciente_id")

			resp, err := r.backend.GetClinicalHistorySummary(ctx, patientID)
			if err != nil {
				return renderError("consultar historial", err)
			}
			if !hasData(resp) {
				return "ℹ️ No hay historial clínico registrado para este paciente"
			}

			var h historySummary
			if err := json.Unmarshal(resp.Data, &h); err != nil {
				return "ℹ️ No hay historial clínico registrado para este paciente"
			}
			return fmt.Sprintf(`✅ Resumen del Historial Clínico:
- Total de consultas: %d
- Última consulta: %s
- Tratamientos activos: %d
- Alergias conocidas: %s

Diagnósticos recientes:
%s

Notas importantes:
%s`,
				h.TotalVisits,
				orDefault(h.LastVisit, "No disponible"),
				h.ActiveTreatments,
				orDefault(h.Allergies, "Ninguna"),
				orDefault(h.RecentDiagnoses, "No hay diagnósticos recientes"),
				orDefault(h.ImportantNotes, "Sin notas especiales"))
		},
	}
}

func (r *Registry) doctorAvailabilityTool() *Tool {
	return &Tool{
		Name: "consultar_disponibilidad_medico",
		Description: "Consulta la disponibilidad de un médico en una fecha específica. " +
			"Muestra los horarios disponibles para agendar citas. " +
			"Útil cuando el usuario quiere agendar una cita.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"medico_id": {Type: jsonschema.Integer, Description: "ID del médico"},
			"fecha":     {Type: jsonschema.String, Description: "Fecha en formato YYYY-MM-DD"},
		}, "medico_id", "fecha"),
		Run: func(ctx context.Context, args Args) string {
			doctorID, _ := args.Int("medico_id")
			date := args.String("fecha")

			resp, err := r.backend.GetDoctorAvailability(ctx, doctorID, date)
			if err != nil {
				return renderError("consultar disponibilidad", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("ℹ️ No hay disponibilidad para el %s", date)
			}

			var availability availabilityInfo
			if err := json.Unmarshal(resp.Data, &availability); err != nil || len(availability.AvailableSlots) == 0 {
				return fmt.Sprintf("ℹ️ No hay horarios disponibles para el %s", date)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "✅ Horarios disponibles para el %s:\n\n", date)
			for _, slot := range availability.AvailableSlots {
				fmt.Fprintf(&b, "- %s\n", slot)
			}
			return strings.TrimSpace(b.String())
		},
	}
}

func (r *Registry) listDoctorsTool() *Tool {
	return &Tool{
		Name: "listar_medicos",
		Description: "Lista todos los médicos disponibles en el consultorio. " +
			"Puedes filtrar por especialidad si es necesario. " +
			"Útil cuando el usuario pregunta qué médicos hay disponibles.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"especialidad": {Type: jsonschema.String, Description: "Especialidad a filtrar"},
		}),
		Run: func(ctx context.Context, args Args) string {
			resp, err := r.backend.GetDoctors(ctx, args.String("especialidad"))
			if err != nil {
				return renderError("listar médicos", err)
			}
			if !hasData(resp) {
				return "ℹ️ No se encontraron médicos"
			}

			var doctors []doctorInfo
			if err := json.Unmarshal(resp.Data, &doctors); err != nil || len(doctors) == 0 {
				return "ℹ️ No hay médicos registrados"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "✅ Médicos disponibles (%d):\n", len(doctors))
			for i, doctor := range doctors {
				fmt.Fprintf(&b, `
%d. Dr(a). %s %s
   - Especialidad: %s
   - Colegiatura: %s
`,
					i+1, doctor.FirstName, doctor.LastName,
					orDefault(doctor.Specialty, "General"),
					orDefault(doctor.License, "No disponible"))
			}
			return strings.TrimSpace(b.String())
		},
	}
}

func (r *Registry) validateDoctorTool() *Tool {
	return &Tool{
		Name: "validar_medico",
		Description: "Valida que un médico existe y está disponible en el sistema. " +
			"USAR cuando necesites verificar que un ID de médico es válido antes de usarlo, " +
			"o antes de registrar una cita para confirmar que el médico existe. " +
			"Retorna información del médico si es válido, o error si no existe.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_medico": {Type: jsonschema.Integer, Description: "ID del médico a validar"},
		}, "id_medico"),
		Run: func(ctx context.Context, args Args) string {
			doctorID, _ := args.Int("id_medico")

			resp, err := r.backend.GetDoctor(ctx, doctorID)
			if err != nil {
				return renderError("validar médico", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("❌ Médico con ID %d no existe o no está disponible. Usa listar_medicos para ver médicos válidos.", doctorID)
			}

			var doctor doctorInfo
			if err := json.Unmarshal(resp.Data, &doctor); err != nil {
				return fmt.Sprintf("❌ Médico con ID %d no existe o no está disponible. Usa listar_medicos para ver médicos válidos.", doctorID)
			}
			return fmt.Sprintf(`✅ Médico válido:
- ID: %d
- Nombre: Dr(a). %s %s
- Especialidad: %s
- Colegiatura: %s

Este médico puede ser usado para agendar citas.`,
				doctor.ID, doctor.FirstName, doctor.LastName,
				orDefault(doctor.Specialty, "General"),
				orDefault(doctor.License, "No disponible"))
		},
	}
}

func (r *Registry) determineUserTypeTool() *Tool {
	return &Tool{
		Name: "determinar_tipo_usuario",
		Description: "Determina si el usuario es paciente activo con historial o usuario externo (primera vez). " +
			"USAR AL INICIO del flujo de agendamiento para decidir: " +
			"paciente activo → asignar último médico o especialista según motivo; " +
			"usuario externo → asignar médico de cabecera (primera cita). " +
			"Retorna si es paciente activo, su último médico (si existe) y datos relevantes.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_usuario": {Type: jsonschema.Integer, Description: "ID del usuario a verificar"},
		}, "id_usuario"),
		Run: func(ctx context.Context, args Args) string {
			userID, _ := args.Int("id_usuario")

			resp, err := r.backend.DetermineUserType(ctx, userID)
			if err != nil {
				return renderError("determinar tipo de usuario", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al determinar tipo de usuario"))
			}

			var info userTypeInfo
			if err := json.Unmarshal(resp.Data, &info); err != nil {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al determinar tipo de usuario"))
			}
			if !info.IsActivePatient {
				return fmt.Sprintf("🆕 Usuario es EXTERNO (primera vez): %s\n💡 Debe asignarse médico de cabecera", info.FullName)
			}
			msg := fmt.Sprintf("✅ Usuario es PACIENTE ACTIVO: %s", info.FullName)
			if info.LastDoctor != nil {
				msg += fmt.Sprintf("\n👨‍⚕️ Último médico: Dr. %s %s (%s)",
					info.LastDoctor.FirstName, info.LastDoctor.LastName, info.LastDoctor.Specialty)
			}
			return msg
		},
	}
}

func (r *Registry) suggestSlotsTool() *Tool {
	return &Tool{
		Name: "sugerir_horarios_alternativos",
		Description: "Sugiere horarios ALTERNATIVOS disponibles cuando el horario solicitado NO está libre. " +
			"Busca los próximos horarios disponibles del médico en un rango de fechas. " +
			"USAR cuando el horario solicitado por el usuario está ocupado " +
			"o el usuario pregunta qué horarios hay disponibles. " +
			"Retorna lista de horarios con fecha, hora y día de la semana.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_medico":        {Type: jsonschema.Integer, Description: "ID del médico"},
			"fecha_inicio":     {Type: jsonschema.String, Description: "Fecha de inicio en formato YYYY-MM-DD"},
			"fecha_fin":        {Type: jsonschema.String, Description: "Fecha fin (opcional, por defecto +7 días)"},
			"duracion_minutos": {Type: jsonschema.Integer, Description: "Duración de la cita en minutos"},
			"limite":           {Type: jsonschema.Integer, Description: "Cantidad de horarios a sugerir"},
		}, "id_medico", "fecha_inicio"),
		Run: func(ctx context.Context, args Args) string {
			doctorID, _ := args.Int("id_medico")
			duration, ok := args.Int("duracion_minutos")
			if !ok {
				duration = 60
			}
			limit, ok := args.Int("limite")
			if !ok {
				limit = 3
			}

			resp, err := r.backend.SuggestSlots(ctx, backend.SuggestSlotsRequest{
				DoctorID:        doctorID,
				StartDate:       args.String("fecha_inicio"),
				EndDate:         args.String("fecha_fin"),
				DurationMinutes: int(duration),
				Limit:           int(limit),
			})
			if err != nil {
				return renderError("sugerir horarios", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al sugerir horarios"))
			}

			var slots []slotSuggestion
			if err := json.Unmarshal(resp.Data, &slots); err != nil || len(slots) == 0 {
				return "❌ No hay horarios disponibles en el rango de fechas especificado"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "📅 Horarios disponibles encontrados (%d):\n\n", len(slots))
			for i, slot := range slots {
				fmt.Fprintf(&b, "%d. %s %s a las %s\n", i+1, slot.Weekday, slot.Date, slot.Time)
			}
			b.WriteString("\n💡 El usuario puede elegir uno de estos horarios")
			return b.String()
		},
	}
}

func (r *Registry) createAppointmentTool() *Tool {
	return &Tool{
		Name: "registrar_cita",
		Description: "Registra una NUEVA CITA médica con estado 'pendiente'. " +
			"⚠️ IMPORTANTE: usar SOLO DESPUÉS de verificar disponibilidad del médico. " +
			"La cita queda en estado PENDIENTE (no confirmada). " +
			"Fechas en formato \"YYYY-MM-DD HH:MM:SS\". " +
			"Retorna confirmación con ID de cita generado.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_usuario":        {Type: jsonschema.Integer, Description: "ID del usuario que agenda"},
			"id_medico":         {Type: jsonschema.Integer, Description: "ID del médico"},
			"fecha_hora_inicio": {Type: jsonschema.String, Description: "Fecha y hora inicio YYYY-MM-DD HH:MM:SS"},
			"fecha_hora_fin":    {Type: jsonschema.String, Description: "Fecha y hora fin YYYY-MM-DD HH:MM:SS"},
			"motivo":            {Type: jsonschema.String, Description: "Motivo de la consulta"},
			"tipo_cita":         {Type: jsonschema.String, Description: "Tipo: primera_vez, seguimiento, especialidad"},
			"notas":             {Type: jsonschema.String, Description: "Notas adicionales"},
		}, "id_usuario", "id_medico", "fecha_hora_inicio", "fecha_hora_fin"),
		Run: func(ctx context.Context, args Args) string {
			userID, _ := args.Int("id_usuario")
			doctorID, _ := args.Int("id_medico")

			resp, err := r.backend.CreateAppointment(ctx, backend.CreateAppointmentRequest{
				UserID:    userID,
				DoctorID:  doctorID,
				StartTime: args.String("fecha_hora_inicio"),
				EndTime:   args.String("fecha_hora_fin"),
				Reason:    args.String("motivo"),
				Type:      args.String("tipo_cita"),
				Notes:     args.String("notas"),
			})
			if err != nil {
				return renderError("registrar cita", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al registrar cita"))
			}

			var cita createdAppointment
			if err := json.Unmarshal(resp.Data, &cita); err != nil {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al registrar cita"))
			}
			return fmt.Sprintf(`✅ Cita registrada exitosamente:

📋 ID Cita: %d
📅 Fecha/Hora: %s
⏳ Estado: %s (pendiente de confirmación)
📝 Motivo: %s

💡 La cita está en estado PENDIENTE. El usuario debe confirmarla más adelante.`,
				cita.ID, cita.StartTime, strings.ToUpper(cita.Status), cita.Reason)
		},
	}
}

func (r *Registry) confirmAppointmentTool() *Tool {
	return &Tool{
		Name: "confirmar_cita",
		Description: "Confirma una cita que está en estado 'pendiente', cambiándola a 'confirmada'. " +
			"USAR cuando el usuario dice explícitamente que confirma su cita. " +
			"⚠️ Solo se pueden confirmar citas en estado PENDIENTE. " +
			"Retorna confirmación del cambio de estado exitoso.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_cita": {Type: jsonschema.Integer, Description: "ID de la cita a confirmar"},
		}, "id_cita"),
		Run: func(ctx context.Context, args Args) string {
			appointmentID, _ := args.Int("id_cita")

			resp, err := r.backend.ConfirmAppointment(ctx, appointmentID)
			if err != nil {
				return renderError("confirmar cita", err)
			}
			if !hasData(resp) {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al confirmar cita"))
			}

			var cita createdAppointment
			if err := json.Unmarshal(resp.Data, &cita); err != nil {
				return fmt.Sprintf("❌ %s", orDefault(resp.Message, "Error al confirmar cita"))
			}
			return fmt.Sprintf(`✅ Cita confirmada exitosamente:

📋 ID Cita: %d
✅ Estado: %s
📅 Fecha/Hora: %s

🔔 Recibirás un recordatorio antes de tu cita.`,
				cita.ID, strings.ToUpper(cita.Status), cita.StartTime)
		},
	}
}

func (r *Registry) logInteractionTool() *Tool {
	return &Tool{
		Name: "registrar_interaccion_ia",
		Description: "Registra la interacción del usuario con la IA para trazabilidad. " +
			"USAR para guardar registro de intenciones importantes (agendar_cita, cancelar_cita, etc.), " +
			"análisis posterior de conversaciones y auditoría del sistema. " +
			"Es opcional, usar solo en interacciones clave.",
		Parameters: objectSchema(map[string]jsonschema.Definition{
			"id_usuario":       {Type: jsonschema.Integer, Description: "ID del usuario"},
			"tipo_intencion":   {Type: jsonschema.String, Description: "Tipo de intención detectada"},
			"entrada_usuario":  {Type: jsonschema.String, Description: "Mensaje del usuario"},
			"respuesta_ia":     {Type: jsonschema.String, Description: "Respuesta del agente"},
			"estado_resultado": {Type: jsonschema.String, Description: "exitosa, fallida, requiere_revision"},
		}, "id_usuario"),
		Run: func(ctx context.Context, args Args) string {
			userID, _ := args.Int("id_usuario")

			resp, err := r.backend.LogInteraction(ctx, backend.LogInteractionRequest{
				UserID:     userID,
				IntentType: args.String("tipo_intencion"),
				UserInput:  args.String("entrada_usuario"),
				AIResponse: args.String("respuesta_ia"),
				Outcome:    args.String("estado_resultado"),
			})
			if err != nil {
				// Audit writes are fire-and-forget; a warning is enough.
				r.logger.Warn("Failed to log interaction", zap.Int64("user_id", userID), zap.Error(err))
				return fmt.Sprintf("⚠️ Error: %v", err)
			}
			if !resp.Success {
				return fmt.Sprintf("⚠️ %s", orDefault(resp.Message, "Error al registrar interacción"))
			}

			var logged loggedInteraction
			if err := json.Unmarshal(resp.Data, &logged); err != nil {
				return "✅ Interacción registrada"
			}
			return fmt.Sprintf("✅ Interacción registrada (ID: %d)", logged.ID)
		},
	}
}
