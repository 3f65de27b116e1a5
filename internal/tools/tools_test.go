package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/backend"
)

// newTestRegistry wires the catalog against a stub backend that serves the
// given responses keyed by URL path. hits counts every backend call.
func newTestRegistry(t *testing.T, responses map[string]any, hits *atomic.Int64) *Registry {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		resp, ok := responses[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client := backend.NewClient(server.URL, "test-key", 5*time.Second, zap.NewNop())
	return NewRegistry(client, zap.NewNop())
}

func envelope(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func TestRegistry_Catalog(t *testing.T) {
	registry := newTestRegistry(t, nil, nil)

	expected := []string{
		"buscar_paciente",
		"consultar_citas",
		"consultar_historial_clinico",
		"consultar_disponibilidad_medico",
		"listar_medicos",
		"validar_medico",
		"determinar_tipo_usuario",
		"sugerir_horarios_alternativos",
		"registrar_cita",
		"confirmar_cita",
		"registrar_interaccion_ia",
	}
	assert.Equal(t, expected, registry.Names())

	for _, name := range expected {
		tool, ok := registry.Get(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, tool.Description, name)
		assert.NotNil(t, tool.Run, name)
	}
}

func TestRegistry_Execute_Validation(t *testing.T) {
	var hits atomic.Int64
	registry := newTestRegistry(t, nil, &hits)
	ctx := context.Background()

	t.Run("unknown tool never reaches the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "herramienta_falsa", `{}`)
		assert.Contains(t, result, "❌ Herramienta desconocida")
		assert.Zero(t, hits.Load())
	})

	t.Run("malformed argument JSON never reaches the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "validar_medico", `{not json`)
		assert.Contains(t, result, "❌ Argumentos inválidos")
		assert.Zero(t, hits.Load())
	})

	t.Run("missing required arguments never reach the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "registrar_cita", `{"id_usuario": 5}`)
		assert.Contains(t, result, "❌ Faltan argumentos obligatorios")
		assert.Contains(t, result, "id_medico")
		assert.Contains(t, result, "fecha_hora_inicio")
		assert.Zero(t, hits.Load())
	})

	t.Run("wrongly typed required argument never reaches the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "consultar_historial_clinico", `{"paciente_id": "abc"}`)
		assert.Contains(t, result, "❌ Argumentos con tipo inválido")
		assert.Contains(t, result, "paciente_id")
		assert.Zero(t, hits.Load())
	})

	t.Run("non-integral id never reaches the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "validar_medico", `{"id_medico": 3.5}`)
		assert.Contains(t, result, "❌ Argumentos con tipo inválido")
		assert.Contains(t, result, "id_medico")
		assert.Zero(t, hits.Load())
	})

	t.Run("wrongly typed string argument never reaches the backend", func(t *testing.T) {
		result := registry.Execute(ctx, "consultar_disponibilidad_medico", `{"medico_id": 2, "fecha": 20260901}`)
		assert.Contains(t, result, "❌ Argumentos con tipo inválido")
		assert.Contains(t, result, "fecha")
		assert.Zero(t, hits.Load())
	})

	t.Run("search with no criteria fails without a backend call", func(t *testing.T) {
		result := registry.Execute(ctx, "buscar_paciente", `{}`)
		assert.Contains(t, result, "❌ Debes proporcionar al menos un criterio")
		assert.Zero(t, hits.Load())
	})
}

func TestRegistry_Execute_Rendering(t *testing.T) {
	ctx := context.Background()

	t.Run("patient lookup by id", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/pacientes/7": envelope(map[string]any{
				"id_paciente": 7,
				"nombres":     "María",
				"apellidos":   "González",
				"dni":         "45678912",
				"edad":        34,
			}),
		}, nil)

		result := registry.Execute(ctx, "buscar_paciente", `{"paciente_id": 7}`)
		assert.Contains(t, result, "✅ Paciente encontrado")
		assert.Contains(t, result, "María González")
		assert.Contains(t, result, "45678912")
		assert.Contains(t, result, "34 años")
	})

	t.Run("null data payload is treated as not found", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/pacientes/7": map[string]any{"success": true, "data": nil},
		}, nil)

		result := registry.Execute(ctx, "buscar_paciente", `{"paciente_id": 7}`)
		assert.Contains(t, result, "❌ No se encontró el paciente")
		assert.NotContains(t, result, "✅")
	})

	t.Run("zero-id payload is treated as not found", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/pacientes/7": envelope(map[string]any{"nombres": "", "apellidos": ""}),
		}, nil)

		result := registry.Execute(ctx, "buscar_paciente", `{"paciente_id": 7}`)
		assert.Contains(t, result, "❌ No se encontró ningún paciente")
	})

	t.Run("patient search by name takes the first match", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/pacientes": envelope([]map[string]any{
				{"id_paciente": 1, "nombres": "Luis", "apellidos": "Ramos"},
				{"id_paciente": 2, "nombres": "Luisa", "apellidos": "Rojas"},
			}),
		}, nil)

		result := registry.Execute(ctx, "buscar_paciente", `{"nombre": "Luis"}`)
		assert.Contains(t, result, "Luis Ramos")
		assert.NotContains(t, result, "Luisa")
	})

	t.Run("appointment listing shows at most five", func(t *testing.T) {
		citas := make([]map[string]any, 7)
		for i := range citas {
			citas[i] = map[string]any{
				"id_cita":           i + 1,
				"fecha_hora_inicio": "2026-09-01 10:00:00",
				"estado":            "pendiente",
				"medico":            map[string]any{"nombres": "Ana", "apellidos": "Paredes"},
			}
		}
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/pacientes/3/citas": envelope(citas),
		}, nil)

		result := registry.Execute(ctx, "consultar_citas", `{"paciente_id": 3}`)
		assert.Contains(t, result, "✅ Se encontraron 7 citas")
		assert.Contains(t, result, "Cita #5")
		assert.NotContains(t, result, "Cita #6")
		assert.Contains(t, result, "... y 2 citas más")
	})

	t.Run("doctor validation failure suggests listing", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/medicos/99": map[string]any{"success": false},
		}, nil)

		result := registry.Execute(ctx, "validar_medico", `{"id_medico": 99}`)
		assert.Contains(t, result, "❌ Médico con ID 99 no existe")
		assert.Contains(t, result, "listar_medicos")
	})

	t.Run("availability renders slots", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/medicos/2/disponibilidad": envelope(map[string]any{
				"horarios_disponibles": []string{"10:00", "11:00", "15:30"},
			}),
		}, nil)

		result := registry.Execute(ctx, "consultar_disponibilidad_medico", `{"medico_id": 2, "fecha": "2026-09-01"}`)
		assert.Contains(t, result, "✅ Horarios disponibles para el 2026-09-01")
		assert.Contains(t, result, "- 15:30")
	})

	t.Run("slot suggestion applies defaults", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/agendamiento/sugerir-horarios": envelope([]map[string]any{
				{"fecha": "2026-09-02", "hora": "09:00", "dia_semana": "Miércoles"},
			}),
		}, nil)

		result := registry.Execute(ctx, "sugerir_horarios_alternativos", `{"id_medico": 2, "fecha_inicio": "2026-09-01"}`)
		assert.Contains(t, result, "📅 Horarios disponibles encontrados (1)")
		assert.Contains(t, result, "Miércoles 2026-09-02 a las 09:00")
	})

	t.Run("appointment creation reports pending state", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/agendamiento/registrar-cita": envelope(map[string]any{
				"id_cita":           42,
				"fecha_hora_inicio": "2026-09-01 10:00:00",
				"estado":            "pendiente",
				"motivo":            "limpieza",
			}),
		}, nil)

		result := registry.Execute(ctx, "registrar_cita",
			`{"id_usuario": 5, "id_medico": 2, "fecha_hora_inicio": "2026-09-01 10:00:00", "fecha_hora_fin": "2026-09-01 11:00:00", "motivo": "limpieza"}`)
		assert.Contains(t, result, "✅ Cita registrada exitosamente")
		assert.Contains(t, result, "ID Cita: 42")
		assert.Contains(t, result, "PENDIENTE")
	})

	t.Run("appointment confirmation", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/agendamiento/confirmar-cita/42": envelope(map[string]any{
				"id_cita":           42,
				"fecha_hora_inicio": "2026-09-01 10:00:00",
				"estado":            "confirmada",
			}),
		}, nil)

		result := registry.Execute(ctx, "confirmar_cita", `{"id_cita": 42}`)
		assert.Contains(t, result, "✅ Cita confirmada exitosamente")
		assert.Contains(t, result, "CONFIRMADA")
	})

	t.Run("user type for an active patient includes last doctor", func(t *testing.T) {
		registry := newTestRegistry(t, map[string]any{
			"/api/internal/agendamiento/tipo-usuario/5": envelope(map[string]any{
				"es_paciente_activo": true,
				"nombre_completo":    "Carlos Quispe",
				"ultimo_medico": map[string]any{
					"nombres": "Ana", "apellidos": "Paredes", "especialidad": "Ortodoncia",
				},
			}),
		}, nil)

		result := registry.Execute(ctx, "determinar_tipo_usuario", `{"id_usuario": 5}`)
		assert.Contains(t, result, "✅ Usuario es PACIENTE ACTIVO: Carlos Quispe")
		assert.Contains(t, result, "Dr. Ana Paredes (Ortodoncia)")
	})

	t.Run("backend failure renders a ❌ result instead of raising", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		client := backend.NewClient(server.URL, "k", 5*time.Second, zap.NewNop())
		registry := NewRegistry(client, zap.NewNop())

		result := registry.Execute(ctx, "listar_medicos", `{}`)
		assert.Contains(t, result, "❌ Error al listar médicos")
		assert.Contains(t, result, "500")
	})
}
