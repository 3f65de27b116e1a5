package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/backend"
)

// Tool is one named operation the agent may invoke on behalf of the model.
// Run never returns an error: every failure is rendered as a ❌ text result
// so the model can react to it conversationally.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Definition
	Run         func(ctx context.Context, args Args) string
}

// Args is a decoded tool-call argument set.
type Args map[string]any

// String returns the string argument for key, trimmed, or "" if absent.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(s)
}

// Int returns the integer argument for key. JSON numbers arrive as float64.
func (a Args) Int(key string) (int64, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// Registry is the closed catalog of tools. Lookup is by name; the agent
// never executes anything that is not registered here.
type Registry struct {
	backend *backend.Client
	logger  *zap.Logger
	tools   []*Tool
	byName  map[string]*Tool
}

func NewRegistry(client *backend.Client, logger *zap.Logger) *Registry {
	r := &Registry{
		backend: client,
		logger:  logger,
		byName:  make(map[string]*Tool),
	}
	r.register(
		r.searchPatientTool(),
		r.listAppointmentsTool(),
		r.clinicalHistoryTool(),
		r.doctorAvailabilityTool(),
		r.listDoctorsTool(),
		r.validateDoctorTool(),
		r.determineUserTypeTool(),
		r.suggestSlotsTool(),
		r.createAppointmentTool(),
		r.confirmAppointmentTool(),
		r.logInteractionTool(),
	)
	return r
}

func (r *Registry) register(tools ...*Tool) {
	for _, t := range tools {
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}
}

// All returns the catalog in registration order.
func (r *Registry) All() []*Tool {
	return r.tools
}

func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered tool names, in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	return names
}

// Execute validates the raw argument JSON against the tool's schema and runs
// it. Validation failures and unknown tools come back as ❌ text without ever
// touching the backend.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) string {
	tool, ok := r.Get(name)
	if !ok {
		r.logger.Warn("Model requested unknown tool", zap.String("tool", name))
		return fmt.Sprintf("❌ Herramienta desconocida: %s", name)
	}

	args := Args{}
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			r.logger.Warn("Invalid tool arguments",
				zap.String("tool", name),
				zap.Error(err))
			return fmt.Sprintf("❌ Argumentos inválidos para %s: %v", name, err)
		}
	}

	if missing := missingRequired(tool.Parameters, args); len(missing) > 0 {
		return fmt.Sprintf("❌ Faltan argumentos obligatorios para %s: %s",
			name, strings.Join(missing, ", "))
	}
	if invalid := mismatchedTypes(tool.Parameters, args); len(invalid) > 0 {
		return fmt.Sprintf("❌ Argumentos con tipo inválido para %s: %s",
			name, strings.Join(invalid, ", "))
	}

	r.logger.Info("Executing tool", zap.String("tool", name))
	return tool.Run(ctx, args)
}

func missingRequired(schema *jsonschema.Definition, args Args) []string {
	if schema == nil {
		return nil
	}
	var missing []string
	for _, key := range schema.Required {
		if v, ok := args[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

// mismatchedTypes checks every supplied argument against its declared schema
// type. Keys the schema does not declare are left to the tool to ignore.
func mismatchedTypes(schema *jsonschema.Definition, args Args) []string {
	if schema == nil {
		return nil
	}
	var invalid []string
	for key, def := range schema.Properties {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		if !matchesType(def.Type, v) {
			invalid = append(invalid, key)
		}
	}
	sort.Strings(invalid)
	return invalid
}

func matchesType(t jsonschema.DataType, v any) bool {
	switch t {
	case jsonschema.Integer:
		switch n := v.(type) {
		case float64:
			return n == math.Trunc(n)
		case json.Number:
			_, err := n.Int64()
			return err == nil
		case int, int64:
			return true
		default:
			return false
		}
	case jsonschema.Number:
		switch v.(type) {
		case float64, json.Number, int, int64:
			return true
		default:
			return false
		}
	case jsonschema.String:
		_, ok := v.(string)
		return ok
	case jsonschema.Boolean:
		_, ok := v.(bool)
		return ok
	default:
		return true
	}
}

// renderError turns a gateway failure into the uniform ❌ result the loop
// feeds back to the model.
func renderError(action string, err error) string {
	if statusErr, ok := err.(*backend.StatusError); ok {
		return fmt.Sprintf("❌ Error al %s: el backend respondió con estado %d", action, statusErr.StatusCode)
	}
	return fmt.Sprintf("❌ Error al %s: %v", action, err)
}
