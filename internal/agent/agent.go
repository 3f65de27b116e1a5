package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/llm"
	"github.com/arludent/clinic-ai/internal/models"
	"github.com/arludent/clinic-ai/internal/session"
	"github.com/arludent/clinic-ai/internal/tools"
)

const (
	fallbackEmptyReply = "Lo siento, no pude procesar tu mensaje."
	fallbackCapReply   = "Lo siento, no pude completar tu solicitud en este momento. Por favor, intenta de nuevo."
	fallbackErrorReply = "Lo siento, ocurrió un error al procesar tu mensaje. Por favor, intenta de nuevo."
)

// Options configures the orchestrator loop.
type Options struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxIterations int
	Timeout       time.Duration
}

// Result is what Process always returns, degraded or not. SessionID is never
// empty so the caller can retry within the same conversation.
type Result struct {
	Message   string
	SessionID string
	Metadata  map[string]any
}

// Agent runs the tool-calling loop between the model and the tool catalog.
type Agent struct {
	client   llm.ChatCompleter
	sessions *session.Store
	registry *tools.Registry
	opts     Options
	logger   *zap.Logger
}

func New(client llm.ChatCompleter, sessions *session.Store, registry *tools.Registry, opts Options, logger *zap.Logger) *Agent {
	return &Agent{
		client:   client,
		sessions: sessions,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
}

// Process handles one user message end to end: resolve the session, run the
// reasoning loop, append the reply. LLM failures never propagate; they come
// back as a degraded reply with the error recorded in metadata.
func (a *Agent) Process(ctx context.Context, message, sessionID string, userID int64, userContext map[string]string) Result {
	sess := a.sessions.GetOrCreate(sessionID, userID)
	sess.BeginTurn()
	defer sess.EndTurn()

	window := sess.Window()
	sess.Append(models.RoleUser, message)

	a.logger.Info("Processing message", zap.String("session_id", sess.ID))

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	reply, err := a.runLoop(ctx, a.buildMessages(window, message, userID, userContext))
	if err != nil {
		a.logger.Error("Agent loop failed",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return Result{
			Message:   fallbackErrorReply,
			SessionID: sess.ID,
			Metadata:  map[string]any{"error": err.Error()},
		}
	}

	sess.Append(models.RoleAssistant, reply)

	a.logger.Info("Response generated", zap.String("session_id", sess.ID))
	return Result{
		Message:   reply,
		SessionID: sess.ID,
		Metadata: map[string]any{
			"message_count": sess.MessageCount(),
			"user_id":       userID,
		},
	}
}

// buildMessages assembles system prompt + rolling window + current input.
// The input carries a user-id tag and a rendered user-context dump when
// supplied, so the model can pass the right ids to tools.
func (a *Agent) buildMessages(window []models.Message, message string, userID int64, userContext map[string]string) []openai.ChatCompletionMessage {
	input := message
	if userID != 0 {
		input = fmt.Sprintf("[ID Usuario: %d]\n%s", userID, input)
	}
	if len(userContext) > 0 {
		keys := make([]string, 0, len(userContext))
		for k := range userContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, userContext[k])
		}
		input = fmt.Sprintf("Contexto:\n%s\n%s", b.String(), input)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(window)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(time.Now().Format("2006-01-02")),
	})
	for _, m := range window {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})
	return msgs
}

// runLoop is the reasoning loop: ask the model, execute any requested tools,
// fold the results back in, repeat. Tool failures never abort the loop; they
// return as text the model can react to. Hitting the iteration cap yields
// the apology fallback rather than an error.
func (a *Agent) runLoop(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	for iter := 0; iter < a.opts.MaxIterations; iter++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.opts.Model,
			Messages:    msgs,
			Tools:       a.openAITools(),
			Temperature: float32(a.opts.Temperature),
			MaxTokens:   a.opts.MaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("model returned no choices")
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			reply := strings.TrimSpace(choice.Content)
			if reply == "" {
				reply = fallbackEmptyReply
			}
			return reply, nil
		}

		msgs = append(msgs, choice)
		for _, call := range choice.ToolCalls {
			result := a.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	a.logger.Warn("Iteration cap reached", zap.Int("max_iterations", a.opts.MaxIterations))
	return fallbackCapReply, nil
}

func (a *Agent) openAITools() []openai.Tool {
	catalog := a.registry.All()
	out := make([]openai.Tool, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
