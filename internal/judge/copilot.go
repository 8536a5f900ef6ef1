package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/fidelity/internal/utils"
)

// CopilotJudge is a [Judge] backed by a GitHub Copilot session. Every request
// gets its own client and session, so one judge can serve concurrent
// evaluations.
type CopilotJudge struct {
	model     string
	timeout   time.Duration
	newClient func(clientOptions *copilot.ClientOptions) copilotClient
}

type CopilotJudgeOptions struct {
	// Model is the judge model. Blank lets the Copilot CLI pick.
	Model string
	// Timeout bounds one evaluation. Zero means no limit beyond the caller's context.
	Timeout time.Duration

	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

func NewCopilotJudge(options CopilotJudgeOptions) *CopilotJudge {
	j := &CopilotJudge{
		model:     options.Model,
		timeout:   options.Timeout,
		newClient: options.NewCopilotClient,
	}
	if j.newClient == nil {
		j.newClient = newCopilotClient
	}
	return j
}

// Evaluate implements [Judge].
func (j *CopilotJudge) Evaluate(ctx context.Context, req *Request) (*Response, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	client := j.newClient(&copilot.ClientOptions{
		AutoStart:       utils.Ptr(true),
		AutoRestart:     utils.Ptr(true),
		UseLoggedInUser: utils.Ptr(true),
		LogLevel:        "error",
	})

	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting copilot client for judge: %w", err)
	}

	defer func() {
		if err := client.Stop(); err != nil {
			slog.ErrorContext(ctx, "error stopping client for judge", "error", err)
		}
	}()

	verdict := &submittedVerdict{}
	session, err := client.CreateSession(ctx, &copilot.SessionConfig{
		Model:     j.model,
		Streaming: true,
		Tools:     []copilot.Tool{verdict.tool()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start up copilot session for judging: %w", err)
	}

	unregister := session.On(sessionLogger(ctx, j.model))
	defer unregister()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: prompt,
		Mode:   "enqueue",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send judge prompt: %w", err)
	}

	if v, err := verdict.get(); v != nil || err != nil {
		return v, err
	}

	if resp == nil || resp.Data.Content == nil {
		return nil, errors.New("judge returned no verdict")
	}
	return ParseResponse(*resp.Data.Content)
}

// submittedVerdict collects the argument of the judge's submit tool call.
type submittedVerdict struct {
	mu   sync.Mutex
	resp *Response
	err  error
}

func (v *submittedVerdict) get() (*Response, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resp, v.err
}

func (v *submittedVerdict) tool() copilot.Tool {
	score := map[string]any{"type": "number", "minimum": 0, "maximum": 1}

	return copilot.Tool{
		Name:        submitToolName,
		Description: "Submit the evaluation of the model output against the source of truth. Call exactly once.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sections": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"source_section_name": map[string]any{"type": "string"},
							"model_section_name":  map[string]any{"type": []string{"string", "null"}},
							"name_similarity":     score,
							"fields": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"source_field_id":    map[string]any{"type": "integer"},
										"model_field_id":     map[string]any{"type": []string{"integer", "null"}},
										"name_similarity":    score,
										"options_similarity": score,
										"reasoning":          map[string]any{"type": "string"},
									},
									"required": []string{"source_field_id", "name_similarity", "options_similarity"},
								},
							},
						},
						"required": []string{"source_section_name", "name_similarity", "fields"},
					},
				},
				"overall_assessment": map[string]any{
					"type":        "string",
					"description": "Brief overall assessment of model quality",
				},
			},
			"required": []string{"sections", "overall_assessment"},
		},
		Handler: func(invocation copilot.ToolInvocation) (copilot.ToolResult, error) {
			var resp Response
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				WeaklyTypedInput: true,
				Result:           &resp,
			})
			if err == nil {
				err = decoder.Decode(invocation.Arguments)
			}

			v.mu.Lock()
			defer v.mu.Unlock()
			if err != nil {
				v.err = fmt.Errorf("decoding %s arguments: %w", submitToolName, err)
				return copilot.ToolResult{}, nil
			}
			resp.clamp()
			v.resp, v.err = &resp, nil
			return copilot.ToolResult{}, nil
		},
	}
}
