package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
)

// #region client

const defaultModel = "claude-sonnet-4-5-20250929"

// Anthropic generates directive content through the Messages API. The
// response must be a JSON object with session_focus, avoid_cue and
// insight fields; anything else is an error and the caller falls back.
type Anthropic struct {
	client        *anthropic.Client
	model         string
	retryAttempts int
	Now           func() time.Time
}

// NewAnthropic builds a live generator. Model may be empty.
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic generator: api key not set")
	}
	if model == "" {
		model = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{client: &client, model: model, retryAttempts: 3}, nil
}

// #endregion client

// #region generate

type contentResponse struct {
	SessionFocus  string `json:"session_focus"`
	AvoidCue      string `json:"avoid_cue"`
	Insight       string `json:"insight"`
	InsightDetail string `json:"insight_detail"`
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (*record.Content, error) {
	prompt := buildPrompt(req)

	var response *anthropic.Message
	err := a.retryWithBackoff(ctx, "generate-content", func(attemptCtx context.Context) error {
		resp, apiErr := a.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: 1024,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	parsed, err := parseContent(text.String())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if a.Now != nil {
		now = a.Now()
	}
	return &record.Content{
		SessionFocus:   parsed.SessionFocus,
		AvoidCue:       parsed.AvoidCue,
		InsightSummary: parsed.Insight,
		InsightDetail:  parsed.InsightDetail,
		Provenance:     record.ProvenanceGenerated,
		GeneratedAt:    now,
	}, nil
}

// parseContent extracts the JSON object from the model's reply, tolerating
// a fenced code block or surrounding prose.
func parseContent(text string) (*contentResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("anthropic generate: no JSON object in response")
	}
	var parsed contentResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("anthropic generate: parse response: %w", err)
	}
	if parsed.SessionFocus == "" || parsed.AvoidCue == "" || parsed.Insight == "" {
		return nil, fmt.Errorf("anthropic generate: incomplete response")
	}
	return &parsed, nil
}

// #endregion generate

// #region prompt

func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You write the daily training directive for one operator. Be direct and concrete; second person; no emoji.\n\n")
	b.WriteString("## Today\n\n")
	fmt.Fprintf(&b, "Date: %s\n", req.Date)
	fmt.Fprintf(&b, "State: %s\n", req.State)
	fmt.Fprintf(&b, "Archetype lens: %s\n", req.Archetype)
	fmt.Fprintf(&b, "Session category: %s, stimulus: %s\n", req.Directive.Category, req.Directive.Stimulus)
	if req.Directive.Constraints.LowImpact {
		b.WriteString("Constraint: low impact only\n")
	}
	if req.Directive.Constraints.HeartRateCap > 0 {
		fmt.Fprintf(&b, "Constraint: heart rate capped at %d bpm\n", req.Directive.Constraints.HeartRateCap)
	}
	if len(req.Directive.Constraints.Equipment) > 0 {
		fmt.Fprintf(&b, "Equipment: %s\n", strings.Join(req.Directive.Constraints.Equipment, ", "))
	}
	fmt.Fprintf(&b, "Vitality: %.0f/100, max load axis: %.0f, recovery: %.0f\n", req.Vitality, req.MaxLoad, req.Recovery)
	if req.Goals != "" {
		fmt.Fprintf(&b, "\nOperator goals: %s\n", req.Goals)
	}

	b.WriteString("\n## Respond with JSON only\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"session_focus\": \"one or two sentences: what today's session is and why\",\n")
	b.WriteString("  \"avoid_cue\": \"one sentence: the single thing to avoid today\",\n")
	b.WriteString("  \"insight\": \"one sentence tying today's numbers to the directive\",\n")
	b.WriteString("  \"insight_detail\": \"optional: two or three sentences of deeper context\"\n")
	b.WriteString("}\n")

	return b.String()
}

// #endregion prompt

// #region suggest

// Suggest writes a one-line workout suggestion matching a directive. This
// satisfies the card engine's suggester dependency.
func (a *Anthropic) Suggest(ctx context.Context, d engine.Directive) (string, error) {
	var b strings.Builder
	b.WriteString("Suggest one specific workout in a single sentence. No preamble, no JSON.\n\n")
	fmt.Fprintf(&b, "Category: %s, stimulus: %s\n", d.Category, d.Stimulus)
	if d.Constraints.LowImpact {
		b.WriteString("Low impact only.\n")
	}
	if d.Constraints.HeartRateCap > 0 {
		fmt.Fprintf(&b, "Keep heart rate under %d bpm.\n", d.Constraints.HeartRateCap)
	}
	if len(d.Constraints.Equipment) > 0 {
		fmt.Fprintf(&b, "Available equipment: %s\n", strings.Join(d.Constraints.Equipment, ", "))
	}

	var response *anthropic.Message
	err := a.retryWithBackoff(ctx, "suggest-workout", func(attemptCtx context.Context) error {
		resp, apiErr := a.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: 256,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(b.String())),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic suggest: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	suggestion := strings.TrimSpace(text.String())
	if suggestion == "" {
		return "", fmt.Errorf("anthropic suggest: empty response")
	}
	return suggestion, nil
}

// #endregion suggest

// #region retry

func (a *Anthropic) retryWithBackoff(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= a.retryAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		}
		if attempt == a.retryAttempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * time.Second):
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, a.retryAttempts, lastErr)
}

// #endregion retry
