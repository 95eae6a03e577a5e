package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel               = "gpt-5.1"
	DefaultTimeout             = 60 * time.Second
	DefaultMaxCompletionTokens = 1024
)

type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	Timeout             time.Duration
	MaxCompletionTokens int
}

// CallObserver records the outcome and latency of each completion call.
type CallObserver interface {
	ObserveAICall(operation, outcome string, elapsed time.Duration)
}

// Client implements ports.Assistant on top of an OpenAI-compatible chat completions API.
type Client struct {
	api      *openai.Client
	cfg      Config
	observer CallObserver
}

func NewClient(cfg Config, observer CallObserver) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxCompletionTokens <= 0 {
		cfg.MaxCompletionTokens = DefaultMaxCompletionTokens
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:      openai.NewClientWithConfig(apiCfg),
		cfg:      cfg,
		observer: observer,
	}
}

const categorizePrompt = `You are a supportive, empathetic assistant helping overwhelmed working moms sort their mental load. Given a brain dump of thoughts, worries, and tasks, categorize them into 4 sections:

1. TODAY (must do) - Urgent, time-sensitive tasks that truly need attention today
2. CAN WAIT - Important but not urgent, can be done later this week
3. DELEGATE - Things that can be given to partner, kids, or others to handle
4. IGNORE (without guilt) - Things that don't actually need to happen, perfectionist tendencies, or low-priority items that cause unnecessary stress

Respond in JSON format:
{
  "today": ["task 1", "task 2"],
  "canWait": ["task 1", "task 2"],
  "delegate": ["task 1", "task 2"],
  "ignore": ["task 1", "task 2"]
}

Be compassionate. If something seems like guilt or societal pressure rather than a real need, put it in IGNORE. Help them feel lighter.`

const scriptsPromptFormat = `You are a supportive communication coach helping working moms express their needs without guilt. Generate guilt-free scripts for conversations with %s.

The scripts should be:
- Assertive but kind
- Clear and direct
- Non-apologetic
- Respectful of boundaries
- Free from guilt-inducing language

%s

Respond in JSON format:
{
  "shortScripts": ["script 1", "script 2", "script 3", "script 4", "script 5"],
  "longScripts": ["longer script 1", "longer script 2", "longer script 3"]
}

Short scripts should be 1-2 sentences. Long scripts should be 3-5 sentences.`

type categorizationJSON struct {
	Today    []string `json:"today"`
	CanWait  []string `json:"canWait"`
	Delegate []string `json:"delegate"`
	Ignore   []string `json:"ignore"`
}

type scriptsJSON struct {
	ShortScripts []string `json:"shortScripts"`
	LongScripts  []string `json:"longScripts"`
}

func (c *Client) CategorizeBrainDump(ctx context.Context, input string) (domain.Categorization, error) {
	var parsed categorizationJSON
	if err := c.completeJSON(ctx, "categorize_brain_dump", categorizePrompt, input, &parsed); err != nil {
		return domain.Categorization{}, err
	}
	return domain.Categorization{
		Today:    parsed.Today,
		CanWait:  parsed.CanWait,
		Delegate: parsed.Delegate,
		Ignore:   parsed.Ignore,
	}, nil
}

func (c *Client) GenerateScripts(ctx context.Context, category, situation string) (domain.Scripts, error) {
	detail := "Generate general boundary-setting and delegation scripts."
	if situation != "" {
		detail = "Specific situation: " + situation
	}
	system := fmt.Sprintf(scriptsPromptFormat, category, detail)
	user := "Generate scripts for talking to my " + category

	var parsed scriptsJSON
	if err := c.completeJSON(ctx, "generate_scripts", system, user, &parsed); err != nil {
		return domain.Scripts{}, err
	}
	return domain.Scripts{ShortScripts: parsed.ShortScripts, LongScripts: parsed.LongScripts}, nil
}

// completeJSON runs one JSON-mode completion and decodes the first choice into out.
// An empty reply decodes as an empty object.
func (c *Client) completeJSON(ctx context.Context, operation, system, user string, out any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	started := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
			slog.Default().ErrorContext(ctx, "llm completion failed",
				"module", "adapters.ai",
				"layer", "adapter",
				"operation", operation,
				"outcome", outcome,
				"model", c.cfg.Model,
				"error", err,
			)
		}
		if c.observer != nil {
			c.observer.ObserveAICall(operation, outcome, time.Since(started))
		}
	}()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxCompletionTokens: c.cfg.MaxCompletionTokens,
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}

	content := "{}"
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		content = resp.Choices[0].Message.Content
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion content: %w", err)
	}
	return nil
}
