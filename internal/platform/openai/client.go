package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/studytree-backend/internal/observability"
	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// Client is a chat-completions client (OpenAI wire format, OpenRouter by default).
// It never retries; callers decide whether a response is usable.
type Client interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func ConfigFromEnv() Config {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	}

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = strings.TrimSpace(os.Getenv("OPENROUTER_MODEL"))
	}

	temp := 0.7
	if v := strings.TrimSpace(os.Getenv("OPENAI_TEMPERATURE")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			temp = parsed
		}
	}

	// 0 keeps completion calls unbounded; the pipeline has no watchdog of its own.
	timeout := time.Duration(0)
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}

	return Config{
		APIKey:      apiKey,
		BaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Model:       model,
		Temperature: temp,
		Timeout:     timeout,
	}
}

func NewClient(log *logger.Logger) (Client, error) {
	return NewClientWithConfig(log, ConfigFromEnv())
}

func NewClientWithConfig(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "anthropic/claude-3-haiku"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		log:         log.With("service", "CompletionClient"),
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
	}, nil
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(messages) == 0 {
		return "", fmt.Errorf("messages required")
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	req := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	start := time.Now()
	raw, err := c.doOnce(ctx, http.MethodPost, "/chat/completions", req)
	if err != nil {
		observability.Current().ObserveLLMRequest(c.model, errorStatus(err), time.Since(start), 0, 0)
		c.log.Warn("Completion request failed",
			"model", c.model,
			"max_tokens", maxTokens,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("decode completion: %w", err), Body: truncateBody(string(raw))}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Err: fmt.Errorf("completion returned no choices"), Body: truncateBody(string(raw))}
	}
	observability.Current().ObserveLLMRequest(c.model, "200", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	c.log.Debug("Completion request done",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Choices[0].Message.Content, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: truncateBody(string(raw))}
	}
	return raw, nil
}

func truncateBody(s string) string {
	const max = 2048
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
