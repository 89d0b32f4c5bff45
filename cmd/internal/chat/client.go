package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLLMTimeout   = 120 * time.Second
	defaultLLMMaxTokens = 256
	defaultSystemPrompt = "You are a helpful assistant answering questions about halal living."
)

// Terminal errors of the LLM round trip.
var (
	// ErrUnavailable means the LLM service answered 503: it is up but the
	// model has not finished loading. Clients should retry later.
	ErrUnavailable = errors.New("llm service not ready")
	// ErrEmptyReply means the service answered 200 without a usable reply.
	ErrEmptyReply = errors.New("llm reply missing or empty")
	// ErrNoMessages means the caller sent an empty conversation.
	ErrNoMessages = errors.New("no messages provided")
)

// ClientConfig configures the LLM service client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxTokens    int
	SystemPrompt string
}

// LoadClientConfigFromEnv loads LLM client config from environment
// variables with safe defaults.
func LoadClientConfigFromEnv() ClientConfig {
	cfg := ClientConfig{
		BaseURL:      strings.TrimSpace(os.Getenv("HALALAI_LLM_URL")),
		Timeout:      envDuration("HALALAI_LLM_TIMEOUT", defaultLLMTimeout),
		MaxTokens:    envInt("HALALAI_LLM_MAX_TOKENS", defaultLLMMaxTokens),
		SystemPrompt: strings.TrimSpace(os.Getenv("HALALAI_LLM_SYSTEM_PROMPT")),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return cfg
}

// Client talks to the LLM HTTP service. Safe for concurrent use.
type Client struct {
	log  *slog.Logger
	http *http.Client
	cfg  ClientConfig
}

// NewClient constructs an LLM client.
func NewClient(log *slog.Logger, cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("chat: empty llm base url")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultLLMMaxTokens
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		log:  log,
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}, nil
}

// CompleteInput is one chat round trip request. APIKey and RemoteModel are
// optional pass-through knobs for remote inference; MaxTokens <= 0 uses the
// configured default.
type CompleteInput struct {
	Messages    []Message
	APIKey      string
	RemoteModel string
	MaxTokens   int
}

type llmChatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	APIKey      string    `json:"api_key,omitempty"`
	RemoteModel string    `json:"remote_model,omitempty"`
}

// Complete prepends the system prompt and performs one round trip against
// {base}/chat. The request is never retried; transport failures and
// non-2xx statuses surface as errors.
func (c *Client) Complete(ctx context.Context, in CompleteInput) (Completion, error) {
	if len(in.Messages) == 0 {
		return Completion{}, ErrNoMessages
	}

	msgs := make([]Message, 0, len(in.Messages)+1)
	msgs = append(msgs, Message{Role: RoleSystem, Content: c.cfg.SystemPrompt})
	msgs = append(msgs, in.Messages...)

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	body := llmChatRequest{
		Messages:    msgs,
		MaxTokens:   maxTokens,
		APIKey:      strings.TrimSpace(in.APIKey),
		RemoteModel: strings.TrimSpace(in.RemoteModel),
	}

	var out Completion
	if err := c.postJSON(ctx, "/chat", body, &out); err != nil {
		return Completion{}, err
	}
	if strings.TrimSpace(out.Reply) == "" {
		return Completion{}, ErrEmptyReply
	}

	c.log.Info("chat.complete.ok",
		"reply_len", len(out.Reply),
		"model", out.Model,
		"used_remote", out.UsedRemote,
	)
	return out, nil
}

// Models fetches the model inventory from {base}/models.
func (c *Client) Models(ctx context.Context) (ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("chat.models: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("chat.models: %w", err)
	}
	defer drainClose(resp.Body)

	if err := classifyStatus(resp.StatusCode); err != nil {
		return ModelInfo{}, fmt.Errorf("chat.models: %w", err)
	}

	var out ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ModelInfo{}, fmt.Errorf("chat.models: decode: %w", err)
	}
	if out.AllowedModels == nil {
		out.AllowedModels = []string{}
	}
	return out, nil
}

// SystemPrompt returns the configured system prompt.
func (c *Client) SystemPrompt() string {
	return c.cfg.SystemPrompt
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("chat: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	defer drainClose(resp.Body)

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("chat: decode: %w", err)
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusServiceUnavailable:
		return ErrUnavailable
	case status < 200 || status > 299:
		return fmt.Errorf("llm service status %d", status)
	default:
		return nil
	}
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}

// ---- env helpers ----

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
