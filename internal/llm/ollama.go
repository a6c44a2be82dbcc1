package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// heartbeatTimeout bounds the reachability check done at construction.
const heartbeatTimeout = 3 * time.Second

// ollamaClient implements the Client interface for a local Ollama server.
type ollamaClient struct {
	client      *api.Client
	model       string
	temperature float64
	maxTokens   int
}

// newOllamaClient creates an Ollama client. The host comes from cfg.BaseURL, else
// OLLAMA_HOST. The server must answer a heartbeat.
func newOllamaClient(cfg Config) (*ollamaClient, error) {
	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama url %q: %w", cfg.BaseURL, err)
		}
		host = u
	}

	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}

	c := &ollamaClient{
		client:      api.NewClient(host, newHTTPClient(cfg.Timeout)),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}

	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()
	if err := c.client.Heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("ollama at %s is not reachable: %w", host, err)
	}

	return c, nil
}

// Model implements Client.
func (c *ollamaClient) Model() string { return c.model }

// Complete implements Client.
func (c *ollamaClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var sb strings.Builder
	err := c.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return sb.String(), nil
}
