package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
)

// Classifier implements Backend on top of a provider Client.
type Classifier struct {
	client      Client
	cache       *resultCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	provider    string
	reason      string
	cfg         Config
}

// NewClassifier wraps client with caching, rate limiting and a per-call timeout.
func NewClassifier(provider string, client Client, cfg Config, logger *slog.Logger) *Classifier {
	cfg.defaults()
	return &Classifier{
		client:      client,
		provider:    provider,
		cfg:         cfg,
		logger:      common.OrDefault(logger),
		cache:       newResultCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

func newDisabled(provider, reason string, cfg Config, logger *slog.Logger) *Classifier {
	logger = common.OrDefault(logger)
	logger.Debug("ai classifier unavailable", "provider", provider, "reason", reason)
	return &Classifier{
		provider: provider,
		reason:   reason,
		cfg:      cfg,
		logger:   logger,
	}
}

// ProviderName implements Backend.
func (c *Classifier) ProviderName() string {
	return c.provider
}

// IsAvailable implements Backend.
func (c *Classifier) IsAvailable() bool {
	return c.client != nil
}

// Status implements Backend.
func (c *Classifier) Status() Status {
	st := Status{
		Provider:  c.provider,
		Available: c.IsAvailable(),
		Reason:    c.reason,
		Timeout:   c.cfg.Timeout,
		RateLimit: c.cfg.RateLimit,
	}
	if c.client != nil {
		st.Model = c.client.Model()
	}
	if c.cache != nil {
		st.CacheSize = c.cache.size()
	}
	return st
}

// ClassifyDocument implements Backend. Results are cached by a hash of the text.
// The call, including any wait for the rate limiter, is bounded by the configured
// timeout and is never retried.
func (c *Classifier) ClassifyDocument(ctx context.Context, text string) (*model.ClassificationResult, error) {
	if c.client == nil {
		return nil, common.Unavailable(c.provider, c.reason)
	}

	key := cacheKey(text)
	if cached, ok := c.cache.get(key); ok {
		c.logger.Debug("cache hit for document", "provider", c.provider, "type", cached.DocumentType)
		return &cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	content, err := c.client.Complete(ctx, systemPrompt, buildPrompt(text, c.cfg.MaxInputRunes))
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", c.provider, err)
	}

	result, err := parseClassification(content)
	if err != nil {
		c.logger.Warn("unparsable ai response",
			"provider", c.provider,
			"error", err)
		return nil, err
	}
	result.Provider = c.provider

	c.cache.set(key, *result)
	c.logger.Debug("document classified",
		"provider", c.provider,
		"type", result.DocumentType,
		"confidence", result.Confidence)

	return result, nil
}

// Close stops the background goroutines of the cache and rate limiter.
func (c *Classifier) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
