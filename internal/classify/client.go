package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/ratelimit"
)

const (
	maxTokens   = 800
	temperature = 0.1
)

// Client is a rate-limited client for an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	cfg     config.AIConfig
	http    *http.Client
	limiter *ratelimit.Keyed
	log     *logger.Logger
}

// New creates a classification client. The per-minute request limit from the
// config is enforced client-side so a burst of newly ingested assets cannot
// trip the provider's own limiter.
func New(cfg config.AIConfig, log *logger.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: ratelimit.New(float64(cfg.RequestsPerMinute)/60.0, 2),
		log:     log.WithComponent("classify"),
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Classify sends the asset to the provider. A vision call is attempted first
// when image bytes are present; any vision failure falls through to a
// text-only call built from filename and MIME metadata, whose result is
// always marked for review because no visual evidence backed it.
func (c *Client) Classify(ctx context.Context, req Request) (*Result, error) {
	if !c.cfg.Enabled() {
		return nil, ErrDisabled
	}

	system := systemPrompt(req.IsDocument, req.Vocabulary, c.cfg.ConfidenceThreshold)

	if len(req.Image) > 0 {
		raw, err := c.chat(ctx, system, visionContent(req))
		if err == nil {
			res := interpret(raw, req.IsDocument)
			res.VisionUsed = true
			return res, nil
		}
		c.log.Info("vision request failed, trying text-only", "error", err)
	}

	raw, err := c.chat(ctx, system, textContent(req))
	if err != nil {
		return nil, err
	}

	res := interpret(raw, req.IsDocument)
	res.NeedsReview = true
	return res, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

// chat posts one completion request and parses the model's answer.
func (c *Client) chat(ctx context.Context, system string, user any) (*rawResult, error) {
	if err := c.limiter.Wait(ctx, c.cfg.Model); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("classification request", "model", c.cfg.Model, "bytes", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrUnusable)
	}

	return parseContent(decoded.Choices[0].Message.Content)
}

// visionContent builds the multimodal user message: the preview as a base64
// data URI plus classification instructions.
func visionContent(req Request) []contentPart {
	mime := req.ImageMIME
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.Image)

	text := fmt.Sprintf("Look at this image carefully. Describe what you see, then classify it.\n"+
		"Filename: %q (.%s, %s).\n"+
		"Return 8-15 tags from the taxonomy. Focus on the VISUAL CONTENT of the image — subject, setting, mood, colors, composition. JSON only.",
		req.Filename, req.Extension, req.MIME)

	return []contentPart{
		{Type: "image_url", ImageURL: &imageRef{URL: uri}},
		{Type: "text", Text: text},
	}
}

// textContent builds the metadata-only user message.
func textContent(req Request) string {
	return fmt.Sprintf("No image available. Classify this asset based on its metadata only:\n"+
		"Filename: %q\nExtension: .%s\nMIME: %s\nSize: %d KB\n"+
		"Return 8-15 tags from the taxonomy. Set needs_review=true since no visual data is available. JSON only.",
		req.Filename, req.Extension, req.MIME, req.Size/1024)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
