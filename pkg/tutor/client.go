// Package tutor is the HTTP client for a running skillpilot gateway.
package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/pkg/chatstream"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

// Gateway routes.
const (
	ChatPath     = "/functions/v1/chat"
	RoadmapPath  = "/functions/v1/generate-roadmap"
	QuizPath     = "/functions/v1/generate-mcq"
	defaultLimit = 1 << 20
)

// Fallback messages used when the gateway error body carries none.
const (
	RoadmapFailureMessage = "Failed to generate roadmap"
	QuizFailureMessage    = "Failed to generate quiz"
)

// Client talks to the gateway's edge functions.
type Client struct {
	target     string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the gateway at target. token is sent as a
// bearer credential when non-empty.
func NewClient(target, token string, logger *zap.Logger) *Client {
	return &Client{
		target: strings.TrimRight(target, "/"),
		token:  token,
		httpClient: &http.Client{
			// LLM responses can be slow
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// StreamChat sends the conversation to the chat function and streams the
// reply into h. Failures to reach the gateway are reported through
// h.OnError as *chatstream.ConnectionError. Cancelling ctx is silent and
// returns ctx.Err().
func (c *Client) StreamChat(ctx context.Context, req llm.ChatRequest, h chatstream.Handler) error {
	c.logger.Debug("sending chat request",
		zap.String("target", c.target),
		zap.String("skill", req.Skill),
		zap.Int("message_count", len(req.Messages)),
	)

	resp, err := c.post(ctx, ChatPath, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if h.OnError != nil {
			h.OnError(&chatstream.ConnectionError{Err: err})
		}
		return nil
	}

	return chatstream.RunResponse(ctx, resp, h)
}

// GenerateRoadmap asks the gateway for a learning roadmap.
func (c *Client) GenerateRoadmap(ctx context.Context, skill string) (*llm.Roadmap, error) {
	roadmap := &llm.Roadmap{}
	if err := c.call(ctx, RoadmapPath, llm.RoadmapRequest{Skill: skill}, RoadmapFailureMessage, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

// GenerateQuiz asks the gateway for one multiple choice question.
func (c *Client) GenerateQuiz(ctx context.Context, concept, skill string) (*llm.Quiz, error) {
	quiz := &llm.Quiz{}
	if err := c.call(ctx, QuizPath, llm.QuizRequest{Concept: concept, Skill: skill}, QuizFailureMessage, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// call posts body and decodes a 2xx JSON response into out. Other statuses
// become *chatstream.StatusError.
func (c *Client) call(ctx context.Context, path string, body any, fallback string, out any) error {
	start := time.Now()

	resp, err := c.post(ctx, path, body)
	if err != nil {
		return &chatstream.ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, defaultLimit))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("gateway responded",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chatstream.ClassifyStatus(resp.StatusCode, data, fallback)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to gateway: %w", err)
	}

	return resp, nil
}

// IsStatus reports whether err is an unsuccessful gateway status of kind.
func IsStatus(err error, kind chatstream.StatusKind) bool {
	var se *chatstream.StatusError
	return errors.As(err, &se) && se.Kind == kind
}
