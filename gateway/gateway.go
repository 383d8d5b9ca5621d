// Package gateway serves the tutor edge functions. It forwards chat, roadmap
// and quiz requests to an OpenAI-compatible AI gateway and records streamed
// tutor conversations in a Merkle DAG.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/pkg/chatstream"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
	"github.com/shaikhalfiya/skillpilot/pkg/merkle"
)

const (
	completionsPath = "/v1/chat/completions"
	maxUpstreamBody = 1 << 20
)

// Error messages returned to clients.
const (
	missingKeyMessage    = "API key is not configured"
	gatewayErrorMessage  = "AI gateway error"
	invalidBodyMessage   = "invalid request body"
	parseRoadmapMessage  = "Failed to parse roadmap response"
	parseQuizMessage     = "Failed to parse MCQ response"
	skillRequiredMessage = "skill is required"
)

// Gateway is the tutor edge function server.
type Gateway struct {
	config     Config
	model      atomic.Pointer[string]
	storer     merkle.Storer
	logger     *zap.Logger
	httpClient *http.Client
	server     *fiber.App
}

// New creates a new Gateway.
func New(config Config, logger *zap.Logger) (*Gateway, error) {
	var storer merkle.Storer
	var err error

	if config.DBPath != "" {
		storer, err = merkle.NewSQLiteStorer(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		logger.Info("using SQLite transcript storage", zap.String("path", config.DBPath))
	} else {
		storer = merkle.NewMemoryStorer()
		logger.Info("using in-memory transcript storage")
	}

	g := newGateway(config, storer, logger)
	g.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	g.routes(g.server)

	return g, nil
}

func newGateway(config Config, storer merkle.Storer, logger *zap.Logger) *Gateway {
	g := &Gateway{
		config: config,
		storer: storer,
		logger: logger,
		httpClient: &http.Client{
			// No overall Timeout: it would cut off long chat streams.
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: config.headerTimeout(),
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
			},
		},
	}
	g.SetModel(config.Model)
	return g
}

func (g *Gateway) routes(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))

	app.Post("/functions/v1/chat", g.handleChat)
	app.Post("/functions/v1/generate-roadmap", g.handleGenerateRoadmap)
	app.Post("/functions/v1/generate-mcq", g.handleGenerateQuiz)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/transcripts/stats", g.handleTranscriptStats)
	app.Get("/transcripts/node/:hash", g.handleGetNode)
	app.Get("/transcripts/history", g.handleListHistories)
	app.Get("/transcripts/history/:hash", g.handleGetHistory)
}

// Model returns the upstream model currently in use.
func (g *Gateway) Model() string {
	return *g.model.Load()
}

// SetModel swaps the upstream model for subsequent requests.
func (g *Gateway) SetModel(model string) {
	g.model.Store(&model)
}

// Run starts the gateway on the configured listen address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway",
		zap.String("listen", g.config.ListenAddr),
		zap.String("upstream", g.config.UpstreamURL),
		zap.String("model", g.Model()),
	)

	return g.server.Listen(g.config.ListenAddr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.ShutdownWithContext(ctx)
}

// Close releases the transcript store.
func (g *Gateway) Close() error {
	return g.storer.Close()
}

// complete sends a chat completion request upstream.
func (g *Gateway) complete(ctx context.Context, req llm.CompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	upstreamURL := strings.TrimRight(g.config.UpstreamURL, "/") + completionsPath
	g.logger.Debug("forwarding request to upstream",
		zap.String("url", upstreamURL),
		zap.String("model", req.Model),
		zap.Bool("stream", req.Stream),
		zap.Int("body_size", len(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	return resp, nil
}

// upstreamFailure answers a non-2xx upstream response. Rate limiting and
// exhausted credits pass through with their own status; everything else
// becomes a 500.
func (g *Gateway) upstreamFailure(c *fiber.Ctx, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	se := chatstream.ClassifyStatus(resp.StatusCode, body, gatewayErrorMessage)

	g.logger.Error("upstream returned error",
		zap.Int("status", resp.StatusCode),
		zap.Stringer("kind", se.Kind),
		zap.String("body", string(body)),
	)

	switch se.Kind {
	case chatstream.StatusRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(llm.ErrorResponse{Error: se.Message})
	case chatstream.StatusCreditsExhausted:
		return c.Status(fiber.StatusPaymentRequired).JSON(llm.ErrorResponse{Error: se.Message})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: gatewayErrorMessage})
	}
}

func (g *Gateway) missingKey(c *fiber.Ctx) error {
	g.logger.Error("upstream API key is not configured")
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: missingKeyMessage})
}
