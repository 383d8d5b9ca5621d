package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/pkg/chatstream"
	"github.com/shaikhalfiya/skillpilot/pkg/llm"
	"github.com/shaikhalfiya/skillpilot/pkg/logger"
	"github.com/shaikhalfiya/skillpilot/pkg/merkle"
)

// handleChat streams a tutor reply. The upstream event stream is forwarded
// to the client byte for byte while the same bytes are read by chatstream to
// accumulate the reply, which is then stored in the transcript DAG.
// Content-addressing means a repeated history deduplicates and a different
// reply branches from the shared prefix.
func (g *Gateway) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		g.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: invalidBodyMessage})
	}

	if g.config.APIKey == "" {
		return g.missingKey(c)
	}

	model := g.Model()
	g.logger.Debug("received chat request",
		zap.String("skill", req.Skill),
		zap.String("model", model),
		zap.Int("message_count", len(req.Messages)),
	)

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: tutorSystemPrompt(req.Skill)})
	messages = append(messages, req.Messages...)

	resp, err := g.complete(c.UserContext(), llm.CompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		g.logger.Error("upstream request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: gatewayErrorMessage})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return g.upstreamFailure(c, resp)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// The stream writer runs after the handler returns, so it owns the body.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer resp.Body.Close()

		out := &flushWriter{w: w}
		var (
			reply   strings.Builder
			failure error
		)

		err := chatstream.Run(context.Background(), io.TeeReader(resp.Body, out), chatstream.Handler{
			OnDelta: func(text string) { reply.WriteString(text) },
			OnError: func(err error) { failure = err },
		})
		if err == nil && failure == nil {
			// Forward anything the upstream sends after the sentinel.
			_, failure = io.Copy(out, resp.Body)
		}
		if err != nil || failure != nil {
			g.logger.Warn("chat stream ended early",
				zap.Error(firstErr(err, failure)),
				zap.Duration("duration", time.Since(startTime)),
			)
			return
		}

		g.logger.Debug("streaming complete",
			zap.Int("reply_size", reply.Len()),
			zap.String("reply_preview", logger.Preview(reply.String(), 200)),
			zap.Duration("duration", time.Since(startTime)),
		)

		head, err := merkle.StoreTurn(context.Background(), g.storer, llm.ConversationTurn{
			Skill:    req.Skill,
			Model:    model,
			Messages: req.Messages,
			Reply:    llm.Message{Role: llm.RoleAssistant, Content: reply.String()},
		})
		if err != nil {
			g.logger.Error("failed to store conversation", zap.Error(err))
			return
		}
		g.logger.Info("conversation stored", zap.String("head_hash", logger.Preview(head.Hash, 16)))
	})

	return nil
}

// flushWriter pushes every write through to the client.
type flushWriter struct {
	w *bufio.Writer
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, f.w.Flush()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
