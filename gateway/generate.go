package gateway

import (
	"context"
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/shaikhalfiya/skillpilot/pkg/llm"
)

const roadmapTemperature = 0.7

var (
	fencedJSON = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	objectJSON = regexp.MustCompile(`\{[\s\S]*\}`)
)

// extractJSON pulls the JSON object out of a model reply. Models often wrap
// it in a markdown code fence or surround it with prose.
func extractJSON(content string) string {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	return objectJSON.FindString(content)
}

func (g *Gateway) handleGenerateRoadmap(c *fiber.Ctx) error {
	var req llm.RoadmapRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		g.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: invalidBodyMessage})
	}
	if strings.TrimSpace(req.Skill) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: skillRequiredMessage})
	}
	if g.config.APIKey == "" {
		return g.missingKey(c)
	}

	g.logger.Info("generating roadmap", zap.String("skill", req.Skill))

	var roadmap llm.Roadmap
	ok, err := g.generate(c, []llm.Message{
		{Role: llm.RoleSystem, Content: roadmapPrompt},
		{Role: llm.RoleUser, Content: roadmapUserPrompt(req.Skill)},
	}, llm.WithTemperature(roadmapTemperature), &roadmap, parseRoadmapMessage)
	if !ok {
		return err
	}

	if len(roadmap.Steps) == 0 {
		g.logger.Error("roadmap has no steps", zap.String("skill", req.Skill))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: parseRoadmapMessage})
	}
	if roadmap.Skill == "" {
		roadmap.Skill = req.Skill
	}

	return c.JSON(roadmap)
}

func (g *Gateway) handleGenerateQuiz(c *fiber.Ctx) error {
	var req llm.QuizRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		g.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: invalidBodyMessage})
	}
	if g.config.APIKey == "" {
		return g.missingKey(c)
	}

	g.logger.Info("generating quiz",
		zap.String("concept", req.Concept),
		zap.String("skill", req.Skill),
	)

	var quiz llm.Quiz
	ok, err := g.generate(c, []llm.Message{
		{Role: llm.RoleSystem, Content: quizPrompt},
		{Role: llm.RoleUser, Content: quizUserPrompt(req.Concept, req.Skill)},
	}, nil, &quiz, parseQuizMessage)
	if !ok {
		return err
	}

	if len(quiz.Options) < 2 || quiz.CorrectIndex < 0 || quiz.CorrectIndex >= len(quiz.Options) {
		g.logger.Error("quiz is malformed",
			zap.Int("options", len(quiz.Options)),
			zap.Int("correct_index", quiz.CorrectIndex),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: parseQuizMessage})
	}

	return c.JSON(quiz)
}

// generate runs a non-streaming completion and decodes the JSON object in the
// reply into out. Replies without a decodable object answer parseFailure.
// When it returns false the response has already been
// written and err is the result of writing it.
func (g *Gateway) generate(c *fiber.Ctx, messages []llm.Message, opts *llm.Options, out any, parseFailure string) (bool, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(c.UserContext(), g.config.generateTimeout())
	defer cancel()

	resp, err := g.complete(ctx, llm.CompletionRequest{
		Model:    g.Model(),
		Messages: messages,
		Options:  opts,
	})
	if err != nil {
		g.logger.Error("upstream request failed", zap.Error(err))
		return false, c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: gatewayErrorMessage})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, g.upstreamFailure(c, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		g.logger.Error("failed to read upstream response", zap.Error(err))
		return false, c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: gatewayErrorMessage})
	}

	content := gjson.GetBytes(body, "choices.0.message.content").String()
	g.logger.Debug("received response from upstream",
		zap.Int("content_size", len(content)),
		zap.Duration("duration", time.Since(startTime)),
	)

	raw := extractJSON(content)
	if raw == "" {
		g.logger.Error("no JSON object in reply", zap.Int("content_size", len(content)))
		return false, c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: parseFailure})
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		g.logger.Error("failed to decode reply", zap.Error(err))
		return false, c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: parseFailure})
	}

	return true, nil
}
