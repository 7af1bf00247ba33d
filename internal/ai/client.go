package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// TextGenerator is the text-generation capability the pipeline depends on.
// Implementations accept a plain prompt or a prompt plus a rendered page
// image and return the model's raw response.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, imagePNG []byte) (string, error)
}

// Config holds OpenAI client configuration
type Config struct {
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
	MaxTokens   int
}

// Client wraps the OpenAI chat completion API behind TextGenerator
type Client struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

// NewClient creates a new OpenAI-backed text generator
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Generate submits a text prompt and returns the response content
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		c.logger.Error("Chat completion failed", zap.Error(err))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model %s", c.cfg.Model)
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateWithImage submits a prompt plus a PNG page image and returns the
// response content. Used for scanned PDFs that yield no extractable text.
func (c *Client) GenerateWithImage(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	base64Img := base64.StdEncoding.EncodeToString(imagePNG)

	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		},
		{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/png;base64,%s", base64Img),
				Detail: openai.ImageURLDetailHigh,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.VisionModel,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
	})
	if err != nil {
		c.logger.Error("Vision completion failed", zap.Error(err), zap.Int("image_bytes", len(imagePNG)))
		return "", fmt.Errorf("vision completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model %s", c.cfg.VisionModel)
	}

	return resp.Choices[0].Message.Content, nil
}
