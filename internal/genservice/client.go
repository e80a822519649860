package genservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultTextModel    = openai.GPT4o
	DefaultImageModel   = openai.CreateImageModelDallE3
	DefaultImageSize    = openai.CreateImageSize1792x1024
	DefaultImageQuality = openai.CreateImageQualityStandard
)

var (
	imageSizes = map[string]bool{
		openai.CreateImageSize256x256:   true,
		openai.CreateImageSize512x512:   true,
		openai.CreateImageSize1024x1024: true,
		openai.CreateImageSize1792x1024: true,
		openai.CreateImageSize1024x1792: true,
	}
	imageQualities = map[string]bool{
		openai.CreateImageQualityStandard: true,
		openai.CreateImageQualityHD:       true,
	}
)

// ValidateImageOptions rejects sizes and qualities the image model does not accept.
// Empty values select the defaults.
func ValidateImageOptions(size, quality string) error {
	if size != "" && !imageSizes[size] {
		return fmt.Errorf("%w: size %q", ErrInvalidImageOption, size)
	}
	if quality != "" && !imageQualities[quality] {
		return fmt.Errorf("%w: quality %q", ErrInvalidImageOption, quality)
	}
	return nil
}

// Draft is the structured result of a text generation.
type Draft struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImagePrompt string `json:"imagePrompt"`
}

type Config struct {
	APIKey       string
	BaseURL      string
	TextModel    string
	ImageModel   string
	ImageSize    string
	ImageQuality string
}

// modelAPI is the subset of the OpenAI client used here.
type modelAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

type Client struct {
	api    modelAPI
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return newClient(openai.NewClientWithConfig(oc), cfg, logger)
}

func newClient(api modelAPI, cfg Config, logger *slog.Logger) *Client {
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = DefaultImageSize
	}
	if cfg.ImageQuality == "" {
		cfg.ImageQuality = DefaultImageQuality
	}

	return &Client{api: api, cfg: cfg, logger: logger}
}

// GenerateText turns source text into a titled HTML draft. Failures are returned as *GenerationError.
func (c *Client) GenerateText(ctx context.Context, source string) (*Draft, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: textPrompt(source)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &GenerationError{Op: "completion", Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &GenerationError{Op: "completion", Err: ErrEmptyResponse}
	}

	d, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &GenerationError{Op: "parse", Err: err}
	}

	return d, nil
}

// GenerateImage returns the URL of a featured image, or nil when none could be produced.
func (c *Client) GenerateImage(ctx context.Context, prompt string) *string {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         imagePrompt(prompt),
		Model:          c.cfg.ImageModel,
		N:              1,
		Size:           c.cfg.ImageSize,
		Quality:        c.cfg.ImageQuality,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		c.logger.Warn("image generation failed", "error", err)
		return nil
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		c.logger.Warn("image generation returned no url")
		return nil
	}

	url := resp.Data[0].URL
	return &url
}

func parseDraft(raw string) (*Draft, error) {
	raw = stripCodeFence(raw)

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}

	d.Title = strings.TrimSpace(d.Title)
	d.ImagePrompt = strings.TrimSpace(d.ImagePrompt)
	if d.Title == "" || strings.TrimSpace(d.Content) == "" {
		return nil, ErrInvalidDraft
	}

	return &d, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
