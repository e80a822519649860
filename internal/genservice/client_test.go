package genservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func (m *mockAPI) CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ImageResponse), args.Error(1)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func setupTestClient() (*Client, *mockAPI) {
	api := new(mockAPI)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newClient(api, Config{}, logger), api
}

func TestClient_GenerateText(t *testing.T) {
	testCases := []struct {
		name     string
		resp     openai.ChatCompletionResponse
		err      error
		expected *Draft
		wantErr  error
	}{
		{
			name:     "valid draft",
			resp:     completion(`{"title":"Hello","content":"<p>World</p>","imagePrompt":"a sunrise"}`),
			expected: &Draft{Title: "Hello", Content: "<p>World</p>", ImagePrompt: "a sunrise"},
		},
		{
			name:     "fenced json",
			resp:     completion("```json\n{\"title\":\"Hello\",\"content\":\"<p>World</p>\"}\n```"),
			expected: &Draft{Title: "Hello", Content: "<p>World</p>"},
		},
		{
			name:    "no choices",
			resp:    openai.ChatCompletionResponse{},
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "blank content",
			resp:    completion("   "),
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "missing title",
			resp:    completion(`{"content":"<p>World</p>"}`),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "upstream timeout",
			resp:    openai.ChatCompletionResponse{},
			err:     context.DeadlineExceeded,
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, api := setupTestClient()
			api.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
				return req.Model == DefaultTextModel && len(req.Messages) == 1 &&
					req.ResponseFormat.Type == openai.ChatCompletionResponseFormatTypeJSONObject
			})).Return(tc.resp, tc.err).Once()

			d, err := c.GenerateText(context.Background(), "some source text")
			if tc.wantErr != nil {
				var genErr *GenerationError
				require.ErrorAs(t, err, &genErr)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, d)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
			api.AssertExpectations(t)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		c, api := setupTestClient()
		api.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completion("not json"), nil)

		_, err := c.GenerateText(context.Background(), "source")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "parse", genErr.Op)
	})
}

func TestClient_GenerateImage(t *testing.T) {
	t.Run("returns url", func(t *testing.T) {
		c, api := setupTestClient()
		api.On("CreateImage", mock.Anything, mock.MatchedBy(func(req openai.ImageRequest) bool {
			return req.Model == DefaultImageModel && req.Size == DefaultImageSize &&
				req.Quality == DefaultImageQuality && req.Prompt == imagePrompt("a sunrise")
		})).Return(openai.ImageResponse{Data: []openai.ImageResponseDataInner{{URL: "https://img.example/1.png"}}}, nil)

		url := c.GenerateImage(context.Background(), "a sunrise")
		require.NotNil(t, url)
		assert.Equal(t, "https://img.example/1.png", *url)
	})

	t.Run("configured size and quality", func(t *testing.T) {
		api := new(mockAPI)
		c := newClient(api, Config{ImageSize: "1024x1024", ImageQuality: "hd"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		api.On("CreateImage", mock.Anything, mock.MatchedBy(func(req openai.ImageRequest) bool {
			return req.Size == openai.CreateImageSize1024x1024 && req.Quality == openai.CreateImageQualityHD
		})).Return(openai.ImageResponse{Data: []openai.ImageResponseDataInner{{URL: "https://img.example/2.png"}}}, nil)

		assert.NotNil(t, c.GenerateImage(context.Background(), "a sunset"))
		api.AssertExpectations(t)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		c, api := setupTestClient()
		api.On("CreateImage", mock.Anything, mock.Anything).Return(openai.ImageResponse{}, errors.New("content policy"))

		assert.Nil(t, c.GenerateImage(context.Background(), "a sunrise"))
	})

	t.Run("empty data", func(t *testing.T) {
		c, api := setupTestClient()
		api.On("CreateImage", mock.Anything, mock.Anything).Return(openai.ImageResponse{}, nil)

		assert.Nil(t, c.GenerateImage(context.Background(), "a sunrise"))
	})
}

func TestValidateImageOptions(t *testing.T) {
	testCases := []struct {
		name    string
		size    string
		quality string
		valid   bool
	}{
		{name: "defaults", valid: true},
		{name: "landscape hd", size: "1792x1024", quality: "hd", valid: true},
		{name: "portrait standard", size: "1024x1792", quality: "standard", valid: true},
		{name: "unknown size", size: "800x600"},
		{name: "unknown quality", quality: "ultra"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageOptions(tc.size, tc.quality)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidImageOption)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1}  `))
}
