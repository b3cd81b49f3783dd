package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/config"
	"github.com/styleforge/styleforge-api/internal/generation"
	"google.golang.org/genai"
)

func TestNewGeneratorValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("fails with nil logger", func(t *testing.T) {
		t.Parallel()

		_, err := NewGenerator(ctx, nil, config.ProviderConfig{GeminiAPIKey: "key", Model: "m"})
		assert.Error(t, err)
	})

	t.Run("fails with empty API key", func(t *testing.T) {
		t.Parallel()

		_, err := NewGenerator(ctx, logger, config.ProviderConfig{Model: "m"})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("fails with empty model", func(t *testing.T) {
		t.Parallel()

		_, err := NewGenerator(ctx, logger, config.ProviderConfig{GeminiAPIKey: "key"})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			"deadline exceeded maps to timeout",
			fmt.Errorf("rpc: %w", context.DeadlineExceeded),
			generation.ErrTimeout,
		},
		{
			"429 maps to rate limit",
			genai.APIError{Code: 429, Message: "resource exhausted"},
			generation.ErrRateLimited,
		},
		{
			"504 maps to timeout",
			genai.APIError{Code: 504, Message: "deadline"},
			generation.ErrTimeout,
		},
		{
			"500 maps to network",
			genai.APIError{Code: 500, Message: "internal"},
			generation.ErrNetwork,
		},
		{
			"400 maps to generic failure",
			genai.APIError{Code: 400, Message: "bad request"},
			generation.ErrGenerationFailed,
		},
		{
			"url error maps to network",
			&url.Error{Op: "Post", URL: "https://example", Err: errors.New("refused")},
			generation.ErrNetwork,
		},
		{
			"unknown maps to generic failure",
			errors.New("boom"),
			generation.ErrGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classifyError(tt.err), tt.want)
		})
	}
}

func TestExtractResult(t *testing.T) {
	t.Parallel()

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		_, err := extractResult(nil)
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()

		_, err := extractResult(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("safety block", func(t *testing.T) {
		t.Parallel()

		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{FinishReason: genai.FinishReasonSafety},
			},
		}
		_, err := extractResult(resp)
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
	})

	t.Run("inline image preferred", func(t *testing.T) {
		t.Parallel()

		data := []byte{0x89, 'P', 'N', 'G'}
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{
					Content: &genai.Content{
						Parts: []*genai.Part{
							{Text: "here is your image"},
							{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
						},
					},
				},
			},
		}

		result, err := extractResult(resp)
		require.NoError(t, err)
		assert.Equal(t, data, result.ImageData)
		assert.Equal(t, "image/png", result.MIMEType)
		assert.Empty(t, result.URL)
	})

	t.Run("hosted file reference", func(t *testing.T) {
		t.Parallel()

		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{
					Content: &genai.Content{
						Parts: []*genai.Part{
							{FileData: &genai.FileData{MIMEType: "image/png", FileURI: "https://cdn.example/gen.png"}},
						},
					},
				},
			},
		}

		result, err := extractResult(resp)
		require.NoError(t, err)
		assert.Empty(t, result.ImageData)
		assert.Equal(t, "https://cdn.example/gen.png", result.URL)
	})

	t.Run("text only response", func(t *testing.T) {
		t.Parallel()

		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}}},
			},
		}
		_, err := extractResult(resp)
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})
}

func TestSniffMIMEType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", sniffMIMEType([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "image/webp", sniffMIMEType([]byte("RIFFxxxxWEBP")))
	assert.Equal(t, "image/gif", sniffMIMEType([]byte("GIF89a")))
	assert.Equal(t, "image/jpeg", sniffMIMEType([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/jpeg", sniffMIMEType(nil))
}
