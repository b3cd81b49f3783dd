package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/styleforge/styleforge-api/internal/config"
	"github.com/styleforge/styleforge-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the provider configuration.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.ProviderConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		logger.Warn("invalid provider timeout, using default",
			"configured_seconds", cfg.TimeoutSeconds,
			"default_seconds", 120)
		timeout = 120 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:  logger,
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

// Generate sends the reference image and prompt to the configured Gemini
// model and returns the generated image. The call is bounded by the
// configured timeout; errors are classified but never retried here.
func (g *Generator) Generate(ctx context.Context, imageData []byte, prompt string) (*generation.Result, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: reference image is empty", generation.ErrGenerationFailed)
	}

	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", generation.ErrGenerationFailed)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.InfoContext(ctx, "calling Gemini image generation",
		"model", g.model,
		"prompt_length", len(prompt),
		"image_bytes", len(imageData))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(imageData, sniffMIMEType(imageData)),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		classified := classifyError(err)
		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"model", g.model,
			"category", generation.Category(classified),
			"error", err)
		return nil, classified
	}

	result, err := extractResult(resp)
	if err != nil {
		g.logger.ErrorContext(ctx, "unusable Gemini response",
			"model", g.model,
			"error", err)
		return nil, err
	}

	g.logger.InfoContext(ctx, "Gemini image generation succeeded",
		"model", g.model,
		"inline_bytes", len(result.ImageData),
		"hosted_url", result.URL != "")
	return result, nil
}

// extractResult pulls the first image out of a Gemini response, preferring
// inline bytes over hosted file references.
func extractResult(resp *genai.GenerateContentResponse) (*generation.Result, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty candidate content", generation.ErrInvalidResponse)
	}

	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &generation.Result{
				ImageData: part.InlineData.Data,
				MIMEType:  part.InlineData.MIMEType,
			}, nil
		}
		if part.FileData != nil && part.FileData.FileURI != "" {
			return &generation.Result{URL: part.FileData.FileURI}, nil
		}
	}

	return nil, fmt.Errorf("%w: no image part in response", generation.ErrInvalidResponse)
}

// classifyError maps transport and API errors onto the generation taxonomy.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", generation.ErrRateLimited, err)
		case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", generation.ErrNetwork, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
}

// sniffMIMEType picks a content type for the uploaded reference from its
// magic bytes, defaulting to JPEG.
func sniffMIMEType(data []byte) string {
	switch {
	case len(data) >= 8 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) >= 4 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F':
		return "image/webp"
	case len(data) >= 3 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F':
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
