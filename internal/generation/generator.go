package generation

import "context"

// Result is the outcome of a successful provider call. Exactly one of
// ImageData and URL is expected to be set: providers that return the image
// inline populate ImageData, job-style providers that host the result
// populate URL.
type Result struct {
	// ImageData holds the generated image bytes when the provider returns
	// them inline.
	ImageData []byte

	// MIMEType describes ImageData when present (e.g. "image/png").
	MIMEType string

	// URL points at a hosted copy of the generated image.
	URL string
}

// Generator produces a stylized image from a reference photo and a prompt.
//
// Implementations must apply their own bounded wait (the pipeline imposes
// no secondary timeout) and must not retry internally: any error routes the
// task to the fallback simulator, so retrying here only delays recovery.
// Version: 1.0
type Generator interface {
	// Generate creates a stylized image from the reference image bytes and
	// the prompt. Returns a Result or an error classified via errors.go.
	Generate(ctx context.Context, imageData []byte, prompt string) (*Result, error)
}
