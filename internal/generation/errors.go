package generation

import "errors"

// Common errors returned by the generation package. The task pipeline does
// not branch on these, since every provider failure routes to the fallback
// simulator, but the classification is logged so degraded upstreams are
// diagnosable.
var (
	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate image")

	// ErrRateLimited is returned when the provider rejects the call due to quota.
	ErrRateLimited = errors.New("provider rate limited the request")

	// ErrTimeout is returned when the bounded wait elapses before the provider resolves.
	ErrTimeout = errors.New("provider call timed out")

	// ErrNetwork is returned when the provider cannot be reached.
	ErrNetwork = errors.New("provider network error")

	// ErrInvalidResponse is returned when the provider response carries no usable image.
	ErrInvalidResponse = errors.New("invalid response from provider")

	// ErrContentBlocked is returned when the provider blocks the content via safety filters.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// Category returns the user-facing classification of a provider error, used
// for logging when the pipeline falls back to simulation.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrContentBlocked):
		return "content_blocked"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		return "generic"
	}
}
