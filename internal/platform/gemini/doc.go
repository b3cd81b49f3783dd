// Package gemini implements the generation.Generator interface on top of
// Google's Gemini API. It sends the reference photo and style prompt to an
// image-capable model, applies a bounded wait, and classifies provider
// failures into the generation error taxonomy. It performs no retries:
// the task pipeline falls back to simulation instead.
package gemini
