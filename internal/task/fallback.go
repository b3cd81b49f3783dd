package task

import (
	"bytes"
	"context"
	"image/color"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/storage"
)

// simulatorProgressSteps is the staged progress sequence the fallback
// walks through before completing, picking up after the provider call.
var simulatorProgressSteps = []int{60, 70, 80, 90}

// simulate drives the task to completion without a working provider. It
// paces through staged progress updates, synthesizes a placeholder result
// image, and finishes the task as completed. This path must always reach a
// completed state: every internal failure degrades to a cheaper result
// rather than surfacing an error.
func (p *Pipeline) simulate(ctx context.Context, id uuid.UUID, log *slog.Logger) {
	log.Info("simulation started", "step_delay", p.config.SimulatorStepDelay)

	for _, step := range simulatorProgressSteps {
		time.Sleep(p.config.SimulatorStepDelay)
		if _, err := p.updateStatus(ctx, id, domain.TaskStatusProcessing, progressOnly(step)); err != nil {
			log.Error("failed to update simulated progress", "progress", step, "error", err)
		}
	}

	generatedRef := p.simulatedResult(ctx, id, log)
	p.complete(ctx, id, generatedRef)
	log.Info("simulated task completed", "generated_image", generatedRef)
}

// simulatedResult produces the placeholder generated image. Preference
// order: a stylized rendering of the original upload, then a flat
// placeholder image, then the original upload reference as-is.
func (p *Pipeline) simulatedResult(ctx context.Context, id uuid.UUID, log *slog.Logger) string {
	name := storage.GeneratedName(id)

	if task, err := p.tasks.Get(ctx, id); err == nil {
		if data, err := p.images.ReadUpload(task.OriginalImage); err == nil {
			if styled, err := stylizeImage(data); err == nil {
				if err := p.images.WriteGenerated(name, styled); err == nil {
					return name
				}
			} else {
				log.Warn("could not stylize original image for simulation", "error", err)
			}
		}

		if err := p.images.WriteGenerated(name, placeholderImage()); err == nil {
			return name
		}

		// Storage itself is failing; fall back to pointing at the original.
		log.Warn("could not store simulated result, reusing original image")
		return task.OriginalImage
	}

	// Task vanished mid-simulation; the completion below will be a no-op
	// anyway, but keep the reference well-formed.
	if err := p.images.WriteGenerated(name, placeholderImage()); err == nil {
		return name
	}
	return name
}

// stylizeImage applies a cheap local transformation so the simulated
// result is visibly different from the upload.
func stylizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	styled := imaging.AdjustSaturation(img, 40)
	styled = imaging.AdjustContrast(styled, 15)
	styled = imaging.Sharpen(styled, 1.5)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, styled, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// placeholderImage renders a flat gradient card used when the original
// upload cannot be decoded.
func placeholderImage() []byte {
	base := imaging.New(512, 512, color.NRGBA{R: 0x2b, G: 0x2d, B: 0x42, A: 0xff})
	overlay := imaging.New(512, 256, color.NRGBA{R: 0x8d, G: 0x99, B: 0xae, A: 0xff})
	card := imaging.OverlayCenter(base, overlay, 0.35)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, card, imaging.PNG); err != nil {
		// imaging's PNG encoder writing to a bytes.Buffer cannot fail in
		// practice; return whatever was buffered.
		return buf.Bytes()
	}
	return buf.Bytes()
}
