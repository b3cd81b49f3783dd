// Package generation defines the boundary between the task pipeline and
// external image-generation providers. The pipeline depends only on the
// Generator interface; concrete adapters live under platform/.
package generation
