//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"board-finder/internal/domain/port"
)

// Enabled собрано ли с OpenCV
const Enabled = false

// GoCVInspector заглушка для сборки без OpenCV
type GoCVInspector struct {
	Gate QualityGate
}

// NewGoCVInspector создаёт инспектор-заглушку (без OpenCV).
func NewGoCVInspector() *GoCVInspector {
	return &GoCVInspector{Gate: DefaultQualityGate()}
}

// CheckFrame возвращает ErrDisabled
func (d *GoCVInspector) CheckFrame(ctx context.Context, imageData []byte) error {
	return ErrDisabled
}

// SampleFrames возвращает ErrDisabled
func (d *GoCVInspector) SampleFrames(ctx context.Context, videoData []byte, count int) ([][]byte, error) {
	return nil, ErrDisabled
}

var (
	_ port.FrameInspector = (*GoCVInspector)(nil)
	_ port.FrameSampler   = (*GoCVInspector)(nil)
)
