package port

import "context"

// FrameInspector проверка качества кадра перед регистрацией
type FrameInspector interface {
	// CheckFrame возвращает ошибку, если кадр слишком тёмный, размытый или с бликом
	CheckFrame(ctx context.Context, imageData []byte) error
}

// FrameSampler извлекает кадры из короткого видео
type FrameSampler interface {
	// SampleFrames возвращает до count равномерно распределённых кадров в JPEG
	SampleFrames(ctx context.Context, videoData []byte, count int) ([][]byte, error)
}
