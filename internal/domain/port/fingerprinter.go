package port

import (
	"image"

	"board-finder/internal/domain/entity"
)

// ImageNormalizer декодирование и подготовка снимка к хранению
type ImageNormalizer interface {
	// Decode превращает байты в изображение или возвращает ошибку с entity.ErrDecode
	Decode(data []byte) (image.Image, error)

	// DisplayJPEG нормализует снимок для показа и кодирует его в JPEG
	DisplayJPEG(img image.Image) ([]byte, error)
}

// Fingerprinter вычисляет отпечаток декодированного снимка
// (хэш-нормализация + перцептивный хэш)
type Fingerprinter interface {
	Fingerprint(img image.Image) (entity.Fingerprint, error)
}
