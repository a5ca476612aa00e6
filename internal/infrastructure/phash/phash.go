// Package phash вычисляет 64-битный перцептивный хэш (DCT) нормализованного снимка.
package phash

import (
	"errors"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
	"board-finder/internal/infrastructure/normalize"
)

// Generator считает отпечатки: хэш-нормализация, затем DCT, 8×8 низких
// частот, бит = коэффициент больше медианы.
type Generator struct {
	normalizer *normalize.Normalizer
}

// New создаёт генератор поверх нормализатора
func New(normalizer *normalize.Normalizer) *Generator {
	return &Generator{normalizer: normalizer}
}

// Generate хэширует уже нормализованное серое изображение.
func (g *Generator) Generate(gray image.Image) (entity.Fingerprint, error) {
	if gray == nil {
		return 0, errors.New("perception hash: nil image")
	}
	h, err := goimagehash.PerceptionHash(gray)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return entity.Fingerprint(h.GetHash()), nil
}

// Fingerprint нормализует декодированный снимок и возвращает его отпечаток.
func (g *Generator) Fingerprint(img image.Image) (entity.Fingerprint, error) {
	return g.Generate(g.normalizer.Hash(img))
}

// FromBytes декодирует снимок и возвращает его отпечаток.
func (g *Generator) FromBytes(data []byte) (entity.Fingerprint, error) {
	img, err := g.normalizer.Decode(data)
	if err != nil {
		return 0, err
	}
	return g.Fingerprint(img)
}

// Проверка реализации интерфейса
var _ port.Fingerprinter = (*Generator)(nil)
