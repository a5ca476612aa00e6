// Package normalize приводит произвольный снимок к каноническому виду.
//
// Два варианта: Display (цветной, для хранения и показа) и Hash (квадратный
// серый 400×400, только для вычисления отпечатка). Оба детерминированы:
// одинаковые байты на входе дают одинаковые пиксели на выходе.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"

	"board-finder/internal/domain/entity"
)

// JPEGQuality качество сохраняемого изображения
const JPEGQuality = 95

// Unsharp параметры нерезкого маскирования
type Unsharp struct {
	Radius    float64 // сигма гауссова размытия
	Percent   int     // сила, в процентах
	Threshold int     // минимальная разница, которую усиливаем
}

// DisplayOptions параметры нормализации для показа
type DisplayOptions struct {
	MaxSide    int // ограничение длинной стороны, без увеличения
	Brightness float64
	Contrast   float64
	Unsharp    Unsharp
}

// HashOptions параметры нормализации для хэширования
type HashOptions struct {
	Side          int // сторона квадрата после центрального кадрирования
	Brightness    float64
	Contrast      float64
	CutoffPercent float64 // отсечение гистограммы с каждого края
	Unsharp       Unsharp
}

// DefaultDisplayOptions параметры, с которыми хранятся изображения
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		MaxSide:    800,
		Brightness: 1.05,
		Contrast:   1.10,
		Unsharp:    Unsharp{Radius: 1.5, Percent: 120, Threshold: 3},
	}
}

// DefaultHashOptions параметры, с которыми считаются отпечатки.
// Их изменение требует перепроверки порогов совпадения.
func DefaultHashOptions() HashOptions {
	return HashOptions{
		Side:          400,
		Brightness:    1.05,
		Contrast:      1.10,
		CutoffPercent: 2,
		Unsharp:       Unsharp{Radius: 1.5, Percent: 120, Threshold: 3},
	}
}

// Normalizer применяет обе нормализации с заданными параметрами
type Normalizer struct {
	display DisplayOptions
	hash    HashOptions
}

// New создаёт нормализатор с параметрами по умолчанию
func New() *Normalizer {
	return NewWithOptions(DefaultDisplayOptions(), DefaultHashOptions())
}

// NewWithOptions создаёт нормализатор с заданными параметрами
func NewWithOptions(display DisplayOptions, hash HashOptions) *Normalizer {
	return &Normalizer{display: display, hash: hash}
}

// Decode декодирует JPEG/PNG/GIF/WebP, учитывая EXIF-ориентацию.
func (n *Normalizer) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &entity.DecodeError{Index: -1, Err: errors.New("empty input")}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &entity.DecodeError{Index: -1, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &entity.DecodeError{Index: -1, Err: errors.New("zero-sized image")}
	}
	return img, nil
}

// Display возвращает цветное изображение для хранения и показа.
func (n *Normalizer) Display(img image.Image) *image.NRGBA {
	dst := opaque(img)
	dst = fitLongSide(dst, n.display.MaxSide)
	dst = brightness(dst, n.display.Brightness)
	dst = contrast(dst, n.display.Contrast)
	return unsharpNRGBA(dst, n.display.Unsharp)
}

// DisplayJPEG нормализует снимок для показа и кодирует в JPEG.
func (n *Normalizer) DisplayJPEG(img image.Image) ([]byte, error) {
	return EncodeJPEG(n.Display(img))
}

// Hash возвращает квадратное серое изображение для генератора отпечатков.
func (n *Normalizer) Hash(img image.Image) *image.Gray {
	dst := opaque(img)
	dst = cropSquare(dst)
	if side := n.hash.Side; side > 0 {
		dst = imaging.Clone(resize.Resize(uint(side), uint(side), dst, resize.Lanczos3))
	}
	dst = brightness(dst, n.hash.Brightness)
	dst = contrast(dst, n.hash.Contrast)
	gray := toGray(dst)
	autoContrast(gray, n.hash.CutoffPercent)
	return unsharpGray(gray, n.hash.Unsharp)
}

// EncodeJPEG кодирует изображение так, как его хранит каталог
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitLongSide уменьшает изображение так, чтобы длинная сторона не превышала maxSide.
func fitLongSide(img *image.NRGBA, maxSide int) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	long := max(w, h)
	if maxSide <= 0 || long <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(long)
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)
	return imaging.Clone(resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3))
}

// cropSquare вырезает центральный квадрат по короткой стороне.
func cropSquare(img *image.NRGBA) *image.NRGBA {
	side := min(img.Bounds().Dx(), img.Bounds().Dy())
	return imaging.CropCenter(img, side, side)
}
