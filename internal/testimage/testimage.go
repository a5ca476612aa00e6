// Package testimage рисует детерминированные «снимки» декоративной плиты для тестов.
//
// Плита задаётся гладким полем из низкочастотных косинусов со случайными
// (по seed) амплитудами и фазами плюс мелкая «древесная» текстура. Кадр это окно
// в это поле со сдвигом, изменённым освещением и шумом сенсора.
package testimage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/rand"
	"testing"
)

const harmonics = 8

// Board поверхность одного физического образца
type Board struct {
	amp    [harmonics][harmonics]float64
	phaseX [harmonics]float64
	phaseY [harmonics]float64
	scale  float64 // пикселей на полупериод самой низкой гармоники
}

// View условия съёмки одного кадра
type View struct {
	OffsetX, OffsetY int     // сдвиг окна кадра по плите
	Gain             float64 // общая яркость, 0 = 1
	Gradient         float64 // перепад освещения слева направо, доля
	Noise            int     // амплитуда шума сенсора
	NoiseSeed        int64
	Negative         bool // инвертировать тон: светлое становится тёмным
}

// NewBoard создаёт образец по seed
func NewBoard(seed int64, scale float64) *Board {
	rnd := rand.New(rand.NewSource(seed))
	b := &Board{scale: scale}
	for kx := range b.amp {
		b.phaseX[kx] = rnd.Float64() * math.Pi
		b.phaseY[kx] = rnd.Float64() * math.Pi
		for ky := range b.amp[kx] {
			if kx == 0 && ky == 0 {
				continue
			}
			b.amp[kx][ky] = rnd.Float64()*2 - 1
		}
	}
	return b
}

// Frame рисует кадр w×h
func (b *Board) Frame(w, h int, v View) *image.NRGBA {
	gain := v.Gain
	if gain == 0 {
		gain = 1
	}

	// Поле сепарабельно: F(x,y) = Σ_ky cy[ky](y) · Σ_kx amp[kx][ky]·cx[kx](x)
	cols := make([][harmonics]float64, w)
	for x := 0; x < w; x++ {
		u := float64(x+v.OffsetX) / b.scale
		var cx [harmonics]float64
		for kx := range cx {
			cx[kx] = math.Cos(math.Pi*float64(kx)*u + b.phaseX[kx])
		}
		for ky := 0; ky < harmonics; ky++ {
			var s float64
			for kx := 0; kx < harmonics; kx++ {
				s += b.amp[kx][ky] * cx[kx]
			}
			cols[x][ky] = s
		}
	}

	rnd := rand.New(rand.NewSource(v.NoiseSeed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		vy := float64(y+v.OffsetY) / b.scale
		var cy [harmonics]float64
		for ky := range cy {
			cy[ky] = math.Cos(math.Pi*float64(ky)*vy + b.phaseY[ky])
		}
		for x := 0; x < w; x++ {
			var f float64
			for ky := 0; ky < harmonics; ky++ {
				f += cy[ky] * cols[x][ky]
			}
			ax, ay := float64(x+v.OffsetX), float64(y+v.OffsetY)
			grain := 6 * math.Sin(ay/3.1+2*math.Sin(ax/40))
			tone := 128 + 28*f + grain
			if v.Negative {
				tone = 255 - tone
			}
			light := gain * (1 + v.Gradient*(float64(x)/float64(w)-0.5))
			r := (tone*1.0 + 20) * light
			g := (tone*0.8 + 10) * light
			bl := (tone * 0.55) * light
			if v.Noise > 0 {
				r += float64(rnd.Intn(2*v.Noise+1) - v.Noise)
				g += float64(rnd.Intn(2*v.Noise+1) - v.Noise)
				bl += float64(rnd.Intn(2*v.Noise+1) - v.Noise)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: clamp(r), G: clamp(g), B: clamp(bl), A: 0xff})
		}
	}
	return img
}

// JPEG кодирует кадр так, как его отдаёт камера
func JPEG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNG кодирует кадр без потерь
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// Corrupt возвращает байты, которые не декодируются ни одним форматом
func Corrupt() []byte {
	return []byte("\xff\xd8\xff\xe0 definitely not a jpeg payload")
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
