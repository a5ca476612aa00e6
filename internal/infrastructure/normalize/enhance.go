package normalize

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Операторы следуют формулам PIL (ImageEnhance, ImageOps.autocontrast,
// ImageFilter.UnsharpMask), на которых подбирались пороги. В отличие от PIL
// смешивание округляет до ближайшего, а не отбрасывает дробную часть, поэтому
// отдельные пиксели могут отличаться на единицу.

// opaque копирует изображение в NRGBA без альфа-канала.
func opaque(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = 0xff
		return c
	})
}

// brightness смешивает с чёрным: v*factor.
func brightness(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = scaleChannel(c.R, 0, factor)
		c.G = scaleChannel(c.G, 0, factor)
		c.B = scaleChannel(c.B, 0, factor)
		return c
	})
}

// contrast смешивает с серым цветом средней яркости: m + factor*(v-m).
func contrast(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	mean := float64(meanLuma(img))
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = scaleChannel(c.R, mean, factor)
		c.G = scaleChannel(c.G, mean, factor)
		c.B = scaleChannel(c.B, mean, factor)
		return c
	})
}

func scaleChannel(v uint8, base, factor float64) uint8 {
	return clamp8(math.Round(base + factor*(float64(v)-base)))
}

// luma ITU-R 601-2, целочисленно, как convert("L") в PIL.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// meanLuma средняя яркость, округлённая до целого.
func meanLuma(img *image.NRGBA) int {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+3]
			sum += uint64(luma(p[0], p[1], p[2]))
		}
	}
	return int(float64(sum)/float64(b.Dx()*b.Dy()) + 0.5)
}

func toGray(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := gray.Pix[gray.PixOffset(0, y):]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = luma(src[x*4], src[x*4+1], src[x*4+2])
		}
	}
	return gray
}

// autoContrast отбрасывает cutoff процентов пикселей с каждого края
// гистограммы и растягивает оставшийся диапазон на 0..255. Меняет img на месте.
func autoContrast(img *image.Gray, cutoff float64) {
	b := img.Bounds()
	var hist [256]int
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for _, v := range row[:b.Dx()] {
			hist[v]++
		}
	}

	if cutoff > 0 {
		total := b.Dx() * b.Dy()
		cut := int(float64(total) * cutoff / 100)
		for lo, rest := 0, cut; lo < 256 && rest > 0; lo++ {
			take := min(rest, hist[lo])
			hist[lo] -= take
			rest -= take
		}
		for hi, rest := 255, cut; hi >= 0 && rest > 0; hi-- {
			take := min(rest, hist[hi])
			hist[hi] -= take
			rest -= take
		}
	}

	lo, hi := 0, 255
	for lo < 256 && hist[lo] == 0 {
		lo++
	}
	for hi >= 0 && hist[hi] == 0 {
		hi--
	}
	if hi <= lo {
		return
	}

	scale := 255 / float64(hi-lo)
	offset := -float64(lo) * scale
	var lut [256]uint8
	for i := range lut {
		// int() в PIL отбрасывает дробную часть
		lut[i] = clamp8(math.Trunc(float64(i)*scale + offset))
	}
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := range row[:b.Dx()] {
			row[x] = lut[row[x]]
		}
	}
}

// sharpen возвращает v + (v-blurred)*percent/100, если |v-blurred| >= threshold.
func sharpen(v, blurred uint8, u Unsharp) uint8 {
	diff := int(v) - int(blurred)
	if abs(diff) < u.Threshold {
		return v
	}
	return clamp8(math.Round(float64(v) + float64(diff*u.Percent)/100))
}

func unsharpNRGBA(img *image.NRGBA, u Unsharp) *image.NRGBA {
	if u.Radius <= 0 || u.Percent == 0 {
		return img
	}
	blurred := imaging.Blur(img, u.Radius)
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		out.Pix[i] = sharpen(out.Pix[i], blurred.Pix[i], u)
		out.Pix[i+1] = sharpen(out.Pix[i+1], blurred.Pix[i+1], u)
		out.Pix[i+2] = sharpen(out.Pix[i+2], blurred.Pix[i+2], u)
	}
	return out
}

func unsharpGray(img *image.Gray, u Unsharp) *image.Gray {
	if u.Radius <= 0 || u.Percent == 0 {
		return img
	}
	// Blur отдаёт NRGBA с одинаковыми R, G, B
	blurred := imaging.Blur(img, u.Radius)
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		blur := blurred.Pix[blurred.PixOffset(0, y):]
		dst := out.Pix[out.PixOffset(0, y):]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = sharpen(src[x], blur[x*4], u)
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
