// Package vision проверка качества кадров и нарезка видео на кадры через OpenCV.
//
// Реализация собирается с тегом gocv; без него методы возвращают ErrDisabled.
package vision

import "errors"

var (
	// ErrDisabled сборка без тега gocv
	ErrDisabled = errors.New("gocv build tag is not enabled")
	// ErrPoorQuality кадр не прошёл проверку качества
	ErrPoorQuality = errors.New("quality gate failed")
)

// QualityGate пороги проверки кадра
type QualityGate struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// DefaultQualityGate пороги для снимков плиты с телефона
func DefaultQualityGate() QualityGate {
	return QualityGate{
		MinImageSide:          300,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// evenlySpaced выбирает count индексов кадров из total, включая первый и последний
func evenlySpaced(total, count int) []int {
	if total <= 0 || count <= 0 {
		return nil
	}
	if count >= total {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if count == 1 {
		return []int{total / 2}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i * (total - 1) / (count - 1)
	}
	return out
}
