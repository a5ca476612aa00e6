package entity

import (
	"fmt"
	"strings"
)

// Пороги подобраны эмпирически и должны перепроверяться (команда eval)
// при любом изменении нормализации или схемы многокадровой регистрации.
const (
	// ThresholdSingleFrame порог для одного снимка на образец.
	ThresholdSingleFrame = 18
	// ThresholdMultiFrame порог для нескольких кадров на образец: минимум
	// по многим отпечаткам ниже и у чужих образцов, и у своего.
	ThresholdMultiFrame = 24
)

// Policy схема регистрации, к которой привязан порог совпадения
type Policy string

const (
	PolicySingleFrame Policy = "single" // один снимок на образец
	PolicyMultiFrame  Policy = "multi"  // несколько кадров короткого видео
)

// Threshold возвращает максимальное расстояние, считающееся совпадением
func (p Policy) Threshold() int {
	if p == PolicySingleFrame {
		return ThresholdSingleFrame
	}
	return ThresholdMultiFrame
}

// ParsePolicy разбирает название схемы из конфигурации.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicySingleFrame:
		return PolicySingleFrame, nil
	case PolicyMultiFrame, "":
		return PolicyMultiFrame, nil
	default:
		return "", fmt.Errorf("unknown match policy %q (want single or multi)", s)
	}
}
