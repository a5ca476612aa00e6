package entity

import (
	"fmt"
	"math/bits"
	"strconv"
)

// FingerprintBits длина отпечатка в битах
const FingerprintBits = 64

// Fingerprint перцептивный хэш нормализованного изображения.
// Сравнивается только через расстояние Хэмминга.
type Fingerprint uint64

// Distance возвращает количество различающихся битов (0..64)
func (f Fingerprint) Distance(other Fingerprint) int {
	return bits.OnesCount64(uint64(f ^ other))
}

// String возвращает каноническую запись: 16 шестнадцатеричных цифр.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ParseFingerprint разбирает каноническую hex-запись отпечатка
func ParseFingerprint(s string) (Fingerprint, error) {
	if len(s) != FingerprintBits/4 {
		return 0, fmt.Errorf("parse fingerprint %q: want %d hex digits", s, FingerprintBits/4)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}
