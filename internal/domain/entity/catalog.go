package entity

import (
	"strings"
	"time"
)

// CatalogItem зарегистрированный образец (плита) со всеми его отпечатками
type CatalogItem struct {
	ID           int64
	ShortCode    string    // артикул (SKU)
	Description  string    // описание
	ImageRef     string    // имя сохранённого файла с изображением
	CreatedAt    time.Time // время регистрации
	Fingerprints []Fingerprint
}

// Summary возвращает описание образца без отпечатков
func (c *CatalogItem) Summary() ItemSummary {
	return ItemSummary{
		ID:               c.ID,
		ShortCode:        c.ShortCode,
		Description:      c.Description,
		ImageRef:         c.ImageRef,
		CreatedAt:        c.CreatedAt,
		FingerprintCount: len(c.Fingerprints),
	}
}

// ItemSummary метаданные образца, отдаваемые наружу
type ItemSummary struct {
	ID               int64
	ShortCode        string
	Description      string
	ImageRef         string
	CreatedAt        time.Time
	FingerprintCount int
}

// NewItem готовый к сохранению образец: хранилище присваивает ID,
// время создания и имя файла.
type NewItem struct {
	ShortCode    string
	Description  string
	Image        []byte // JPEG для показа
	Fingerprints []Fingerprint
}

// Validate проверяет инварианты перед записью.
func (n NewItem) Validate() error {
	if strings.TrimSpace(n.ShortCode) == "" {
		return &ValidationError{Field: "short_code", Reason: "is empty"}
	}
	if strings.TrimSpace(n.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is empty"}
	}
	if len(n.Image) == 0 {
		return &ValidationError{Field: "image", Reason: "is empty"}
	}
	if len(n.Fingerprints) == 0 {
		return ErrEmptyFingerprintSet
	}
	return nil
}

// Candidate одна строка полного перебора: отпечаток и его владелец.
type Candidate struct {
	Item        ItemSummary
	Fingerprint Fingerprint
}

// MatchResult итог успешного поиска
type MatchResult struct {
	ItemID      int64
	ShortCode   string
	Description string
	ImageRef    string
	Distance    int
}
