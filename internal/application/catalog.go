package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// CatalogService регистрирует образцы и ищет снимок в каталоге
type CatalogService struct {
	repo          port.CatalogRepository
	normalizer    port.ImageNormalizer
	fingerprinter port.Fingerprinter
	inspector     port.FrameInspector // может быть nil
	matcher       Matcher
}

// NewCatalogService создаёт сервис каталога. inspector может быть nil.
func NewCatalogService(
	repo port.CatalogRepository,
	normalizer port.ImageNormalizer,
	fingerprinter port.Fingerprinter,
	inspector port.FrameInspector,
	matcher Matcher,
) *CatalogService {
	return &CatalogService{
		repo:          repo,
		normalizer:    normalizer,
		fingerprinter: fingerprinter,
		inspector:     inspector,
		matcher:       matcher,
	}
}

// Threshold возвращает действующий порог совпадения
func (s *CatalogService) Threshold() int {
	return s.matcher.Threshold
}

// Register строит набор отпечатков по кадрам и атомарно сохраняет новый образец.
// Нечитаемые кадры пропускаются; если не осталось ни одного, возвращается
// entity.ErrEmptyFingerprintSet и ничего не сохраняется.
func (s *CatalogService) Register(ctx context.Context, frames [][]byte, shortCode, description string) (entity.ItemSummary, error) {
	shortCode = strings.TrimSpace(shortCode)
	description = strings.TrimSpace(description)
	if shortCode == "" {
		return entity.ItemSummary{}, &entity.ValidationError{Field: "short_code", Reason: "is empty"}
	}
	if description == "" {
		return entity.ItemSummary{}, &entity.ValidationError{Field: "description", Reason: "is empty"}
	}
	if len(frames) == 0 {
		return entity.ItemSummary{}, &entity.ValidationError{Field: "frames", Reason: "is empty"}
	}

	usable := make([]image.Image, 0, len(frames))
	for i, data := range frames {
		if err := ctx.Err(); err != nil {
			return entity.ItemSummary{}, err
		}
		img, err := s.decodeFrame(ctx, i, data)
		if err != nil {
			slog.Warn("Skipping frame", "sku", shortCode, "index", i, "err", err)
			continue
		}
		usable = append(usable, img)
	}
	if len(usable) == 0 {
		return entity.ItemSummary{}, fmt.Errorf("register %q: %w", shortCode, entity.ErrEmptyFingerprintSet)
	}

	// Для показа берём средний по времени кадр.
	display, err := s.normalizer.DisplayJPEG(usable[len(usable)/2])
	if err != nil {
		return entity.ItemSummary{}, fmt.Errorf("register %q: display image: %w", shortCode, err)
	}

	fingerprints := make([]entity.Fingerprint, 0, len(usable))
	for i, img := range usable {
		fp, err := s.fingerprinter.Fingerprint(img)
		if err != nil {
			slog.Warn("Skipping frame without fingerprint", "sku", shortCode, "index", i, "err", err)
			continue
		}
		fingerprints = append(fingerprints, fp)
	}
	if len(fingerprints) == 0 {
		return entity.ItemSummary{}, fmt.Errorf("register %q: %w", shortCode, entity.ErrEmptyFingerprintSet)
	}

	item, err := s.repo.CreateItem(ctx, entity.NewItem{
		ShortCode:    shortCode,
		Description:  description,
		Image:        display,
		Fingerprints: fingerprints,
	})
	if err != nil {
		return entity.ItemSummary{}, storeError("create item", err)
	}

	slog.Info("Catalog item registered",
		"id", item.ID,
		"sku", item.ShortCode,
		"frames", len(frames),
		"fingerprints", item.FingerprintCount,
	)
	return item, nil
}

// Query ищет ближайший зарегистрированный образец.
// nil без ошибки означает «не найдено», в том числе для пустого каталога.
func (s *CatalogService) Query(ctx context.Context, frame []byte) (*entity.MatchResult, error) {
	img, err := s.normalizer.Decode(frame)
	if err != nil {
		return nil, err
	}
	fp, err := s.fingerprinter.Fingerprint(img)
	if err != nil {
		return nil, fmt.Errorf("query fingerprint: %w", err)
	}

	candidates, err := s.repo.AllFingerprints(ctx)
	if err != nil {
		return nil, storeError("scan fingerprints", err)
	}

	match, ok := s.matcher.Match(fp, candidates)
	if !ok {
		slog.Info("No catalog match", "fingerprint", fp.String(), "candidates", len(candidates), "threshold", s.matcher.Threshold)
		return nil, nil
	}

	slog.Info("Catalog match", "id", match.ItemID, "sku", match.ShortCode, "distance", match.Distance)
	return match, nil
}

// List возвращает все образцы, новые первыми
func (s *CatalogService) List(ctx context.Context) ([]entity.ItemSummary, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, storeError("list items", err)
	}
	return items, nil
}

// Item возвращает образец вместе с отпечатками
func (s *CatalogService) Item(ctx context.Context, id int64) (*entity.CatalogItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, storeError("get item", err)
	}
	return item, nil
}

// Image возвращает сохранённое изображение образца
func (s *CatalogService) Image(ctx context.Context, ref string) ([]byte, error) {
	data, err := s.repo.OpenImage(ctx, ref)
	if err != nil {
		return nil, storeError("open image", err)
	}
	return data, nil
}

// decodeFrame декодирует кадр и, если настроено, проверяет его качество.
func (s *CatalogService) decodeFrame(ctx context.Context, index int, data []byte) (image.Image, error) {
	img, err := s.normalizer.Decode(data)
	if err != nil {
		var decodeErr *entity.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, decodeErr.WithIndex(index)
		}
		return nil, err
	}
	if s.inspector != nil {
		if err := s.inspector.CheckFrame(ctx, data); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// storeError оборачивает отказ хранилища, не трогая ошибки ввода.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, entity.ErrStore),
		errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrEmptyFingerprintSet),
		errors.Is(err, entity.ErrItemNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &entity.StoreError{Op: op, Err: err}
	}
}
