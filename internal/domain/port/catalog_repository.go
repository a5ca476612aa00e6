package port

import (
	"context"

	"board-finder/internal/domain/entity"
)

// CatalogRepository интерфейс хранилища образцов и их отпечатков
type CatalogRepository interface {
	// CreateItem атомарно сохраняет изображение, метаданные и все отпечатки.
	// Частично записанный образец не должен быть виден AllFingerprints.
	CreateItem(ctx context.Context, item entity.NewItem) (entity.ItemSummary, error)

	// AllFingerprints возвращает все отпечатки всех образцов в стабильном
	// порядке: по ID образца, затем в порядке регистрации кадров.
	AllFingerprints(ctx context.Context) ([]entity.Candidate, error)

	// ListItems возвращает образцы, новые первыми
	ListItems(ctx context.Context) ([]entity.ItemSummary, error)

	// GetItem возвращает образец по ID или entity.ErrItemNotFound
	GetItem(ctx context.Context, id int64) (*entity.CatalogItem, error)

	// OpenImage возвращает байты сохранённого изображения
	OpenImage(ctx context.Context, ref string) ([]byte, error)

	// Close освобождает ресурсы хранилища
	Close() error
}
