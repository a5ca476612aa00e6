package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// MemoryCatalogRepository in-memory каталог образцов
type MemoryCatalogRepository struct {
	mu     sync.RWMutex
	items  []*entity.CatalogItem // по возрастанию ID
	images map[string][]byte
	nextID int64
	now    func() time.Time
}

// NewMemoryCatalogRepository создаёт пустой каталог
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		images: make(map[string][]byte),
		nextID: 1,
		now:    time.Now,
	}
}

// CreateItem сохраняет образец целиком под блокировкой записи
func (r *MemoryCatalogRepository) CreateItem(ctx context.Context, item entity.NewItem) (entity.ItemSummary, error) {
	if err := item.Validate(); err != nil {
		return entity.ItemSummary{}, err
	}

	stored := &entity.CatalogItem{
		ShortCode:    item.ShortCode,
		Description:  item.Description,
		CreatedAt:    r.now().UTC(),
		Fingerprints: append([]entity.Fingerprint(nil), item.Fingerprints...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.ID = r.nextID
	stored.ImageRef = fmt.Sprintf("chapa_%d.jpg", stored.ID)
	r.nextID++
	r.images[stored.ImageRef] = append([]byte(nil), item.Image...)
	r.items = append(r.items, stored)

	return stored.Summary(), nil
}

// AllFingerprints возвращает отпечатки в порядке ID, затем кадров
func (r *MemoryCatalogRepository) AllFingerprints(ctx context.Context) ([]entity.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Candidate
	for _, item := range r.items {
		summary := item.Summary()
		for _, fp := range item.Fingerprints {
			out = append(out, entity.Candidate{Item: summary, Fingerprint: fp})
		}
	}
	return out, nil
}

// ListItems возвращает образцы, новые первыми
func (r *MemoryCatalogRepository) ListItems(ctx context.Context) ([]entity.ItemSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.ItemSummary, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetItem возвращает копию образца
func (r *MemoryCatalogRepository) GetItem(ctx context.Context, id int64) (*entity.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ID == id {
			copied := *item
			copied.Fingerprints = append([]entity.Fingerprint(nil), item.Fingerprints...)
			return &copied, nil
		}
	}
	return nil, entity.ErrItemNotFound
}

// OpenImage возвращает копию сохранённого изображения
func (r *MemoryCatalogRepository) OpenImage(ctx context.Context, ref string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.images[ref]
	if !ok {
		return nil, fmt.Errorf("image %q: %w", ref, os.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Close ничего не делает
func (r *MemoryCatalogRepository) Close() error {
	return nil
}

// Проверка реализации интерфейса
var _ port.CatalogRepository = (*MemoryCatalogRepository)(nil)
