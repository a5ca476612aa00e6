package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"board-finder/internal/domain/entity"
	"board-finder/internal/infrastructure/normalize"
	"board-finder/internal/infrastructure/storage"
	"board-finder/internal/testimage"
)

// keyFrame кодирует однотонный кадр; красный канал служит ключом кадра
func keyFrame(t *testing.T, key uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: key, G: 50, B: 50, A: 0xff})
		}
	}
	return testimage.PNG(t, img)
}

func frameKey(img image.Image) uint8 {
	c := color.NRGBAModel.Convert(img.At(img.Bounds().Min.X, img.Bounds().Min.Y)).(color.NRGBA)
	return c.R
}

// keyNormalizer декодирует по-настоящему, а вместо JPEG отдаёт ключ кадра
type keyNormalizer struct {
	*normalize.Normalizer
}

func (keyNormalizer) DisplayJPEG(img image.Image) ([]byte, error) {
	return []byte{frameKey(img)}, nil
}

// keyFingerprinter назначает отпечаток по ключу кадра
type keyFingerprinter map[uint8]entity.Fingerprint

func (f keyFingerprinter) Fingerprint(img image.Image) (entity.Fingerprint, error) {
	fp, ok := f[frameKey(img)]
	if !ok {
		return 0, fmt.Errorf("no fingerprint for key %d", frameKey(img))
	}
	return fp, nil
}

// rejectInspector отбраковывает кадры с заданными ключами
type rejectInspector struct {
	normalizer *normalize.Normalizer
	reject     map[uint8]bool
}

func (r rejectInspector) CheckFrame(ctx context.Context, data []byte) error {
	img, err := r.normalizer.Decode(data)
	if err != nil {
		return err
	}
	if r.reject[frameKey(img)] {
		return errors.New("frame is too blurry")
	}
	return nil
}

var errDiskFull = errors.New("disk full")

// brokenRepo отказывает в записи и чтении отпечатков
type brokenRepo struct {
	*storage.MemoryCatalogRepository
}

func (brokenRepo) CreateItem(context.Context, entity.NewItem) (entity.ItemSummary, error) {
	return entity.ItemSummary{}, errDiskFull
}

func (brokenRepo) AllFingerprints(context.Context) ([]entity.Candidate, error) {
	return nil, errDiskFull
}

func newKeyCatalog(policy entity.Policy, prints keyFingerprinter) (*CatalogService, *storage.MemoryCatalogRepository) {
	repo := storage.NewMemoryCatalogRepository()
	svc := NewCatalogService(repo, keyNormalizer{normalize.New()}, prints, nil, NewMatcher(policy))
	return svc, repo
}
