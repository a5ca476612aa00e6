package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"board-finder/internal/domain/entity"
)

func openTestSQLite(t *testing.T) (*SQLiteCatalogRepository, string) {
	t.Helper()
	dir := t.TempDir()
	images, err := NewImageDir(filepath.Join(dir, "chapas"))
	require.NoError(t, err)

	repo, err := OpenSQLite(context.Background(), filepath.Join(dir, "chapas.db"), images)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, dir
}

func imageFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, "chapas"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSQLiteCatalogRepository_CreateAndRead(t *testing.T) {
	repo, dir := openTestSQLite(t)
	ctx := context.Background()

	summary, err := repo.CreateItem(ctx, entity.NewItem{
		ShortCode:    "AB-1",
		Description:  "Freijó",
		Image:        []byte("jpeg"),
		Fingerprints: []entity.Fingerprint{1, 2, 3},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.ID)
	require.Equal(t, 3, summary.FingerprintCount)
	require.Regexp(t, `^chapa_[0-9a-f-]{36}\.jpg$`, summary.ImageRef)
	require.Equal(t, []string{summary.ImageRef}, imageFiles(t, dir))

	data, err := repo.OpenImage(ctx, summary.ImageRef)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg"), data)

	item, err := repo.GetItem(ctx, summary.ID)
	require.NoError(t, err)
	require.Equal(t, "AB-1", item.ShortCode)
	require.Equal(t, "Freijó", item.Description)
	require.Equal(t, []entity.Fingerprint{1, 2, 3}, item.Fingerprints)

	_, err = repo.GetItem(ctx, 42)
	require.ErrorIs(t, err, entity.ErrItemNotFound)
}

func TestSQLiteCatalogRepository_AllFingerprintsOrder(t *testing.T) {
	repo, _ := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.CreateItem(ctx, entity.NewItem{ShortCode: "A", Description: "a", Image: []byte{1}, Fingerprints: []entity.Fingerprint{10, 11}})
	require.NoError(t, err)
	_, err = repo.CreateItem(ctx, entity.NewItem{ShortCode: "B", Description: "b", Image: []byte{2}, Fingerprints: []entity.Fingerprint{20}})
	require.NoError(t, err)

	candidates, err := repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	var got []entity.Fingerprint
	for _, c := range candidates {
		got = append(got, c.Fingerprint)
	}
	require.Equal(t, []entity.Fingerprint{10, 11, 20}, got)
	require.Equal(t, "A", candidates[0].Item.ShortCode)
	require.Equal(t, 2, candidates[0].Item.FingerprintCount)
	require.Equal(t, "B", candidates[2].Item.ShortCode)
}

func TestSQLiteCatalogRepository_ListNewestFirst(t *testing.T) {
	repo, _ := openTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	for i, code := range []string{"old", "new"} {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		_, err := repo.CreateItem(ctx, entity.NewItem{ShortCode: code, Description: "d", Image: []byte{1}, Fingerprints: []entity.Fingerprint{1}})
		require.NoError(t, err)
	}

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "new", items[0].ShortCode)
	require.Equal(t, "old", items[1].ShortCode)
	require.True(t, items[1].CreatedAt.Equal(base))
}

func TestSQLiteCatalogRepository_ValidationLeavesNoTrace(t *testing.T) {
	repo, dir := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.CreateItem(ctx, entity.NewItem{ShortCode: "A", Description: "a", Image: []byte{1}})
	require.ErrorIs(t, err, entity.ErrEmptyFingerprintSet)

	_, err = repo.CreateItem(ctx, entity.NewItem{ShortCode: " ", Description: "a", Image: []byte{1}, Fingerprints: []entity.Fingerprint{1}})
	require.ErrorIs(t, err, entity.ErrValidation)

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Empty(t, imageFiles(t, dir))
}

func TestSQLiteCatalogRepository_FailedInsertRollsBack(t *testing.T) {
	repo, dir := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `CREATE TRIGGER reject_hash BEFORE INSERT ON chapa_hashes
WHEN NEW.image_hash = 'ffffffffffffffff'
BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = repo.CreateItem(ctx, entity.NewItem{
		ShortCode:    "A",
		Description:  "a",
		Image:        []byte{1},
		Fingerprints: []entity.Fingerprint{1, 0xffffffffffffffff},
	})
	require.Error(t, err)

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	candidates, err := repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Empty(t, candidates)
	require.Empty(t, imageFiles(t, dir))
}

func TestSQLiteCatalogRepository_SkipsUnparsableHash(t *testing.T) {
	repo, _ := openTestSQLite(t)
	ctx := context.Background()

	summary, err := repo.CreateItem(ctx, entity.NewItem{ShortCode: "A", Description: "a", Image: []byte{1}, Fingerprints: []entity.Fingerprint{7}})
	require.NoError(t, err)
	_, err = repo.db.ExecContext(ctx, `INSERT INTO chapa_hashes (chapa_id, image_hash) VALUES (?, ?)`, summary.ID, "not-a-hash")
	require.NoError(t, err)

	candidates, err := repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, entity.Fingerprint(7), candidates[0].Fingerprint)
}

func TestSQLiteCatalogRepository_MigratesLegacySchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapas.db")
	ctx := context.Background()

	legacy, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.ExecContext(ctx, `CREATE TABLE chapas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT NOT NULL,
	descricao TEXT NOT NULL,
	image_filename TEXT NOT NULL,
	image_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
)`)
	require.NoError(t, err)
	_, err = legacy.ExecContext(ctx, `INSERT INTO chapas (sku, descricao, image_filename, image_hash, created_at)
VALUES ('OLD', 'legacy board', 'chapa_20240101120000.jpg', '00000000000000ff', '2024-01-01 12:00:00')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	images, err := NewImageDir(filepath.Join(dir, "chapas"))
	require.NoError(t, err)
	repo, err := OpenSQLite(ctx, path, images)
	require.NoError(t, err)
	defer repo.Close()

	candidates, err := repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, entity.Fingerprint(0xff), candidates[0].Fingerprint)
	require.Equal(t, "OLD", candidates[0].Item.ShortCode)

	// новые образцы пишутся и в старую колонку
	_, err = repo.CreateItem(ctx, entity.NewItem{ShortCode: "NEW", Description: "n", Image: []byte{1}, Fingerprints: []entity.Fingerprint{1, 2}})
	require.NoError(t, err)

	candidates, err = repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.NoError(t, repo.Close())

	// повторное открытие не дублирует перенесённые хэши
	repo, err = OpenSQLite(ctx, path, images)
	require.NoError(t, err)
	candidates, err = repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
}
