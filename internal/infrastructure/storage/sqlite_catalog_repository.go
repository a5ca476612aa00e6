package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// SQLiteCatalogRepository каталог в SQLite, изображения в отдельном каталоге
type SQLiteCatalogRepository struct {
	db     *sqlx.DB
	images *ImageDir
	legacy bool // у chapas есть колонка image_hash первой версии
	now    func() time.Time
}

type itemRow struct {
	ID           int64  `db:"id"`
	ShortCode    string `db:"sku"`
	Description  string `db:"descricao"`
	ImageRef     string `db:"image_filename"`
	CreatedAt    string `db:"created_at"`
	Fingerprints int    `db:"fingerprints"`
}

type fingerprintRow struct {
	itemRow
	Hash string `db:"image_hash"`
}

func (r itemRow) summary() entity.ItemSummary {
	created, err := time.ParseInLocation(createdAtLayout, r.CreatedAt, time.Local)
	if err != nil {
		slog.Warn("Unparsable created_at", "id", r.ID, "value", r.CreatedAt)
	}
	return entity.ItemSummary{
		ID:               r.ID,
		ShortCode:        r.ShortCode,
		Description:      r.Description,
		ImageRef:         r.ImageRef,
		CreatedAt:        created,
		FingerprintCount: r.Fingerprints,
	}
}

// OpenSQLite открывает (или создаёт) базу и применяет схему.
func OpenSQLite(ctx context.Context, path string, images *ImageDir) (*SQLiteCatalogRepository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	repo := &SQLiteCatalogRepository{db: db, images: images, now: time.Now}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteCatalogRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var legacyColumns int
	if err := r.db.GetContext(ctx, &legacyColumns, legacyColumnQuery); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	r.legacy = legacyColumns > 0
	if !r.legacy {
		return nil
	}

	res, err := r.db.ExecContext(ctx, migrateLegacyHashes)
	if err != nil {
		return fmt.Errorf("migrate legacy hashes: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		// старые хэши считались другой реализацией pHash без центрального
		// кадрирования, расстояния до новых отпечатков занижают совпадение
		slog.Warn("Migrated legacy single-hash items; re-register them for reliable matching", "count", n)
	}
	return nil
}

// CreateItem сохраняет файл изображения, затем строку образца и все
// отпечатки в одной транзакции. При любой ошибке файл удаляется.
func (r *SQLiteCatalogRepository) CreateItem(ctx context.Context, item entity.NewItem) (entity.ItemSummary, error) {
	if err := item.Validate(); err != nil {
		return entity.ItemSummary{}, err
	}

	ref := r.images.NewRef()
	if err := r.images.Write(ref, item.Image); err != nil {
		return entity.ItemSummary{}, fmt.Errorf("save image: %w", err)
	}

	summary, err := r.insert(ctx, ref, item)
	if err != nil {
		if rmErr := r.images.Remove(ref); rmErr != nil {
			slog.Error("Failed to remove orphan image", "ref", ref, "err", rmErr)
		}
		return entity.ItemSummary{}, err
	}
	return summary, nil
}

func (r *SQLiteCatalogRepository) insert(ctx context.Context, ref string, item entity.NewItem) (_ entity.ItemSummary, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.ItemSummary{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := r.now().Local().Format(createdAtLayout)
	var res sql.Result
	if r.legacy {
		res, err = tx.ExecContext(ctx, insertLegacyItem, item.ShortCode, item.Description, ref, created, item.Fingerprints[0].String())
	} else {
		res, err = tx.ExecContext(ctx, insertItem, item.ShortCode, item.Description, ref, created)
	}
	if err != nil {
		return entity.ItemSummary{}, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entity.ItemSummary{}, fmt.Errorf("item id: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, insertHash)
	if err != nil {
		return entity.ItemSummary{}, fmt.Errorf("prepare hash insert: %w", err)
	}
	defer stmt.Close()
	for _, fp := range item.Fingerprints {
		if _, err = stmt.ExecContext(ctx, id, fp.String()); err != nil {
			return entity.ItemSummary{}, fmt.Errorf("insert hash: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return entity.ItemSummary{}, fmt.Errorf("commit: %w", err)
	}

	return itemRow{
		ID:           id,
		ShortCode:    item.ShortCode,
		Description:  item.Description,
		ImageRef:     ref,
		CreatedAt:    created,
		Fingerprints: len(item.Fingerprints),
	}.summary(), nil
}

// AllFingerprints возвращает отпечатки в порядке ID образца, затем кадров.
// Строки с нечитаемым хэшем пропускаются.
func (r *SQLiteCatalogRepository) AllFingerprints(ctx context.Context) ([]entity.Candidate, error) {
	var rows []fingerprintRow
	if err := r.db.SelectContext(ctx, &rows, selectFingerprints); err != nil {
		return nil, fmt.Errorf("select fingerprints: %w", err)
	}

	out := make([]entity.Candidate, 0, len(rows))
	for _, row := range rows {
		fp, err := entity.ParseFingerprint(row.Hash)
		if err != nil {
			slog.Warn("Skipping stored fingerprint", "id", row.ID, "err", err)
			continue
		}
		out = append(out, entity.Candidate{Item: row.summary(), Fingerprint: fp})
	}
	return out, nil
}

// ListItems возвращает образцы, новые первыми
func (r *SQLiteCatalogRepository) ListItems(ctx context.Context) ([]entity.ItemSummary, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, selectItems); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	out := make([]entity.ItemSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.summary())
	}
	return out, nil
}

// GetItem возвращает образец со всеми отпечатками
func (r *SQLiteCatalogRepository) GetItem(ctx context.Context, id int64) (*entity.CatalogItem, error) {
	var row itemRow
	if err := r.db.GetContext(ctx, &row, selectItem, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrItemNotFound
		}
		return nil, fmt.Errorf("select item %d: %w", id, err)
	}

	var hashes []string
	if err := r.db.SelectContext(ctx, &hashes, selectItemHashes, id); err != nil {
		return nil, fmt.Errorf("select hashes of %d: %w", id, err)
	}

	summary := row.summary()
	item := &entity.CatalogItem{
		ID:          summary.ID,
		ShortCode:   summary.ShortCode,
		Description: summary.Description,
		ImageRef:    summary.ImageRef,
		CreatedAt:   summary.CreatedAt,
	}
	for _, h := range hashes {
		fp, err := entity.ParseFingerprint(h)
		if err != nil {
			slog.Warn("Skipping stored fingerprint", "id", id, "err", err)
			continue
		}
		item.Fingerprints = append(item.Fingerprints, fp)
	}
	return item, nil
}

// OpenImage читает сохранённое изображение
func (r *SQLiteCatalogRepository) OpenImage(ctx context.Context, ref string) ([]byte, error) {
	return r.images.Read(ref)
}

// Close закрывает соединения с базой
func (r *SQLiteCatalogRepository) Close() error {
	return r.db.Close()
}

// Проверка реализации интерфейса
var _ port.CatalogRepository = (*SQLiteCatalogRepository)(nil)
