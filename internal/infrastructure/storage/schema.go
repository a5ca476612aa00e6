package storage

// Таблица chapas совместима со схемой первой версии, где у образца был
// единственный хэш в колонке image_hash. Такие базы мигрируют при открытии.
const schema = `
CREATE TABLE IF NOT EXISTS chapas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT NOT NULL,
	descricao TEXT NOT NULL,
	image_filename TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chapa_hashes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chapa_id INTEGER NOT NULL REFERENCES chapas(id),
	image_hash TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chapa_hashes_chapa_id ON chapa_hashes(chapa_id);
`

const legacyColumnQuery = `SELECT COUNT(*) FROM pragma_table_info('chapas') WHERE name = 'image_hash'`

const migrateLegacyHashes = `
INSERT INTO chapa_hashes (chapa_id, image_hash)
SELECT id, image_hash FROM chapas
WHERE image_hash IS NOT NULL AND image_hash <> ''
  AND id NOT IN (SELECT chapa_id FROM chapa_hashes)
ORDER BY id
`

const itemColumns = `c.id, c.sku, c.descricao, c.image_filename, c.created_at,
	(SELECT COUNT(*) FROM chapa_hashes x WHERE x.chapa_id = c.id) AS fingerprints`

const (
	insertItem       = `INSERT INTO chapas (sku, descricao, image_filename, created_at) VALUES (?, ?, ?, ?)`
	insertLegacyItem = `INSERT INTO chapas (sku, descricao, image_filename, created_at, image_hash) VALUES (?, ?, ?, ?, ?)`
	insertHash       = `INSERT INTO chapa_hashes (chapa_id, image_hash) VALUES (?, ?)`

	selectFingerprints = `SELECT ` + itemColumns + `, h.image_hash
FROM chapa_hashes h JOIN chapas c ON c.id = h.chapa_id
ORDER BY c.id, h.id`

	selectItems = `SELECT ` + itemColumns + `
FROM chapas c ORDER BY c.created_at DESC, c.id DESC`

	selectItem = `SELECT ` + itemColumns + ` FROM chapas c WHERE c.id = ?`

	selectItemHashes = `SELECT image_hash FROM chapa_hashes WHERE chapa_id = ? ORDER BY id`
)

// createdAtLayout формат времени в базе, как у первой версии
const createdAtLayout = "2006-01-02 15:04:05"
