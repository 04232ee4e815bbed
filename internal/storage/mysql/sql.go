package mysql

const insertBrochureSQL = `
INSERT INTO brochures
  (prompt, hotel_name, location, headline, description, amenities, schema_json, png_path, pdf_path, version)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
`

// The version guard makes concurrent edits of the same brochure a
// first-writer-wins race; the loser gets ErrConflict.
const updateBrochureSQL = `
UPDATE brochures SET
  hotel_name  = ?,
  location    = ?,
  headline    = ?,
  description = ?,
  amenities   = ?,
  schema_json = ?,
  png_path    = ?,
  pdf_path    = ?,
  version     = version + 1
WHERE id = ? AND version = ?
`

const getBrochureSQL = `
SELECT id, prompt, hotel_name, location, headline, description,
       amenities, schema_json, png_path, pdf_path, version, created_at
FROM brochures
WHERE id = ?
`

const listBrochuresSQL = `
SELECT id, prompt, hotel_name, location, headline, description,
       amenities, schema_json, png_path, pdf_path, version, created_at
FROM brochures
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// SchemaDDL returns the brochures table definition. The API binary
// applies it at startup so a fresh database needs no manual migration.
func SchemaDDL() string { return createBrochuresDDL }

const createBrochuresDDL = `
CREATE TABLE IF NOT EXISTS brochures (
  id          BIGINT NOT NULL AUTO_INCREMENT,
  prompt      TEXT NOT NULL,
  hotel_name  VARCHAR(255) NOT NULL,
  location    VARCHAR(255) NOT NULL,
  headline    VARCHAR(255) NOT NULL DEFAULT '',
  description TEXT,
  amenities   JSON,
  schema_json JSON,
  png_path    VARCHAR(512) NOT NULL DEFAULT '',
  pdf_path    VARCHAR(512) NOT NULL DEFAULT '',
  version     INT NOT NULL DEFAULT 1,
  created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`
