package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"luxe_brochure/internal/domain"
)

func valJSON(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, b *domain.Brochure) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertBrochureSQL,
		b.Prompt,
		b.HotelName,
		b.Location,
		b.Headline,
		b.Description,
		valJSON(b.Amenities),
		string(b.SchemaJSON),
		b.PNGPath,
		b.PDFPath,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	b.ID = id
	b.Version = 1
	return id, nil
}

func (r *Repo) Update(ctx context.Context, b *domain.Brochure) error {
	res, err := r.db.ExecContext(ctx, updateBrochureSQL,
		b.HotelName,
		b.Location,
		b.Headline,
		b.Description,
		valJSON(b.Amenities),
		string(b.SchemaJSON),
		b.PNGPath,
		b.PDFPath,
		b.ID,
		b.Version,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	b.Version++
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*domain.Brochure, error) {
	row := r.db.QueryRowContext(ctx, getBrochureSQL, id)
	b, err := scanBrochure(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]domain.Brochure, error) {
	rows, err := r.db.QueryContext(ctx, listBrochuresSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Brochure
	for rows.Next() {
		b, err := scanBrochure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrochure(row rowScanner) (*domain.Brochure, error) {
	var b domain.Brochure
	var description sql.NullString
	var amenitiesJSON, schemaJSON sql.NullString

	if err := row.Scan(
		&b.ID,
		&b.Prompt,
		&b.HotelName,
		&b.Location,
		&b.Headline,
		&description,
		&amenitiesJSON,
		&schemaJSON,
		&b.PNGPath,
		&b.PDFPath,
		&b.Version,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		b.Description = description.String
	}
	if amenitiesJSON.Valid {
		_ = json.Unmarshal([]byte(amenitiesJSON.String), &b.Amenities)
	}
	if schemaJSON.Valid {
		b.SchemaJSON = []byte(schemaJSON.String)
	}
	return &b, nil
}
