package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Drawing is the record of one saved canvas file.
type Drawing struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// DrawingRepository provides CRUD operations for drawing records.
type DrawingRepository struct {
	db *sql.DB
}

// Drawings returns the drawing repository for this store.
func (s *Store) Drawings() *DrawingRepository {
	return &DrawingRepository{db: s.db}
}

// Create inserts a drawing record. An empty ID is assigned a new UUID and a
// zero CreatedAt is set to the current time.
func (r *DrawingRepository) Create(d *Drawing) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO drawings (id, path, width, height, mode, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Path, d.Width, d.Height, d.Mode, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a drawing by its ID.
func (r *DrawingRepository) GetByID(id string) (*Drawing, error) {
	d := &Drawing{}
	err := r.db.QueryRow(
		`SELECT id, path, width, height, mode, created_at FROM drawings WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Path, &d.Width, &d.Height, &d.Mode, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns drawings newest first. A non-positive limit returns all rows.
func (r *DrawingRepository) List(limit int) ([]*Drawing, error) {
	query := `SELECT id, path, width, height, mode, created_at FROM drawings ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawings []*Drawing
	for rows.Next() {
		d := &Drawing{}
		if err := rows.Scan(&d.ID, &d.Path, &d.Width, &d.Height, &d.Mode, &d.CreatedAt); err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drawings, nil
}

// Count returns the number of stored drawings.
func (r *DrawingRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM drawings`).Scan(&n)
	return n, err
}

// Delete removes a drawing record by its ID.
func (r *DrawingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM drawings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
