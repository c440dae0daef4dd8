package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

// ClassRepository provides read access to class master data.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByName loads a class by display name.
func (r *ClassRepository) FindByName(ctx context.Context, name string) (*models.Class, error) {
	const query = `SELECT id, name, grade, program, created_at, updated_at FROM classes WHERE name = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, name); err != nil {
		return nil, err
	}
	return &class, nil
}

// GetProgram resolves the program track for a class name. Unknown classes and
// classes without a program resolve to the default track.
func (r *ClassRepository) GetProgram(ctx context.Context, className string) (string, error) {
	class, err := r.FindByName(ctx, className)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultProgram, nil
		}
		return "", fmt.Errorf("resolve class program: %w", err)
	}
	return class.ProgramOrDefault(), nil
}
