package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/health-program-api/internal/models"
)

const programColumns = `id, name, description, created_at, updated_at`

var programOrdering = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// ProgramRepository handles persistence of health programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns a page of programs with the total count.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	query := fmt.Sprintf("SELECT %s FROM programs ORDER BY %s %s",
		programColumns,
		orderBy(filter.Ordering, programOrdering, "created_at DESC", "id"),
		limitOffset(filter.Page, filter.PageSize),
	)
	programs := make([]models.Program, 0)
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM programs"); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}
	return programs, total, nil
}

// FindByID returns a program or sql.ErrNoRows.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs WHERE id = $1", programColumns)
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &program, nil
}

// Create inserts a program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	const query = `INSERT INTO programs (id, name, description, created_at, updated_at) VALUES (:id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return translate(err, "create program")
	}
	return nil
}

// Update overwrites the mutable fields. Missing rows yield sql.ErrNoRows.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, program)
	if err != nil {
		return translate(err, "update program")
	}
	return expectAffected(result, "update program")
}

// Delete removes a program. Enrollments go with it through ON DELETE CASCADE.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return expectAffected(result, "delete program")
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
