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

const enrollmentDetailColumns = `e.id, e.client_id, e.program_id, e.enrollment_date, e.status, e.notes, e.created_at, e.updated_at,
        TRIM(c.first_name || ' ' || c.last_name) AS client_name, p.name AS program_name`

const enrollmentJoins = `FROM enrollments e
JOIN clients c ON c.id = e.client_id
JOIN programs p ON p.id = e.program_id`

var enrollmentOrdering = map[string]string{
	"enrollment_date": "e.enrollment_date",
	"status":          "e.status",
}

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func enrollmentScope(filter models.EnrollmentFilter, args []interface{}) ([]string, []interface{}) {
	var conditions []string
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("e.client_id = $%d", len(args)))
	}
	if filter.ProgramID != "" {
		args = append(args, filter.ProgramID)
		conditions = append(conditions, fmt.Sprintf("e.program_id = $%d", len(args)))
	}
	return conditions, args
}

// List returns enrollments matching the client and program filters.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	conditions, args := enrollmentScope(filter, nil)
	where := whereClause(conditions)

	query := fmt.Sprintf("SELECT %s %s%s ORDER BY %s %s",
		enrollmentDetailColumns,
		enrollmentJoins,
		where,
		orderBy(filter.Ordering, enrollmentOrdering, "e.enrollment_date DESC", "e.id"),
		limitOffset(filter.Page, filter.PageSize),
	)
	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment inside the given filter scope or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error) {
	conditions, args := enrollmentScope(scope, []interface{}{id})
	conditions = append([]string{"e.id = $1"}, conditions...)
	query := fmt.Sprintf("SELECT %s %s%s", enrollmentDetailColumns, enrollmentJoins, whereClause(conditions))

	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// ListByClient returns a client's enrollments with program details, newest
// enrollment date first.
func (r *EnrollmentRepository) ListByClient(ctx context.Context, clientID string) ([]models.ProfileEnrollment, error) {
	const query = `SELECT e.id, e.program_id, p.name AS program_name, p.description AS program_description,
        e.enrollment_date, e.status, e.notes
        FROM enrollments e
        JOIN programs p ON p.id = e.program_id
        WHERE e.client_id = $1
        ORDER BY e.enrollment_date DESC, e.id DESC`
	enrollments := make([]models.ProfileEnrollment, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, clientID); err != nil {
		return nil, fmt.Errorf("list client enrollments: %w", err)
	}
	return enrollments, nil
}

// Create persists a new enrollment. A repeated (client, program) pair fails
// with ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	const query = `INSERT INTO enrollments (id, client_id, program_id, enrollment_date, status, notes, created_at, updated_at)
        VALUES (:id, :client_id, :program_id, :enrollment_date, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return translate(err, "create enrollment")
	}
	return nil
}

// Update overwrites an enrollment. Missing rows yield sql.ErrNoRows.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET client_id = :client_id, program_id = :program_id, enrollment_date = :enrollment_date,
        status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return translate(err, "update enrollment")
	}
	return expectAffected(result, "update enrollment")
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return expectAffected(result, "delete enrollment")
}
