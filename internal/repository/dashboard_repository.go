package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/health-program-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Totals returns row counts for clients, programs and enrollments.
func (r *DashboardRepository) Totals(ctx context.Context) (clients, programs, enrollments int, err error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM clients) AS clients,
        (SELECT COUNT(*) FROM programs) AS programs,
        (SELECT COUNT(*) FROM enrollments) AS enrollments`
	var row struct {
		Clients     int `db:"clients"`
		Programs    int `db:"programs"`
		Enrollments int `db:"enrollments"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, 0, fmt.Errorf("dashboard totals: %w", err)
	}
	return row.Clients, row.Programs, row.Enrollments, nil
}

// EnrollmentStatusCounts groups enrollments by status.
func (r *DashboardRepository) EnrollmentStatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS total FROM enrollments GROUP BY status ORDER BY status`
	counts := make([]models.StatusCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboard status counts: %w", err)
	}
	return counts, nil
}

// RecentClients returns the newest clients.
func (r *DashboardRepository) RecentClients(ctx context.Context, limit int) ([]models.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients ORDER BY created_at DESC, id DESC LIMIT $1", clientColumns)
	clients := make([]models.Client, 0)
	if err := r.db.SelectContext(ctx, &clients, query, limit); err != nil {
		return nil, fmt.Errorf("dashboard recent clients: %w", err)
	}
	return clients, nil
}

// RecentPrograms returns the newest programs.
func (r *DashboardRepository) RecentPrograms(ctx context.Context, limit int) ([]models.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs ORDER BY created_at DESC, id DESC LIMIT $1", programColumns)
	programs := make([]models.Program, 0)
	if err := r.db.SelectContext(ctx, &programs, query, limit); err != nil {
		return nil, fmt.Errorf("dashboard recent programs: %w", err)
	}
	return programs, nil
}
