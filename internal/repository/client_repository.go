package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/health-program-api/internal/models"
)

const clientColumns = `id, first_name, last_name, date_of_birth, gender, contact_number, email, address, created_at, updated_at`

var clientOrdering = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"created_at": "created_at",
}

// ClientRepository handles persistence of clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs the repository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns a page of clients matching the search terms. Every whitespace
// separated term must match first name, last name or email.
func (r *ClientRepository) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	var conditions []string
	var args []interface{}
	for _, term := range strings.Fields(filter.Search) {
		args = append(args, containsPattern(term))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n))
	}
	where := whereClause(conditions)

	query := fmt.Sprintf("SELECT %s FROM clients%s ORDER BY %s %s",
		clientColumns,
		where,
		orderBy(filter.Ordering, clientOrdering, "created_at DESC", "id"),
		limitOffset(filter.Page, filter.PageSize),
	)
	clients := make([]models.Client, 0)
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM clients"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	return clients, total, nil
}

// FindByID returns a client or sql.ErrNoRows.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients WHERE id = $1", clientColumns)
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &client, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	const query = `INSERT INTO clients (id, first_name, last_name, date_of_birth, gender, contact_number, email, address, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :date_of_birth, :gender, :contact_number, :email, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return translate(err, "create client")
	}
	return nil
}

// Update overwrites the mutable fields. Missing rows yield sql.ErrNoRows.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clients SET first_name = :first_name, last_name = :last_name, date_of_birth = :date_of_birth, gender = :gender,
        contact_number = :contact_number, email = :email, address = :address, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return translate(err, "update client")
	}
	return expectAffected(result, "update client")
}

// Delete removes a client and, through ON DELETE CASCADE, its enrollments.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return expectAffected(result, "delete client")
}
