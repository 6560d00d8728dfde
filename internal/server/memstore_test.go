package server

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/internal/repository"
)

// memStore is an in-memory stand-in for Postgres that keeps the foreign key
// cascades and the enrollment unique constraint.
type memStore struct {
	mu            sync.Mutex
	programs      map[string]models.Program
	clients       map[string]models.Client
	enrollments   map[string]models.Enrollment
	users         map[string]models.User
	refreshTokens map[string]models.RefreshToken
	audits        []models.AuditLog
	tick          time.Time
}

func newMemStore() *memStore {
	return &memStore{
		programs:      make(map[string]models.Program),
		clients:       make(map[string]models.Client),
		enrollments:   make(map[string]models.Enrollment),
		users:         make(map[string]models.User),
		refreshTokens: make(map[string]models.RefreshToken),
		tick:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) now() time.Time {
	s.tick = s.tick.Add(time.Second)
	return s.tick
}

func paginate(total, page, size int) (int, int) {
	if size <= 0 {
		return 0, total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

type memPrograms struct{ *memStore }

func (r memPrograms) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	start, end := paginate(len(out), filter.Page, filter.PageSize)
	return out[start:end], len(out), nil
}

func (r memPrograms) FindByID(ctx context.Context, id string) (*models.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r memPrograms) Create(ctx context.Context, program *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	program.ID = uuid.NewString()
	program.CreatedAt = r.now()
	program.UpdatedAt = program.CreatedAt
	r.programs[program.ID] = *program
	return nil
}

func (r memPrograms) Update(ctx context.Context, program *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[program.ID]; !ok {
		return sql.ErrNoRows
	}
	program.UpdatedAt = r.now()
	r.programs[program.ID] = *program
	return nil
}

func (r memPrograms) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.programs, id)
	for eid, e := range r.enrollments {
		if e.ProgramID == id {
			delete(r.enrollments, eid)
		}
	}
	return nil
}

type memClients struct{ *memStore }

func (r memClients) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	terms := strings.Fields(strings.ToLower(filter.Search))
	out := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		haystack := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Email)
		match := true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				match = false
			}
		}
		if match {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	start, end := paginate(len(out), filter.Page, filter.PageSize)
	return out[start:end], len(out), nil
}

func (r memClients) FindByID(ctx context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r memClients) Create(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	client.ID = uuid.NewString()
	client.CreatedAt = r.now()
	client.UpdatedAt = client.CreatedAt
	r.clients[client.ID] = *client
	return nil
}

func (r memClients) Update(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return sql.ErrNoRows
	}
	client.UpdatedAt = r.now()
	r.clients[client.ID] = *client
	return nil
}

func (r memClients) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.clients, id)
	for eid, e := range r.enrollments {
		if e.ClientID == id {
			delete(r.enrollments, eid)
		}
	}
	return nil
}

type memEnrollments struct{ *memStore }

func (r memEnrollments) detail(e models.Enrollment) models.EnrollmentDetail {
	c := r.clients[e.ClientID]
	return models.EnrollmentDetail{
		Enrollment:  e,
		ClientName:  c.FullName(),
		ProgramName: r.programs[e.ProgramID].Name,
	}
}

func (r memEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EnrollmentDetail, 0)
	for _, e := range r.enrollments {
		if (filter.ClientID == "" || e.ClientID == filter.ClientID) && (filter.ProgramID == "" || e.ProgramID == filter.ProgramID) {
			out = append(out, r.detail(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentDate.After(out[j].EnrollmentDate) })
	start, end := paginate(len(out), filter.Page, filter.PageSize)
	return out[start:end], len(out), nil
}

func (r memEnrollments) FindByID(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok || (scope.ClientID != "" && e.ClientID != scope.ClientID) || (scope.ProgramID != "" && e.ProgramID != scope.ProgramID) {
		return nil, sql.ErrNoRows
	}
	d := r.detail(e)
	return &d, nil
}

func (r memEnrollments) ListByClient(ctx context.Context, clientID string) ([]models.ProfileEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ProfileEnrollment, 0)
	for _, e := range r.enrollments {
		if e.ClientID != clientID {
			continue
		}
		p := r.programs[e.ProgramID]
		out = append(out, models.ProfileEnrollment{
			ID:                 e.ID,
			ProgramID:          e.ProgramID,
			ProgramName:        p.Name,
			ProgramDescription: p.Description,
			EnrollmentDate:     e.EnrollmentDate,
			Status:             e.Status,
			Notes:              e.Notes,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentDate.After(out[j].EnrollmentDate) })
	return out, nil
}

func (r memEnrollments) violates(enrollment *models.Enrollment) error {
	if _, ok := r.clients[enrollment.ClientID]; !ok {
		return &repository.ConstraintError{Kind: repository.ErrForeignKey, Constraint: "enrollments_client_id_fkey"}
	}
	if _, ok := r.programs[enrollment.ProgramID]; !ok {
		return &repository.ConstraintError{Kind: repository.ErrForeignKey, Constraint: "enrollments_program_id_fkey"}
	}
	for id, e := range r.enrollments {
		if id != enrollment.ID && e.ClientID == enrollment.ClientID && e.ProgramID == enrollment.ProgramID {
			return &repository.ConstraintError{Kind: repository.ErrDuplicate, Constraint: "enrollments_client_program_key"}
		}
	}
	return nil
}

func (r memEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.violates(enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	enrollment.ID = uuid.NewString()
	enrollment.CreatedAt = r.now()
	enrollment.UpdatedAt = enrollment.CreatedAt
	r.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r memEnrollments) Update(ctx context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[enrollment.ID]; !ok {
		return sql.ErrNoRows
	}
	if err := r.violates(enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	enrollment.UpdatedAt = r.now()
	r.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r memEnrollments) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.enrollments, id)
	return nil
}

type memUsers struct{ *memStore }

func (r memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return &repository.ConstraintError{Kind: repository.ErrDuplicate, Constraint: "users_username_key"}
		}
	}
	user.ID = uuid.NewString()
	user.DateJoined = r.now()
	r.users[user.ID] = *user
	return nil
}

func (r memUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.LastLogin = &ts
	r.users[id] = u
	return nil
}

func (r memUsers) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.PasswordHash = passwordHash
	r.users[id] = u
	return nil
}

func (r memUsers) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.refreshTokens {
		if t.UserID == userID {
			t.Revoked = true
			r.refreshTokens[key] = t
		}
	}
	return nil
}

func (r memUsers) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshTokens[token.Token] = *token
	return nil
}

func (r memUsers) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r memUsers) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			r.refreshTokens[key] = t
		}
	}
	return nil
}

func (r memUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, *log)
	return nil
}

type memDashboard struct{ *memStore }

func (r memDashboard) Totals(ctx context.Context) (int, int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients), len(r.programs), len(r.enrollments), nil
}

func (r memDashboard) EnrollmentStatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range r.enrollments {
		counts[string(e.Status)]++
	}
	out := make([]models.StatusCount, 0, len(counts))
	for status, total := range counts {
		out = append(out, models.StatusCount{Status: status, Total: total})
	}
	return out, nil
}

func (r memDashboard) RecentClients(ctx context.Context, limit int) ([]models.Client, error) {
	clients, _, err := memClients{r.memStore}.List(ctx, models.ClientFilter{Page: 1, PageSize: limit})
	return clients, err
}

func (r memDashboard) RecentPrograms(ctx context.Context, limit int) ([]models.Program, error) {
	programs, _, err := memPrograms{r.memStore}.List(ctx, models.ProgramFilter{Page: 1, PageSize: limit})
	return programs, err
}
